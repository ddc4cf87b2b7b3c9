// Package pubsub connects to the Google Pub/Sub topic that carries domain
// events out of the outbox.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gpubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/logger"
)

var (
	ErrNoProject = errors.New("pubsub: gcp project id not configured")
	ErrNoTopic   = errors.New("pubsub: domain topic not configured")
	ErrClosed    = errors.New("pubsub: client closed")
)

// Client owns the Pub/Sub connection and the single publisher of the domain
// topic. The publisher is created lazily and stopped on Close.
type Client struct {
	api   *gpubsub.Client
	topic string
	cfg   config.PubSubConfig

	once sync.Once
	pub  *gpubsub.Publisher
}

// Connect dials Pub/Sub for gcp.ProjectID. With cfg.VerifyTopic set the
// domain topic must already exist; topics are provisioned outside the app.
func Connect(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, ErrNoProject
	}
	topic := TopicName(project, cfg.DomainTopic)
	if topic == "" {
		return nil, ErrNoTopic
	}

	api, err := gpubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("pubsub dial: %w", err)
	}
	c := &Client{api: api, topic: topic, cfg: cfg}
	if cfg.VerifyTopic {
		if err := c.Ping(ctx); err != nil {
			_ = api.Close()
			return nil, err
		}
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"topic": topic, "ordering": cfg.Ordering}), "pubsub.connected")
	}
	return c, nil
}

// Topic is the full resource name of the domain topic.
func (c *Client) Topic() string {
	if c == nil {
		return ""
	}
	return c.topic
}

// Ordered reports whether messages should carry an ordering key.
func (c *Client) Ordered() bool {
	return c != nil && c.cfg.Ordering
}

// DomainPublisher returns the shared publisher of the domain topic, or nil
// on a client that was never connected.
func (c *Client) DomainPublisher() *gpubsub.Publisher {
	if c == nil || c.api == nil {
		return nil
	}
	c.once.Do(func() {
		pub := c.api.Publisher(c.topic)
		pub.EnableMessageOrdering = c.cfg.Ordering
		if c.cfg.PublishTimeout > 0 {
			pub.PublishSettings.Timeout = c.cfg.PublishTimeout
		}
		c.pub = pub
	})
	return c.pub
}

// Ping reads the topic's metadata, which fails fast when credentials or the
// topic itself are missing.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return ErrClosed
	}
	_, err := c.api.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: c.topic})
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("pubsub topic %s does not exist", c.topic)
	default:
		return fmt.Errorf("pubsub topic %s: %w", c.topic, err)
	}
}

// Close flushes pending messages and releases the connection.
func (c *Client) Close() error {
	if c == nil || c.api == nil {
		return nil
	}
	if c.pub != nil {
		c.pub.Stop()
	}
	return c.api.Close()
}

// TopicName expands a bare topic id to projects/<project>/topics/<id>. Full
// resource names pass through so a topic may live in another project.
func TopicName(project, topic string) string {
	topic = strings.TrimSpace(topic)
	switch {
	case topic == "":
		return ""
	case strings.HasPrefix(topic, "projects/") && strings.Contains(topic, "/topics/"):
		return topic
	case strings.TrimSpace(project) == "":
		return ""
	default:
		return "projects/" + strings.TrimSpace(project) + "/topics/" + topic
	}
}
