// Command outbox-publisher relays committed domain events from the
// outbox_events table to the Pub/Sub domain topic.
package main

import (
	"context"
	"errors"

	"github.com/bikurim/procurement-backend/internal/bootstrap"
	"github.com/bikurim/procurement-backend/pkg/metrics"
	"github.com/bikurim/procurement-backend/pkg/outbox"
	"github.com/bikurim/procurement-backend/pkg/pubsub"
)

const service = "outbox-publisher"

func main() {
	rt, err := bootstrap.Start(context.Background(), service)
	if err != nil {
		bootstrap.Exit(service, "startup failed", err)
	}
	ctx, stop := rt.SignalContext()
	defer stop()
	cfg := rt.Config

	topic, err := pubsub.Connect(ctx, cfg.GCP, cfg.PubSub, rt.Logger)
	if err != nil {
		rt.Fail(ctx, "pubsub unavailable", err)
	}
	rt.OnClose("pubsub", topic.Close)

	if err := rt.DB.Ping(ctx); err != nil {
		rt.Fail(ctx, "database unavailable", err)
	}

	relay, err := NewRelay(RelayParams{
		Outbox:         cfg.Outbox,
		PublishTimeout: cfg.PubSub.PublishTimeout,
		Ordered:        topic.Ordered(),
		Logger:         rt.Logger,
		DB:             rt.DB,
		Store:          outbox.NewRepository(rt.DB.DB()),
		Sink:           topicSink{pub: topic.DomainPublisher()},
		Metrics:        metrics.NewOutboxMetrics(rt.Registry),
	})
	if err != nil {
		rt.Fail(ctx, "outbox relay", err)
	}

	rt.ServeMetrics(ctx)
	rt.Logger.Info(rt.Logger.WithField(ctx, "topic", topic.Topic()), "outbox.relay_started")
	if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.Fail(ctx, "outbox relay stopped", err)
	}
	rt.Logger.Info(ctx, "outbox.relay_stopped")
	_ = rt.Close()
}
