package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bikurim/procurement-backend/pkg/config"
	pkgerrors "github.com/bikurim/procurement-backend/pkg/errors"
	"github.com/bikurim/procurement-backend/pkg/metrics"
)

const (
	defaultBaseURL             = "https://generativelanguage.googleapis.com/v1beta"
	errorBodyReadLimit   int64 = 2048
	defaultRetryDelay          = 2 * time.Second
	RateLimitedMessage         = "המערכת בעומס קל, אנא המתן 30 שניות ונסה שוב"
	notConfiguredMessage       = "AI service is not configured"
)

var errAPIKeyRequired = errors.New("google api key is required")

var rateLimitMarkers = []string{"429", "RESOURCE_EXHAUSTED", "rate limit", "Too Many Requests"}

// Client calls the Gemini generateContent REST endpoint with a primary key and
// an optional backup key used once after the primary is rate limited.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	primaryKey  string
	backupKey   string
	textModel   string
	visionModel string
	retryDelay  time.Duration
	sleep       func(context.Context, time.Duration) error
	metrics     *metrics.AIMetrics
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func WithMetrics(m *metrics.AIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithSleep replaces the wait between the primary and backup attempt.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// NewClient builds the client from config. When only the backup key is set it
// is promoted to primary.
func NewClient(cfg config.GeminiConfig, opts ...Option) (*Client, error) {
	primary := strings.TrimSpace(cfg.APIKey)
	backup := strings.TrimSpace(cfg.BackupAPIKey)
	if primary == "" {
		primary, backup = backup, ""
	}
	if primary == "" {
		return nil, errAPIKeyRequired
	}
	if backup == primary {
		backup = ""
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	client := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     defaultBaseURL,
		primaryKey:  primary,
		backupKey:   backup,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		retryDelay:  cfg.RetryDelay,
		sleep:       sleepContext,
	}
	if cfg.BaseURL != "" {
		client.baseURL = cfg.BaseURL
	}
	if client.retryDelay <= 0 {
		client.retryDelay = defaultRetryDelay
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// InlineImage is a base64 encoded image sent alongside the prompt.
type InlineImage struct {
	MimeType string
	Data     string
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// apiError is a non-2xx response from the provider.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Body)
}

// GenerateText sends a text prompt to the text model and returns the raw reply.
func (c *Client) GenerateText(ctx context.Context, operation, prompt string) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, notConfiguredMessage)
	}
	return c.generate(ctx, operation, c.textModel, []part{{Text: prompt}})
}

// GenerateFromImage sends an image followed by the instruction prompt to the vision model.
func (c *Client) GenerateFromImage(ctx context.Context, operation string, image InlineImage, prompt string) (string, error) {
	if c == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, notConfiguredMessage)
	}
	if strings.TrimSpace(image.Data) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	mime := image.MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	parts := []part{
		{InlineData: &inlineData{MimeType: mime, Data: image.Data}},
		{Text: prompt},
	}
	return c.generate(ctx, operation, c.visionModel, parts)
}

func (c *Client) generate(ctx context.Context, operation, model string, parts []part) (string, error) {
	start := time.Now()
	text, err := c.call(ctx, c.primaryKey, model, parts)
	if err != nil && IsRateLimited(err) && c.backupKey != "" {
		c.metrics.IncFailover()
		if sleepErr := c.sleep(ctx, c.retryDelay); sleepErr != nil {
			c.metrics.ObserveCall(operation, "canceled", time.Since(start))
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, sleepErr, RateLimitedMessage)
		}
		text, err = c.call(ctx, c.backupKey, model, parts)
	}
	if err != nil {
		if IsRateLimited(err) {
			c.metrics.ObserveCall(operation, "rate_limited", time.Since(start))
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, RateLimitedMessage)
		}
		c.metrics.ObserveCall(operation, "error", time.Since(start))
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "AI service request failed")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		c.metrics.ObserveCall(operation, "empty", time.Since(start))
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "AI service returned an empty response")
	}
	c.metrics.ObserveCall(operation, "ok", time.Since(start))
	return text, nil
}

func (c *Client) call(ctx context.Context, apiKey, model string, parts []part) (string, error) {
	payload, err := json.Marshal(generateRequest{Contents: []content{{Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.baseURL, "/"), url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute generate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return "", &apiError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// IsRateLimited inspects the status code and message text for known throttling markers.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
