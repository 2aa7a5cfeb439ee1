// Package anthropic wraps an Anthropic-style messages client so that
// every successful call reports its token usage to Hawkkey. As with the
// openai package, no provider SDK is imported: callers adapt their
// client to the MessageClient interface, and the value types mirror the
// provider's wire shapes (input_tokens, output_tokens).
package anthropic

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/domain/usage"
)

const reportTimeout = 10 * time.Second

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRequest mirrors the provider's messages request.
type MessageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int64     `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// Usage mirrors the provider's token accounting.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// ContentBlock is one piece of generated content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// MessageResponse mirrors the provider's messages response.
type MessageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// MessageClient is the capability the wrapper decorates.
type MessageClient interface {
	CreateMessage(ctx context.Context, req MessageRequest) (MessageResponse, error)
}

// Reporter receives usage reports. *client.Client satisfies it.
type Reporter interface {
	ReportUsage(ctx context.Context, report usage.Report) (usage.ReportResult, error)
}

// Config configures a wrapped client.
type Config struct {
	// Key is the Hawkkey credential the usage is billed against.
	Key string

	// Reporter is required.
	Reporter Reporter

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger
}

// Client decorates a MessageClient with usage reporting.
type Client struct {
	inner    MessageClient
	reporter Reporter
	key      string
	logger   zerolog.Logger
}

var _ MessageClient = (*Client)(nil)

// Wrap decorates inner so that each successful message reports its
// usage in the background.
func Wrap(inner MessageClient, cfg Config) *Client {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Client{
		inner:    inner,
		reporter: cfg.Reporter,
		key:      cfg.Key,
		logger:   logger,
	}
}

// CreateMessage forwards to the wrapped client. Provider errors
// propagate unchanged and nothing is reported for them. The total token
// count is derived from input plus output, since the provider does not
// send one.
func (c *Client) CreateMessage(ctx context.Context, req MessageRequest) (MessageResponse, error) {
	resp, err := c.inner.CreateMessage(ctx, req)
	if err != nil {
		return resp, err
	}

	report := usage.Report{
		Key:          c.key,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Model:        resp.Model,
		RequestID:    resp.ID,
	}
	go c.report(context.WithoutCancel(ctx), report)

	return resp, nil
}

func (c *Client) report(ctx context.Context, report usage.Report) {
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	if _, err := c.reporter.ReportUsage(ctx, report); err != nil {
		c.logger.Warn().
			Err(err).
			Str("model", report.Model).
			Str("request_id", report.RequestID).
			Msg("usage report failed")
	}
}
