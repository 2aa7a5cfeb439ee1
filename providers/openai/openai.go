// Package openai wraps an OpenAI-style chat client so that every
// successful completion reports its token usage to Hawkkey. The wrapper
// never touches the provider SDK: callers adapt their client to the
// ChatClient interface, and the value types mirror the provider's wire
// shapes (prompt_tokens, completion_tokens).
package openai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/domain/usage"
)

// reportTimeout bounds the background usage report.
const reportTimeout = 10 * time.Second

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest mirrors the provider's chat completion request.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Usage mirrors the provider's token accounting.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Choice is one generated completion.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// ChatResponse mirrors the provider's chat completion response.
type ChatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// ChatClient is the capability the wrapper decorates. Adapt any OpenAI
// SDK client to it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error)
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

// Client decorates a ChatClient with usage reporting.
type Client struct {
	inner    ChatClient
	reporter Reporter
	key      string
	logger   zerolog.Logger
}

var _ ChatClient = (*Client)(nil)

// Wrap decorates inner so that each successful completion reports its
// usage in the background.
func Wrap(inner ChatClient, cfg Config) *Client {
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

// CreateChatCompletion forwards to the wrapped client. Provider errors
// propagate unchanged and nothing is reported for them. Reporting is
// fire and forget: it runs in the background and a failed report is
// logged, never surfaced to the caller.
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	resp, err := c.inner.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	report := usage.Report{
		Key:          c.key,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
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
