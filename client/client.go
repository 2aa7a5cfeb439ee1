// Package client implements the Hawkkey API client: authenticated,
// time-bounded calls to the access-control service, with HTTP outcomes
// translated into the domain/apierror taxonomy.
package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/adapters/metrics"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/key"
	"github.com/hawkkey/hawkkey-go/domain/verify"
)

const (
	// DefaultBaseURL is the official service endpoint. Any other
	// value is a security-sensitive override: the credential will be
	// transmitted to the configured host.
	DefaultBaseURL = "https://api.hawkkey.dev"

	// DefaultTimeout bounds each request, including body decode.
	DefaultTimeout = 10 * time.Second
)

// BudgetWarning is passed to warning callbacks when a successful verify
// reports its warning threshold exceeded. The credential is masked for
// display before it reaches any callback.
type BudgetWarning struct {
	MaskedKey   string
	PercentUsed float64
	Budget      verify.Budget
}

// WarningFunc receives budget warnings. Callbacks are fire-and-forget:
// a panic inside one is recovered and logged, never propagated to the
// verify caller.
type WarningFunc func(BudgetWarning)

// Config configures a Client.
type Config struct {
	// APIKey is required and must carry a recognized prefix
	// (hk_proj_live_, hk_proj_test_, hk_live_, hk_test_).
	APIKey string

	// BaseURL overrides the official endpoint. Intended only for
	// local or self-hosted deployments; a non-default value logs a
	// warning at construction.
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the transport. Per-call timeouts are
	// applied via context, not the http.Client's Timeout field.
	HTTPClient *http.Client

	// Headers are sent on every request, after the standard set.
	Headers map[string]string

	// OnBudgetWarning is the client-wide warning callback. A per-call
	// callback on VerifyOptions runs first.
	OnBudgetWarning WarningFunc

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Collector
}

// Client is the Hawkkey API client. It is safe for concurrent use; it
// holds no mutable state and never retries a failed call.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	timeout         time.Duration
	headers         map[string]string
	onBudgetWarning WarningFunc
	logger          zerolog.Logger
	metrics         *metrics.Collector
}

// New creates a client. Construction fails with a taxonomy error, before
// any network call, if the credential is empty or carries an
// unrecognized prefix.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apierror.SDK(0, "invalid_configuration", "API key is required")
	}
	if !key.ValidFormat(cfg.APIKey) {
		return nil, apierror.SDK(0, "invalid_configuration",
			"API key must start with hk_proj_live_, hk_proj_test_, hk_live_ or hk_test_")
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	} else if baseURL != DefaultBaseURL {
		logger.Warn().
			Str("base_url", baseURL).
			Msg("custom base URL configured; the API key will be sent to this endpoint")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient:      httpClient,
		baseURL:         baseURL,
		apiKey:          cfg.APIKey,
		timeout:         timeout,
		headers:         cfg.Headers,
		onBudgetWarning: cfg.OnBudgetWarning,
		logger:          logger,
		metrics:         cfg.Metrics,
	}, nil
}
