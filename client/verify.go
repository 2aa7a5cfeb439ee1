package client

import (
	"context"
	"net/http"
	"time"

	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/key"
	"github.com/hawkkey/hawkkey-go/domain/verify"
)

// DefaultResource is the resource a verify call meters against when
// none is specified.
const DefaultResource = "api-calls"

// VerifyOptions tunes a single verify call. The zero value (or nil) is
// valid: resource defaults to DefaultResource and units to 1.
type VerifyOptions struct {
	Resource      string
	Units         int64
	Tokens        int64   // estimated tokens to reserve
	EstimatedCost float64 // estimated cost in USD

	// OnBudgetWarning runs before the client-wide callback.
	OnBudgetWarning WarningFunc
}

type verifyRequest struct {
	Key           string  `json:"key"`
	Resource      string  `json:"resource"`
	Units         int64   `json:"units"`
	Tokens        int64   `json:"tokens,omitempty"`
	EstimatedCost float64 `json:"estimatedCost,omitempty"`
}

type rateLimitBody struct {
	Limit     int64 `json:"limit"`
	Remaining int64 `json:"remaining"`
	Reset     int64 `json:"reset"`
}

type quotaBody struct {
	Limit     int64     `json:"limit"`
	Remaining int64     `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

type budgetBody struct {
	Limit            int64     `json:"limit"`
	Spent            int64     `json:"spent"`
	Remaining        int64     `json:"remaining"`
	WarningThreshold int       `json:"warningThreshold"`
	WarningExceeded  bool      `json:"warningExceeded"`
	ResetAt          time.Time `json:"resetAt"`
}

type tokenUsageBody struct {
	Used      int64  `json:"used"`
	Limit     *int64 `json:"limit"`
	Remaining *int64 `json:"remaining"`
}

type verifyResponse struct {
	Valid        bool            `json:"valid"`
	RateLimit    rateLimitBody   `json:"rateLimit"`
	Quota        *quotaBody      `json:"quota"`
	Plan         string          `json:"plan"`
	Entitlements []string        `json:"entitlements"`
	Budget       *budgetBody     `json:"budget"`
	TokenUsage   *tokenUsageBody `json:"tokenUsage"`
}

// Verify checks a credential's validity and current limit state,
// optionally reserving a token/cost estimate. Reaching the budget
// warning threshold is not an error: the call still succeeds and only
// the callback path fires. Exceeding a hard budget or token limit
// surfaces as a taxonomy error.
func (c *Client) Verify(ctx context.Context, apiKey string, opts *VerifyOptions) (verify.Result, error) {
	if apiKey == "" {
		return verify.Result{}, apierror.SDK(0, "invalid_request", "key is required")
	}
	if opts == nil {
		opts = &VerifyOptions{}
	}

	req := verifyRequest{
		Key:           apiKey,
		Resource:      opts.Resource,
		Units:         opts.Units,
		Tokens:        opts.Tokens,
		EstimatedCost: opts.EstimatedCost,
	}
	if req.Resource == "" {
		req.Resource = DefaultResource
	}
	if req.Units == 0 {
		req.Units = 1
	}

	var resp verifyResponse
	if err := c.do(ctx, "verify", http.MethodPost, "/v1/verify", req, &resp, nil); err != nil {
		c.countVerifyFailure(err)
		return verify.Result{}, err
	}

	result := verify.Result{
		Valid: resp.Valid,
		RateLimit: verify.RateLimit{
			Limit:     resp.RateLimit.Limit,
			Remaining: resp.RateLimit.Remaining,
			Reset:     resp.RateLimit.Reset,
		},
		Plan:         resp.Plan,
		Entitlements: resp.Entitlements,
	}
	if resp.Quota != nil {
		result.Quota = &verify.Quota{
			Limit:     resp.Quota.Limit,
			Remaining: resp.Quota.Remaining,
			ResetAt:   resp.Quota.ResetAt,
		}
	}
	if resp.Budget != nil {
		result.Budget = &verify.Budget{
			Limit:            resp.Budget.Limit,
			Spent:            resp.Budget.Spent,
			Remaining:        resp.Budget.Remaining,
			WarningThreshold: resp.Budget.WarningThreshold,
			WarningExceeded:  resp.Budget.WarningExceeded,
			ResetAt:          resp.Budget.ResetAt,
		}
	}
	if resp.TokenUsage != nil {
		result.TokenUsage = &verify.TokenUsage{
			Used:      resp.TokenUsage.Used,
			Limit:     resp.TokenUsage.Limit,
			Remaining: resp.TokenUsage.Remaining,
		}
	}

	if result.Budget != nil && result.Budget.WarningExceeded {
		c.notifyBudgetWarning(apiKey, *result.Budget, opts.OnBudgetWarning)
	}

	return result, nil
}

// notifyBudgetWarning invokes the per-call callback, then the
// client-wide one. Each invocation is isolated: a panicking callback is
// logged and discarded so it cannot turn a successful verification into
// a failed one.
func (c *Client) notifyBudgetWarning(apiKey string, budget verify.Budget, perCall WarningFunc) {
	warning := BudgetWarning{
		MaskedKey:   key.Mask(apiKey),
		PercentUsed: budget.PercentUsed(),
		Budget:      budget,
	}

	if c.metrics != nil {
		c.metrics.BudgetWarnings.Inc()
	}

	c.safeInvoke(perCall, warning)
	c.safeInvoke(c.onBudgetWarning, warning)
}

func (c *Client) safeInvoke(fn WarningFunc, w BudgetWarning) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn().
				Interface("panic", r).
				Str("key", w.MaskedKey).
				Msg("budget warning callback panicked")
		}
	}()
	fn(w)
}

func (c *Client) countVerifyFailure(err error) {
	if c.metrics == nil {
		return
	}
	e, ok := apierror.As(err)
	if !ok {
		return
	}
	switch e.Kind {
	case apierror.KindInvalidKey:
		c.metrics.AuthFailures.WithLabelValues(e.Code).Inc()
	case apierror.KindRateLimit, apierror.KindTokenLimit:
		c.metrics.RateLimitHits.WithLabelValues(string(e.Kind)).Inc()
	}
}
