// Package middleware holds the framework-agnostic pieces shared by the
// Hawkkey middleware adapters: the credential extraction policy, the
// response header surface, and default error formatting. The
// framework-specific adapters live in the subpackages nethttp, ginmw,
// echomw and fibermw.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/verify"
)

// Verifier is the slice of the client the adapters depend on.
// *client.Client satisfies it; tests substitute fakes.
type Verifier interface {
	Verify(ctx context.Context, apiKey string, opts *client.VerifyOptions) (verify.Result, error)
}

// Response headers set on success.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"

	HeaderBudgetLimit     = "X-Budget-Limit"
	HeaderBudgetRemaining = "X-Budget-Remaining"
	HeaderBudgetReset     = "X-Budget-Reset"

	HeaderTokensUsed      = "X-Tokens-Used"
	HeaderTokensLimit     = "X-Tokens-Limit"
	HeaderTokensRemaining = "X-Tokens-Remaining"
)

// Source records where a credential was found.
type Source string

const (
	SourceNone   Source = ""
	SourceBearer Source = "bearer"
	SourceHeader Source = "header"
	SourceQuery  Source = "query"
)

// Credential is an extracted API key plus its source. Adapters log a
// warning for SourceQuery: keys in URLs end up in access logs.
type Credential struct {
	Token  string
	Source Source
}

// Extract applies the default extraction policy: Authorization bearer
// token first, then the x-api-key header, then (discouraged) the
// api_key query parameter.
func Extract(authorization, apiKeyHeader, queryParam string) Credential {
	if strings.HasPrefix(authorization, "Bearer ") {
		if token := strings.TrimPrefix(authorization, "Bearer "); token != "" {
			return Credential{Token: token, Source: SourceBearer}
		}
	}
	if apiKeyHeader != "" {
		return Credential{Token: apiKeyHeader, Source: SourceHeader}
	}
	if queryParam != "" {
		return Credential{Token: queryParam, Source: SourceQuery}
	}
	return Credential{}
}

// ResultHeaders maps a verification result to the response header
// surface shared by all adapters.
func ResultHeaders(res verify.Result) map[string]string {
	headers := map[string]string{
		HeaderRateLimitLimit:     strconv.FormatInt(res.RateLimit.Limit, 10),
		HeaderRateLimitRemaining: strconv.FormatInt(res.RateLimit.Remaining, 10),
		HeaderRateLimitReset:     strconv.FormatInt(res.RateLimit.Reset, 10),
	}
	if b := res.Budget; b != nil {
		headers[HeaderBudgetLimit] = strconv.FormatInt(b.Limit, 10)
		headers[HeaderBudgetRemaining] = strconv.FormatInt(b.Remaining, 10)
		headers[HeaderBudgetReset] = strconv.FormatInt(b.ResetAt.Unix(), 10)
	}
	if tu := res.TokenUsage; tu != nil {
		headers[HeaderTokensUsed] = strconv.FormatInt(tu.Used, 10)
		if tu.Limit != nil {
			headers[HeaderTokensLimit] = strconv.FormatInt(*tu.Limit, 10)
		}
		if tu.Remaining != nil {
			headers[HeaderTokensRemaining] = strconv.FormatInt(*tu.Remaining, 10)
		}
	}
	return headers
}

// ErrorBody is the JSON error envelope written by default error
// handling: { "error": { "code", "message" } }.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorPayload maps any failure to a status, JSON body, and diagnostic
// headers. Non-taxonomy errors and network failures, which carry no
// meaningful status, surface as 502.
func ErrorPayload(err error) (int, ErrorBody, map[string]string) {
	e, ok := apierror.As(err)
	if !ok {
		return 502, ErrorBody{Error: ErrorDetail{
			Code:    string(apierror.KindNetwork),
			Message: "Upstream verification failed",
		}}, nil
	}

	status := e.Status
	if status == 0 {
		status = 502
	}

	var headers map[string]string
	switch e.Kind {
	case apierror.KindTokenLimit:
		headers = map[string]string{
			HeaderTokensLimit:     strconv.FormatInt(e.Limit, 10),
			HeaderTokensRemaining: strconv.FormatInt(e.Remaining, 10),
		}
	case apierror.KindBudgetExceeded:
		headers = map[string]string{
			HeaderBudgetLimit:     strconv.FormatInt(e.Limit, 10),
			HeaderBudgetRemaining: strconv.FormatInt(e.Remaining, 10),
		}
		if e.ResetAt != "" {
			headers[HeaderBudgetReset] = e.ResetAt
		}
	case apierror.KindRateLimit:
		headers = map[string]string{
			"Retry-After": strconv.Itoa(e.RetryAfter),
		}
	}

	return status, ErrorBody{Error: ErrorDetail{Code: e.Code, Message: e.Message}}, headers
}

type ctxKey struct{}

// NewContext attaches a verification result to a context for
// downstream handlers. Used by the net/http adapter; the Gin, Echo and
// Fiber adapters use their frameworks' native per-request stores.
func NewContext(ctx context.Context, res verify.Result) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// FromContext retrieves the verification result attached by the
// net/http adapter.
func FromContext(ctx context.Context) (verify.Result, bool) {
	res, ok := ctx.Value(ctxKey{}).(verify.Result)
	return res, ok
}
