// Package apierror defines the closed error taxonomy surfaced by the
// Hawkkey client and middleware. Every failure is one Error value with
// a Kind tag and kind-specific fields; callers branch with errors.As
// and a switch on Kind rather than type-checking a hierarchy.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one variant of the taxonomy.
type Kind string

const (
	KindMissingKey     Kind = "missing_api_key"
	KindInvalidKey     Kind = "invalid_api_key"
	KindRateLimit      Kind = "rate_limit_exceeded"
	KindTokenLimit     Kind = "token_limit_exceeded"
	KindBudgetExceeded Kind = "budget_exceeded"
	KindPromptBlocked  Kind = "prompt_blocked"
	KindNetwork        Kind = "network_error"
	KindSDK            Kind = "sdk_error"
)

// CodeTokenLimit is the sentinel error code the service uses to
// distinguish a token-limit 429 from an ordinary rate-limit 429.
const CodeTokenLimit = "token_limit_exceeded"

// Error is a single tagged value covering the whole taxonomy. Fields
// beyond Kind, Code, Status and Message are populated only for the
// kinds that carry them.
type Error struct {
	Kind    Kind
	Code    string // machine-readable code
	Status  int    // HTTP-like status; 0 when none is meaningful
	Message string

	RetryAfter int // seconds; rate limit only

	Limit     int64 // token limit and budget
	Remaining int64 // token limit and budget
	Requested int64 // token limit only

	Spent   int64  // budget only
	ResetAt string // budget only, relayed verbatim

	RiskScore float64  // prompt blocked only
	Threats   []string // prompt blocked only

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("hawkkey: %s: %v", e.Message, e.cause)
	}
	return "hawkkey: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// As extracts a taxonomy error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a taxonomy error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// MissingKey reports that no credential was found by the extraction
// policy. Raised at the middleware level before any network call.
func MissingKey() *Error {
	return &Error{
		Kind:    KindMissingKey,
		Code:    string(KindMissingKey),
		Status:  http.StatusUnauthorized,
		Message: "No API key provided",
	}
}

// InvalidKey maps a 401 from the service.
func InvalidKey(message string) *Error {
	if message == "" {
		message = "Invalid API key"
	}
	return &Error{
		Kind:    KindInvalidKey,
		Code:    string(KindInvalidKey),
		Status:  http.StatusUnauthorized,
		Message: message,
	}
}

// RateLimit maps a non-token 429. retryAfter is in seconds.
func RateLimit(retryAfter int) *Error {
	return &Error{
		Kind:       KindRateLimit,
		Code:       string(KindRateLimit),
		Status:     http.StatusTooManyRequests,
		Message:    "Rate limit exceeded",
		RetryAfter: retryAfter,
	}
}

// TokenLimit maps a 429 carrying the token-limit sentinel code.
func TokenLimit(limit, requested, remaining int64) *Error {
	return &Error{
		Kind:      KindTokenLimit,
		Code:      CodeTokenLimit,
		Status:    http.StatusTooManyRequests,
		Message:   "Token limit exceeded",
		Limit:     limit,
		Requested: requested,
		Remaining: remaining,
	}
}

// BudgetExceeded maps a 402. Amounts are in minor units.
func BudgetExceeded(limit, spent, remaining int64, resetAt string) *Error {
	return &Error{
		Kind:      KindBudgetExceeded,
		Code:      string(KindBudgetExceeded),
		Status:    http.StatusPaymentRequired,
		Message:   "Budget exceeded",
		Limit:     limit,
		Spent:     spent,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// PromptBlocked reports a prompt the service marked blocked, regardless
// of the HTTP status of the analyze call.
func PromptBlocked(riskScore float64, threats []string) *Error {
	return &Error{
		Kind:      KindPromptBlocked,
		Code:      string(KindPromptBlocked),
		Status:    http.StatusBadRequest,
		Message:   "Prompt blocked by security policy",
		RiskScore: riskScore,
		Threats:   threats,
	}
}

// Network wraps a transport failure, timeout, or any non-taxonomy
// error raised while composing, sending, or decoding a call.
func Network(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Code:    string(KindNetwork),
		Message: "Request failed",
		cause:   cause,
	}
}

// SDK covers any other non-2xx response or a local precondition
// violation. status is 0 for local failures.
func SDK(status int, code, message string) *Error {
	if message == "" {
		message = "Request failed"
	}
	if code == "" {
		code = string(KindSDK)
	}
	return &Error{
		Kind:    KindSDK,
		Code:    code,
		Status:  status,
		Message: message,
	}
}
