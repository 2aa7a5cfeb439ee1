// Package verify provides value types for credential verification
// results. Like domain/key, this package is pure: no I/O, no external
// dependencies.
package verify

import "time"

// RateLimit is a point-in-time snapshot of the caller's rate limit.
// Reset is a Unix epoch in seconds.
type RateLimit struct {
	Limit     int64
	Remaining int64
	Reset     int64
}

// Quota is a snapshot of the unit-of-work cap for the current period.
type Quota struct {
	Limit     int64
	Remaining int64
	ResetAt   time.Time
}

// Budget is a snapshot of the currency-denominated spending cap.
// Amounts are in minor units (cents). The service may apply rounding,
// so Spent + Remaining is not guaranteed to equal Limit; the three
// fields are relayed independently.
type Budget struct {
	Limit            int64
	Spent            int64
	Remaining        int64
	WarningThreshold int // percent
	WarningExceeded  bool
	ResetAt          time.Time
}

// PercentUsed returns how much of the budget has been spent, as a
// percentage. A zero limit yields zero rather than dividing by zero.
func (b Budget) PercentUsed() float64 {
	if b.Limit == 0 {
		return 0
	}
	return float64(b.Spent) / float64(b.Limit) * 100
}

// TokenUsage is a snapshot of token consumption for the current period.
// A nil Limit or Remaining means unlimited.
type TokenUsage struct {
	Used      int64
	Limit     *int64
	Remaining *int64
}

// Result is the outcome of a successful verify call. It is freshly
// constructed per call and never mutated after return; callers may
// attach it to per-request context but must not treat it as long-lived
// shared state.
type Result struct {
	Valid        bool
	RateLimit    RateLimit
	Quota        *Quota
	Plan         string
	Entitlements []string
	Budget       *Budget
	TokenUsage   *TokenUsage
}

// HasEntitlement reports whether the verified credential carries the
// named entitlement.
func (r Result) HasEntitlement(name string) bool {
	for _, e := range r.Entitlements {
		if e == name {
			return true
		}
	}
	return false
}
