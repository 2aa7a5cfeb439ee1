// Package usage provides value types for usage tracking and
// post-call token reporting.
package usage

import "github.com/hawkkey/hawkkey-go/domain/verify"

// Event is a metered usage event for a key against a resource.
type Event struct {
	KeyID    string
	Resource string
	Units    int64
}

// Report carries actual (not estimated) token counts after an AI
// provider call completes. TotalTokens defaults to the sum of input
// and output when zero.
type Report struct {
	Key          string
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	Cost         float64 // USD
	Model        string
	RequestID    string
}

// Total returns the reported total token count, deriving it from the
// input and output counts when the caller did not supply one.
func (r Report) Total() int64 {
	if r.TotalTokens > 0 {
		return r.TotalTokens
	}
	return r.InputTokens + r.OutputTokens
}

// ReportResult is the service's acknowledgement of a usage report.
// Reporting never fails for exceeding a limit retroactively; it only
// returns updated budget state.
type ReportResult struct {
	Success bool
	Budget  *verify.Budget
}
