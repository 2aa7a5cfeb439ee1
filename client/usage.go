package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/usage"
	"github.com/hawkkey/hawkkey-go/domain/verify"
)

type trackUsageRequest struct {
	KeyID    string `json:"keyId"`
	Resource string `json:"resource"`
	Units    int64  `json:"units"`
}

// TrackUsage records a metered usage event. When idempotencyKey is
// empty a random one is generated so that transport-level retries by
// the caller can still be deduplicated by the service.
func (c *Client) TrackUsage(ctx context.Context, event usage.Event, idempotencyKey string) error {
	if event.KeyID == "" {
		return apierror.SDK(0, "invalid_request", "event keyId is required")
	}
	if event.Resource == "" {
		return apierror.SDK(0, "invalid_request", "event resource is required")
	}
	if event.Units == 0 {
		event.Units = 1
	}
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	req := trackUsageRequest{
		KeyID:    event.KeyID,
		Resource: event.Resource,
		Units:    event.Units,
	}
	headers := map[string]string{"Idempotency-Key": idempotencyKey}
	return c.do(ctx, "track_usage", http.MethodPost, "/v1/usage/events", req, nil, headers)
}

type reportUsageRequest struct {
	Key          string  `json:"key"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	TotalTokens  int64   `json:"totalTokens"`
	Cost         float64 `json:"cost,omitempty"`
	Model        string  `json:"model,omitempty"`
	RequestID    string  `json:"requestId,omitempty"`
}

type reportUsageResponse struct {
	Success bool        `json:"success"`
	Budget  *budgetBody `json:"budget"`
}

// ReportUsage reports actual post-call token counts. It never fails for
// exceeding a limit retroactively; it only returns updated budget
// state. TotalTokens defaults to inputTokens + outputTokens.
func (c *Client) ReportUsage(ctx context.Context, report usage.Report) (usage.ReportResult, error) {
	if report.Key == "" {
		return usage.ReportResult{}, apierror.SDK(0, "invalid_request", "report key is required")
	}

	req := reportUsageRequest{
		Key:          report.Key,
		InputTokens:  report.InputTokens,
		OutputTokens: report.OutputTokens,
		TotalTokens:  report.Total(),
		Cost:         report.Cost,
		Model:        report.Model,
		RequestID:    report.RequestID,
	}

	var resp reportUsageResponse
	if err := c.do(ctx, "report_usage", http.MethodPost, "/v1/usage/report", req, &resp, nil); err != nil {
		return usage.ReportResult{}, err
	}

	result := usage.ReportResult{Success: resp.Success}
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
	return result, nil
}
