package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/usage"
)

func TestTrackUsage(t *testing.T) {
	var gotIdempotency string
	var gotBody trackUsageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/usage/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotIdempotency = r.Header.Get("Idempotency-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	event := usage.Event{KeyID: "key_123", Resource: "api-calls", Units: 5}

	if err := c.TrackUsage(context.Background(), event, "retry-batch-7"); err != nil {
		t.Fatalf("TrackUsage failed: %v", err)
	}
	if gotIdempotency != "retry-batch-7" {
		t.Errorf("Idempotency-Key = %q, want %q", gotIdempotency, "retry-batch-7")
	}
	if gotBody.KeyID != "key_123" || gotBody.Resource != "api-calls" || gotBody.Units != 5 {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestTrackUsage_GeneratedIdempotencyKey(t *testing.T) {
	keys := make(map[string]bool)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys[r.Header.Get("Idempotency-Key")] = true
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	event := usage.Event{KeyID: "key_123", Resource: "api-calls"}

	for i := 0; i < 3; i++ {
		if err := c.TrackUsage(context.Background(), event, ""); err != nil {
			t.Fatalf("TrackUsage failed: %v", err)
		}
	}

	if len(keys) != 3 {
		t.Errorf("generated %d distinct idempotency keys, want 3", len(keys))
	}
	if keys[""] {
		t.Error("a request went out without an Idempotency-Key")
	}
}

func TestTrackUsage_Validation(t *testing.T) {
	c := newTestClient(t, "http://unreachable.invalid", nil)

	if err := c.TrackUsage(context.Background(), usage.Event{Resource: "api-calls"}, ""); !apierror.IsKind(err, apierror.KindSDK) {
		t.Errorf("missing keyId error = %v, want sdk_error", err)
	}
	if err := c.TrackUsage(context.Background(), usage.Event{KeyID: "key_1"}, ""); !apierror.IsKind(err, apierror.KindSDK) {
		t.Errorf("missing resource error = %v, want sdk_error", err)
	}
}

func TestReportUsage(t *testing.T) {
	var gotBody reportUsageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/usage/report" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{
			"success": true,
			"budget": {"limit": 10000, "spent": 4200, "remaining": 5800, "warningThreshold": 80, "warningExceeded": false, "resetAt": "2026-09-01T00:00:00Z"}
		}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	result, err := c.ReportUsage(context.Background(), usage.Report{
		Key:          testKey,
		InputTokens:  100,
		OutputTokens: 50,
		Model:        "gpt-4o",
		RequestID:    "req_789",
	})
	if err != nil {
		t.Fatalf("ReportUsage failed: %v", err)
	}

	// Total defaults to input + output when not supplied.
	if gotBody.TotalTokens != 150 {
		t.Errorf("TotalTokens sent = %d, want 150", gotBody.TotalTokens)
	}
	if !result.Success {
		t.Error("Success = false")
	}
	if result.Budget == nil || result.Budget.Spent != 4200 {
		t.Errorf("Budget = %+v", result.Budget)
	}
}

func TestReportUsage_ExplicitTotal(t *testing.T) {
	var gotBody reportUsageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success": true}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	_, err := c.ReportUsage(context.Background(), usage.Report{
		Key:          testKey,
		InputTokens:  100,
		OutputTokens: 50,
		TotalTokens:  175, // e.g. provider counts cached tokens separately
	})
	if err != nil {
		t.Fatalf("ReportUsage failed: %v", err)
	}
	if gotBody.TotalTokens != 175 {
		t.Errorf("TotalTokens sent = %d, want 175", gotBody.TotalTokens)
	}
}

func TestReportUsage_KeyRequired(t *testing.T) {
	c := newTestClient(t, "http://unreachable.invalid", nil)
	_, err := c.ReportUsage(context.Background(), usage.Report{InputTokens: 1, OutputTokens: 1})
	if !apierror.IsKind(err, apierror.KindSDK) {
		t.Errorf("error = %v, want sdk_error", err)
	}
}
