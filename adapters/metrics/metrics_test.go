package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewWithRegistry(reg)

	c.RequestsTotal.WithLabelValues("verify", "2xx").Inc()
	c.RequestsTotal.WithLabelValues("verify", "2xx").Inc()
	c.RequestsTotal.WithLabelValues("verify", "4xx").Inc()
	c.AuthFailures.WithLabelValues("invalid_api_key").Inc()
	c.RateLimitHits.WithLabelValues("rate_limit_exceeded").Inc()
	c.BudgetWarnings.Inc()

	if got := testutil.ToFloat64(c.RequestsTotal.WithLabelValues("verify", "2xx")); got != 2 {
		t.Errorf("requests_total{verify,2xx} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.AuthFailures.WithLabelValues("invalid_api_key")); got != 1 {
		t.Errorf("auth_failures_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.BudgetWarnings); got != 1 {
		t.Errorf("budget_warnings_total = %v, want 1", got)
	}
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{302, "3xx"},
		{401, "4xx"},
		{429, "4xx"},
		{500, "5xx"},
		{0, "other"},
	}

	for _, tt := range tests {
		if got := StatusLabel(tt.status); got != tt.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
