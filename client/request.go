package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hawkkey/hawkkey-go/adapters/metrics"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
)

// errorEnvelope is the wire shape of a failure body:
// { "error": { "message", "code", ... } }. Absent or malformed bodies
// degrade gracefully to defaults.
type errorEnvelope struct {
	Error struct {
		Message   string `json:"message"`
		Code      string `json:"code"`
		Limit     int64  `json:"limit"`
		Spent     int64  `json:"spent"`
		Remaining int64  `json:"remaining"`
		Requested int64  `json:"requested"`
		ResetAt   string `json:"resetAt"`
	} `json:"error"`
}

// do performs one authenticated request. The configured timeout is
// applied as a context deadline and always released on completion. A
// non-2xx response is classified into the taxonomy; any other failure
// while composing, sending, or decoding is wrapped as a network error.
func (c *Client) do(ctx context.Context, op, method, path string, body, result interface{}, headers map[string]string) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierror.Network(err)
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apierror.Network(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(op, 0, start)
		return apierror.Network(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(op, 0, start)
		return apierror.Network(err)
	}

	c.record(op, resp.StatusCode, start)

	if resp.StatusCode >= 400 {
		return classify(resp.StatusCode, resp.Header, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return apierror.Network(err)
		}
	}
	return nil
}

func (c *Client) record(op string, status int, start time.Time) {
	if c.metrics == nil {
		return
	}
	label := metrics.StatusLabel(status)
	c.metrics.RequestsTotal.WithLabelValues(op, label).Inc()
	c.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// classify maps a failure status to the taxonomy, applied uniformly
// across all operations.
func classify(status int, header http.Header, body []byte) error {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope) // tolerate absent/malformed bodies

	switch status {
	case http.StatusUnauthorized:
		return apierror.InvalidKey(envelope.Error.Message)

	case http.StatusPaymentRequired:
		e := apierror.BudgetExceeded(
			envelope.Error.Limit,
			envelope.Error.Spent,
			envelope.Error.Remaining,
			envelope.Error.ResetAt,
		)
		if envelope.Error.Message != "" {
			e.Message = envelope.Error.Message
		}
		return e

	case http.StatusTooManyRequests:
		if envelope.Error.Code == apierror.CodeTokenLimit {
			return apierror.TokenLimit(
				envelope.Error.Limit,
				envelope.Error.Requested,
				envelope.Error.Remaining,
			)
		}
		return apierror.RateLimit(retryAfterSeconds(header))

	default:
		return apierror.SDK(status, envelope.Error.Code, envelope.Error.Message)
	}
}

// retryAfterSeconds parses the Retry-After header, defaulting to 60
// seconds when absent or unparsable.
func retryAfterSeconds(header http.Header) int {
	if v := header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return secs
		}
	}
	return 60
}
