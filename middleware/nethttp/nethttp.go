// Package nethttp provides Hawkkey verification middleware for
// net/http handler chains, including chi routers.
package nethttp

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/middleware"
)

// Config configures the middleware. Verifier is required.
type Config struct {
	Verifier middleware.Verifier

	// Resource and Units are passed through to every verify call.
	// Zero values fall back to the client defaults.
	Resource string
	Units    int64

	// KeyExtractor overrides the default extraction policy.
	KeyExtractor func(r *http.Request) string

	// ErrorHandler overrides default error responses. The error is
	// always a taxonomy error.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger
}

// Verify returns middleware that authenticates every request against
// the Hawkkey service. On success the verification result is attached
// to the request context (middleware.FromContext) and the limit-state
// headers are set; on failure the request is rejected with a JSON error
// body and never reaches the next handler.
func Verify(cfg Config) func(http.Handler) http.Handler {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extract(cfg, &logger, r)
			if token == "" {
				reject(cfg, w, r, apierror.MissingKey())
				return
			}

			opts := &client.VerifyOptions{Resource: cfg.Resource, Units: cfg.Units}
			res, err := cfg.Verifier.Verify(r.Context(), token, opts)
			if err != nil {
				reject(cfg, w, r, err)
				return
			}
			if !res.Valid {
				reject(cfg, w, r, apierror.InvalidKey(""))
				return
			}

			for k, v := range middleware.ResultHeaders(res) {
				w.Header().Set(k, v)
			}
			next.ServeHTTP(w, r.WithContext(middleware.NewContext(r.Context(), res)))
		})
	}
}

func extract(cfg Config, logger *zerolog.Logger, r *http.Request) string {
	if cfg.KeyExtractor != nil {
		return cfg.KeyExtractor(r)
	}
	cred := middleware.Extract(
		r.Header.Get("Authorization"),
		r.Header.Get("x-api-key"),
		r.URL.Query().Get("api_key"),
	)
	if cred.Source == middleware.SourceQuery {
		logger.Warn().Str("path", r.URL.Path).Msg("API key passed as query parameter; prefer the Authorization header")
	}
	return cred.Token
}

func reject(cfg Config, w http.ResponseWriter, r *http.Request, err error) {
	if cfg.ErrorHandler != nil {
		cfg.ErrorHandler(w, r, err)
		return
	}
	status, body, headers := middleware.ErrorPayload(err)
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
