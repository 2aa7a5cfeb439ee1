// Package echomw provides Hawkkey verification middleware for Echo.
package echomw

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/verify"
	"github.com/hawkkey/hawkkey-go/middleware"
)

// ContextKey is the echo context key under which the verification
// result is stored.
const ContextKey = "hawkkey.verification"

// Config configures the middleware. Verifier is required.
type Config struct {
	Verifier middleware.Verifier

	Resource string
	Units    int64

	// KeyExtractor overrides the default extraction policy.
	KeyExtractor func(c echo.Context) string

	// ErrorHandler overrides default error responses.
	ErrorHandler func(c echo.Context, err error) error

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger
}

// Verify returns echo middleware that authenticates every request. On
// success the verification result is stored under ContextKey and the
// limit-state headers are set; on failure the request is rejected with
// a JSON error body.
func Verify(cfg Config) echo.MiddlewareFunc {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extract(cfg, &logger, c)
			if token == "" {
				return reject(cfg, c, apierror.MissingKey())
			}

			opts := &client.VerifyOptions{Resource: cfg.Resource, Units: cfg.Units}
			res, err := cfg.Verifier.Verify(c.Request().Context(), token, opts)
			if err != nil {
				return reject(cfg, c, err)
			}
			if !res.Valid {
				return reject(cfg, c, apierror.InvalidKey(""))
			}

			header := c.Response().Header()
			for k, v := range middleware.ResultHeaders(res) {
				header.Set(k, v)
			}
			c.Set(ContextKey, res)
			return next(c)
		}
	}
}

// Result retrieves the verification result stored by Verify.
func Result(c echo.Context) (verify.Result, bool) {
	res, ok := c.Get(ContextKey).(verify.Result)
	return res, ok
}

func extract(cfg Config, logger *zerolog.Logger, c echo.Context) string {
	if cfg.KeyExtractor != nil {
		return cfg.KeyExtractor(c)
	}
	cred := middleware.Extract(
		c.Request().Header.Get("Authorization"),
		c.Request().Header.Get("x-api-key"),
		c.QueryParam("api_key"),
	)
	if cred.Source == middleware.SourceQuery {
		logger.Warn().Str("path", c.Path()).Msg("API key passed as query parameter; prefer the Authorization header")
	}
	return cred.Token
}

func reject(cfg Config, c echo.Context, err error) error {
	if cfg.ErrorHandler != nil {
		return cfg.ErrorHandler(c, err)
	}
	status, body, headers := middleware.ErrorPayload(err)
	header := c.Response().Header()
	for k, v := range headers {
		header.Set(k, v)
	}
	return c.JSON(status, body)
}
