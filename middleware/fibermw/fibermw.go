// Package fibermw provides Hawkkey verification middleware for Fiber.
package fibermw

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/verify"
	"github.com/hawkkey/hawkkey-go/middleware"
)

// ContextKey is the locals key under which the verification result is
// stored.
const ContextKey = "hawkkey.verification"

// Config configures the middleware. Verifier is required.
type Config struct {
	Verifier middleware.Verifier

	Resource string
	Units    int64

	// KeyExtractor overrides the default extraction policy.
	KeyExtractor func(c *fiber.Ctx) string

	// ErrorHandler overrides default error responses.
	ErrorHandler func(c *fiber.Ctx, err error) error

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger
}

// Verify returns fiber middleware that authenticates every request. On
// success the verification result is stored in Locals under ContextKey
// and the limit-state headers are set; on failure the request is
// rejected with a JSON error body.
func Verify(cfg Config) fiber.Handler {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return func(c *fiber.Ctx) error {
		token := extract(cfg, &logger, c)
		if token == "" {
			return reject(cfg, c, apierror.MissingKey())
		}

		opts := &client.VerifyOptions{Resource: cfg.Resource, Units: cfg.Units}
		res, err := cfg.Verifier.Verify(c.UserContext(), token, opts)
		if err != nil {
			return reject(cfg, c, err)
		}
		if !res.Valid {
			return reject(cfg, c, apierror.InvalidKey(""))
		}

		for k, v := range middleware.ResultHeaders(res) {
			c.Set(k, v)
		}
		c.Locals(ContextKey, res)
		return c.Next()
	}
}

// Result retrieves the verification result stored by Verify.
func Result(c *fiber.Ctx) (verify.Result, bool) {
	res, ok := c.Locals(ContextKey).(verify.Result)
	return res, ok
}

func extract(cfg Config, logger *zerolog.Logger, c *fiber.Ctx) string {
	if cfg.KeyExtractor != nil {
		return cfg.KeyExtractor(c)
	}
	cred := middleware.Extract(
		c.Get("Authorization"),
		c.Get("x-api-key"),
		c.Query("api_key"),
	)
	if cred.Source == middleware.SourceQuery {
		logger.Warn().Str("path", c.Path()).Msg("API key passed as query parameter; prefer the Authorization header")
	}
	return cred.Token
}

func reject(cfg Config, c *fiber.Ctx, err error) error {
	if cfg.ErrorHandler != nil {
		return cfg.ErrorHandler(c, err)
	}
	status, body, headers := middleware.ErrorPayload(err)
	for k, v := range headers {
		c.Set(k, v)
	}
	return c.Status(status).JSON(body)
}
