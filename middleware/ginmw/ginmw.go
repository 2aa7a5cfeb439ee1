// Package ginmw provides Hawkkey verification middleware for Gin.
package ginmw

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hawkkey/hawkkey-go/client"
	"github.com/hawkkey/hawkkey-go/domain/apierror"
	"github.com/hawkkey/hawkkey-go/domain/verify"
	"github.com/hawkkey/hawkkey-go/middleware"
)

// ContextKey is the gin context key under which the verification
// result is stored.
const ContextKey = "hawkkey.verification"

// Config configures the middleware. Verifier is required.
type Config struct {
	Verifier middleware.Verifier

	Resource string
	Units    int64

	// KeyExtractor overrides the default extraction policy.
	KeyExtractor func(c *gin.Context) string

	// ErrorHandler overrides default error responses. It must abort
	// the request itself.
	ErrorHandler func(c *gin.Context, err error)

	// Logger defaults to a nop logger when nil.
	Logger *zerolog.Logger
}

// Verify returns gin middleware that authenticates every request. On
// success the verification result is stored under ContextKey and the
// limit-state headers are set; on failure the chain is aborted with a
// JSON error body.
func Verify(cfg Config) gin.HandlerFunc {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return func(c *gin.Context) {
		token := extract(cfg, &logger, c)
		if token == "" {
			reject(cfg, c, apierror.MissingKey())
			return
		}

		opts := &client.VerifyOptions{Resource: cfg.Resource, Units: cfg.Units}
		res, err := cfg.Verifier.Verify(c.Request.Context(), token, opts)
		if err != nil {
			reject(cfg, c, err)
			return
		}
		if !res.Valid {
			reject(cfg, c, apierror.InvalidKey(""))
			return
		}

		for k, v := range middleware.ResultHeaders(res) {
			c.Header(k, v)
		}
		c.Set(ContextKey, res)
		c.Next()
	}
}

// Result retrieves the verification result stored by Verify.
func Result(c *gin.Context) (verify.Result, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return verify.Result{}, false
	}
	res, ok := v.(verify.Result)
	return res, ok
}

func extract(cfg Config, logger *zerolog.Logger, c *gin.Context) string {
	if cfg.KeyExtractor != nil {
		return cfg.KeyExtractor(c)
	}
	cred := middleware.Extract(
		c.GetHeader("Authorization"),
		c.GetHeader("x-api-key"),
		c.Query("api_key"),
	)
	if cred.Source == middleware.SourceQuery {
		logger.Warn().Str("path", c.Request.URL.Path).Msg("API key passed as query parameter; prefer the Authorization header")
	}
	return cred.Token
}

func reject(cfg Config, c *gin.Context, err error) {
	if cfg.ErrorHandler != nil {
		cfg.ErrorHandler(c, err)
		return
	}
	status, body, headers := middleware.ErrorPayload(err)
	for k, v := range headers {
		c.Header(k, v)
	}
	c.AbortWithStatusJSON(status, body)
}
