package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spec-kit/marketplace-gateway/internal/config"
	"github.com/spec-kit/marketplace-gateway/internal/observability"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorHandlingMiddleware converts every error and panic raised further down
// the chain into the JSON error envelope. 5xx detail goes to the log only.
func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, err, logger, metrics)
			}
		}()
		return c.Next()
	}
}

// fallbackErrorHandler serves errors fiber raises outside the middleware chain,
// such as an oversized body.
func fallbackErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, err, logger, metrics)
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) error {
	domainErr := toResponseError(err)
	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// toResponseError keeps fiber's own client errors (413, 405, ...) and hides everything else.
func toResponseError(err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return apperrors.NewDomainError(codeForStatus(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodeForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case fiber.StatusTooManyRequests:
		return apperrors.CodeTooManyRequests
	default:
		return apperrors.CodeValidation
	}
}

// bodyParsingMiddleware is the generic body stage. JSON bodies are validated
// and re-serialized in compact form; url-encoded bodies are validated. Routes
// that need the original bytes must be registered before this stage.
func bodyParsingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return c.Next()
		}

		contentType := strings.ToLower(string(c.Request().Header.ContentType()))
		switch {
		case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
			var compacted bytes.Buffer
			if err := json.Compact(&compacted, body); err != nil {
				return apperrors.NewValidationError("malformed JSON body", nil)
			}
			c.Request().SetBody(compacted.Bytes())
		case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
			if _, err := url.ParseQuery(string(body)); err != nil {
				return apperrors.NewValidationError("malformed form body", nil)
			}
		}
		return c.Next()
	}
}

// rateLimitMiddleware applies a token bucket per client IP.
func rateLimitMiddleware(cfg config.RateLimitConfig) fiber.Handler {
	limiter := newIPLimiter(cfg, 5*time.Minute)
	return func(c *fiber.Ctx) error {
		if !limiter.allow(c.IP(), time.Now()) {
			return apperrors.NewTooManyRequests("rate limit exceeded")
		}
		return c.Next()
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*ipBucket
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func newIPLimiter(cfg config.RateLimitConfig, ttl time.Duration) *ipLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiter{
		buckets: make(map[string]*ipBucket),
		limit:   rate.Limit(cfg.RequestsPerSecond),
		burst:   burst,
		ttl:     ttl,
	}
}

func (l *ipLimiter) allow(ip string, now time.Time) bool {
	if ip == "" {
		ip = "unknown"
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.ttl {
		for key, b := range l.buckets {
			if now.Sub(b.seen) > l.ttl {
				delete(l.buckets, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func notFoundHandler(_ *fiber.Ctx) error {
	return apperrors.NewNotFound("endpoint", nil)
}
