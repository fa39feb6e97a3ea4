package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

// RequestIDHeader carries the request id in and out of the gateway.
const RequestIDHeader = "X-Request-ID"

// RequestLogger logs one line per request and records request metrics.
// It never alters the response. A panic further down the chain is logged as a
// 500 and re-raised for the error middleware to answer.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		metrics.RequestStarted()

		defer func() {
			rec := recover()
			status := c.Response().StatusCode()
			switch {
			case rec != nil:
				status = fiber.StatusInternalServerError
			case err != nil:
				// the error middleware writes the response after this stage unwinds
				status = statusOf(err)
			}
			route := c.Route().Path
			duration := time.Since(start)
			metrics.RecordRequest(route, c.Method(), status, duration)
			logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("latency", duration),
				zap.String("ip", c.IP()),
			)
			if rec != nil {
				panic(rec)
			}
		}()

		return c.Next()
	}
}

func statusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return apperrors.ToDomainError(err).HTTPStatus
}
