package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-gateway/internal/config"
	"github.com/spec-kit/marketplace-gateway/internal/observability"
)

// RawBodyRoute is a route whose handler needs the request bytes exactly as sent.
type RawBodyRoute struct {
	Method  string
	Path    string
	Handler fiber.Handler
}

// Mount attaches one actor namespace under Prefix.
type Mount struct {
	Prefix   string
	Register func(router fiber.Router)
}

// GatewayConfig bundles what NewGateway wires into the pipeline.
type GatewayConfig struct {
	AppName        string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	UploadsDir     string
	CORSOrigins    string
	BodyLimit      int
	RequestTimeout time.Duration
	RateLimit      config.RateLimitConfig
	RawBodyRoutes  []RawBodyRoute
	Mounts         []Mount
	Health         func(router fiber.Router)
}

// NewGateway builds the fiber app with its stages in a fixed order:
//
//	error handling (wraps every later stage)
//	static assets, CORS, request logging, rate limit, timeout
//	raw-body routes
//	generic body parsing
//	actor route trees
//	health and metrics
//	not found
//
// Raw-body routes are always registered ahead of the body parser, so their
// handlers read the bytes the client sent.
func NewGateway(cfg GatewayConfig) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          fallbackErrorHandler(logger, cfg.Metrics),
	})

	app.Use(errorHandlingMiddleware(logger, cfg.Metrics))

	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir, fiber.Static{Browse: false})
	}
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(observability.RequestLogger(logger, cfg.Metrics))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		app.Use(rateLimitMiddleware(cfg.RateLimit))
	}
	if cfg.RequestTimeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.RequestTimeout))
	}

	for _, route := range cfg.RawBodyRoutes {
		app.Add(route.Method, route.Path, route.Handler)
	}

	app.Use(bodyParsingMiddleware())

	for _, mount := range cfg.Mounts {
		mount.Register(app.Group(mount.Prefix))
	}

	if cfg.Health != nil {
		cfg.Health(app)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Use(notFoundHandler)
	return app
}
