package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/marketplace-gateway/internal/api/http"
	"github.com/spec-kit/marketplace-gateway/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-gateway/internal/auth"
	"github.com/spec-kit/marketplace-gateway/internal/config"
	"github.com/spec-kit/marketplace-gateway/internal/events"
	"github.com/spec-kit/marketplace-gateway/internal/observability"
	"github.com/spec-kit/marketplace-gateway/internal/payments"
	"github.com/spec-kit/marketplace-gateway/internal/persistence"
	"github.com/spec-kit/marketplace-gateway/internal/ratelimit"
	"github.com/spec-kit/marketplace-gateway/internal/repository"
	"github.com/spec-kit/marketplace-gateway/internal/service"
	"github.com/spec-kit/marketplace-gateway/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.Configured() {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo   repository.UserRepository
		vendorRepo repository.VendorRepository
	)
	if pg.Configured() {
		userRepo = repository.NewUserRepository(pg.PoolHandle())
		vendorRepo = repository.NewVendorRepository(pg.PoolHandle())
	} else {
		logger.Warn("using in-memory account storage; data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		vendorRepo = repository.NewMemoryVendorRepository()
	}

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}
	logger.Info("token lifetimes",
		zap.String("access", cfg.Auth.AccessTTLRaw),
		zap.String("refresh", cfg.Auth.RefreshTTLRaw),
	)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService, err := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		VendorRepo: vendorRepo,
		Tokens:     tokens,
		Hasher:     auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		LoginLimiter: ratelimit.NewLoginLimiter(redis.UniversalClient(), ratelimit.LoginLimiterConfig{
			MaxAttempts: cfg.Auth.LoginMaxAttempts,
			Window:      cfg.Auth.LoginWindow,
		}),
		Events:  dispatcher,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}

	if cfg.Payments.WebhookSecret == "" {
		logger.Warn("PAYSTACK_WEBHOOK_SECRET not provided; payment webhooks will be rejected")
	}
	webhooks := payments.NewWebhookService(payments.NewHMACVerifier(cfg.Payments.WebhookSecret), dispatcher, logger)

	deps := map[string]handlers.Pinger{"postgres": nil, "redis": nil}
	if pg.Configured() {
		deps["postgres"] = pg
	}
	if redis.UniversalClient() != nil {
		deps["redis"] = redis
	}

	routes := httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Env, deps, logger),
		Users:    handlers.NewUsersHandler(authService),
		Vendors:  handlers.NewVendorsHandler(authService),
		Admin:    handlers.NewAdminHandler(authService),
		Payments: handlers.NewPaymentsHandler(webhooks),
		Identity: auth.NewIdentityMiddleware(tokens),
	}

	app := httptransport.NewGateway(httptransport.GatewayConfig{
		AppName:        cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		UploadsDir:     cfg.App.UploadsDir,
		CORSOrigins:    cfg.App.CORSOrigins,
		BodyLimit:      cfg.App.BodyLimitBytes,
		RequestTimeout: cfg.App.RequestTimeout(),
		RateLimit:      cfg.RateLimit,
		RawBodyRoutes:  httptransport.RawBodyRoutes(routes),
		Mounts:         httptransport.Mounts(routes),
		Health:         httptransport.HealthRoutes(routes.Health),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
