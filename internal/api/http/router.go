package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-gateway/internal/auth"
)

// WebhookPath is the raw-body payment callback route.
const WebhookPath = "/api/payments/paystack/webhook"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Vendors  *handlers.VendorsHandler
	Admin    *handlers.AdminHandler
	Payments *handlers.PaymentsHandler
	Identity *auth.IdentityMiddleware
}

// RawBodyRoutes lists the routes that must see unparsed bodies.
func RawBodyRoutes(cfg RouteConfig) []RawBodyRoute {
	return []RawBodyRoute{
		{Method: fiber.MethodPost, Path: WebhookPath, Handler: cfg.Payments.PaystackWebhook},
	}
}

// Mounts wires the actor namespaces. Public and protected routes share a
// prefix; protected handlers check for an identity themselves.
func Mounts(cfg RouteConfig) []Mount {
	return []Mount{
		{Prefix: "/api/auth", Register: func(r fiber.Router) {
			r.Post("/register", cfg.Users.Register)
			r.Post("/login", cfg.Users.Login)
			r.Post("/refresh", cfg.Users.Refresh)
			r.Get("/me", cfg.Identity.User, cfg.Users.Me)
		}},
		{Prefix: "/api/vendor/auth", Register: func(r fiber.Router) {
			r.Post("/register", cfg.Vendors.Register)
			r.Post("/login", cfg.Vendors.Login)
			r.Post("/refresh", cfg.Vendors.Refresh)
			r.Get("/me", cfg.Identity.Vendor, cfg.Vendors.Me)
		}},
		{Prefix: "/api/admin/users", Register: func(r fiber.Router) {
			r.Use(cfg.Identity.User)
			r.Get("/", cfg.Admin.ListUsers)
		}},
		{Prefix: "/api/admin/vendors", Register: func(r fiber.Router) {
			r.Use(cfg.Identity.User)
			r.Get("/", cfg.Admin.ListVendors)
		}},
	}
}

// HealthRoutes registers probes that need no identity.
func HealthRoutes(h *handlers.HealthHandler) func(fiber.Router) {
	return func(r fiber.Router) {
		r.Get("/healthz", h.Healthz)
		r.Get("/health/live", h.Live)
		r.Get("/health/ready", h.Ready)
	}
}
