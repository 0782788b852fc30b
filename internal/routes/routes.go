package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/coaching-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Account *handlers.AccountHandler
	Clinic  *handlers.ClinicHandler
	Health  *handlers.HealthHandler

	Subscription *handlers.SubscriptionHandler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	api.Get("/health", h.Health.Check)
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Auth-specific rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	api.Get("/me", middleware.JWTProtected(cfg), h.Account.Me)
	api.Put("/me", middleware.JWTProtected(cfg), h.Account.UpdateMe)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.RoleRequired(models.RoleAdmin))
	admin.Get("/dashboard", h.Account.Dashboard)
	admin.Get("/coaches", h.Account.ListCoaches)
	admin.Put("/coaches/:id", h.Account.UpdateCoach)
	admin.Get("/admins", h.Account.ListAdmins)
	admin.Post("/accounts", h.Account.Create)
	admin.Put("/accounts/:id", h.Account.Update)
	admin.Post("/accounts/:id/password", h.Account.ResetPassword)
	admin.Delete("/accounts/:id", h.Account.Delete)
	admin.Delete("/clients/:email", h.Account.DeleteClient)
	admin.Post("/clinics", h.Clinic.Create)
	admin.Delete("/clinics/:id", h.Clinic.Delete)
	admin.Delete("/clinics/:id/members", h.Clinic.DeleteMembers)
	admin.Post("/clinics/:id/tiers", h.Subscription.CreateTier)
	admin.Post("/clinics/:id/subscription", h.Subscription.HandleEvent)

	// Clinic routes carry the guard per route so ClinicAccess sees :id.
	guard := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{
			middleware.JWTProtected(cfg),
			middleware.RoleRequired(models.RoleAdmin, models.RoleClinicAdmin),
			middleware.ClinicAccess(),
			h,
		}
	}
	api.Get("/clinics/:id", guard(h.Clinic.Get)...)
	api.Put("/clinics/:id", guard(h.Clinic.UpdateSettings)...)
	api.Get("/clinics/:id/name", guard(h.Clinic.Name)...)
	api.Get("/clinics/:id/coaches", guard(h.Clinic.ListCoaches)...)
	api.Put("/clinics/:id/logo", guard(h.Clinic.SetLogo)...)
	api.Delete("/clinics/:id/logo", guard(h.Clinic.ClearLogo)...)
	api.Get("/clinics/:id/subscriptions", guard(h.Subscription.History)...)
}
