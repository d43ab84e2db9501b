package routes

import (
	"time"

	"github.com/bloodbank/bloodbank-api/internal/config"
	"github.com/bloodbank/bloodbank-api/internal/handlers"
	"github.com/bloodbank/bloodbank-api/internal/middleware"
	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	donorHandler *handlers.DonorHandler,
	hospitalHandler *handlers.HospitalHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter per IP
	if cfg.RateLimitPerMin > 0 {
		api.Use(rateLimit(cfg.RateLimitPerMin))
	}

	api.Get("/health", healthHandler.Check)

	// Auth-specific rate limit (stricter)
	auth := api.Group("/auth")
	if cfg.AuthRateLimitPerMin > 0 {
		auth.Use(rateLimit(cfg.AuthRateLimitPerMin))
	}
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	auth.Get("/me", middleware.JWTProtected(cfg), authHandler.Me)

	donorOrAdmin := middleware.RequireRole(models.RoleDonor, models.RoleAdmin)
	donors := api.Group("/donors", middleware.JWTProtected(cfg))
	donors.Get("/", middleware.AdminRequired(), donorHandler.ListAll)
	donors.Get("/my-donations", middleware.RequireRole(models.RoleDonor), donorHandler.MyDonations)
	donors.Post("/donate", middleware.RequireRole(models.RoleDonor), donorHandler.Donate)
	donors.Put("/donate", donorOrAdmin, donorHandler.UpdateDonation)
	donors.Delete("/donate/:id", donorOrAdmin, donorHandler.DeleteDonation)

	hospitalOrAdmin := middleware.RequireRole(models.RoleHospital, models.RoleAdmin)
	hospitals := api.Group("/hospitals", middleware.JWTProtected(cfg))
	hospitals.Get("/", middleware.AdminRequired(), hospitalHandler.ListAll)
	hospitals.Get("/my-requests", middleware.RequireRole(models.RoleHospital), hospitalHandler.MyRequests)
	hospitals.Post("/request", middleware.RequireRole(models.RoleHospital), hospitalHandler.CreateRequest)
	hospitals.Put("/request/:id/status", middleware.AdminRequired(), hospitalHandler.SetStatus)
	hospitals.Put("/request/:id", hospitalOrAdmin, hospitalHandler.UpdateRequest)
	hospitals.Delete("/request/:id", hospitalOrAdmin, hospitalHandler.DeleteRequest)

	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired())
	admin.Get("/users", adminHandler.ListUsers)
	admin.Delete("/users/:id", adminHandler.DeleteUser)
	admin.Get("/inventory", adminHandler.Inventory)
	admin.Get("/audit-logs", adminHandler.AuditLogs)
}

func rateLimit(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
