package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/mammoth-reserve/reserve-backend/internal/config"
	"github.com/mammoth-reserve/reserve-backend/internal/handlers"
	"github.com/mammoth-reserve/reserve-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	donationHandler *handlers.DonationHandler,
	approvalHandler *handlers.ApprovalHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/staff-login", authHandler.StaffLogin)
	auth.Post("/student", authHandler.StudentSession)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)

	// Donation lifecycle (any signed-in role; services enforce per-role rules)
	protected := api.Group("", middleware.JWTProtected(cfg))
	protected.Post("/donations", donationHandler.Create)
	protected.Get("/donations", donationHandler.Dashboard)
	protected.Get("/donations/available", donationHandler.Available)
	protected.Post("/donations/:id/reservations", donationHandler.Reserve)
	protected.Delete("/donations/:id/reservations/:reservation_id", donationHandler.CancelReservation)
	protected.Post("/donations/:id/reservations/:reservation_id/complete", donationHandler.CompletePickup)
	protected.Get("/reservations", donationHandler.ReservationHistory)
	protected.Post("/analyze", donationHandler.Analyze)

	// Staff review screens (dining-hall sessions only)
	staff := api.Group("/staff", middleware.JWTProtected(cfg), middleware.StaffRequired())
	staff.Get("/registrations", approvalHandler.List)
	staff.Post("/registrations/:id/approve", approvalHandler.Approve)
	staff.Post("/registrations/:id/reject", approvalHandler.Reject)
	staff.Post("/registrations/:id/revoke", approvalHandler.Revoke)
	staff.Post("/registrations/:id/recover", approvalHandler.Recover)
	staff.Delete("/registrations/:id", approvalHandler.Delete)
	staff.Get("/confirmations", donationHandler.Confirmations)
}
