package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mfrancke/seatly/internal/handlers"
	"github.com/mfrancke/seatly/internal/middleware"
	"github.com/mfrancke/seatly/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	reservationHandler *handlers.ReservationHandler,
	sessions middleware.SessionVerifier,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/lockout-status", authHandler.LockoutStatus)
	})

	// Verify reports session validity itself, so it stays outside the
	// session gate to keep its response shape on expiry.
	router.Get("/auth/verify", authHandler.Verify)

	// Public booking creation; the floor staff surface below is
	// session gated.
	router.Post("/reservations", reservationHandler.Create)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions))

		// Auth endpoints
		r.Post("/auth/logout", authHandler.Logout)

		// Reservation management for staff
		r.Get("/reservations", reservationHandler.List)
		r.Get("/reservations/{id}", reservationHandler.Get)
		r.Put("/reservations/{id}", reservationHandler.Update)
		r.Delete("/reservations/{id}", reservationHandler.Delete)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Post("/admin/lockouts/clear", authHandler.Unlock)
		})
	})
}
