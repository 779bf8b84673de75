// Package http provides HTTP routing and middleware configuration
// for the NovaBank service.
package http

import (
	"net/http"

	"github.com/atinyakov/NovaBank/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the NovaBank
// API. It applies JSON content-type enforcement, request logging, and
// bearer-token authentication on the protected group.
//
// Routes:
//
//	POST /auth/register              → authHandler.Register
//	POST /auth/login                 → authHandler.Login
//	GET  /api/auth/dashboard         → bankHandler.Dashboard   (bearer)
//	POST /api/transactions/transfer  → bankHandler.Transfer    (bearer)
//	GET  /api/transactions/history/{accountID} → bankHandler.History (bearer)
//	POST /api/payments               → bankHandler.Payment     (bearer)
//	GET  /api/admin/accounts         → bankHandler.AdminAccounts (bearer, admin)
func NewRouter(
	authHandler *AuthHandler,
	bankHandler *BankHandler,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Only allow requests with Content-Type: application/json
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Public endpoints
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	// Protected group: requires a valid bearer token
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier))

		r.Get("/auth/dashboard", bankHandler.Dashboard)
		r.Post("/transactions/transfer", bankHandler.Transfer)
		r.Get("/transactions/history/{accountID}", bankHandler.History)
		r.Post("/payments", bankHandler.Payment)

		// Administrative group: requires the admin claim
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/admin/accounts", bankHandler.AdminAccounts)
		})
	})

	return r
}
