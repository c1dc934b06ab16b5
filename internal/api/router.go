package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/visa-booking-website/internal/api/handlers"
	"github.com/dom/visa-booking-website/internal/api/middleware"
	"github.com/dom/visa-booking-website/internal/config"
	"github.com/dom/visa-booking-website/internal/logging"
	"github.com/dom/visa-booking-website/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logging.Component(log, "http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, logging.Component(log, "handlers"))
	accountHandler := handlers.NewAccountHandler(services.Account, logging.Component(log, "handlers"))
	gate := middleware.Auth(services.Auth, logging.Component(log, "gate"))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(gate)
				r.Get("/me", authHandler.Me)
			})
		})

		// Protected account routes
		r.Route("/account", func(r chi.Router) {
			r.Use(gate)
			r.Put("/profile", accountHandler.UpdateProfile)
			r.Put("/password", accountHandler.ChangePassword)
		})
	})

	return r
}
