package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medbookai/medbook/internal/http/handlers"
	httpmiddleware "github.com/medbookai/medbook/internal/http/middleware"
	"github.com/medbookai/medbook/internal/webchat"
	"github.com/medbookai/medbook/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	ChatHandler     *handlers.ChatHandler
	BookingsHandler *handlers.BookingsHandler
	AdminHandler    *handlers.AdminHandler
	HealthHandler   *handlers.HealthHandler
	WebchatHandler  *webchat.Handler
	MetricsHandler  http.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Per-IP HTTP rate limiting; zero disables it.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		if cfg.HealthHandler != nil {
			public.Get("/healthz", cfg.HealthHandler.Health)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ChatHandler != nil {
			public.Post("/chat", cfg.ChatHandler.HandleChat)
			public.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Get("/status", cfg.ChatHandler.SessionStatus)
				r.Post("/reset", cfg.ChatHandler.ResetSession)
			})
		}
		if cfg.BookingsHandler != nil {
			public.Get("/bookings", cfg.BookingsHandler.ListByEmail)
		}
		if cfg.WebchatHandler != nil {
			public.Get("/webchat/ws", cfg.WebchatHandler.HandleWebSocket)
			public.Get("/webchat/history", cfg.WebchatHandler.HandleHistory)
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/bookings", cfg.AdminHandler.ListBookings)
			admin.Patch("/bookings/{bookingID}/status", cfg.AdminHandler.UpdateBookingStatus)
			admin.Get("/stats", cfg.AdminHandler.Stats)
			admin.Post("/knowledge", cfg.AdminHandler.IngestKnowledge)
		})
	}

	return r
}
