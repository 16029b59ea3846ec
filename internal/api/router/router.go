package router

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vipride/booking-assistant/internal/bookings"
	"github.com/vipride/booking-assistant/internal/conversation"
	httpmiddleware "github.com/vipride/booking-assistant/internal/http/middleware"
	"github.com/vipride/booking-assistant/internal/leads"
	"github.com/vipride/booking-assistant/internal/webchat"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	WebChat            *webchat.Handler
	LeadsHandler       *leads.Handler
	BookingsHandler    *bookings.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	HealthChecks       map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.WebChat != nil {
			public.Get("/chat/widget.js", cfg.WebChat.HandleWidgetJS)
		}
	})

	// Customer-facing API, rate limited per client IP.
	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		api.Use(middleware.AllowContentType("application/json"))
		if cfg.ChatHandler != nil {
			api.Route("/chat", func(chat chi.Router) {
				chat.Post("/sessions", cfg.ChatHandler.Start)
				chat.Get("/sessions/{sessionID}/messages", cfg.ChatHandler.History)
				chat.Post("/messages", cfg.ChatHandler.Message)
				if cfg.WebChat != nil {
					chat.Get("/ws", cfg.WebChat.HandleWebSocket)
				}
			})
		}
		if cfg.LeadsHandler != nil {
			api.Post("/leads", cfg.LeadsHandler.CreateWebLead)
		}
	})

	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.BookingsHandler != nil {
				admin.Get("/bookings", cfg.BookingsHandler.ListBookings)
				admin.Get("/bookings/{bookingID}", cfg.BookingsHandler.GetBooking)
			}
			if cfg.ChatHandler != nil {
				admin.Get("/conversations/{sessionID}", cfg.ChatHandler.AdminSession)
			}
		})
	}

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
