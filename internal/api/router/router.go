package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fahimkhan-git/seher-ai-chat/internal/assistant"
	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	httpmiddleware "github.com/fahimkhan-git/seher-ai-chat/internal/http/middleware"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/internal/webchat"
	"github.com/fahimkhan-git/seher-ai-chat/internal/widgetconfig"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

const rootMessage = "Seher API is running. See /health for a simple check or /api/widget-config/:projectId for widget config."

// Config holds router configuration. Nil handlers leave their routes
// unmounted.
type Config struct {
	Logger              *logging.Logger
	ChatHandler         *assistant.Handler
	LeadsHandler        *leads.Handler
	EventsHandler       *events.Handler
	WidgetConfigHandler *widgetconfig.Handler
	WidgetHandler       *webchat.Handler
	DashboardFeed       http.Handler
	MetricsHandler      http.Handler
	RateLimiter         *httpmiddleware.RateLimiter
	CORSAllowedOrigins  []string

	// APIKey guards widget config writes. Empty leaves them open.
	APIKey string
	// AdminAuthSecret, when set, requires an admin JWT on lead, session and
	// dashboard reads, and is accepted in place of the API key.
	AdminAuthSecret string
}

// New creates a Chi router with all routes configured.
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

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": rootMessage})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/.well-known/appspecific/com.chrome.devtools.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{}"))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	admin := func(h http.HandlerFunc) http.Handler {
		if cfg.AdminAuthSecret == "" {
			return h
		}
		return httpmiddleware.AdminJWT(cfg.AdminAuthSecret)(h)
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			if cfg.RateLimiter != nil {
				public.Use(cfg.RateLimiter.Middleware)
			}
			if cfg.ChatHandler != nil {
				public.Post("/chat", cfg.ChatHandler.Chat)
			}
			if cfg.LeadsHandler != nil {
				public.Post("/leads", cfg.LeadsHandler.Create)
			}
			if cfg.EventsHandler != nil {
				public.Post("/events", cfg.EventsHandler.Create)
			}
		})

		if cfg.LeadsHandler != nil {
			api.Method(http.MethodGet, "/leads", admin(cfg.LeadsHandler.List))
			api.Method(http.MethodGet, "/chat-sessions", admin(cfg.LeadsHandler.ListSessions))
		}
		if cfg.EventsHandler != nil {
			api.Method(http.MethodGet, "/events", admin(cfg.EventsHandler.Summary))
		}
		if cfg.WidgetConfigHandler != nil {
			api.Route("/widget-config/{projectId}", func(wc chi.Router) {
				wc.Get("/", cfg.WidgetConfigHandler.Get)
				wc.With(httpmiddleware.RequireAPIKey(cfg.APIKey, cfg.AdminAuthSecret, cfg.Logger)).
					Post("/", cfg.WidgetConfigHandler.Upsert)
			})
		}
	})

	if cfg.WidgetHandler != nil {
		r.Route("/widget", func(widget chi.Router) {
			if cfg.RateLimiter != nil {
				widget.Use(cfg.RateLimiter.Middleware)
			}
			cfg.WidgetHandler.Routes(widget)
		})
	}
	if cfg.DashboardFeed != nil {
		feed := cfg.DashboardFeed
		if cfg.AdminAuthSecret != "" {
			feed = httpmiddleware.AdminJWT(cfg.AdminAuthSecret)(feed)
		}
		r.Handle("/dashboard/ws", feed)
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
