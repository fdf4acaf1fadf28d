package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bellaleprasann20/Chat-App/internal/auth"
	"github.com/bellaleprasann20/Chat-App/internal/handler/persona"
	"github.com/bellaleprasann20/Chat-App/internal/handler/randomchat"
	"github.com/bellaleprasann20/Chat-App/internal/handler/realtime"
	middlewarePkg "github.com/bellaleprasann20/Chat-App/internal/middleware"
	"github.com/bellaleprasann20/Chat-App/pkg/utils"
)

// Deps groups what the router needs.
type Deps struct {
	Verifier    auth.Verifier
	Realtime    *realtime.Handler
	RandomChat  *randomchat.Handler
	Personas    *persona.Handler
	CORSOrigins []string
	Logger      zerolog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(deps.Logger))
	r.Use(middlewarePkg.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	if deps.Realtime != nil {
		deps.Realtime.RegisterRoutes(r)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewarePkg.RequireAuth(deps.Verifier))
		if deps.RandomChat != nil {
			deps.RandomChat.RegisterRoutes(api)
		}
		if deps.Personas != nil {
			deps.Personas.RegisterRoutes(api)
		}
	})

	return r
}

// OriginChecker allows websocket upgrades from the configured origins.
func OriginChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	wildcard := false
	for _, origin := range origins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
