package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/aiox-platform/persona/internal/middleware"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	PrepareTurn       http.HandlerFunc
	RecordTurn        http.HandlerFunc
	ContextStatistics http.HandlerFunc
	InvalidatePersona http.HandlerFunc
	ClearPersonaCache http.HandlerFunc
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimiter        func(http.Handler) http.Handler
	// Readiness maps a dependency name to its check. A nil check is
	// reported as "not configured" and does not degrade readiness.
	Readiness map[string]Check
}

func NewRouter(cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(chimw.Recoverer)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{"status": "healthy"}
		status := http.StatusOK

		for name, check := range cfg.Readiness {
			switch {
			case check == nil:
				health[name] = "not configured"
			case check(r.Context()) != nil:
				health[name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
			default:
				health[name] = "healthy"
			}
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter)
		}

		r.Post("/turns/prepare", h.PrepareTurn)
		r.Post("/turns", h.RecordTurn)
		r.Get("/users/{userID}/context-statistics", h.ContextStatistics)

		r.Route("/personas", func(r chi.Router) {
			r.Delete("/cache", h.ClearPersonaCache)
			r.Delete("/{userID}/cache", h.InvalidatePersona)
		})
	})

	return r
}
