package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"finlog/pkg/finlog"
)

// Option configures the router.
type Option func(*handler)

// WithIdentityResolver replaces the default header-based owner resolution.
func WithIdentityResolver(resolver IdentityResolver) Option {
	return func(h *handler) {
		h.identity = resolver
	}
}

// WithLogger overrides the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(h *handler) {
		h.logger = logger
	}
}

// NewRouter builds the HTTP API router.
func NewRouter(core *finlog.Core, opts ...Option) http.Handler {
	h := &handler{core: core, identity: HeaderIdentity{}}
	if core != nil {
		h.logger = core.Logger()
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(h.logger))
	r.Use(recoveryLoggingMiddleware(h.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ownerHeader},
		AllowCredentials: true,
	}))

	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.requireOwner)

		// Entries
		r.Get("/api/entries", h.getEntries)
		r.Post("/api/entries", h.addEntry)
		r.Post("/api/entries/import", h.importEntries)
		r.Get("/api/entries/{id}", h.getEntry)
		r.Put("/api/entries/{id}", h.updateEntry)
		r.Delete("/api/entries/{id}", h.deleteEntry)

		// Labels
		h.labelRoutes(r, "/api/categories", finlog.LabelCategory)
		h.labelRoutes(r, "/api/sources", finlog.LabelSource)
		h.labelRoutes(r, "/api/tags", finlog.LabelTag)

		// Goals
		r.Get("/api/goals", h.getGoals)
		r.Post("/api/goals", h.addGoal)
		r.Get("/api/goals/progress", h.getGoalProgress)
		r.Delete("/api/goals/{id}", h.deleteGoal)

		// Portfolio snapshots
		r.Get("/api/snapshots", h.getSnapshots)
		r.Post("/api/snapshots", h.recordSnapshot)
		r.Post("/api/snapshots/derive", h.deriveSnapshots)

		// Analytics
		r.Get("/api/analytics", h.getAnalytics)
		r.Get("/api/dashboard", h.getDashboard)
		r.Get("/api/heatmap", h.getHeatmap)
		r.Get("/api/reports", h.getReport)

		// Activity logs
		r.Get("/api/activity-logs", h.getActivityLogs)
	})

	return r
}

type handler struct {
	core     *finlog.Core
	identity IdentityResolver
	logger   *slog.Logger
}

func (h *handler) labelRoutes(r chi.Router, path string, kind finlog.LabelKind) {
	r.Get(path, h.getLabels(kind))
	r.Post(path, h.addLabel(kind))
	r.Delete(path+"/{id}", h.deleteLabel(kind))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if lw, ok := w.(interface{ SetErrorMessage(string) }); ok {
		lw.SetErrorMessage(message)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
