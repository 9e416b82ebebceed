package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizrecords/internal/config"
	"bizrecords/internal/handler"
	"bizrecords/internal/middleware"
)

type Handlers struct {
	Trash  *handler.TrashHandler
	Audit  *handler.AuditHandler
	Events http.Handler
}

// HealthCheck reports whether backing stores are reachable.
type HealthCheck func(ctx context.Context) error

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.RateLimitWriteRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	editors := []string{middleware.RoleEditor, middleware.RoleAdmin}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(authMiddleware.RequireAuth)

		// long-lived; must stay outside the request timeout
		api.Get("/ws", h.Events.ServeHTTP)

		api.Group(func(timed chi.Router) {
			timed.Use(middleware.Timeout(cfg.RequestTimeout))

			timed.Get("/trash", h.Trash.List)
			timed.Get("/trash/{id}", h.Trash.Get)
			timed.With(authMiddleware.RequireRoles(editors...)).Post("/trash", h.Trash.Move)
			timed.With(authMiddleware.RequireRoles(editors...)).Post("/trash/{id}/restore", h.Trash.Restore)
			timed.With(authMiddleware.RequireRoles(editors...)).Delete("/trash/{id}", h.Trash.Delete)
			timed.With(authMiddleware.RequireRoles(middleware.RoleAdmin)).Delete("/trash", h.Trash.PurgeAll)
			timed.With(authMiddleware.RequireRoles(middleware.RoleAdmin)).Get("/audit", h.Audit.List)
		})
	})

	return r
}
