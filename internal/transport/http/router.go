// Package httptransport composes the HTTP surface. Handlers register
// themselves; this file only wires middleware and operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carepath/internal/platform/middleware"
	"carepath/internal/transport/http/shared"
)

// Registrar is implemented by feature handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// NewRouter builds the full router: platform middleware, feature routes, and
// the operational endpoints.
func NewRouter(logger *slog.Logger, checks map[string]HealthChecker, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealth(checks))

	return r
}

func handleHealth(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		shared.WriteJSON(w, status, body)
	}
}
