// Package app wires configuration, logging, middleware and routing for
// the labstock HTTP server.
package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	analytichttp "github.com/labstock/labstock/internal/analytics/http"
	"github.com/labstock/labstock/internal/capacity"
	"github.com/labstock/labstock/internal/expense"
	"github.com/labstock/labstock/internal/upload"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AnalyticsHandler *analytichttp.Handler
	UploadHandler    *upload.Handler
	CapacityHandler  *capacity.Handler
	ExpenseHandler   *expense.Handler
}

// NewRouter constructs the chi.Router with labstock defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(r)
		}
		if params.UploadHandler != nil {
			r.Route("/data", params.UploadHandler.MountRoutes)
		}
		if params.CapacityHandler != nil {
			r.Route("/capacity", params.CapacityHandler.MountRoutes)
		}
		if params.ExpenseHandler != nil {
			r.Route("/expenses", params.ExpenseHandler.MountRoutes)
		}
	})

	return r
}
