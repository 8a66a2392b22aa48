package analytichttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the dashboard endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/kpi", h.handleKPI)
	r.Get("/reconciliation", h.handleReconciliation)
	r.Get("/reconciliation/items/{itemNumber}", h.handleItemSeries)
	r.Get("/usage/monthly", h.handleMonthlyUsage)
	r.Get("/commodities", h.handleCommodities)
	r.Get("/items/top", h.handleTopItems)
}

func routeParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
