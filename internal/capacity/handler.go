package capacity

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/labstock/labstock/internal/platform/httpx"
)

// Handler exposes equipment utilization over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the capacity endpoints to r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/utilization", h.handleUtilization)
	r.Get("/groups", h.handleGroups)
}

func (h *Handler) handleUtilization(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	rows, err := h.service.Utilization(group)
	if err != nil {
		if errors.Is(err, ErrUnknownGroup) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
			return
		}
		h.logger.Error("utilization", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"group": group, "equipment": rows})
}

func (h *Handler) handleGroups(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"groups": h.service.Groups()})
}
