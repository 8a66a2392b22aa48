package expense

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/labstock/labstock/internal/platform/httpx"
)

// Handler exposes the expense summary over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches the expense endpoints to r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
	r.Get("/departments", h.handleDepartments)
}

type summaryQuery struct {
	Month int `validate:"gte=0,lte=12"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var query summaryQuery
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: month must be an integer", httpx.ErrValidation))
			return
		}
		query.Month = month
	}
	if err := h.validate.Struct(query); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	summary, err := h.service.Summary(Filter{
		Department: q.Get("department"),
		Commodity:  q.Get("commodity"),
		Month:      query.Month,
	})
	if err != nil {
		if errors.Is(err, ErrUnknownDepartment) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
			return
		}
		h.logger.Error("expense summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"departments": AllowedDepartments()})
}
