// Package analytichttp exposes the dashboard views as JSON and CSV
// endpoints.
package analytichttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/labstock/labstock/internal/analytics"
	"github.com/labstock/labstock/internal/analytics/export"
	"github.com/labstock/labstock/internal/platform/httpx"
	"github.com/labstock/labstock/internal/recon"
)

// DashboardService defines the view contract used by the handler.
type DashboardService interface {
	Reconcile(ctx context.Context, filter recon.Filter) ([]recon.BalanceRow, error)
	ItemSeries(ctx context.Context, itemNumber string) ([]recon.SeriesPoint, error)
	MonthlyUsage(ctx context.Context) ([]analytics.MonthlySummary, error)
	CommodityBreakdownByMonth(ctx context.Context, month int) ([]analytics.CommodityBreakdown, error)
	TopItems(ctx context.Context, limit, month int) ([]analytics.ItemAggregate, error)
	KPISummary(ctx context.Context) (analytics.KPISummary, error)
}

// Handler coordinates HTTP requests for the consumables dashboards.
type Handler struct {
	logger   *slog.Logger
	service  DashboardService
	validate *validator.Validate
	csvPool  sync.Pool
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	h := &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

type viewQuery struct {
	Month  int `validate:"gte=0,lte=12"`
	Limit  int `validate:"gte=0"`
	Format string
}

func (h *Handler) parseViewQuery(r *http.Request) (viewQuery, error) {
	q := r.URL.Query()
	query := viewQuery{Format: q.Get("format")}
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: month must be an integer", httpx.ErrValidation)
		}
		query.Month = month
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, fmt.Errorf("%w: limit must be an integer", httpx.ErrValidation)
		}
		query.Limit = limit
	}
	if err := h.validate.Struct(query); err != nil {
		return query, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	return query, nil
}

func (h *Handler) handleReconciliation(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseViewQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	filter := recon.Filter{
		Month:      query.Month,
		Commodity:  q.Get("commodity"),
		Department: q.Get("department"),
		Account:    q.Get("account"),
	}
	rows, err := h.service.Reconcile(r.Context(), filter)
	if err != nil {
		h.serverError(w, "reconcile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows, "count": len(rows)})
}

func (h *Handler) handleItemSeries(w http.ResponseWriter, r *http.Request) {
	itemNumber := routeParam(r, "itemNumber")
	if itemNumber == "" {
		httpx.RespondError(w, fmt.Errorf("%w: item number required", httpx.ErrValidation))
		return
	}
	points, err := h.service.ItemSeries(r.Context(), itemNumber)
	if err != nil {
		h.serverError(w, "item series", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"itemNumber": itemNumber, "months": points})
}

func (h *Handler) handleMonthlyUsage(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseViewQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summaries, err := h.service.MonthlyUsage(r.Context())
	if err != nil {
		h.serverError(w, "monthly usage", err)
		return
	}
	if query.Format == "csv" {
		h.respondCSV(w, "monthly_usage.csv", func(buf *bytes.Buffer) error {
			return export.WriteMonthlyUsageCSV(buf, summaries)
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"months": summaries})
}

func (h *Handler) handleCommodities(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseViewQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	breakdown, err := h.service.CommodityBreakdownByMonth(r.Context(), query.Month)
	if err != nil {
		h.serverError(w, "commodity breakdown", err)
		return
	}
	if query.Format == "csv" {
		h.respondCSV(w, "commodities.csv", func(buf *bytes.Buffer) error {
			return export.WriteCommodityCSV(buf, breakdown)
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"commodities": breakdown})
}

func (h *Handler) handleTopItems(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseViewQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	limit := query.Limit
	if limit == 0 {
		limit = analytics.DefaultTopItemsLimit
	}
	items, err := h.service.TopItems(r.Context(), limit, query.Month)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidLimit) {
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
			return
		}
		h.serverError(w, "top items", err)
		return
	}
	if query.Format == "csv" {
		h.respondCSV(w, "top_items.csv", func(buf *bytes.Buffer) error {
			return export.WriteTopItemsCSV(buf, items)
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleKPI(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.KPISummary(r.Context())
	if err != nil {
		h.serverError(w, "kpi summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

type dashboardPayload struct {
	KPI         analytics.KPISummary           `json:"kpi"`
	Months      []analytics.MonthlySummary     `json:"months"`
	Commodities []analytics.CommodityBreakdown `json:"commodities"`
	TopItems    []analytics.ItemAggregate      `json:"topItems"`
}

// handleDashboard aggregates the overview page in one response, loading
// the independent views concurrently.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var payload dashboardPayload
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		kpi, err := h.service.KPISummary(ctx)
		if err != nil {
			return err
		}
		payload.KPI = kpi
		return nil
	})
	g.Go(func() error {
		months, err := h.service.MonthlyUsage(ctx)
		if err != nil {
			return err
		}
		payload.Months = months
		return nil
	})
	g.Go(func() error {
		commodities, err := h.service.CommodityBreakdownByMonth(ctx, 0)
		if err != nil {
			return err
		}
		payload.Commodities = commodities
		return nil
	})
	g.Go(func() error {
		items, err := h.service.TopItems(ctx, analytics.DefaultTopItemsLimit, 0)
		if err != nil {
			return err
		}
		payload.TopItems = items
		return nil
	})
	if err := g.Wait(); err != nil {
		h.serverError(w, "dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *Handler) respondCSV(w http.ResponseWriter, filename string, write func(*bytes.Buffer) error) {
	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)

	if err := write(buf); err != nil {
		h.serverError(w, "write csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
