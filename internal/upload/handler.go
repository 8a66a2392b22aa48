// Package upload implements the two-stage upload-and-apply workflow over
// the record store.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/labstock/labstock/internal/ingest"
	"github.com/labstock/labstock/internal/platform/httpx"
	"github.com/labstock/labstock/internal/shared"
	"github.com/labstock/labstock/internal/stock"
)

// WarmupEnqueuer schedules cache warmup after a snapshot commit.
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, version int64) error
}

// Handler wires the staged upload workflow: each table is parsed and
// validated independently into the staging area, and an explicit apply
// swaps the live snapshot only when both tables passed.
type Handler struct {
	logger   *slog.Logger
	store    *stock.Store
	audit    *shared.AuditLogger
	warmup   WarmupEnqueuer
	maxBytes int64
}

// NewHandler constructs the upload handler. audit and warmup may be nil.
func NewHandler(logger *slog.Logger, store *stock.Store, audit *shared.AuditLogger, warmup WarmupEnqueuer, maxBytes int64) *Handler {
	return &Handler{logger: logger, store: store, audit: audit, warmup: warmup, maxBytes: maxBytes}
}

// MountRoutes registers the upload endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/inventory", h.handleUploadInventory)
	r.Post("/outbound", h.handleUploadOutbound)
	r.Post("/apply", h.handleApply)
	r.Get("/staging/{stagingID}", h.handleStagingState)
}

type uploadResponse struct {
	StagingID   string             `json:"stagingId"`
	Table       stock.TableKind    `json:"table"`
	Rows        int                `json:"rows"`
	Diagnostics ingest.Diagnostics `json:"diagnostics"`
}

func (h *Handler) handleUploadInventory(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, stock.TableInventory)
}

func (h *Handler) handleUploadOutbound(w http.ResponseWriter, r *http.Request) {
	h.handleUpload(w, r, stock.TableOutbound)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, table stock.TableKind) {
	file, format, stagingID, err := h.openUpload(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	defer func() { _ = file.Close() }()

	var (
		rows  int
		diags ingest.Diagnostics
	)
	switch table {
	case stock.TableInventory:
		records, d, parseErr := ingest.ParseInventory(file, format)
		if parseErr != nil {
			h.respondParseError(w, table, parseErr)
			return
		}
		stagingID = h.store.StageInventory(stagingID, records)
		rows, diags = len(records), d
	case stock.TableOutbound:
		records, d, parseErr := ingest.ParseOutbound(file, format)
		if parseErr != nil {
			h.respondParseError(w, table, parseErr)
			return
		}
		stagingID = h.store.StageOutbound(stagingID, records)
		rows, diags = len(records), d
	default:
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, stock.ErrUnknownTable))
		return
	}

	if len(diags) > 0 {
		h.logger.Warn("numeric coercion warnings",
			slog.String("table", string(table)),
			slog.String("staging_id", stagingID.String()),
			slog.Int("count", len(diags)))
	}
	httpx.JSON(w, http.StatusOK, uploadResponse{
		StagingID:   stagingID.String(),
		Table:       table,
		Rows:        rows,
		Diagnostics: diags,
	})
}

func (h *Handler) openUpload(r *http.Request) (multipart.File, ingest.Format, uuid.UUID, error) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(nil, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		return nil, "", uuid.Nil, fmt.Errorf("%w: %s", httpx.ErrTooLarge, err.Error())
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", uuid.Nil, fmt.Errorf("%w: file field required", httpx.ErrValidation)
	}
	format, err := ingest.DetectFormat(header.Filename)
	if err != nil {
		_ = file.Close()
		return nil, "", uuid.Nil, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error())
	}
	stagingID := uuid.Nil
	if raw := r.FormValue("stagingId"); raw != "" {
		stagingID, err = uuid.Parse(raw)
		if err != nil {
			_ = file.Close()
			return nil, "", uuid.Nil, fmt.Errorf("%w: invalid staging id", httpx.ErrValidation)
		}
	}
	return file, format, stagingID, nil
}

func (h *Handler) respondParseError(w http.ResponseWriter, table stock.TableKind, err error) {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		h.logger.Warn("upload rejected",
			slog.String("table", string(table)),
			slog.String("reason", schemaErr.Error()))
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, schemaErr.Error()))
		return
	}
	h.logger.Error("upload parse failed", slog.String("table", string(table)), slog.Any("error", err))
	httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
}

type applyRequest struct {
	StagingID string `json:"stagingId"`
}

type applyResponse struct {
	Version       int64 `json:"version"`
	InventoryRows int   `json:"inventoryRows"`
	OutboundRows  int   `json:"outboundRows"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	stagingID, err := uuid.Parse(req.StagingID)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid staging id", httpx.ErrValidation))
		return
	}

	version, err := h.store.Commit(stagingID)
	if err != nil {
		switch {
		case errors.Is(err, stock.ErrStagingNotFound):
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
		case errors.Is(err, stock.ErrStagingIncomplete):
			httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrConflict, err.Error()))
		default:
			h.logger.Error("apply failed", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}

	snap := h.store.Snapshot()
	h.logger.Info("snapshot applied",
		slog.Int64("version", version),
		slog.Int("inventory_rows", len(snap.Inventory)),
		slog.Int("outbound_rows", len(snap.Outbound)))

	if h.audit != nil {
		if err := h.audit.Record(r.Context(), shared.UploadAudit{
			StagingID:     stagingID.String(),
			Version:       version,
			InventoryRows: len(snap.Inventory),
			OutboundRows:  len(snap.Outbound),
		}); err != nil {
			h.logger.Warn("record upload audit", slog.Any("error", err))
		}
	}
	if h.warmup != nil {
		if err := h.warmup.EnqueueWarmup(r.Context(), version); err != nil {
			h.logger.Warn("enqueue cache warmup", slog.Any("error", err))
		}
	}

	httpx.JSON(w, http.StatusOK, applyResponse{
		Version:       version,
		InventoryRows: len(snap.Inventory),
		OutboundRows:  len(snap.Outbound),
	})
}

func (h *Handler) handleStagingState(w http.ResponseWriter, r *http.Request) {
	stagingID, err := uuid.Parse(chi.URLParam(r, "stagingID"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid staging id", httpx.ErrValidation))
		return
	}
	hasInv, hasOut, err := h.store.StagedState(stagingID)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"stagingId":    stagingID.String(),
		"hasInventory": hasInv,
		"hasOutbound":  hasOut,
		"readyToApply": hasInv && hasOut,
	})
}
