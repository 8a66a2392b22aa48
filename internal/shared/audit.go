// Package shared holds cross-cutting helpers used by several modules.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UploadAudit records one applied snapshot in upload_audit.
type UploadAudit struct {
	StagingID     string
	Version       int64
	InventoryRows int
	OutboundRows  int
	Warnings      int
	Meta          map[string]any
	At            time.Time
}

// AuditLogger persists snapshot commits. A nil pool disables persistence;
// Record then becomes a no-op so the server runs without Postgres.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the audit entry.
func (l *AuditLogger) Record(ctx context.Context, entry UploadAudit) error {
	if l == nil || l.pool == nil {
		return nil
	}
	if entry.StagingID == "" {
		return errors.New("shared: upload audit requires staging id")
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO upload_audit (staging_id, version, inventory_rows, outbound_rows, warnings, meta, applied_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		entry.StagingID, entry.Version, entry.InventoryRows, entry.OutboundRows, entry.Warnings, metaJSON, entry.At)
	return err
}
