// Package analytics computes the read-only dashboard views over the
// current snapshot: monthly usage, commodity breakdowns, top consumed
// items, KPI cards and the reconciliation queries.
package analytics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstock/labstock/internal/recon"
	"github.com/labstock/labstock/internal/stock"
)

// SnapshotSource provides read access to the live record store.
type SnapshotSource interface {
	Snapshot() *stock.Snapshot
}

// ErrInvalidLimit rejects non-positive limits on top-item queries.
var ErrInvalidLimit = errors.New("analytics: limit must be a positive integer")

// DefaultTopItemsLimit applies when the caller does not pick a limit.
const DefaultTopItemsLimit = 10

// Service coordinates view computation with the cache layer. Views are
// value objects recomputed per query; cache entries are keyed by snapshot
// version so a commit naturally invalidates them.
type Service struct {
	source SnapshotSource
	cache  *Cache
	now    func() time.Time
}

// NewService wires a snapshot source with a cache helper. The cache may be
// nil, in which case every query recomputes.
func NewService(source SnapshotSource, cache *Cache) *Service {
	return &Service{source: source, cache: cache, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Reconcile produces combined balance rows for the given filters.
func (s *Service) Reconcile(ctx context.Context, filter recon.Filter) ([]recon.BalanceRow, error) {
	snap := s.source.Snapshot()
	loader := func(context.Context) (interface{}, error) {
		return recon.Combine(snap.Inventory, snap.Outbound, filter), nil
	}
	var rows []recon.BalanceRow
	key := keyReconcile(snap.Version, filter)
	if err := s.cache.FetchJSON(ctx, key, &rows, loader); err != nil {
		return nil, err
	}
	return rows, nil
}

// ItemSeries returns the twelve-month trend for one item.
func (s *Service) ItemSeries(ctx context.Context, itemNumber string) ([]recon.SeriesPoint, error) {
	snap := s.source.Snapshot()
	loader := func(context.Context) (interface{}, error) {
		return recon.ItemSeries(snap.Inventory, snap.Outbound, itemNumber), nil
	}
	var points []recon.SeriesPoint
	key := buildKey("series", snap.Version, itemNumber)
	if err := s.cache.FetchJSON(ctx, key, &points, loader); err != nil {
		return nil, err
	}
	return points, nil
}

func keyReconcile(version int64, f recon.Filter) string {
	return buildKey("reconcile", version,
		strconv.Itoa(f.Month), f.Commodity, f.Department, f.Account)
}
