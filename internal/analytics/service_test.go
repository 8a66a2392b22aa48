package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/labstock/labstock/internal/recon"
	"github.com/labstock/labstock/internal/stock"
)

type fixedSource struct {
	snap *stock.Snapshot
}

func (s *fixedSource) Snapshot() *stock.Snapshot { return s.snap }

func outRecord(item, commodity string, month int, qty, total float64) stock.OutboundRecord {
	return stock.OutboundRecord{
		Month:      month,
		Account:    "6421",
		ItemNumber: item,
		Item:       "Item " + item,
		Quantity:   qty,
		UOM:        "pcs",
		Price:      total / qty,
		Total:      total,
		Currency:   "VND",
		Commodity:  commodity,
	}
}

func newTestService(t *testing.T, snap *stock.Snapshot) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(&fixedSource{snap: snap}, NewCache(client, time.Minute))
}

func TestMonthlyUsage(t *testing.T) {
	snap := &stock.Snapshot{
		Version: 1,
		Inventory: []stock.InventoryRecord{
			{Month: 2, ItemNumber: "A-1", Quantity: 5},
		},
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 20),
			outRecord("B-2", "Glassware", 1, 1, 30),
			outRecord("A-1", "Plastics", 3, 4, 40),
		},
	}
	svc := newTestService(t, snap)

	months, err := svc.MonthlyUsage(context.Background())
	require.NoError(t, err)
	require.Len(t, months, 3)

	require.Equal(t, 1, months[0].Month)
	require.InDelta(t, 3, months[0].TotalItems, 1e-9)
	require.InDelta(t, 50, months[0].TotalValue, 1e-9)

	// Month 2 appears only in inventory and totals zero.
	require.Equal(t, 2, months[1].Month)
	require.InDelta(t, 0, months[1].TotalItems, 1e-9)
	require.InDelta(t, 0, months[1].TotalValue, 1e-9)

	require.Equal(t, 3, months[2].Month)
	require.InDelta(t, 40, months[2].TotalValue, 1e-9)
}

func TestCommodityBreakdownPercentages(t *testing.T) {
	snap := &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 70),
			outRecord("B-2", "Glassware", 1, 1, 30),
		},
	}
	svc := newTestService(t, snap)

	breakdown, err := svc.CommodityBreakdownByMonth(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	require.Equal(t, "Plastics", breakdown[0].Name)
	require.InDelta(t, 70, breakdown[0].Percentage, 1e-9)
	require.Equal(t, "Glassware", breakdown[1].Name)
	require.InDelta(t, 30, breakdown[1].Percentage, 1e-9)

	var sum float64
	for _, b := range breakdown {
		sum += b.Percentage
	}
	require.InDelta(t, 100, sum, 1e-9)
}

func TestCommodityBreakdownZeroTotal(t *testing.T) {
	snap := &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 0),
		},
	}
	svc := newTestService(t, snap)

	breakdown, err := svc.CommodityBreakdownByMonth(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, breakdown, 1)
	require.InDelta(t, 0, breakdown[0].Percentage, 1e-9)
}

func TestTopItems(t *testing.T) {
	snap := &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 20),
			outRecord("A-1", "Plastics", 2, 3, 30),
			outRecord("B-2", "Glassware", 1, 4, 40),
			outRecord("C-3", "Reagents", 1, 5, 50),
		},
	}
	svc := newTestService(t, snap)

	items, err := svc.TopItems(context.Background(), 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "A-1", items[0].ItemNumber)
	require.InDelta(t, 5, items[0].Quantity, 1e-9)
	require.Equal(t, "C-3", items[1].ItemNumber)

	// A smaller limit is a prefix of a larger one.
	all, err := svc.TopItems(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, items, all[:2])
}

func TestTopItemsInvalidLimit(t *testing.T) {
	svc := newTestService(t, &stock.Snapshot{Version: 1})

	_, err := svc.TopItems(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
	_, err = svc.TopItems(context.Background(), -3, 0)
	require.ErrorIs(t, err, ErrInvalidLimit)
}

func TestKPISummary(t *testing.T) {
	snap := &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 100),
			outRecord("B-2", "Glassware", 2, 1, 150),
		},
	}
	svc := newTestService(t, snap)
	svc.WithNow(func() time.Time {
		return time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	})

	summary, err := svc.KPISummary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 250, summary.TotalValue, 1e-9)
	require.Equal(t, 2, summary.CurrentMonth)
	require.InDelta(t, 150, summary.CurrentMonthValue, 1e-9)
	require.InDelta(t, 1, summary.CurrentMonthItems, 1e-9)
	require.InDelta(t, 50, summary.MonthOverMonthPct, 1e-9)
	require.Equal(t, 2, summary.CommodityCount)
}

func TestReconcileUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &fixedSource{snap: &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 20),
		},
	}}
	svc := NewService(source, NewCache(client, time.Minute))

	ctx := context.Background()
	first, err := svc.Reconcile(ctx, recon.Filter{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Mutating the snapshot without bumping the version serves the
	// cached result.
	source.snap.Outbound = append(source.snap.Outbound, outRecord("B-2", "Glassware", 1, 1, 10))
	cached, err := svc.Reconcile(ctx, recon.Filter{})
	require.NoError(t, err)
	require.Equal(t, first, cached)

	// A version bump misses the cache and recomputes.
	source.snap = &stock.Snapshot{
		Version:  2,
		Outbound: source.snap.Outbound,
	}
	fresh, err := svc.Reconcile(ctx, recon.Filter{})
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}

func TestServiceWithoutRedis(t *testing.T) {
	source := &fixedSource{snap: &stock.Snapshot{
		Version: 1,
		Outbound: []stock.OutboundRecord{
			outRecord("A-1", "Plastics", 1, 2, 20),
		},
	}}
	svc := NewService(source, NewCache(nil, time.Minute))

	rows, err := svc.Reconcile(context.Background(), recon.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
