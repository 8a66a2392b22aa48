package analytics

import (
	"context"
	"sort"

	"github.com/labstock/labstock/internal/stock"
)

// MonthlySummary totals outbound movement for one month.
type MonthlySummary struct {
	Month      int     `json:"month"`
	TotalItems float64 `json:"totalItems"`
	TotalValue float64 `json:"totalValue"`
}

// MonthlyUsage sums outbound quantity and value per month, ascending.
// A month counts as present when either table mentions it, so a month with
// inventory but no withdrawals still shows up with zero totals.
func (s *Service) MonthlyUsage(ctx context.Context) ([]MonthlySummary, error) {
	snap := s.source.Snapshot()
	loader := func(context.Context) (interface{}, error) {
		return monthlyUsage(snap), nil
	}
	var summaries []MonthlySummary
	key := buildKey("usage", snap.Version)
	if err := s.cache.FetchJSON(ctx, key, &summaries, loader); err != nil {
		return nil, err
	}
	return summaries, nil
}

func monthlyUsage(snap *stock.Snapshot) []MonthlySummary {
	months := make(map[int]struct{})
	for _, r := range snap.Inventory {
		months[r.Month] = struct{}{}
	}
	totals := make(map[int]*MonthlySummary)
	for _, r := range snap.Outbound {
		months[r.Month] = struct{}{}
		t, ok := totals[r.Month]
		if !ok {
			t = &MonthlySummary{Month: r.Month}
			totals[r.Month] = t
		}
		t.TotalItems += r.Quantity
		t.TotalValue += r.Total
	}

	summaries := make([]MonthlySummary, 0, len(months))
	for month := range months {
		if t, ok := totals[month]; ok {
			summaries = append(summaries, *t)
			continue
		}
		summaries = append(summaries, MonthlySummary{Month: month})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Month < summaries[j].Month })
	return summaries
}
