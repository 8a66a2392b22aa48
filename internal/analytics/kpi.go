package analytics

import (
	"context"
	"strconv"

	"github.com/labstock/labstock/internal/stock"
)

// KPISummary carries the headline cards of the overview dashboard.
type KPISummary struct {
	TotalValue        float64 `json:"totalValue"`
	CurrentMonth      int     `json:"currentMonth"`
	CurrentMonthValue float64 `json:"currentMonthValue"`
	CurrentMonthItems float64 `json:"currentMonthItems"`
	MonthOverMonthPct float64 `json:"monthOverMonthPct"`
	CommodityCount    int     `json:"commodityCount"`
}

// KPISummary resolves the overview cards: total outbound value across all
// months, the calendar-current month's value and item count, the change
// against the latest preceding month with data, and the number of distinct
// commodities.
func (s *Service) KPISummary(ctx context.Context) (KPISummary, error) {
	snap := s.source.Snapshot()
	currentMonth := int(s.now().Month())
	loader := func(context.Context) (interface{}, error) {
		return kpiSummary(snap, currentMonth), nil
	}
	var summary KPISummary
	key := buildKey("kpi", snap.Version, strconv.Itoa(currentMonth))
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return KPISummary{}, err
	}
	return summary, nil
}

func kpiSummary(snap *stock.Snapshot, currentMonth int) KPISummary {
	monthly := monthlyUsage(snap)
	summary := KPISummary{CurrentMonth: currentMonth}

	for _, m := range monthly {
		summary.TotalValue += m.TotalValue
		if m.Month == currentMonth {
			summary.CurrentMonthValue = m.TotalValue
			summary.CurrentMonthItems = m.TotalItems
		}
	}

	if len(monthly) >= 2 {
		last := monthly[len(monthly)-1]
		previous := monthly[len(monthly)-2]
		if previous.TotalValue > 0 {
			summary.MonthOverMonthPct = (last.TotalValue - previous.TotalValue) / previous.TotalValue * 100
		}
	}

	commodities := make(map[string]struct{})
	for _, r := range snap.Outbound {
		commodities[r.Commodity] = struct{}{}
	}
	summary.CommodityCount = len(commodities)
	return summary
}
