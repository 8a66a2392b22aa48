package analytics

import (
	"context"
	"sort"
	"strconv"

	"github.com/labstock/labstock/internal/stock"
)

// CommodityBreakdown aggregates outbound movement for one commodity.
// Percentage is the commodity's share of total value across the filtered
// table, zero when the grand total is zero.
type CommodityBreakdown struct {
	Name       string  `json:"name"`
	Count      float64 `json:"count"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// CommodityBreakdownByMonth groups the outbound table by commodity. A zero
// month means no month filter. Results are sorted by value descending with
// name as the stable tiebreak.
func (s *Service) CommodityBreakdownByMonth(ctx context.Context, month int) ([]CommodityBreakdown, error) {
	snap := s.source.Snapshot()
	loader := func(context.Context) (interface{}, error) {
		return commodityBreakdown(snap.Outbound, month), nil
	}
	var breakdown []CommodityBreakdown
	key := buildKey("commodities", snap.Version, strconv.Itoa(month))
	if err := s.cache.FetchJSON(ctx, key, &breakdown, loader); err != nil {
		return nil, err
	}
	return breakdown, nil
}

func commodityBreakdown(outbound []stock.OutboundRecord, month int) []CommodityBreakdown {
	groups := make(map[string]*CommodityBreakdown)
	var order []string
	var totalValue float64
	for _, r := range outbound {
		if month != 0 && r.Month != month {
			continue
		}
		g, ok := groups[r.Commodity]
		if !ok {
			g = &CommodityBreakdown{Name: r.Commodity}
			groups[r.Commodity] = g
			order = append(order, r.Commodity)
		}
		g.Count += r.Quantity
		g.Value += r.Total
		totalValue += r.Total
	}

	breakdown := make([]CommodityBreakdown, 0, len(order))
	for _, name := range order {
		g := groups[name]
		if totalValue > 0 {
			g.Percentage = g.Value / totalValue * 100
		}
		breakdown = append(breakdown, *g)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Value != breakdown[j].Value {
			return breakdown[i].Value > breakdown[j].Value
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}
