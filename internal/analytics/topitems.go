package analytics

import (
	"context"
	"sort"
	"strconv"

	"github.com/labstock/labstock/internal/stock"
)

// ItemAggregate totals outbound movement for one item. Metadata fields
// carry the first-seen values for the group.
type ItemAggregate struct {
	ItemNumber string  `json:"itemNumber"`
	Item       string  `json:"item"`
	Quantity   float64 `json:"quantity"`
	Total      float64 `json:"total"`
	Commodity  string  `json:"commodity"`
	UOM        string  `json:"uom"`
	Price      float64 `json:"price"`
}

// TopItems returns the most-consumed items by summed outbound quantity,
// truncated to limit. Ties are broken by item number so a smaller limit is
// always a prefix of a larger one. Non-positive limits are rejected.
func (s *Service) TopItems(ctx context.Context, limit, month int) ([]ItemAggregate, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	snap := s.source.Snapshot()
	loader := func(context.Context) (interface{}, error) {
		return topItems(snap.Outbound, limit, month), nil
	}
	var items []ItemAggregate
	key := buildKey("topitems", snap.Version, strconv.Itoa(limit), strconv.Itoa(month))
	if err := s.cache.FetchJSON(ctx, key, &items, loader); err != nil {
		return nil, err
	}
	return items, nil
}

func topItems(outbound []stock.OutboundRecord, limit, month int) []ItemAggregate {
	groups := make(map[string]*ItemAggregate)
	var order []string
	for _, r := range outbound {
		if month != 0 && r.Month != month {
			continue
		}
		g, ok := groups[r.ItemNumber]
		if !ok {
			g = &ItemAggregate{
				ItemNumber: r.ItemNumber,
				Item:       r.Item,
				Commodity:  r.Commodity,
				UOM:        r.UOM,
				Price:      r.Price,
			}
			groups[r.ItemNumber] = g
			order = append(order, r.ItemNumber)
		}
		g.Quantity += r.Quantity
		g.Total += r.Total
	}

	items := make([]ItemAggregate, 0, len(order))
	for _, itemNumber := range order {
		items = append(items, *groups[itemNumber])
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		return items[i].ItemNumber < items[j].ItemNumber
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
