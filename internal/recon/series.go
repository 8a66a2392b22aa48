package recon

import "github.com/labstock/labstock/internal/stock"

// SeriesPoint is one month of the per-item trend.
type SeriesPoint struct {
	Month    int     `json:"month"`
	InStock  float64 `json:"inStock"`
	Outbound float64 `json:"outbound"`
	Balance  float64 `json:"balance"`
}

// ItemSeries builds the twelve-month stock/usage trend for a single item.
// Every month is present in the result, including months with no activity.
func ItemSeries(inventory []stock.InventoryRecord, outbound []stock.OutboundRecord, itemNumber string) []SeriesPoint {
	points := make([]SeriesPoint, 0, 12)
	for month := 1; month <= 12; month++ {
		var inStock, out float64
		for _, r := range inventory {
			if r.ItemNumber == itemNumber && r.Month == month {
				inStock += r.Quantity
			}
		}
		for _, r := range outbound {
			if r.ItemNumber == itemNumber && r.Month == month {
				out += r.Quantity
			}
		}
		points = append(points, SeriesPoint{
			Month:    month,
			InStock:  inStock,
			Outbound: out,
			Balance:  inStock - out,
		})
	}
	return points
}
