// Package recon reconciles the inventory and outbound tables into a
// combined monthly balance view. All functions are pure over an immutable
// snapshot and therefore safe for concurrent readers.
package recon

import (
	"github.com/labstock/labstock/internal/stock"
)

// Filter narrows both tables before reconciliation. Zero values mean "no
// filter". Department applies only to inventory and Account only to
// outbound: each tag exists on just one side of the schema.
type Filter struct {
	Month      int
	Commodity  string
	Department string
	Account    string
}

// BalanceRow is the combined view for one (itemNumber, month) pair. At most
// one row per pair is produced for a single invocation.
type BalanceRow struct {
	ItemNumber   string  `json:"itemNumber"`
	Item         string  `json:"item"`
	Month        int     `json:"month"`
	InStock      float64 `json:"inStock"`
	Outbound     float64 `json:"outbound"`
	Balance      float64 `json:"balance"`
	UOM          string  `json:"uom"`
	Commodity    string  `json:"commodity"`
	AveragePrice float64 `json:"averagePrice"`
}

// Combine joins the filtered tables by item and month. Items and months
// are visited in first-appearance order (inventory before outbound), which
// keeps repeated invocations over an unchanged snapshot identical.
func Combine(inventory []stock.InventoryRecord, outbound []stock.OutboundRecord, filter Filter) []BalanceRow {
	inv := filterInventory(inventory, filter)
	out := filterOutbound(outbound, filter)
	if len(inv) == 0 && len(out) == 0 {
		return nil
	}

	invByItem := make(map[string][]stock.InventoryRecord)
	outByItem := make(map[string][]stock.OutboundRecord)
	var items []string
	seen := make(map[string]struct{})

	for _, r := range inv {
		if _, ok := seen[r.ItemNumber]; !ok {
			seen[r.ItemNumber] = struct{}{}
			items = append(items, r.ItemNumber)
		}
		invByItem[r.ItemNumber] = append(invByItem[r.ItemNumber], r)
	}
	for _, r := range out {
		if _, ok := seen[r.ItemNumber]; !ok {
			seen[r.ItemNumber] = struct{}{}
			items = append(items, r.ItemNumber)
		}
		outByItem[r.ItemNumber] = append(outByItem[r.ItemNumber], r)
	}

	rows := make([]BalanceRow, 0, len(items))
	for _, item := range items {
		invRows := invByItem[item]
		outRows := outByItem[item]

		var months []int
		monthSeen := make(map[int]struct{})
		for _, r := range invRows {
			if _, ok := monthSeen[r.Month]; !ok {
				monthSeen[r.Month] = struct{}{}
				months = append(months, r.Month)
			}
		}
		for _, r := range outRows {
			if _, ok := monthSeen[r.Month]; !ok {
				monthSeen[r.Month] = struct{}{}
				months = append(months, r.Month)
			}
		}

		for _, month := range months {
			row, ok := combinePair(item, month, invRows, outRows)
			if ok {
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func combinePair(item string, month int, invRows []stock.InventoryRecord, outRows []stock.OutboundRecord) (BalanceRow, bool) {
	var (
		inStock, invTotal float64
		outQty            float64
		haveInv, haveOut  bool
		firstInv          stock.InventoryRecord
		firstOut          stock.OutboundRecord
	)
	for _, r := range invRows {
		if r.Month != month {
			continue
		}
		if !haveInv {
			haveInv = true
			firstInv = r
		}
		inStock += r.Quantity
		invTotal += r.Total
	}
	for _, r := range outRows {
		if r.Month != month {
			continue
		}
		if !haveOut {
			haveOut = true
			firstOut = r
		}
		outQty += r.Quantity
	}

	// Months come from the union of both tables, so at least one side has rows.
	if !haveInv && !haveOut {
		return BalanceRow{}, false
	}

	var avgPrice float64
	switch {
	case haveInv:
		if inStock > 0 {
			avgPrice = invTotal / inStock
		}
	case haveOut:
		avgPrice = firstOut.Price
	}

	row := BalanceRow{
		ItemNumber:   item,
		Month:        month,
		InStock:      inStock,
		Outbound:     outQty,
		Balance:      inStock - outQty,
		AveragePrice: avgPrice,
	}
	if haveInv {
		row.Item = firstInv.Item
		row.UOM = firstInv.UOM
		row.Commodity = firstInv.Commodity
	} else {
		row.Item = firstOut.Item
		row.UOM = firstOut.UOM
		row.Commodity = firstOut.Commodity
	}
	return row, true
}

func filterInventory(records []stock.InventoryRecord, f Filter) []stock.InventoryRecord {
	if f == (Filter{}) {
		return records
	}
	out := make([]stock.InventoryRecord, 0, len(records))
	for _, r := range records {
		if f.Month != 0 && r.Month != f.Month {
			continue
		}
		if f.Commodity != "" && r.Commodity != f.Commodity {
			continue
		}
		if f.Department != "" && r.Department != f.Department {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterOutbound(records []stock.OutboundRecord, f Filter) []stock.OutboundRecord {
	if f == (Filter{}) {
		return records
	}
	out := make([]stock.OutboundRecord, 0, len(records))
	for _, r := range records {
		if f.Month != 0 && r.Month != f.Month {
			continue
		}
		if f.Commodity != "" && r.Commodity != f.Commodity {
			continue
		}
		if f.Account != "" && r.Account != f.Account {
			continue
		}
		out = append(out, r)
	}
	return out
}
