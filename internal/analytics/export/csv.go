// Package export serialises analytics views for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/labstock/labstock/internal/analytics"
)

// Amounts are displayed with Vietnamese digit grouping next to the raw
// value, matching the currency convention of the source files.
var vnPrinter = message.NewPrinter(language.Vietnamese)

// WriteMonthlyUsageCSV emits the per-month outbound totals as CSV.
func WriteMonthlyUsageCSV(w io.Writer, summaries []analytics.MonthlySummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Total Items", "Total Value", "Total Value (VND)"}); err != nil {
		return err
	}
	for _, s := range summaries {
		if err := writer.Write([]string{
			strconv.Itoa(s.Month),
			formatFloat(s.TotalItems),
			formatFloat(s.TotalValue),
			formatVND(s.TotalValue),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCommodityCSV emits the commodity breakdown as CSV.
func WriteCommodityCSV(w io.Writer, breakdown []analytics.CommodityBreakdown) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Commodity", "Count", "Value", "Value (VND)", "Percentage"}); err != nil {
		return err
	}
	for _, b := range breakdown {
		if err := writer.Write([]string{
			b.Name,
			formatFloat(b.Count),
			formatFloat(b.Value),
			formatVND(b.Value),
			strconv.FormatFloat(b.Percentage, 'f', 1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopItemsCSV emits the top consumed items as CSV.
func WriteTopItemsCSV(w io.Writer, items []analytics.ItemAggregate) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Item Number", "Item", "Quantity", "UOM", "Total", "Total (VND)", "Commodity"}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.ItemNumber,
			item.Item,
			formatFloat(item.Quantity),
			item.UOM,
			formatFloat(item.Total),
			formatVND(item.Total),
			item.Commodity,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatVND(v float64) string {
	return vnPrinter.Sprintf("%.0f ₫", v)
}
