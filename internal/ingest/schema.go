// Package ingest validates and type-coerces uploaded tabular data before it
// may enter the record store.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
)

// Required column sets for the two wire formats. Column names are part of
// the file contract and matched exactly.
var (
	InventoryColumns = []string{"month", "itemNumber", "item", "phongBan", "quantity", "uom", "price", "total", "commodity"}
	OutboundColumns  = []string{"month", "account", "itemNumber", "item", "quantity", "uom", "price", "total", "currency", "receiver", "commodity"}
)

// SchemaError rejects a whole table: required columns are missing or a
// month value could not be normalised. Nothing from the table is applied.
type SchemaError struct {
	Table   string
	Missing []string
	Row     int
	Column  string
	Cause   string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("ingest: %s table missing columns: %s", e.Table, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("ingest: %s table row %d column %q: %s", e.Table, e.Row, e.Column, e.Cause)
}

// Diagnostic records one non-fatal coercion failure. The offending value
// was replaced by zero, matching the lenient policy of the file contract.
type Diagnostic struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Diagnostics accumulates coercion warnings for one parsed table.
type Diagnostics []Diagnostic

func (d Diagnostics) String() string {
	if len(d) == 0 {
		return "no coercion warnings"
	}
	return strconv.Itoa(len(d)) + " value(s) failed numeric coercion and were zeroed"
}

type Header map[string]int

// BuildHeader maps column names to indices and reports missing columns.
func BuildHeader(table string, row []string, required []string) (Header, *SchemaError) {
	idx := make(Header, len(row))
	for i, name := range row {
		idx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: table, Missing: missing}
	}
	return idx, nil
}

func (h Header) Cell(row []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// coerceFloat parses a numeric cell, tolerating thousands separators. The
// second return reports whether the original value parsed cleanly.
func coerceFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	cleaned := strings.ReplaceAll(value, ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumericCell coerces one cell and appends a diagnostic on failure.
func NumericCell(h Header, row []string, rowNum int, column string, diags *Diagnostics) float64 {
	raw := h.Cell(row, column)
	f, ok := coerceFloat(raw)
	if !ok {
		*diags = append(*diags, Diagnostic{Row: rowNum, Column: column, Value: raw})
	}
	return f
}
