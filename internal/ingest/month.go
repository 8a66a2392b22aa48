package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted for the month column, tried in order. The contract
// allows any value parseable as a date or as a bare integer string.
var monthLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

// NormalizeMonth converts a raw month cell into an integer in [1,12].
// Date parsing is attempted first; the month component is extracted from
// whichever layout matches. Bare integers are accepted as-is but must stay
// inside the calendar range.
func NormalizeMonth(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty month value")
	}
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return int(t.Month()), nil
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		if f, ferr := strconv.ParseFloat(value, 64); ferr == nil && f == float64(int(f)) {
			n = int(f)
		} else {
			return 0, fmt.Errorf("value %q is neither a date nor an integer", value)
		}
	}
	if n < 1 || n > 12 {
		return 0, fmt.Errorf("month %d out of range 1..12", n)
	}
	return n, nil
}

func monthCell(table string, h Header, row []string, rowNum int) (int, *SchemaError) {
	raw := h.Cell(row, "month")
	m, err := NormalizeMonth(raw)
	if err != nil {
		return 0, &SchemaError{Table: table, Row: rowNum, Column: "month", Cause: err.Error()}
	}
	return m, nil
}
