package expense

import (
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/labstock/labstock/internal/ingest"
)

// ExpenseColumns are the required columns of an expense export. Names
// match the source system's sheet exactly.
var ExpenseColumns = []string{
	"Created Date", "Month", "Type", "phong_ban", "Commodity",
	"Item Number", "Item", "Quantity", "Price", "Total",
}

// ParseExpenses validates and coerces an expense export. Money cells are
// parsed as exact decimals; bad numeric cells are zeroed and reported as
// diagnostics while a bad month rejects the whole table.
func ParseExpenses(r io.Reader, format ingest.Format) ([]Record, ingest.Diagnostics, error) {
	const table = "expense"
	rows, err := ingest.ReadRows(r, format)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, &ingest.SchemaError{Table: table, Missing: ExpenseColumns}
	}
	h, schemaErr := ingest.BuildHeader(table, rows[0], ExpenseColumns)
	if schemaErr != nil {
		return nil, nil, schemaErr
	}
	records := make([]Record, 0, len(rows)-1)
	var diags ingest.Diagnostics
	for i, row := range rows[1:] {
		rowNum := i + 2
		if ingest.BlankRow(row) {
			continue
		}
		month, err := ingest.NormalizeMonth(h.Cell(row, "Month"))
		if err != nil {
			return nil, nil, &ingest.SchemaError{Table: table, Row: rowNum, Column: "Month", Cause: err.Error()}
		}
		records = append(records, Record{
			CreatedDate: h.Cell(row, "Created Date"),
			Month:       month,
			Type:        h.Cell(row, "Type"),
			Department:  h.Cell(row, "phong_ban"),
			Commodity:   h.Cell(row, "Commodity"),
			ItemNumber:  h.Cell(row, "Item Number"),
			Item:        h.Cell(row, "Item"),
			Quantity:    ingest.NumericCell(h, row, rowNum, "Quantity", &diags),
			Price:       decimalCell(h, row, rowNum, "Price", &diags),
			Total:       decimalCell(h, row, rowNum, "Total", &diags),
		})
	}
	return records, diags, nil
}

// decimalCell parses a money cell as an exact decimal, tolerating
// thousands separators. Failures are zeroed and recorded.
func decimalCell(h ingest.Header, row []string, rowNum int, column string, diags *ingest.Diagnostics) decimal.Decimal {
	raw := h.Cell(row, column)
	if raw == "" {
		*diags = append(*diags, ingest.Diagnostic{Row: rowNum, Column: column, Value: raw})
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		*diags = append(*diags, ingest.Diagnostic{Row: rowNum, Column: column, Value: raw})
		return decimal.Zero
	}
	return d
}
