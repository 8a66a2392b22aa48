package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/labstock/labstock/internal/stock"
)

// Format identifies a supported upload file format.
type Format string

const (
	// FormatCSV is delimited text with a header row.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook; the first sheet is read.
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat rejects uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// DetectFormat derives the format from a file name extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// ParseInventory validates and coerces an inventory table. A SchemaError
// rejects the whole table; coercion failures on quantity/price/total are
// zeroed and reported through the returned diagnostics instead.
func ParseInventory(r io.Reader, format Format) ([]stock.InventoryRecord, Diagnostics, error) {
	rows, err := ReadRows(r, format)
	if err != nil {
		return nil, nil, err
	}
	return decodeInventory(rows)
}

// ParseOutbound validates and coerces an outbound table.
func ParseOutbound(r io.Reader, format Format) ([]stock.OutboundRecord, Diagnostics, error) {
	rows, err := ReadRows(r, format)
	if err != nil {
		return nil, nil, err
	}
	return decodeOutbound(rows)
}

// ReadRows decodes the raw cell grid for any supported format.
func ReadRows(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ingest: read csv: %w", err)
	}
	return rows, nil
}

func decodeInventory(rows [][]string) ([]stock.InventoryRecord, Diagnostics, error) {
	const table = "inventory"
	if len(rows) == 0 {
		return nil, nil, &SchemaError{Table: table, Missing: InventoryColumns}
	}
	h, schemaErr := BuildHeader(table, rows[0], InventoryColumns)
	if schemaErr != nil {
		return nil, nil, schemaErr
	}
	records := make([]stock.InventoryRecord, 0, len(rows)-1)
	var diags Diagnostics
	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, counting the header
		if BlankRow(row) {
			continue
		}
		month, schemaErr := monthCell(table, h, row, rowNum)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}
		records = append(records, stock.InventoryRecord{
			Month:      month,
			ItemNumber: h.Cell(row, "itemNumber"),
			Item:       h.Cell(row, "item"),
			Department: h.Cell(row, "phongBan"),
			Quantity:   NumericCell(h, row, rowNum, "quantity", &diags),
			UOM:        h.Cell(row, "uom"),
			Price:      NumericCell(h, row, rowNum, "price", &diags),
			Total:      NumericCell(h, row, rowNum, "total", &diags),
			Commodity:  h.Cell(row, "commodity"),
		})
	}
	return records, diags, nil
}

func decodeOutbound(rows [][]string) ([]stock.OutboundRecord, Diagnostics, error) {
	const table = "outbound"
	if len(rows) == 0 {
		return nil, nil, &SchemaError{Table: table, Missing: OutboundColumns}
	}
	h, schemaErr := BuildHeader(table, rows[0], OutboundColumns)
	if schemaErr != nil {
		return nil, nil, schemaErr
	}
	records := make([]stock.OutboundRecord, 0, len(rows)-1)
	var diags Diagnostics
	for i, row := range rows[1:] {
		rowNum := i + 2
		if BlankRow(row) {
			continue
		}
		month, schemaErr := monthCell(table, h, row, rowNum)
		if schemaErr != nil {
			return nil, nil, schemaErr
		}
		records = append(records, stock.OutboundRecord{
			Month:      month,
			Account:    h.Cell(row, "account"),
			ItemNumber: h.Cell(row, "itemNumber"),
			Item:       h.Cell(row, "item"),
			Quantity:   NumericCell(h, row, rowNum, "quantity", &diags),
			UOM:        h.Cell(row, "uom"),
			Price:      NumericCell(h, row, rowNum, "price", &diags),
			Total:      NumericCell(h, row, rowNum, "total", &diags),
			Currency:   h.Cell(row, "currency"),
			Receiver:   h.Cell(row, "receiver"),
			Commodity:  h.Cell(row, "commodity"),
		})
	}
	return records, diags, nil
}

// BlankRow reports whether every cell in the row is empty.
func BlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
