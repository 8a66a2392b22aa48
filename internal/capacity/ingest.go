package capacity

import (
	"io"

	"github.com/labstock/labstock/internal/ingest"
)

// EquipmentColumns are the required columns of an equipment time export.
// Names match the source system's sheet exactly.
var EquipmentColumns = []string{
	"ID",
	"Calendar time",
	"Non-schedule time (min)",
	"Non Production time (min)",
	"Set up & cleaning time",
	"DowntimeBreakdown",
	"Quality losses (min)",
	"Net Prod Time (min)",
}

// ParseEquipment validates and coerces an equipment time export. Missing
// columns reject the whole table; bad numeric cells are zeroed and
// reported as diagnostics.
func ParseEquipment(r io.Reader, format ingest.Format) ([]EquipmentRecord, ingest.Diagnostics, error) {
	const table = "equipment"
	rows, err := ingest.ReadRows(r, format)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, &ingest.SchemaError{Table: table, Missing: EquipmentColumns}
	}
	h, schemaErr := ingest.BuildHeader(table, rows[0], EquipmentColumns)
	if schemaErr != nil {
		return nil, nil, schemaErr
	}
	records := make([]EquipmentRecord, 0, len(rows)-1)
	var diags ingest.Diagnostics
	for i, row := range rows[1:] {
		rowNum := i + 2
		if ingest.BlankRow(row) {
			continue
		}
		records = append(records, EquipmentRecord{
			ID:              h.Cell(row, "ID"),
			CalendarMinutes: ingest.NumericCell(h, row, rowNum, "Calendar time", &diags),
			NonSchedule:     ingest.NumericCell(h, row, rowNum, "Non-schedule time (min)", &diags),
			NonProduction:   ingest.NumericCell(h, row, rowNum, "Non Production time (min)", &diags),
			SetupCleaning:   ingest.NumericCell(h, row, rowNum, "Set up & cleaning time", &diags),
			Downtime:        ingest.NumericCell(h, row, rowNum, "DowntimeBreakdown", &diags),
			QualityLosses:   ingest.NumericCell(h, row, rowNum, "Quality losses (min)", &diags),
			NetProduction:   ingest.NumericCell(h, row, rowNum, "Net Prod Time (min)", &diags),
		})
	}
	return records, diags, nil
}
