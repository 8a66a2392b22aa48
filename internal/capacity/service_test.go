package capacity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/labstock/labstock/internal/ingest"
)

func TestUtilizationShares(t *testing.T) {
	svc := NewService(nil)
	svc.Replace([]EquipmentRecord{
		{
			ID:              "ICP-MS",
			CalendarMinutes: 1000,
			NonSchedule:     100,
			NonProduction:   50,
			SetupCleaning:   150,
			Downtime:        0,
			QualityLosses:   200,
			NetProduction:   500,
		},
	})

	rows, err := svc.Utilization("")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	u := rows[0]
	require.InDelta(t, 10, u.NonSchedulePct, 1e-9)
	require.InDelta(t, 5, u.NonProductionPct, 1e-9)
	require.InDelta(t, 15, u.SetupCleaningPct, 1e-9)
	require.InDelta(t, 0, u.DowntimePct, 1e-9)
	require.InDelta(t, 20, u.QualityLossesPct, 1e-9)
	require.InDelta(t, 50, u.NetProductionPct, 1e-9)
}

func TestUtilizationZeroCalendarTime(t *testing.T) {
	svc := NewService(nil)
	svc.Replace([]EquipmentRecord{
		{ID: "GC-FID9", CalendarMinutes: 0, NetProduction: 300},
	})

	rows, err := svc.Utilization("")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 0, rows[0].NetProductionPct, 1e-9)
}

func TestUtilizationGroupFilter(t *testing.T) {
	svc := NewService(nil)
	svc.Replace([]EquipmentRecord{
		{ID: "ICP-MS", CalendarMinutes: 100, NetProduction: 50},
		{ID: "INS003", CalendarMinutes: 100, NetProduction: 80},
	})

	rows, err := svc.Utilization("HCMCHEM")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "ICP-MS", rows[0].ID)

	_, err = svc.Utilization("NOPE")
	require.ErrorIs(t, err, ErrUnknownGroup)
}

func TestGroupsSorted(t *testing.T) {
	svc := NewService(nil)
	require.Equal(t, []string{"HCMCHEM", "HCMMYCO", "HCMPEST", "RD"}, svc.Groups())
}

func TestParseEquipment(t *testing.T) {
	csv := strings.Join(EquipmentColumns, ",") + "\n" +
		"ICP-MS,1000,100,50,150,0,200,500\n" +
		"GC-FID9,0,,0,0,0,0,0\n"

	records, diags, err := ParseEquipment(strings.NewReader(csv), ingest.FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "ICP-MS", records[0].ID)
	require.InDelta(t, 1000, records[0].CalendarMinutes, 1e-9)
	require.InDelta(t, 500, records[0].NetProduction, 1e-9)
	// The empty non-schedule cell on the second row is zeroed and flagged.
	require.Len(t, diags, 1)
	require.Equal(t, "Non-schedule time (min)", diags[0].Column)
}

func TestParseEquipmentMissingColumns(t *testing.T) {
	_, _, err := ParseEquipment(strings.NewReader("ID,Calendar time\nICP-MS,100\n"), ingest.FormatCSV)
	var schemaErr *ingest.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, "equipment", schemaErr.Table)
	require.Contains(t, schemaErr.Missing, "Net Prod Time (min)")
}
