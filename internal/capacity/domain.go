// Package capacity reports how laboratory equipment spends its calendar
// time across production and loss buckets.
package capacity

import "errors"

// ErrUnknownGroup is returned when a utilization query names a department
// group that has not been configured.
var ErrUnknownGroup = errors.New("capacity: unknown equipment group")

// EquipmentRecord is one row of the equipment time ledger. All durations
// are minutes over the same reporting period.
type EquipmentRecord struct {
	ID              string  `json:"id"`
	CalendarMinutes float64 `json:"calendarMinutes"`
	NonSchedule     float64 `json:"nonSchedule"`
	NonProduction   float64 `json:"nonProduction"`
	SetupCleaning   float64 `json:"setupCleaning"`
	Downtime        float64 `json:"downtime"`
	QualityLosses   float64 `json:"qualityLosses"`
	NetProduction   float64 `json:"netProduction"`
}

// Utilization expresses one equipment row as percentage shares of its
// calendar time. Rows with zero calendar time report zero shares.
type Utilization struct {
	ID               string  `json:"id"`
	NonSchedulePct   float64 `json:"nonSchedulePct"`
	NonProductionPct float64 `json:"nonProductionPct"`
	SetupCleaningPct float64 `json:"setupCleaningPct"`
	DowntimePct      float64 `json:"downtimePct"`
	QualityLossesPct float64 `json:"qualityLossesPct"`
	NetProductionPct float64 `json:"netProductionPct"`
}

// DefaultGroups maps the laboratory departments to the equipment they
// operate. Mirrors the configuration of the reporting source system.
func DefaultGroups() map[string][]string {
	return map[string][]string{
		"HCMCHEM": {"ICP-MS", "IC-Anion"},
		"HCMPEST": {
			"INS003", "LC-MSMS-114", "LC-MSMS-105", "GC-MSMS-141", "GC-MSMS-109",
			"GC-MSMS-108", "LC-MSMS-50", "GC-MSMS-79", "GC-MSMS-47", "GC-MSMS-131",
			"HPLC-FLD106",
		},
		"HCMMYCO": {
			"HPLC-FLD99", "HPLC-FLD-IR101", "HPLC-UV103", "GC-FID60", "HPLC-UV98",
			"HPLC-UV100", "GC-FID9", "HPLC-139",
		},
		"RD": {"MOAH-MOSH-111", "LC-MSMS-119", "IC-5", "GC-MSMS144"},
	}
}
