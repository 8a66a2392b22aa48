package capacity

import (
	"sort"
	"sync"
)

// Service answers utilization queries over an equipment ledger that is
// replaced wholesale when a new export is loaded.
type Service struct {
	mu      sync.RWMutex
	records []EquipmentRecord
	groups  map[string][]string
}

func NewService(groups map[string][]string) *Service {
	if groups == nil {
		groups = DefaultGroups()
	}
	return &Service{groups: groups}
}

// Replace swaps in a freshly loaded equipment ledger.
func (s *Service) Replace(records []EquipmentRecord) {
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
}

// Groups lists the configured department groups, sorted.
func (s *Service) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Utilization computes per-equipment percentage shares of calendar time.
// An empty group selects every equipment on the ledger.
func (s *Service) Utilization(group string) ([]Utilization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[string]struct{}
	if group != "" {
		ids, ok := s.groups[group]
		if !ok {
			return nil, ErrUnknownGroup
		}
		allowed = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			allowed[id] = struct{}{}
		}
	}

	out := make([]Utilization, 0, len(s.records))
	for _, rec := range s.records {
		if allowed != nil {
			if _, ok := allowed[rec.ID]; !ok {
				continue
			}
		}
		out = append(out, utilizationOf(rec))
	}
	return out, nil
}

func utilizationOf(rec EquipmentRecord) Utilization {
	u := Utilization{ID: rec.ID}
	if rec.CalendarMinutes <= 0 {
		return u
	}
	share := func(minutes float64) float64 {
		return minutes / rec.CalendarMinutes * 100
	}
	u.NonSchedulePct = share(rec.NonSchedule)
	u.NonProductionPct = share(rec.NonProduction)
	u.SetupCleaningPct = share(rec.SetupCleaning)
	u.DowntimePct = share(rec.Downtime)
	u.QualityLossesPct = share(rec.QualityLosses)
	u.NetProductionPct = share(rec.NetProduction)
	return u
}
