package expense

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// Service answers expense summaries over a ledger that is replaced
// wholesale when a new export is loaded.
type Service struct {
	mu      sync.RWMutex
	records []Record
	allowed map[string]struct{}
}

func NewService() *Service {
	allowed := make(map[string]struct{})
	for _, d := range AllowedDepartments() {
		allowed[d] = struct{}{}
	}
	return &Service{allowed: allowed}
}

// Replace swaps in a freshly loaded expense ledger. Rows from departments
// outside the allowed list are dropped here so every summary sees the
// same population.
func (s *Service) Replace(records []Record) {
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if _, ok := s.allowed[rec.Department]; ok {
			kept = append(kept, rec)
		}
	}
	s.mu.Lock()
	s.records = kept
	s.mu.Unlock()
}

// Summary aggregates the filtered ledger. The spread metric is the gap
// between the largest and smallest line totals in the selection.
func (s *Service) Summary(f Filter) (Summary, error) {
	if f.Department != "" {
		if _, ok := s.allowed[f.Department]; !ok {
			return Summary{}, ErrUnknownDepartment
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		out      Summary
		haveLine bool
		minLine  decimal.Decimal
		maxLine  decimal.Decimal
	)
	byDept := map[string]decimal.Decimal{}
	byType := map[string]decimal.Decimal{}
	byComm := map[string]decimal.Decimal{}

	for _, rec := range s.records {
		if f.Department != "" && rec.Department != f.Department {
			continue
		}
		if f.Commodity != "" && rec.Commodity != f.Commodity {
			continue
		}
		if f.Month != 0 && rec.Month != f.Month {
			continue
		}
		out.ItemCount++
		out.TotalSpend = out.TotalSpend.Add(rec.Total)
		if !haveLine {
			minLine, maxLine = rec.Total, rec.Total
			haveLine = true
		} else {
			if rec.Total.LessThan(minLine) {
				minLine = rec.Total
			}
			if rec.Total.GreaterThan(maxLine) {
				maxLine = rec.Total
			}
		}
		byDept[rec.Department] = byDept[rec.Department].Add(rec.Total)
		byType[rec.Type] = byType[rec.Type].Add(rec.Total)
		byComm[rec.Commodity] = byComm[rec.Commodity].Add(rec.Total)
	}
	if haveLine {
		out.Spread = maxLine.Sub(minLine)
	}
	out.ByDepartment = shares(byDept, out.TotalSpend)
	out.ByType = shares(byType, out.TotalSpend)
	out.ByCommodity = shares(byComm, out.TotalSpend)
	return out, nil
}

// shares converts a grouped total map into a breakdown sorted by total
// descending, names ascending on ties.
func shares(totals map[string]decimal.Decimal, grand decimal.Decimal) []Share {
	out := make([]Share, 0, len(totals))
	for name, total := range totals {
		share := Share{Name: name, Total: total}
		if grand.Sign() > 0 {
			pct, _ := total.Div(grand).Mul(decimal.NewFromInt(100)).Float64()
			share.Percentage = pct
		}
		out = append(out, share)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
