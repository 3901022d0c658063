package collection

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"cointracker/internal/catalog"
)

// Ledger owns all ownership state for one catalog instance. It is the
// only component that mutates OwnershipRecords; every mutation is a
// single atomic update to one record, persisted before it becomes
// visible in memory, so a storage failure leaves the ledger unchanged.
type Ledger struct {
	mu      sync.RWMutex
	cat     *catalog.Catalog
	db      DB
	records map[catalog.Key]catalog.OwnershipRecord
}

// NewLedger loads previously recorded ownership from the database and
// validates it against the catalog: records for unknown variants or
// violating the owned/quantity invariants fail the load.
func NewLedger(cat *catalog.Catalog, db DB) (*Ledger, error) {
	stored, err := db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("loading ownership records: %w", err)
	}

	records := make(map[catalog.Key]catalog.OwnershipRecord, len(stored))
	for rawKey, rec := range stored {
		key, err := catalog.ParseKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("stored ownership record: %w", err)
		}
		if _, ok := cat.Lookup(key); !ok {
			return nil, fmt.Errorf("stored ownership record %s: no such variant", key)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("stored ownership record %s: %w", key, err)
		}
		records[key] = *rec
	}
	return &Ledger{cat: cat, db: db, records: records}, nil
}

// Record returns the ownership record for a variant key, or the zero
// (unowned) record if nothing was ever recorded.
func (l *Ledger) Record(k catalog.Key) catalog.OwnershipRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records[k]
}

// MarkOwned transitions a variant to owned. On the first call for a
// key it sets quantity 1 and stamps first_acquired_at; on an already
// owned key it increments quantity only when asDuplicate is set,
// otherwise it leaves the record untouched. Ownership is monotonic:
// no ledger operation reverts owned to false.
func (l *Ledger) MarkOwned(k catalog.Key, acquiredAt time.Time, asDuplicate bool) (catalog.OwnershipRecord, error) {
	if _, ok := l.cat.Lookup(k); !ok {
		return catalog.OwnershipRecord{}, fmt.Errorf("no such variant: %s", k)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.records[k]
	switch {
	case !rec.Owned:
		rec.Owned = true
		rec.Quantity = 1
		rec.FirstAcquiredAt = acquiredAt
	case asDuplicate:
		rec.Quantity++
	default:
		return rec, nil
	}

	if err := l.db.SaveRecord(k.String(), &rec); err != nil {
		return l.records[k], fmt.Errorf("persisting ownership record %s: %w", k, err)
	}
	l.records[k] = rec
	return rec, nil
}

// Stats is the aggregate collection state.
type Stats struct {
	TotalVariants   int     `json:"total_variants"`
	OwnedCount      int     `json:"owned_count"`
	MissingCount    int     `json:"missing_count"`
	CompletionRatio float64 `json:"completion_ratio"`
}

// Stats computes ownership aggregates over the full catalog.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Stats{TotalVariants: l.cat.Len()}
	for _, rec := range l.records {
		if rec.Owned {
			s.OwnedCount++
		}
	}
	s.MissingCount = s.TotalVariants - s.OwnedCount
	if s.TotalVariants > 0 {
		s.CompletionRatio = float64(s.OwnedCount) / float64(s.TotalVariants)
	}
	return s
}

// Missing lists every variant not yet owned, in catalog order.
func (l *Ledger) Missing() []catalog.Variant {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var missing []catalog.Variant
	for _, v := range l.cat.All() {
		if !l.records[v.Key].Owned {
			missing = append(missing, v)
		}
	}
	return missing
}

// GroupStat is one line of a stats breakdown.
type GroupStat struct {
	Label string  `json:"label"`
	Total int     `json:"total"`
	Owned int     `json:"owned"`
	Ratio float64 `json:"ratio"`
}

// Breakdown splits collection progress by country, year and
// denomination, each in deterministic order.
type Breakdown struct {
	ByCountry []GroupStat `json:"by_country"`
	ByYear    []GroupStat `json:"by_year"`
	ByValue   []GroupStat `json:"by_value"`
}

// StatsBreakdown computes per-country, per-year and per-denomination
// progress.
func (l *Ledger) StatsBreakdown() Breakdown {
	l.mu.RLock()
	defer l.mu.RUnlock()

	countries := map[string]*GroupStat{}
	years := map[string]*GroupStat{}
	values := map[string]*GroupStat{}

	bump := func(m map[string]*GroupStat, label string, owned bool) {
		g, ok := m[label]
		if !ok {
			g = &GroupStat{Label: label}
			m[label] = g
		}
		g.Total++
		if owned {
			g.Owned++
		}
	}

	for _, v := range l.cat.All() {
		owned := l.records[v.Key].Owned
		bump(countries, string(v.Country), owned)
		bump(years, fmt.Sprintf("%d", v.Year), owned)
		bump(values, v.Value.String(), owned)
	}

	return Breakdown{
		ByCountry: sortedGroups(countries, nil),
		ByYear:    sortedGroups(years, nil),
		ByValue: sortedGroups(values, func(a, b GroupStat) bool {
			da, _ := catalog.DenominationFromString(a.Label)
			db, _ := catalog.DenominationFromString(b.Label)
			return da < db
		}),
	}
}

func sortedGroups(m map[string]*GroupStat, less func(a, b GroupStat) bool) []GroupStat {
	out := make([]GroupStat, 0, len(m))
	for _, g := range m {
		if g.Total > 0 {
			g.Ratio = float64(g.Owned) / float64(g.Total)
		}
		out = append(out, *g)
	}
	if less == nil {
		less = func(a, b GroupStat) bool { return a.Label < b.Label }
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
