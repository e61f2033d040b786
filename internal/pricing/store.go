package pricing

import (
	"sort"
	"sync/atomic"
	"time"
)

// StaleThreshold is the table age beyond which estimates carry a
// StaleDataWarning. The seeder refreshes well inside this window; crossing it
// means refreshes have been failing for days.
const StaleThreshold = 7 * 24 * time.Hour

// Source is what the cost engine depends on: a pure lookup against tables
// that are already loaded. Loading and refresh are the seeder's concern.
type Source interface {
	// Resolve returns the entry for (region, instanceType), or a
	// *NotFoundError. It never substitutes another region's table.
	Resolve(region, instanceType string) (PricingEntry, error)
	// RegionRates returns the non-compute rates for a region.
	RegionRates(region string) (RegionRates, error)
	// ServiceFees returns the global platform fee table.
	ServiceFees() []ServiceFee
	// UpdatedAt reports when the tables were last swapped in.
	UpdatedAt() time.Time
	// Stale returns a non-nil *StaleDataWarning when the tables are older
	// than StaleThreshold.
	Stale() *StaleDataWarning
}

// snapshot is one immutable generation of pricing data. The Store swaps whole
// snapshots so concurrent readers see either the old or the new generation,
// never a partially updated one.
type snapshot struct {
	tables    map[string]*Table
	fees      []ServiceFee
	updatedAt time.Time
}

// Store holds the currently loaded pricing data. Read-mostly: reads are a
// single atomic pointer load, writes replace the whole snapshot.
type Store struct {
	current atomic.Pointer[snapshot]
	now     func() time.Time // injectable for tests
}

// NewStore creates an empty store. All lookups fail until the first Swap.
func NewStore() *Store {
	s := &Store{now: time.Now}
	s.current.Store(&snapshot{tables: map[string]*Table{}})
	return s
}

// NewStaticStore creates a store pre-loaded with the built-in rate card,
// stamped with the current time. Used by tests and as the seeder's base.
func NewStaticStore() *Store {
	s := NewStore()
	s.Swap(DefaultTables(), DefaultServiceFees, time.Now())
	return s
}

// Swap atomically replaces all tables and fees. updatedAt stamps the
// generation for staleness tracking.
func (s *Store) Swap(tables map[string]*Table, fees []ServiceFee, updatedAt time.Time) {
	s.current.Store(&snapshot{
		tables:    tables,
		fees:      fees,
		updatedAt: updatedAt,
	})
}

func (s *Store) Resolve(region, instanceType string) (PricingEntry, error) {
	snap := s.current.Load()
	table, ok := snap.tables[region]
	if !ok {
		return PricingEntry{}, &NotFoundError{Region: region}
	}
	entry, ok := table.Lookup(instanceType)
	if !ok {
		return PricingEntry{}, &NotFoundError{Region: region, InstanceType: instanceType}
	}
	return entry, nil
}

func (s *Store) RegionRates(region string) (RegionRates, error) {
	snap := s.current.Load()
	table, ok := snap.tables[region]
	if !ok {
		return RegionRates{}, &NotFoundError{Region: region}
	}
	return table.Rates, nil
}

func (s *Store) ServiceFees() []ServiceFee {
	return s.current.Load().fees
}

func (s *Store) UpdatedAt() time.Time {
	return s.current.Load().updatedAt
}

func (s *Store) Stale() *StaleDataWarning {
	updated := s.current.Load().updatedAt
	age := s.now().Sub(updated)
	if age <= StaleThreshold {
		return nil
	}
	return &StaleDataWarning{UpdatedAt: updated, Age: age}
}

// Regions returns the loaded region ids, sorted.
func (s *Store) Regions() []string {
	snap := s.current.Load()
	regions := make([]string, 0, len(snap.tables))
	for r := range snap.tables {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	return regions
}

// Entries returns a copy of the entry list for a region, for the pricing API
// endpoint. Returns a *NotFoundError for unknown regions.
func (s *Store) Entries(region string) ([]PricingEntry, error) {
	snap := s.current.Load()
	table, ok := snap.tables[region]
	if !ok {
		return nil, &NotFoundError{Region: region}
	}
	out := make([]PricingEntry, len(table.Entries))
	copy(out, table.Entries)
	return out, nil
}
