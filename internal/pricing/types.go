package pricing

import (
	"fmt"
	"time"
)

// PricingEntry is one priced compute unit within a region. Immutable
// reference data, keyed by (region, instance type). HourlyRate is the raw
// infrastructure rate; PlatformMultiplier is the managed-hosting markup
// applied on top of it.
type PricingEntry struct {
	InstanceType       string  // e.g. "c5.large"
	Family             string  // e.g. "c5"
	Size               string  // e.g. "large"
	VCPUs              int
	MemoryMiB          int64
	HourlyRate         float64 // USD per instance-hour, before markup
	PlatformMultiplier float64 // >= 1
}

// EffectiveHourlyRate returns the platform-billed on-demand rate.
func (e PricingEntry) EffectiveHourlyRate() float64 {
	return e.HourlyRate * e.PlatformMultiplier
}

// RegionRates holds the per-region non-compute rates.
type RegionRates struct {
	StoragePerGBMonth float64
	EgressPerGB       float64
}

// ServiceFee is one fixed monthly platform fee component. The fee table is
// global and region-agnostic.
type ServiceFee struct {
	Name       string
	MonthlyUSD float64
}

// Table is the full price list for one region.
type Table struct {
	Region  string
	Entries []PricingEntry
	Rates   RegionRates
}

// Lookup finds an entry by exact instance type id. The second return value
// reports whether it was found; callers wanting an error use Store.Resolve.
func (t *Table) Lookup(instanceType string) (PricingEntry, bool) {
	for _, e := range t.Entries {
		if e.InstanceType == instanceType {
			return e, true
		}
	}
	return PricingEntry{}, false
}

// NotFoundError reports a region or instance type absent from the loaded
// tables. It is deliberately distinct from a zero-cost result: an unknown
// pair is never silently substituted with another region or a default rate.
type NotFoundError struct {
	Region       string
	InstanceType string
}

func (e *NotFoundError) Error() string {
	if e.InstanceType == "" {
		return fmt.Sprintf("pricing: no table loaded for region %q", e.Region)
	}
	return fmt.Sprintf("pricing: no entry for %q in region %q", e.InstanceType, e.Region)
}

// StaleDataWarning is non-fatal: the loaded table is older than the staleness
// threshold. Computation proceeds; callers may surface the warning.
type StaleDataWarning struct {
	UpdatedAt time.Time
	Age       time.Duration
}

func (w *StaleDataWarning) Error() string {
	return fmt.Sprintf("pricing: table is stale (updated %s ago)", w.Age.Round(time.Hour))
}

// ExtractFamily returns the family prefix of an instance type id
// ("c5.large" -> "c5"). Ids without a dot are returned unchanged.
func ExtractFamily(instanceType string) string {
	for i, c := range instanceType {
		if c == '.' {
			return instanceType[:i]
		}
	}
	return instanceType
}

// ExtractSize returns the size suffix of an instance type id
// ("c5.large" -> "large"), or "" when there is no dot.
func ExtractSize(instanceType string) string {
	for i, c := range instanceType {
		if c == '.' {
			return instanceType[i+1:]
		}
	}
	return ""
}
