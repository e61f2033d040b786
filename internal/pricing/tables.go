package pricing

import "math"

// DefaultRegion is where the static rate card below was sourced from. It is
// a seeding default only — lookups for unsupported regions fail, they are
// never redirected here.
const DefaultRegion = "us-east-1"

// PlatformMultiplier is the managed game-hosting markup over raw EC2
// on-demand rates.
const PlatformMultiplier = 1.5

// baseEntry is a us-east-1 rate card row. Per-region tables are derived by
// scaling HourlyRate with the region factor.
type baseEntry struct {
	instanceType string
	vCPUs        int
	memoryMiB    int64
	hourlyRate   float64
}

// Published Linux on-demand us-east-1 rates (2025-Q2 snapshot). Refreshed by
// the seeder when the AWS Pricing API is reachable.
var baseEntries = []baseEntry{
	{"c5.large", 2, 4 * 1024, 0.085},
	{"c5.xlarge", 4, 8 * 1024, 0.17},
	{"c5.2xlarge", 8, 16 * 1024, 0.34},
	{"c6g.large", 2, 4 * 1024, 0.068},
	{"c6g.xlarge", 4, 8 * 1024, 0.136},
	{"c6g.2xlarge", 8, 16 * 1024, 0.272},
	{"m5.large", 2, 8 * 1024, 0.096},
	{"m5.xlarge", 4, 16 * 1024, 0.192},
	{"m5.2xlarge", 8, 32 * 1024, 0.384},
	{"m6g.large", 2, 8 * 1024, 0.077},
	{"m6g.xlarge", 4, 16 * 1024, 0.154},
	{"m6g.2xlarge", 8, 32 * 1024, 0.308},
	{"r5.large", 2, 16 * 1024, 0.126},
	{"r5.xlarge", 4, 32 * 1024, 0.252},
	{"r6g.large", 2, 16 * 1024, 0.1008},
	{"r6g.xlarge", 4, 32 * 1024, 0.2016},
}

// regionProfile scales the base rate card for one supported region.
type regionProfile struct {
	computeFactor     float64
	storagePerGBMonth float64
	egressPerGB       float64
}

var regionProfiles = map[string]regionProfile{
	"us-east-1":      {1.0, 0.08, 0.09},
	"us-west-2":      {1.0, 0.08, 0.09},
	"eu-west-1":      {1.06, 0.088, 0.09},
	"eu-central-1":   {1.14, 0.0952, 0.09},
	"ap-southeast-1": {1.16, 0.096, 0.12},
	"ap-northeast-1": {1.22, 0.0968, 0.114},
}

// armEquivalents maps x86 families to their Graviton counterparts, used by
// the alternative-configuration advisor.
var armEquivalents = map[string]string{
	"c5": "c6g",
	"m5": "m6g",
	"r5": "r6g",
}

// ArmEquivalent returns the Graviton family for an x86 family, if one exists
// in the rate card.
func ArmEquivalent(family string) (string, bool) {
	arm, ok := armEquivalents[family]
	return arm, ok
}

// sizeOrder is the step-down ladder for instance sizes.
var sizeOrder = []string{"medium", "large", "xlarge", "2xlarge", "4xlarge"}

// StepDownSize returns the next smaller size tier, if any.
func StepDownSize(size string) (string, bool) {
	for i, s := range sizeOrder {
		if s == size && i > 0 {
			return sizeOrder[i-1], true
		}
	}
	return "", false
}

// DefaultServiceFees is the global, region-agnostic platform fee table.
var DefaultServiceFees = []ServiceFee{
	{Name: "fleet monitoring", MonthlyUSD: 15.00},
	{Name: "session placement", MonthlyUSD: 9.00},
	{Name: "metrics ingestion", MonthlyUSD: 6.00},
}

// DefaultTables builds the static per-region tables from the base rate card.
func DefaultTables() map[string]*Table {
	tables := make(map[string]*Table, len(regionProfiles))
	for region, prof := range regionProfiles {
		entries := make([]PricingEntry, 0, len(baseEntries))
		for _, b := range baseEntries {
			entries = append(entries, PricingEntry{
				InstanceType:       b.instanceType,
				Family:             ExtractFamily(b.instanceType),
				Size:               ExtractSize(b.instanceType),
				VCPUs:              b.vCPUs,
				MemoryMiB:          b.memoryMiB,
				HourlyRate:         roundRate(b.hourlyRate * prof.computeFactor),
				PlatformMultiplier: PlatformMultiplier,
			})
		}
		tables[region] = &Table{
			Region:  region,
			Entries: entries,
			Rates: RegionRates{
				StoragePerGBMonth: prof.storagePerGBMonth,
				EgressPerGB:       prof.egressPerGB,
			},
		}
	}
	return tables
}

// roundRate rounds to 4 decimal places, matching the granularity of the
// published rate cards.
func roundRate(r float64) float64 {
	return math.Round(r*10000) / 10000
}
