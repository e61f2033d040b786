package costplan

import "time"

// ComputeCost is the compute slice of a breakdown. HourlyRate is the raw
// per-instance rate after the platform multiplier and any fleet-mode
// discount have been applied.
type ComputeCost struct {
	InstanceType    string  `json:"instanceType"`
	HourlyRate      float64 `json:"hourlyRate"`
	InstancesNeeded int     `json:"instancesNeeded"`
	MonthlyHours    float64 `json:"monthlyHours"`
	MonthlyCostUSD  float64 `json:"monthlyCostUSD"`
}

type StorageCost struct {
	SizeGB         float64 `json:"sizeGB"`
	RatePerGBMonth float64 `json:"ratePerGBMonth"`
	MonthlyCostUSD float64 `json:"monthlyCostUSD"`
}

type DataTransferCost struct {
	MonthlyGB      float64 `json:"monthlyGB"`
	RatePerGB      float64 `json:"ratePerGB"`
	MonthlyCostUSD float64 `json:"monthlyCostUSD"`
}

// ServiceFeeCost is one fixed platform fee component (monitoring, session
// placement, telemetry). Region-agnostic.
type ServiceFeeCost struct {
	Name           string  `json:"name"`
	MonthlyCostUSD float64 `json:"monthlyCostUSD"`
}

type PlatformServicesCost struct {
	Components []ServiceFeeCost `json:"components"`
	TotalUSD   float64          `json:"totalUSD"`
}

type TotalCost struct {
	InitialSetupUSD       float64 `json:"initialSetupUSD"`
	MonthlyOperationalUSD float64 `json:"monthlyOperationalUSD"`
}

// CostBreakdown is the full itemized estimate for one traffic profile in one
// region set. It is derived data: recomputed on every call and never read
// back from persistence as a source of truth.
type CostBreakdown struct {
	Region           string               `json:"region"`
	Compute          ComputeCost          `json:"compute"`
	Storage          StorageCost          `json:"storage"`
	DataTransfer     DataTransferCost     `json:"dataTransfer"`
	PlatformServices PlatformServicesCost `json:"platformServices"`
	Total            TotalCost            `json:"total"`

	// PricingUpdatedAt and PricingStale describe the table the breakdown was
	// computed against, so callers can surface stale-data warnings.
	PricingUpdatedAt time.Time `json:"pricingUpdatedAt"`
	PricingStale     bool      `json:"pricingStale"`
}

// ScenarioResult pairs a named traffic preset with its computed breakdown.
// Results are generated on demand and never mutated.
type ScenarioResult struct {
	Label             string        `json:"label"`
	ConcurrentPlayers int           `json:"concurrentPlayers"`
	SessionHours      float64       `json:"sessionDurationHours"`
	Breakdown         CostBreakdown `json:"breakdown"`
}

// AlternativeConfig reports the cost of one substituted configuration
// relative to a baseline. SavingsPercentage is clamped to zero when the
// substitution is more expensive; Tradeoff is static presentation prose.
type AlternativeConfig struct {
	Name               string        `json:"name"`
	InstanceType       string        `json:"instanceType"`
	FleetMode          string        `json:"fleetMode"`
	MonthlyEstimateUSD float64       `json:"monthlyEstimateUSD"`
	SavingsPercentage  float64       `json:"savingsPercentage"`
	Tradeoff           string        `json:"tradeoff"`
	Breakdown          CostBreakdown `json:"breakdown"`
}
