package estimator

import (
	"math"

	"github.com/fleetplan/fleetplan/internal/pricing"
	"github.com/fleetplan/fleetplan/pkg/costplan"
)

const (
	// spotDiscount prices spot capacity at 70% of on-demand. A fixed
	// approximation, not a live market quote.
	spotDiscount = 0.7

	// setupOverheadPerInstanceUSD is the one-time provisioning overhead per
	// instance (image baking, fleet activation).
	setupOverheadPerInstanceUSD = 25.0
)

// Calculator turns traffic parameters into an itemized cost breakdown. It is
// purely computational: every call is a deterministic function of its inputs
// plus the currently loaded pricing tables, with no side effects.
type Calculator struct {
	prices pricing.Source
}

// NewCalculator builds a calculator over the given price source. The source
// is an injected dependency so tests can run against fixed tables.
func NewCalculator(src pricing.Source) *Calculator {
	return &Calculator{prices: src}
}

// CalculateCosts computes the full breakdown for one traffic profile.
// Invalid parameters return a *ValidationError before any computation;
// an unknown region or instance type propagates *pricing.NotFoundError.
// There is no partial-result mode.
func (c *Calculator) CalculateCosts(params TrafficParameters, region string) (costplan.CostBreakdown, error) {
	if region == "" {
		ve := &ValidationError{}
		ve.Add("region must not be empty")
		return costplan.CostBreakdown{}, ve
	}
	if ve := params.Validate(); ve != nil {
		return costplan.CostBreakdown{}, ve
	}

	entry, err := c.prices.Resolve(region, params.InstanceType)
	if err != nil {
		return costplan.CostBreakdown{}, err
	}
	rates, err := c.prices.RegionRates(region)
	if err != nil {
		return costplan.CostBreakdown{}, err
	}

	instancesNeeded := InstancesNeeded(params.ConcurrentPlayers)
	monthlyHours := EstimateMonthlyHours(instancesNeeded, params.SessionDurationHours)

	discount := 1.0
	if params.FleetMode == FleetModeSpot {
		discount = spotDiscount
	}

	// Billed rate per instance-hour: raw rate x platform markup x fleet
	// discount.
	effectiveRate := entry.EffectiveHourlyRate() * discount
	computeMonthly := effectiveRate * monthlyHours * float64(params.RegionsCount)

	storageMonthly := params.StorageGB * rates.StoragePerGBMonth * float64(params.RegionsCount)
	transferMonthly := params.MonthlyDataTransferGB * rates.EgressPerGB

	fees := c.prices.ServiceFees()
	feeComponents := make([]costplan.ServiceFeeCost, 0, len(fees))
	feesTotal := 0.0
	for _, f := range fees {
		feeComponents = append(feeComponents, costplan.ServiceFeeCost{
			Name:           f.Name,
			MonthlyCostUSD: roundUSD(f.MonthlyUSD),
		})
		feesTotal += f.MonthlyUSD
	}

	initialSetup := float64(instancesNeeded) * setupOverheadPerInstanceUSD
	monthlyOperational := computeMonthly + storageMonthly + transferMonthly + feesTotal

	stale := c.prices.Stale()

	return costplan.CostBreakdown{
		Region: region,
		Compute: costplan.ComputeCost{
			InstanceType:    params.InstanceType,
			HourlyRate:      effectiveRate,
			InstancesNeeded: instancesNeeded,
			MonthlyHours:    monthlyHours,
			MonthlyCostUSD:  roundUSD(computeMonthly),
		},
		Storage: costplan.StorageCost{
			SizeGB:         params.StorageGB,
			RatePerGBMonth: rates.StoragePerGBMonth,
			MonthlyCostUSD: roundUSD(storageMonthly),
		},
		DataTransfer: costplan.DataTransferCost{
			MonthlyGB:      params.MonthlyDataTransferGB,
			RatePerGB:      rates.EgressPerGB,
			MonthlyCostUSD: roundUSD(transferMonthly),
		},
		PlatformServices: costplan.PlatformServicesCost{
			Components: feeComponents,
			TotalUSD:   roundUSD(feesTotal),
		},
		Total: costplan.TotalCost{
			InitialSetupUSD:       roundUSD(initialSetup),
			MonthlyOperationalUSD: roundUSD(monthlyOperational),
		},
		PricingUpdatedAt: c.prices.UpdatedAt(),
		PricingStale:     stale != nil,
	}, nil
}

// roundUSD rounds to cents. Applied only at assembly so intermediate math
// stays exact.
func roundUSD(v float64) float64 {
	return math.Round(v*100) / 100
}
