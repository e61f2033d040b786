package estimator

import (
	"errors"
	"fmt"

	"github.com/fleetplan/fleetplan/internal/pricing"
	"github.com/fleetplan/fleetplan/pkg/costplan"
)

// Static tradeoff prose per substitution type. Presentation metadata only;
// the numeric contract is MonthlyEstimateUSD and SavingsPercentage.
const (
	tradeoffArm = "Graviton (ARM64) instances require an ARM build of the server binary; " +
		"most engines cross-compile cleanly, but native plugins must be rebuilt."
	tradeoffSpot = "Spot capacity can be interrupted with two minutes' notice; " +
		"suitable for session-based fleets with graceful drain, not for persistent worlds."
	tradeoffSmaller = "A smaller instance size leaves less headroom per instance for " +
		"player spikes; expect more frequent fleet scale-out events."
)

// ProposeAlternatives computes the baseline once, then re-runs the
// calculator for each fixed substitution: an ARM-equivalent family, a switch
// to spot, and a one-tier size step-down. Substitutions that don't exist in
// the baseline's region table are skipped rather than priced against a
// different region. Savings are clamped to zero — a costlier alternative is
// reported at 0%, never as negative savings.
func (c *Calculator) ProposeAlternatives(base TrafficParameters, region string) ([]costplan.AlternativeConfig, error) {
	baseline, err := c.CalculateCosts(base, region)
	if err != nil {
		return nil, err
	}
	baseMonthly := baseline.Total.MonthlyOperationalUSD

	family := pricing.ExtractFamily(base.InstanceType)
	size := pricing.ExtractSize(base.InstanceType)

	var alts []costplan.AlternativeConfig

	// 1. ARM-equivalent family, same size.
	if armFamily, ok := pricing.ArmEquivalent(family); ok {
		armType := armFamily + "." + size
		alt, err := c.alternative(base, region, baseMonthly,
			"Graviton equivalent", armType, base.FleetMode, tradeoffArm)
		if err != nil {
			return nil, err
		}
		if alt != nil {
			alts = append(alts, *alt)
		}
	}

	// 2. Spot fleet, same instance type.
	if base.FleetMode == FleetModeOnDemand {
		alt, err := c.alternative(base, region, baseMonthly,
			"Spot fleet", base.InstanceType, FleetModeSpot, tradeoffSpot)
		if err != nil {
			return nil, err
		}
		if alt != nil {
			alts = append(alts, *alt)
		}
	}

	// 3. One size tier down within the same family.
	if smaller, ok := pricing.StepDownSize(size); ok {
		smallerType := family + "." + smaller
		alt, err := c.alternative(base, region, baseMonthly,
			"Smaller instance size", smallerType, base.FleetMode, tradeoffSmaller)
		if err != nil {
			return nil, err
		}
		if alt != nil {
			alts = append(alts, *alt)
		}
	}

	return alts, nil
}

// alternative prices one substitution. A *pricing.NotFoundError means the
// substituted type is not offered in this region — the alternative is
// skipped (nil, nil), not an error. Everything else propagates.
func (c *Calculator) alternative(base TrafficParameters, region string, baseMonthly float64,
	name, instanceType string, mode FleetMode, tradeoff string) (*costplan.AlternativeConfig, error) {

	params := base
	params.InstanceType = instanceType
	params.FleetMode = mode

	bd, err := c.CalculateCosts(params, region)
	if err != nil {
		var nf *pricing.NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, fmt.Errorf("alternative %q: %w", name, err)
	}

	altMonthly := bd.Total.MonthlyOperationalUSD
	savings := 0.0
	if baseMonthly > 0 && altMonthly < baseMonthly {
		savings = (baseMonthly - altMonthly) / baseMonthly * 100
	}

	return &costplan.AlternativeConfig{
		Name:               name,
		InstanceType:       instanceType,
		FleetMode:          string(mode),
		MonthlyEstimateUSD: altMonthly,
		SavingsPercentage:  savings,
		Tradeoff:           tradeoff,
		Breakdown:          bd,
	}, nil
}
