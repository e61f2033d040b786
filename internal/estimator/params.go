package estimator

import (
	"fmt"
	"strings"
)

// FleetMode selects the compute pricing tier.
type FleetMode string

const (
	FleetModeOnDemand FleetMode = "on_demand"
	FleetModeSpot     FleetMode = "spot"
)

// TrafficParameters describe the expected player traffic a fleet must
// serve. Caller-supplied per request; the engine never mutates them.
type TrafficParameters struct {
	ConcurrentPlayers     int       `json:"concurrentPlayers"`
	SessionDurationHours  float64   `json:"sessionDurationHours"`
	RegionsCount          int       `json:"regionsCount"`
	InstanceType          string    `json:"instanceType"`
	FleetMode             FleetMode `json:"fleetMode"`
	StorageGB             float64   `json:"storageGB"`
	MonthlyDataTransferGB float64   `json:"monthlyDataTransferGB"`
}

// ValidationError collects every invariant violation in one pass so callers
// see the full list, not just the first.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid traffic parameters: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the documented invariants. Out-of-range values are
// rejected, never clamped.
func (p TrafficParameters) Validate() *ValidationError {
	ve := &ValidationError{}

	if p.ConcurrentPlayers < 1 {
		ve.Add("concurrentPlayers must be >= 1")
	}
	if p.SessionDurationHours <= 0 {
		ve.Add("sessionDurationHours must be > 0")
	}
	if p.RegionsCount < 1 {
		ve.Add("regionsCount must be >= 1")
	}
	if p.InstanceType == "" {
		ve.Add("instanceType must not be empty")
	}
	switch p.FleetMode {
	case FleetModeOnDemand, FleetModeSpot:
	default:
		ve.Add(fmt.Sprintf("invalid fleetMode %q", p.FleetMode))
	}
	if p.StorageGB < 0 {
		ve.Add("storageGB must be >= 0")
	}
	if p.MonthlyDataTransferGB < 0 {
		ve.Add("monthlyDataTransferGB must be >= 0")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
