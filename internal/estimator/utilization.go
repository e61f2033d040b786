package estimator

import "math"

// Utilization model constants. These are part of the engine's contract:
// changing any of them changes every estimate, so they are fixed here rather
// than configurable.
const (
	// PlayersPerInstance is a conservative capacity assumption for a
	// session-based game server, independent of instance size.
	PlayersPerInstance = 50

	daysPerMonth       = 30
	peakHoursPerDay    = 8
	offPeakHoursPerDay = 16

	// baselineInstanceRatio is the fraction of the fleet kept warm during
	// off-peak hours.
	baselineInstanceRatio = 0.2

	// sessionMultiplierCap bounds the occupancy inflation long sessions
	// imply.
	sessionMultiplierCap = 1.5
)

// InstancesNeeded returns how many instances serve the given concurrency.
func InstancesNeeded(concurrentPlayers int) int {
	return int(math.Ceil(float64(concurrentPlayers) / PlayersPerInstance))
}

// SessionMultiplier converts average session length into an occupancy
// steadiness factor: longer sessions mean instances sit fuller for longer.
// Never exceeds sessionMultiplierCap.
func SessionMultiplier(sessionDurationHours float64) float64 {
	return math.Min(1+sessionDurationHours/10, sessionMultiplierCap)
}

// EstimateMonthlyHours converts a fleet size and session profile into billed
// instance-hours per month using a peak/off-peak decomposition: the full
// fleet runs during peak hours, the warm baseline during off-peak.
func EstimateMonthlyHours(instancesNeeded int, sessionDurationHours float64) float64 {
	peakHours := float64(peakHoursPerDay * daysPerMonth)
	offPeakHours := float64(offPeakHoursPerDay * daysPerMonth)

	peakInstanceHours := float64(instancesNeeded) * peakHours
	offPeakInstanceHours := float64(instancesNeeded) * baselineInstanceRatio * offPeakHours

	return (peakInstanceHours + offPeakInstanceHours) * SessionMultiplier(sessionDurationHours)
}
