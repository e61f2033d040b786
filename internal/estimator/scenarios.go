package estimator

import (
	"fmt"

	"github.com/fleetplan/fleetplan/pkg/costplan"
)

// scenarioPreset overrides the traffic volume knobs of a base configuration.
type scenarioPreset struct {
	label             string
	concurrentPlayers int
	sessionHours      float64
}

// scenarioPresets is the fixed comparison ladder. Output order follows this
// declaration order; callers may index into the result.
var scenarioPresets = []scenarioPreset{
	{"Low Traffic", 100, 1},
	{"Medium Traffic", 1000, 2},
	{"High Traffic", 5000, 3},
	{"Peak Traffic", 10000, 4},
}

// GenerateScenarios runs the calculator across the preset ladder. Instance
// type, fleet mode, storage, transfer and region count are carried through
// from base unchanged; only concurrency and session duration vary.
func (c *Calculator) GenerateScenarios(base TrafficParameters, region string) ([]costplan.ScenarioResult, error) {
	results := make([]costplan.ScenarioResult, 0, len(scenarioPresets))
	for _, preset := range scenarioPresets {
		params := base
		params.ConcurrentPlayers = preset.concurrentPlayers
		params.SessionDurationHours = preset.sessionHours

		bd, err := c.CalculateCosts(params, region)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", preset.label, err)
		}
		results = append(results, costplan.ScenarioResult{
			Label:             preset.label,
			ConcurrentPlayers: preset.concurrentPlayers,
			SessionHours:      preset.sessionHours,
			Breakdown:         bd,
		})
	}
	return results, nil
}
