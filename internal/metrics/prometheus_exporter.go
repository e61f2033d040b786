package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Estimate metrics
	EstimatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetplan",
		Name:      "estimates_total",
		Help:      "Total number of cost estimates computed",
	}, []string{"region", "fleet_mode"})

	EstimateErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetplan",
		Name:      "estimate_errors_total",
		Help:      "Total number of estimate requests rejected",
	}, []string{"reason"})

	ScenarioRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fleetplan",
		Name:      "scenario_runs_total",
		Help:      "Total number of scenario comparison runs",
	})

	// Pricing metrics
	PricingRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetplan",
		Name:      "pricing_refresh_total",
		Help:      "Pricing table refresh attempts by region and outcome",
	}, []string{"region", "outcome"})

	PricingLastRefresh = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetplan",
		Name:      "pricing_last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful pricing refresh",
	})

	PricingStale = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fleetplan",
		Name:      "pricing_stale",
		Help:      "1 when the loaded pricing tables are older than the staleness threshold",
	})

	// Advisory metrics
	AdvisoryCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fleetplan",
		Name:      "advisory_calls_total",
		Help:      "Advisory service calls by outcome",
	}, []string{"outcome"})
)
