package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fleetplan/fleetplan/internal/estimator"
	intmetrics "github.com/fleetplan/fleetplan/internal/metrics"
)

// ScenarioRequest carries the base configuration the presets are applied on
// top of. Concurrency and session duration come from the presets, so unlike
// EstimateRequest they are not required here.
type ScenarioRequest struct {
	Region                string  `json:"region" validate:"required"`
	RegionsCount          int     `json:"regionsCount" validate:"required,min=1"`
	InstanceType          string  `json:"instanceType" validate:"required"`
	FleetMode             string  `json:"fleetMode" validate:"required,oneof=spot on_demand"`
	StorageGB             float64 `json:"storageGB" validate:"gte=0"`
	MonthlyDataTransferGB float64 `json:"monthlyDataTransferGB" validate:"gte=0"`
}

func (r ScenarioRequest) baseParams() estimator.TrafficParameters {
	return estimator.TrafficParameters{
		RegionsCount:          r.RegionsCount,
		InstanceType:          r.InstanceType,
		FleetMode:             estimator.FleetMode(r.FleetMode),
		StorageGB:             r.StorageGB,
		MonthlyDataTransferGB: r.MonthlyDataTransferGB,
	}
}

type ScenarioHandler struct {
	calc     *estimator.Calculator
	validate *validator.Validate
}

func NewScenarioHandler(calc *estimator.Calculator) *ScenarioHandler {
	return &ScenarioHandler{calc: calc, validate: validator.New()}
}

// Compare runs the preset ladder and returns results in declaration order.
func (h *ScenarioHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	results, err := h.calc.GenerateScenarios(req.baseParams(), req.Region)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	intmetrics.ScenarioRunsTotal.Inc()
	writeJSON(w, http.StatusOK, results)
}
