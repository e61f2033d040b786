package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fleetplan/fleetplan/internal/estimator"
	intmetrics "github.com/fleetplan/fleetplan/internal/metrics"
	"github.com/fleetplan/fleetplan/internal/store"
	"github.com/fleetplan/fleetplan/pkg/advisor"
)

// AdvisoryRequest extends an estimate request with project context for the
// advisory model.
type AdvisoryRequest struct {
	EstimateRequest
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
}

type AdvisoryHandler struct {
	calc     *estimator.Calculator
	advisor  *advisor.Advisor
	audit    *store.AuditLog
	validate *validator.Validate
}

func NewAdvisoryHandler(calc *estimator.Calculator, adv *advisor.Advisor, audit *store.AuditLog) *AdvisoryHandler {
	return &AdvisoryHandler{calc: calc, advisor: adv, audit: audit, validate: validator.New()}
}

// Propose computes the baseline and alternatives deterministically, then asks
// the advisory service to pick between them. The engine result is returned
// alongside the suggestion so the UI never depends on the model for numbers.
func (h *AdvisoryHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req AdvisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}
	if err := h.validate.Struct(req.EstimateRequest); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	bd, err := h.calc.CalculateCosts(req.Params(), req.Region)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	alts, err := h.calc.ProposeAlternatives(req.Params(), req.Region)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	suggestion, err := h.advisor.Propose(r.Context(), advisor.Request{
		ProjectName:  req.ProjectName,
		Description:  req.Description,
		Region:       req.Region,
		InstanceType: req.InstanceType,
		FleetMode:    req.FleetMode,
		Breakdown:    bd,
		Alternatives: alts,
	})
	if err != nil {
		intmetrics.AdvisoryCallsTotal.WithLabelValues("error").Inc()
		slog.Warn("advisory: propose failed", "project", req.ProjectName, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "advisory service unavailable"})
		return
	}
	intmetrics.AdvisoryCallsTotal.WithLabelValues("ok").Inc()

	if h.audit != nil {
		h.audit.Record("advisory.propose", req.InstanceType+"@"+req.Region, userFrom(r), req.ProjectName)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"breakdown":    bd,
		"alternatives": alts,
		"suggestion":   suggestion,
	})
}
