package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetplan/fleetplan/internal/estimator"
	intmetrics "github.com/fleetplan/fleetplan/internal/metrics"
	"github.com/fleetplan/fleetplan/internal/store"
)

// EstimateRequest is the wire shape for estimate and scenario calls. The
// validator tags catch malformed requests at the boundary; the engine's own
// Validate is still the authority on the invariants.
type EstimateRequest struct {
	Region                string  `json:"region" validate:"required"`
	ConcurrentPlayers     int     `json:"concurrentPlayers" validate:"required,min=1"`
	SessionDurationHours  float64 `json:"sessionDurationHours" validate:"required,gt=0"`
	RegionsCount          int     `json:"regionsCount" validate:"required,min=1"`
	InstanceType          string  `json:"instanceType" validate:"required"`
	FleetMode             string  `json:"fleetMode" validate:"required,oneof=spot on_demand"`
	StorageGB             float64 `json:"storageGB" validate:"gte=0"`
	MonthlyDataTransferGB float64 `json:"monthlyDataTransferGB" validate:"gte=0"`
}

// Params converts the wire shape into engine parameters.
func (r EstimateRequest) Params() estimator.TrafficParameters {
	return estimator.TrafficParameters{
		ConcurrentPlayers:     r.ConcurrentPlayers,
		SessionDurationHours:  r.SessionDurationHours,
		RegionsCount:          r.RegionsCount,
		InstanceType:          r.InstanceType,
		FleetMode:             estimator.FleetMode(r.FleetMode),
		StorageGB:             r.StorageGB,
		MonthlyDataTransferGB: r.MonthlyDataTransferGB,
	}
}

type EstimateHandler struct {
	calc      *estimator.Calculator
	estimates *store.EstimateStore
	audit     *store.AuditLog
	validate  *validator.Validate
}

func NewEstimateHandler(calc *estimator.Calculator, estimates *store.EstimateStore, audit *store.AuditLog) *EstimateHandler {
	return &EstimateHandler{
		calc:      calc,
		estimates: estimates,
		audit:     audit,
		validate:  validator.New(),
	}
}

// Create computes a breakdown, persists a snapshot and returns both.
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		intmetrics.EstimateErrorsTotal.WithLabelValues("validation").Inc()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	bd, err := h.calc.CalculateCosts(req.Params(), req.Region)
	if err != nil {
		intmetrics.EstimateErrorsTotal.WithLabelValues("engine").Inc()
		writeEngineError(w, err)
		return
	}
	intmetrics.EstimatesTotal.WithLabelValues(req.Region, req.FleetMode).Inc()
	if bd.PricingStale {
		intmetrics.PricingStale.Set(1)
	} else {
		intmetrics.PricingStale.Set(0)
	}

	id, err := h.estimates.Save(req.Region, req, bd)
	if err != nil {
		// The breakdown is still valid; persistence is best-effort.
		slog.Warn("estimate: snapshot save failed", "error", err)
	}
	if h.audit != nil {
		h.audit.Record("estimate.create", req.InstanceType+"@"+req.Region, userFrom(r),
			fmt.Sprintf("players=%d monthly=$%.2f", req.ConcurrentPlayers, bd.Total.MonthlyOperationalUSD))
	}

	resp := map[string]interface{}{
		"id":        id,
		"breakdown": bd,
	}
	if bd.PricingStale {
		resp["warning"] = "pricing table is older than the staleness threshold; estimates may drift from current rates"
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one persisted snapshot.
func (h *EstimateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.estimates.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "estimate not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// List returns recent snapshots, newest first.
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	snaps, err := h.estimates.List(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if snaps == nil {
		snaps = []store.EstimateSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// userFrom extracts the acting user for audit records. There is no auth
// layer; the reverse proxy may set X-Forwarded-User.
func userFrom(r *http.Request) string {
	if u := r.Header.Get("X-Forwarded-User"); u != "" {
		return u
	}
	return "anonymous"
}
