package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetplan/fleetplan/internal/estimator"
	"github.com/fleetplan/fleetplan/internal/pricing"
)

// writeJSON is a shared helper for all handlers.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeEngineError maps engine error types onto HTTP statuses: invariant
// violations are the client's fault (422), unknown region/instance pairs are
// 404, anything else is a 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var ve *estimator.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "invalid parameters",
			Details: ve.Errors,
		})
		return
	}
	var nf *pricing.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
