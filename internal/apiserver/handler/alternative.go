package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fleetplan/fleetplan/internal/estimator"
)

type AlternativeHandler struct {
	calc     *estimator.Calculator
	validate *validator.Validate
}

func NewAlternativeHandler(calc *estimator.Calculator) *AlternativeHandler {
	return &AlternativeHandler{calc: calc, validate: validator.New()}
}

// Propose prices the fixed substitution set against the request's baseline.
func (h *AlternativeHandler) Propose(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed JSON body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	alts, err := h.calc.ProposeAlternatives(req.Params(), req.Region)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, alts)
}
