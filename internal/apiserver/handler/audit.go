package handler

import (
	"net/http"
	"strconv"

	"github.com/fleetplan/fleetplan/internal/store"
)

type AuditHandler struct {
	audit *store.AuditLog
}

func NewAuditHandler(audit *store.AuditLog) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns recent audit events, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	events := h.audit.GetRecent(limit)
	if events == nil {
		events = []store.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}
