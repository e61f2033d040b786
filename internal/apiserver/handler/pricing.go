package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetplan/fleetplan/internal/pricing"
)

type PricingHandler struct {
	store *pricing.Store
}

func NewPricingHandler(store *pricing.Store) *PricingHandler {
	return &PricingHandler{store: store}
}

// GetRegions lists the supported regions.
func (h *PricingHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"regions":   h.store.Regions(),
		"updatedAt": h.store.UpdatedAt(),
	})
}

type pricingEntry struct {
	InstanceType       string  `json:"instanceType"`
	Family             string  `json:"family"`
	Size               string  `json:"size"`
	VCPUs              int     `json:"vCPUs"`
	MemoryMiB          int64   `json:"memoryMiB"`
	HourlyRate         float64 `json:"hourlyRate"`
	PlatformMultiplier float64 `json:"platformMultiplier"`
	EffectiveRate      float64 `json:"effectiveHourlyRate"`
}

// GetTable returns one region's entries with staleness metadata.
func (h *PricingHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")

	entries, err := h.store.Entries(region)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	rates, err := h.store.RegionRates(region)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	out := make([]pricingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, pricingEntry{
			InstanceType:       e.InstanceType,
			Family:             e.Family,
			Size:               e.Size,
			VCPUs:              e.VCPUs,
			MemoryMiB:          e.MemoryMiB,
			HourlyRate:         e.HourlyRate,
			PlatformMultiplier: e.PlatformMultiplier,
			EffectiveRate:      e.EffectiveHourlyRate(),
		})
	}

	resp := map[string]interface{}{
		"region":            region,
		"entries":           out,
		"storagePerGBMonth": rates.StoragePerGBMonth,
		"egressPerGB":       rates.EgressPerGB,
		"serviceFees":       h.store.ServiceFees(),
		"updatedAt":         h.store.UpdatedAt(),
		"stale":             h.store.Stale() != nil,
	}
	writeJSON(w, http.StatusOK, resp)
}
