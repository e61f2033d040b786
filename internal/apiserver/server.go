package apiserver

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fleetplan/fleetplan/internal/config"
	"github.com/fleetplan/fleetplan/internal/estimator"
	"github.com/fleetplan/fleetplan/internal/pricing"
	"github.com/fleetplan/fleetplan/internal/store"
	"github.com/fleetplan/fleetplan/pkg/advisor"
)

// NewServer creates a new HTTP server for the REST API.
func NewServer(cfg *config.Config, calc *estimator.Calculator, prices *pricing.Store, estimates *store.EstimateStore, audit *store.AuditLog, adv *advisor.Advisor) *http.Server {
	router := NewRouter(calc, prices, estimates, audit, adv)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.APIServer.Address, cfg.APIServer.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
