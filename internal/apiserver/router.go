package apiserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fleetplan/fleetplan/internal/apiserver/handler"
	"github.com/fleetplan/fleetplan/internal/estimator"
	"github.com/fleetplan/fleetplan/internal/pricing"
	"github.com/fleetplan/fleetplan/internal/store"
	"github.com/fleetplan/fleetplan/pkg/advisor"
)

// NewRouter creates the API router with all endpoints.
func NewRouter(calc *estimator.Calculator, prices *pricing.Store, estimates *store.EstimateStore, audit *store.AuditLog, adv *advisor.Advisor) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	estimateHandler := handler.NewEstimateHandler(calc, estimates, audit)
	scenarioHandler := handler.NewScenarioHandler(calc)
	alternativeHandler := handler.NewAlternativeHandler(calc)
	pricingHandler := handler.NewPricingHandler(prices)
	advisoryHandler := handler.NewAdvisoryHandler(calc, adv, audit)
	auditHandler := handler.NewAuditHandler(audit)

	r.Route("/api/v1", func(r chi.Router) {
		// Estimates (literal routes before parameterized to avoid conflicts)
		r.Post("/estimates", estimateHandler.Create)
		r.Get("/estimates", estimateHandler.List)
		r.Get("/estimates/{id}", estimateHandler.Get)

		// Comparison surfaces
		r.Post("/scenarios", scenarioHandler.Compare)
		r.Post("/alternatives", alternativeHandler.Propose)

		// Pricing
		r.Get("/regions", pricingHandler.GetRegions)
		r.Get("/pricing/{region}", pricingHandler.GetTable)

		// Advisory
		r.Post("/advisory", advisoryHandler.Propose)

		// Audit
		r.Get("/audit", auditHandler.List)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
