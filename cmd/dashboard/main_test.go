package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleetplan/fleetplan/internal/config"
)

func TestAPITarget(t *testing.T) {
	tests := []struct {
		name    string
		address string
		port    int
		want    string
	}{
		{"wildcard maps to loopback", "0.0.0.0", 8080, "http://localhost:8080"},
		{"empty maps to loopback", "", 9090, "http://localhost:9090"},
		{"explicit host kept", "fleetplan.internal", 8080, "http://fleetplan.internal:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.APIServer.Address = tt.address
			cfg.APIServer.Port = tt.port
			if got := apiTarget(cfg); got != tt.want {
				t.Errorf("apiTarget() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSPAHandler_ServesIndexAndFallsBack(t *testing.T) {
	spa, err := newSPAHandler()
	if err != nil {
		t.Fatalf("newSPAHandler() error = %v", err)
	}

	// Root and unknown wizard routes both land on index.html.
	for _, path := range []string{"/", "/wizard/step-3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		spa.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s Content-Type = %q, want text/html", path, ct)
		}
		if !strings.Contains(rec.Body.String(), "<html") {
			t.Errorf("GET %s did not serve the index document", path)
		}
	}

	// An existing embedded asset goes through the file server; for
	// index.html that means the canonical redirect to the root.
	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	spa.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently {
		t.Errorf("GET /index.html status = %d, want 301", rec.Code)
	}
}
