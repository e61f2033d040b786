package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fleetplan/fleetplan/internal/config"
)

//go:embed web/*
var webFS embed.FS

// newSPAHandler serves the embedded wizard bundle with an index.html fallback
// so the wizard's step routes resolve on a browser refresh.
func newSPAHandler() (http.Handler, error) {
	webContent, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("embedded web assets: %w", err)
	}
	indexHTML, err := webFS.ReadFile("web/index.html")
	if err != nil {
		return nil, fmt.Errorf("embedded index.html: %w", err)
	}
	fileServer := http.FileServer(http.FS(webContent))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path != "" {
			if _, err := fs.Stat(webContent, path); err == nil {
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	}), nil
}

// apiTarget derives the proxy target from the shared config file. A service
// bound to the wildcard address is reached via loopback.
func apiTarget(cfg *config.Config) string {
	host := cfg.APIServer.Address
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, cfg.APIServer.Port)
}

func main() {
	var (
		configFile string
		apiURL     string
		port       int
	)
	flag.StringVar(&configFile, "config", "/etc/fleetplan/config.yaml", "Path to config file")
	flag.StringVar(&apiURL, "api-url", "", "FleetPlan API URL (overrides config)")
	flag.IntVar(&port, "port", 3000, "Dashboard port")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		slog.Warn("failed to load config file, falling back to defaults", "path", configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if apiURL == "" {
		apiURL = apiTarget(cfg)
	}

	target, err := url.Parse(apiURL)
	if err != nil {
		slog.Error("invalid API URL", "url", apiURL, "error", err)
		os.Exit(1)
	}
	proxy := httputil.NewSingleHostReverseProxy(target)

	spa, err := newSPAHandler()
	if err != nil {
		slog.Error("loading embedded dashboard assets", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", proxy)
	mux.Handle("/", spa)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("dashboard listening", "addr", srv.Addr, "apiProxy", apiURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("dashboard server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("dashboard shutdown", "error", err)
	}
}
