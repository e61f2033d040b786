package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fleetplan/fleetplan/internal/apiserver"
	"github.com/fleetplan/fleetplan/internal/config"
	"github.com/fleetplan/fleetplan/internal/estimator"
	"github.com/fleetplan/fleetplan/internal/pricing"
	"github.com/fleetplan/fleetplan/internal/store"
	"github.com/fleetplan/fleetplan/pkg/advisor"
)

func main() {
	var (
		configFile string
		addr       string
		port       int
	)
	flag.StringVar(&configFile, "config", "/etc/fleetplan/config.yaml", "Path to config file")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.IntVar(&port, "port", 0, "Listen port (overrides config)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		slog.Warn("failed to load config file, falling back to defaults", "path", configFile, "error", err)
		cfg = config.DefaultConfig()
	}
	if addr != "" {
		cfg.APIServer.Address = addr
	}
	if port != 0 {
		cfg.APIServer.Port = port
	}
	if ve := config.ValidateDetailed(cfg); ve != nil {
		slog.Error("invalid configuration", "error", ve, "configFile", configFile)
		os.Exit(1)
	}

	slog.Info("starting fleetplan",
		"addr", cfg.APIServer.Address, "port", cfg.APIServer.Port,
		"liveRates", cfg.Pricing.LiveRates)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open SQLite database (nil-safe: if it fails, everything works in-memory)
	var appDB *store.DB
	if cfg.Database.Path != "" {
		var dbErr error
		appDB, dbErr = store.Open(store.Config{
			Path:          cfg.Database.Path,
			RetentionDays: cfg.Database.RetentionDays,
		})
		if dbErr != nil {
			slog.Warn("database open failed, continuing in-memory", "error", dbErr)
		} else {
			slog.Info("database opened", "path", cfg.Database.Path)
		}
	}

	var sqlDBRef *sql.DB
	var dbWriter *store.Writer
	if appDB != nil {
		sqlDBRef = appDB.RawDB()
		dbWriter = store.NewWriter(sqlDBRef, 4096)
		dbWriter.Run(ctx)
	}

	// Pricing: static card seeded immediately, optional live overlay.
	rateCache := store.NewPricingCache(sqlDBRef)
	priceStore := pricing.NewStore()

	var live pricing.RateFetcher
	if cfg.Pricing.LiveRates {
		src, err := pricing.NewAWSRateSource(ctx)
		if err != nil {
			slog.Warn("live rates unavailable, using static card", "error", err)
		} else {
			live = src
		}
	}
	seeder := pricing.NewSeeder(priceStore, rateCache, live)
	seeder.Seed(ctx)
	if live != nil && cfg.Pricing.RefreshSchedule != "" {
		if err := seeder.StartSchedule(ctx, cfg.Pricing.RefreshSchedule); err != nil {
			slog.Error("failed to start pricing refresh schedule", "error", err)
			os.Exit(1)
		}
	}

	calc := estimator.NewCalculator(priceStore)

	auditLog := store.NewAuditLogWithDB(cfg.Audit.MaxEvents, sqlDBRef, dbWriter)
	estimates := store.NewEstimateStore(sqlDBRef)

	adv := advisor.New(advisor.Config{
		Enabled: cfg.Advisor.Enabled,
		Model:   cfg.Advisor.Model,
		Timeout: cfg.Advisor.Timeout,
	})

	srv := apiserver.NewServer(cfg, calc, priceStore, estimates, auditLog, adv)

	go func() {
		slog.Info("api server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("api server shutdown", "error", err)
	}

	// Flush pending writes before closing the database.
	auditLog.Flush()
	if appDB != nil {
		appDB.Close()
	}
}
