package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	intmetrics "github.com/fleetplan/fleetplan/internal/metrics"
)

// Sanity bounds for live rates. Values outside these are API noise, not
// prices a game-server fleet would ever bill at.
const (
	minValidRate = 0.001
	maxValidRate = 200.0
)

// RateCache persists fetched rates across restarts so seeding does not
// depend on the AWS API being reachable. Implemented by store.PricingCache.
type RateCache interface {
	Get(source, region string) (map[string]float64, bool)
	Put(source, region string, rates map[string]float64)
}

// RateFetcher provides live rates. Implemented by AWSRateSource.
type RateFetcher interface {
	FetchRates(ctx context.Context, region string) (map[string]float64, error)
}

// SpecFetcher corrects rate-card vCPU/memory drift from live instance
// metadata. Optional: a RateFetcher that also implements it gets its specs
// applied during refresh.
type SpecFetcher interface {
	FetchSpecs(ctx context.Context, instanceTypes []string) (map[string]InstanceSpec, error)
}

// Seeder populates and refreshes the pricing Store. The static rate card is
// always the base; cached or live rates overlay the hourly rate of each card
// entry. Entries never appear or disappear based on live data — the card
// defines which (region, instance type) pairs exist.
type Seeder struct {
	store *Store
	cache RateCache   // nil-safe
	live  RateFetcher // nil-safe
	cron  *cron.Cron
}

func NewSeeder(store *Store, cache RateCache, live RateFetcher) *Seeder {
	return &Seeder{store: store, cache: cache, live: live}
}

// Seed loads the store from the static card overlaid with cached rates, then
// attempts a live refresh. Never fails hard: the static card alone is a
// valid (if approximate) generation.
func (s *Seeder) Seed(ctx context.Context) {
	tables := DefaultTables()
	for region := range tables {
		if s.cache == nil {
			break
		}
		if rates, ok := s.cache.Get("aws", region); ok {
			s.overlay(tables[region], rates)
		}
	}
	s.store.Swap(tables, DefaultServiceFees, time.Now())

	if s.live == nil {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("seeder: initial live refresh failed, using static/cached rates", "error", err)
	}
}

// Refresh fetches live rates for every supported region and swaps in a new
// generation. Regions whose fetch fails keep their card rates for this
// generation; the whole swap still happens so UpdatedAt advances only when
// at least one region refreshed.
func (s *Seeder) Refresh(ctx context.Context) error {
	if s.live == nil {
		return fmt.Errorf("no live rate source configured")
	}

	tables := DefaultTables()
	refreshed := 0
	for region, table := range tables {
		rates, err := s.live.FetchRates(ctx, region)
		if err != nil {
			slog.Warn("seeder: live rate fetch failed", "region", region, "error", err)
			intmetrics.PricingRefreshTotal.WithLabelValues(region, "error").Inc()
			// Keep cached rates for this region if we have them.
			if s.cache != nil {
				if cached, ok := s.cache.Get("aws", region); ok {
					s.overlay(table, cached)
				}
			}
			continue
		}
		if removed := sanitizeRates(rates); removed > 0 {
			slog.Warn("seeder: removed invalid rates from API response",
				"region", region, "removed", removed)
		}
		s.overlay(table, rates)
		if s.cache != nil {
			s.cache.Put("aws", region, rates)
		}
		intmetrics.PricingRefreshTotal.WithLabelValues(region, "ok").Inc()
		refreshed++
	}

	if refreshed == 0 {
		return fmt.Errorf("no region refreshed from live source")
	}
	if sf, ok := s.live.(SpecFetcher); ok {
		s.applySpecs(ctx, sf, tables)
	}
	s.store.Swap(tables, DefaultServiceFees, time.Now())
	intmetrics.PricingLastRefresh.Set(float64(time.Now().Unix()))
	slog.Info("seeder: pricing tables refreshed", "regions", refreshed)
	return nil
}

// RefreshIfStale refreshes only when the current generation has crossed the
// staleness threshold.
func (s *Seeder) RefreshIfStale(ctx context.Context) {
	if s.store.Stale() == nil {
		return
	}
	if err := s.Refresh(ctx); err != nil {
		slog.Warn("seeder: stale-triggered refresh failed", "error", err)
	}
}

// StartSchedule registers a cron refresh and runs it until ctx is cancelled.
func (s *Seeder) StartSchedule(ctx context.Context, schedule string) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	s.cron = cron.New()
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.Refresh(ctx); err != nil {
			slog.Warn("seeder: scheduled refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("registering refresh schedule: %w", err)
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()
	return nil
}

// applySpecs overwrites card vCPU/memory with live instance metadata. Specs
// are region-agnostic, so one fetch covers every table.
func (s *Seeder) applySpecs(ctx context.Context, sf SpecFetcher, tables map[string]*Table) {
	instanceTypes := make([]string, 0, len(baseEntries))
	for _, b := range baseEntries {
		instanceTypes = append(instanceTypes, b.instanceType)
	}
	specs, err := sf.FetchSpecs(ctx, instanceTypes)
	if err != nil {
		slog.Warn("seeder: instance spec fetch failed, keeping card specs", "error", err)
		return
	}
	for _, table := range tables {
		for i := range table.Entries {
			if spec, ok := specs[table.Entries[i].InstanceType]; ok {
				if spec.VCPUs > 0 {
					table.Entries[i].VCPUs = spec.VCPUs
				}
				if spec.MemoryMiB > 0 {
					table.Entries[i].MemoryMiB = spec.MemoryMiB
				}
			}
		}
	}
}

// overlay replaces card hourly rates with fetched ones where present and
// sane. Platform multiplier always comes from the card.
func (s *Seeder) overlay(table *Table, rates map[string]float64) {
	for i := range table.Entries {
		if r, ok := rates[table.Entries[i].InstanceType]; ok && validRate(r) {
			table.Entries[i].HourlyRate = r
		}
	}
}

func validRate(r float64) bool {
	return r >= minValidRate && r <= maxValidRate
}

// sanitizeRates drops invalid entries in place and returns how many were
// removed.
func sanitizeRates(rates map[string]float64) int {
	removed := 0
	for k, v := range rates {
		if !validRate(v) {
			delete(rates, k)
			removed++
		}
	}
	return removed
}
