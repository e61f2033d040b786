package pricing

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeFetcher serves canned rates per region and records calls.
type fakeFetcher struct {
	rates map[string]map[string]float64 // region -> instanceType -> rate
	err   error
	calls []string
}

func (f *fakeFetcher) FetchRates(_ context.Context, region string) (map[string]float64, error) {
	f.calls = append(f.calls, region)
	if f.err != nil {
		return nil, f.err
	}
	rates, ok := f.rates[region]
	if !ok {
		return nil, errors.New("no rates for region")
	}
	// Hand out a copy so the seeder's sanitization cannot mutate fixtures.
	out := make(map[string]float64, len(rates))
	for k, v := range rates {
		out[k] = v
	}
	return out, nil
}

// fakeCache is an in-memory RateCache.
type fakeCache struct {
	data map[string]map[string]float64
	puts int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]map[string]float64{}}
}

func (c *fakeCache) Get(source, region string) (map[string]float64, bool) {
	rates, ok := c.data[source+":"+region]
	return rates, ok
}

func (c *fakeCache) Put(source, region string, rates map[string]float64) {
	c.data[source+":"+region] = rates
	c.puts++
}

func allRegionsRates(rate float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(regionProfiles))
	for region := range regionProfiles {
		out[region] = map[string]float64{"c5.large": rate}
	}
	return out
}

func TestSeeder_SeedStaticOnly(t *testing.T) {
	store := NewStore()
	s := NewSeeder(store, nil, nil)

	s.Seed(context.Background())

	entry, err := store.Resolve("us-east-1", "c5.large")
	if err != nil {
		t.Fatalf("Resolve() after Seed error = %v", err)
	}
	if entry.HourlyRate != 0.085 {
		t.Errorf("static rate = %v, want 0.085", entry.HourlyRate)
	}
	if store.UpdatedAt().IsZero() {
		t.Error("UpdatedAt() is zero after Seed")
	}
}

func TestSeeder_SeedOverlaysCachedRates(t *testing.T) {
	cache := newFakeCache()
	cache.Put("aws", "us-east-1", map[string]float64{"c5.large": 0.091})
	cache.puts = 0

	store := NewStore()
	s := NewSeeder(store, cache, nil)
	s.Seed(context.Background())

	entry, err := store.Resolve("us-east-1", "c5.large")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if entry.HourlyRate != 0.091 {
		t.Errorf("cached overlay rate = %v, want 0.091", entry.HourlyRate)
	}
	// Other entries keep their card rates.
	other, err := store.Resolve("us-east-1", "m5.large")
	if err != nil {
		t.Fatalf("Resolve(m5.large) error = %v", err)
	}
	if other.HourlyRate != 0.096 {
		t.Errorf("non-overlaid rate = %v, want 0.096", other.HourlyRate)
	}
}

func TestSeeder_RefreshOverlaysAndCaches(t *testing.T) {
	fetcher := &fakeFetcher{rates: allRegionsRates(0.0999)}
	cache := newFakeCache()
	store := NewStore()
	s := NewSeeder(store, cache, fetcher)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	entry, err := store.Resolve("us-east-1", "c5.large")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if entry.HourlyRate != 0.0999 {
		t.Errorf("live rate = %v, want 0.0999", entry.HourlyRate)
	}
	// The multiplier always comes from the card, never the API.
	if entry.PlatformMultiplier != PlatformMultiplier {
		t.Errorf("multiplier after refresh = %v, want %v", entry.PlatformMultiplier, PlatformMultiplier)
	}
	if len(fetcher.calls) != len(regionProfiles) {
		t.Errorf("fetched %d regions, want %d", len(fetcher.calls), len(regionProfiles))
	}
	if cache.puts != len(regionProfiles) {
		t.Errorf("cached %d regions, want %d", cache.puts, len(regionProfiles))
	}
}

// Rates for instance types not in the card are ignored; the card defines
// which pairs exist.
func TestSeeder_RefreshNeverAddsEntries(t *testing.T) {
	rates := allRegionsRates(0.1)
	for region := range rates {
		rates[region]["x1e.32xlarge"] = 26.688
	}
	store := NewStore()
	s := NewSeeder(store, nil, &fakeFetcher{rates: rates})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if _, err := store.Resolve("us-east-1", "x1e.32xlarge"); err == nil {
		t.Error("refresh added an instance type absent from the rate card")
	}
}

// Out-of-bounds rates are dropped; the card rate survives for those entries.
func TestSeeder_RefreshSanitizesRates(t *testing.T) {
	rates := make(map[string]map[string]float64, len(regionProfiles))
	for region := range regionProfiles {
		rates[region] = map[string]float64{
			"c5.large":  0.0,    // below minimum: API noise
			"m5.large":  9000.0, // above maximum
			"c5.xlarge": 0.18,   // sane
		}
	}
	store := NewStore()
	s := NewSeeder(store, nil, &fakeFetcher{rates: rates})

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	c5large, _ := store.Resolve("us-east-1", "c5.large")
	if c5large.HourlyRate != 0.085 {
		t.Errorf("c5.large rate = %v, want card rate 0.085 (zero rate dropped)", c5large.HourlyRate)
	}
	m5large, _ := store.Resolve("us-east-1", "m5.large")
	if m5large.HourlyRate != 0.096 {
		t.Errorf("m5.large rate = %v, want card rate 0.096 (absurd rate dropped)", m5large.HourlyRate)
	}
	c5xlarge, _ := store.Resolve("us-east-1", "c5.xlarge")
	if c5xlarge.HourlyRate != 0.18 {
		t.Errorf("c5.xlarge rate = %v, want live 0.18", c5xlarge.HourlyRate)
	}
}

func TestSeeder_RefreshAllRegionsFail(t *testing.T) {
	store := NewStore()
	before := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Swap(DefaultTables(), DefaultServiceFees, before)

	s := NewSeeder(store, nil, &fakeFetcher{err: errors.New("throttled")})
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() with all regions failing returned nil error")
	}
	// The failed refresh must not advance the generation stamp.
	if !store.UpdatedAt().Equal(before) {
		t.Errorf("UpdatedAt() advanced to %v after a failed refresh", store.UpdatedAt())
	}
}

func TestSeeder_RefreshWithoutLiveSource(t *testing.T) {
	s := NewSeeder(NewStore(), nil, nil)
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() without a live source returned nil error")
	}
}

// A failed region keeps its cached rates while successful regions go live.
func TestSeeder_RefreshPartialFailureUsesCache(t *testing.T) {
	fetcher := &fakeFetcher{rates: map[string]map[string]float64{
		"us-east-1": {"c5.large": 0.088},
		// every other region errors
	}}
	cache := newFakeCache()
	cache.Put("aws", "eu-west-1", map[string]float64{"c5.large": 0.095})
	cache.puts = 0

	store := NewStore()
	s := NewSeeder(store, cache, fetcher)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	live, _ := store.Resolve("us-east-1", "c5.large")
	if live.HourlyRate != 0.088 {
		t.Errorf("us-east-1 rate = %v, want live 0.088", live.HourlyRate)
	}
	cached, _ := store.Resolve("eu-west-1", "c5.large")
	if cached.HourlyRate != 0.095 {
		t.Errorf("eu-west-1 rate = %v, want cached 0.095", cached.HourlyRate)
	}
}

func TestSeeder_RefreshIfStale(t *testing.T) {
	store := NewStore()
	store.Swap(DefaultTables(), DefaultServiceFees, time.Now())

	fetcher := &fakeFetcher{rates: allRegionsRates(0.1)}
	s := NewSeeder(store, nil, fetcher)

	// Fresh tables: no refresh call.
	s.RefreshIfStale(context.Background())
	if len(fetcher.calls) != 0 {
		t.Fatalf("RefreshIfStale() on fresh tables fetched %d regions", len(fetcher.calls))
	}

	// Age the generation past the threshold.
	store.Swap(DefaultTables(), DefaultServiceFees, time.Now().Add(-StaleThreshold-time.Hour))
	s.RefreshIfStale(context.Background())
	if len(fetcher.calls) == 0 {
		t.Fatal("RefreshIfStale() on stale tables did not fetch")
	}
}

// fakeSpecFetcher is a fakeFetcher that also serves instance metadata.
type fakeSpecFetcher struct {
	fakeFetcher
	specs map[string]InstanceSpec
}

func (f *fakeSpecFetcher) FetchSpecs(_ context.Context, _ []string) (map[string]InstanceSpec, error) {
	return f.specs, nil
}

func TestSeeder_RefreshAppliesLiveSpecs(t *testing.T) {
	fetcher := &fakeSpecFetcher{
		fakeFetcher: fakeFetcher{rates: allRegionsRates(0.1)},
		specs: map[string]InstanceSpec{
			"c5.large": {VCPUs: 2, MemoryMiB: 4200},
		},
	}
	store := NewStore()
	s := NewSeeder(store, nil, fetcher)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	entry, _ := store.Resolve("eu-west-1", "c5.large")
	if entry.MemoryMiB != 4200 {
		t.Errorf("MemoryMiB = %d, want live 4200", entry.MemoryMiB)
	}
	// Types without live metadata keep their card specs.
	other, _ := store.Resolve("eu-west-1", "m5.large")
	if other.MemoryMiB != 8*1024 {
		t.Errorf("m5.large MemoryMiB = %d, want card 8192", other.MemoryMiB)
	}
}

func TestSeeder_StartScheduleRejectsBadSpec(t *testing.T) {
	s := NewSeeder(NewStore(), nil, nil)
	if err := s.StartSchedule(context.Background(), "not a cron spec"); err == nil {
		t.Fatal("StartSchedule() with invalid spec returned nil error")
	}
}

func TestSanitizeRates(t *testing.T) {
	rates := map[string]float64{
		"a": 0.05,
		"b": -1,
		"c": 0,
		"d": 1000,
		"e": 199.99,
	}
	removed := sanitizeRates(rates)
	if removed != 3 {
		t.Errorf("sanitizeRates() removed %d, want 3", removed)
	}
	if _, ok := rates["a"]; !ok {
		t.Error("sane rate a was removed")
	}
	if _, ok := rates["e"]; !ok {
		t.Error("sane rate e was removed")
	}
}
