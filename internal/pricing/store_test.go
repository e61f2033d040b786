package pricing

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestStore_ResolveHitAndMiss(t *testing.T) {
	store := NewStaticStore()

	entry, err := store.Resolve("us-east-1", "c5.large")
	if err != nil {
		t.Fatalf("Resolve(us-east-1, c5.large) error = %v", err)
	}
	if entry.InstanceType != "c5.large" || entry.Family != "c5" || entry.Size != "large" {
		t.Errorf("resolved entry = %+v", entry)
	}

	_, err = store.Resolve("us-east-1", "x1e.32xlarge")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("unknown instance error = %v, want *NotFoundError", err)
	}
	if nf.Region != "us-east-1" || nf.InstanceType != "x1e.32xlarge" {
		t.Errorf("NotFoundError = %+v", nf)
	}

	_, err = store.Resolve("mars-north-1", "c5.large")
	if !errors.As(err, &nf) {
		t.Fatalf("unknown region error = %v, want *NotFoundError", err)
	}
	if nf.Region != "mars-north-1" || nf.InstanceType != "" {
		t.Errorf("NotFoundError = %+v", nf)
	}
}

func TestStore_EmptyUntilSwap(t *testing.T) {
	store := NewStore()

	if _, err := store.Resolve("us-east-1", "c5.large"); err == nil {
		t.Error("Resolve() on empty store returned nil error")
	}
	if _, err := store.RegionRates("us-east-1"); err == nil {
		t.Error("RegionRates() on empty store returned nil error")
	}
	if regions := store.Regions(); len(regions) != 0 {
		t.Errorf("Regions() on empty store = %v", regions)
	}

	store.Swap(DefaultTables(), DefaultServiceFees, time.Now())
	if _, err := store.Resolve("us-east-1", "c5.large"); err != nil {
		t.Errorf("Resolve() after Swap error = %v", err)
	}
}

func TestStore_SwapReplacesGeneration(t *testing.T) {
	store := NewStaticStore()

	custom := map[string]*Table{
		"us-east-1": {
			Region: "us-east-1",
			Rates:  RegionRates{StoragePerGBMonth: 0.10, EgressPerGB: 0.10},
			Entries: []PricingEntry{{
				InstanceType: "c5.large", Family: "c5", Size: "large",
				VCPUs: 2, MemoryMiB: 4096,
				HourlyRate: 0.09, PlatformMultiplier: PlatformMultiplier,
			}},
		},
	}
	stamp := time.Now().Add(-time.Hour)
	store.Swap(custom, DefaultServiceFees, stamp)

	entry, err := store.Resolve("us-east-1", "c5.large")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if entry.HourlyRate != 0.09 {
		t.Errorf("rate after swap = %v, want 0.09", entry.HourlyRate)
	}
	if !store.UpdatedAt().Equal(stamp) {
		t.Errorf("UpdatedAt() = %v, want %v", store.UpdatedAt(), stamp)
	}
	// Regions from the old generation are gone, not merged.
	if _, err := store.Resolve("eu-west-1", "c5.large"); err == nil {
		t.Error("eu-west-1 survived a swap that did not include it")
	}
}

func TestStore_Staleness(t *testing.T) {
	store := NewStore()
	loadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Swap(DefaultTables(), DefaultServiceFees, loadedAt)

	tests := []struct {
		name      string
		now       time.Time
		wantStale bool
	}{
		{"fresh", loadedAt.Add(time.Hour), false},
		{"just inside threshold", loadedAt.Add(StaleThreshold), false},
		{"just past threshold", loadedAt.Add(StaleThreshold + time.Minute), true},
		{"weeks old", loadedAt.Add(30 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.now = func() time.Time { return tt.now }
			warn := store.Stale()
			if (warn != nil) != tt.wantStale {
				t.Fatalf("Stale() = %v, want stale=%v", warn, tt.wantStale)
			}
			if warn != nil {
				if !warn.UpdatedAt.Equal(loadedAt) {
					t.Errorf("warning UpdatedAt = %v, want %v", warn.UpdatedAt, loadedAt)
				}
				if warn.Age != tt.now.Sub(loadedAt) {
					t.Errorf("warning Age = %v, want %v", warn.Age, tt.now.Sub(loadedAt))
				}
			}
		})
	}
}

// generationTables builds a two-entry table whose every field is derived from
// the generation marker, so a reader can tell whether everything it observed
// came from the same generation.
func generationTables(gen int) map[string]*Table {
	rate := float64(gen)
	entries := []PricingEntry{
		{InstanceType: "c5.large", Family: "c5", Size: "large", VCPUs: gen, MemoryMiB: int64(gen), HourlyRate: rate, PlatformMultiplier: 1},
		{InstanceType: "m5.large", Family: "m5", Size: "large", VCPUs: gen, MemoryMiB: int64(gen), HourlyRate: rate, PlatformMultiplier: 1},
	}
	return map[string]*Table{
		"us-east-1": {
			Region:  "us-east-1",
			Entries: entries,
			Rates:   RegionRates{StoragePerGBMonth: rate, EgressPerGB: rate},
		},
	}
}

// Readers racing a reseed must see either the old or the new generation in
// full, never a mix. Run with -race.
func TestStore_ConcurrentSwapIsAtomic(t *testing.T) {
	store := NewStore()
	store.Swap(generationTables(1), DefaultServiceFees, time.Now())

	done := make(chan struct{})
	errCh := make(chan string, 1)
	report := func(msg string) {
		select {
		case errCh <- msg:
		default:
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}

				entries, err := store.Entries("us-east-1")
				if err != nil {
					report(fmt.Sprintf("Entries() error = %v", err))
					return
				}
				gen := entries[0].HourlyRate
				if gen != 1 && gen != 2 {
					report(fmt.Sprintf("observed rate %v, not a known generation", gen))
					return
				}
				for _, e := range entries {
					if e.HourlyRate != gen || e.VCPUs != int(gen) || e.MemoryMiB != int64(gen) {
						report(fmt.Sprintf("mixed generations in one read: %+v vs generation %v", e, gen))
						return
					}
				}

				entry, err := store.Resolve("us-east-1", "m5.large")
				if err != nil {
					report(fmt.Sprintf("Resolve() error = %v", err))
					return
				}
				if entry.HourlyRate != 1 && entry.HourlyRate != 2 {
					report(fmt.Sprintf("Resolve() rate %v, not a known generation", entry.HourlyRate))
					return
				}

				rates, err := store.RegionRates("us-east-1")
				if err != nil {
					report(fmt.Sprintf("RegionRates() error = %v", err))
					return
				}
				if rates.StoragePerGBMonth != rates.EgressPerGB {
					report(fmt.Sprintf("mixed generations in RegionRates: %+v", rates))
					return
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		store.Swap(generationTables(1+i%2), DefaultServiceFees, time.Now())
	}
	close(done)
	wg.Wait()

	select {
	case msg := <-errCh:
		t.Fatal(msg)
	default:
	}
}

func TestStore_RegionsSorted(t *testing.T) {
	store := NewStaticStore()
	regions := store.Regions()
	if len(regions) == 0 {
		t.Fatal("Regions() is empty")
	}
	if !sort.StringsAreSorted(regions) {
		t.Errorf("Regions() not sorted: %v", regions)
	}
}

// Entries hands out a copy: mutating it must not touch the loaded tables.
func TestStore_EntriesReturnsCopy(t *testing.T) {
	store := NewStaticStore()

	entries, err := store.Entries("us-east-1")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	entries[0].HourlyRate = 999

	again, err := store.Entries("us-east-1")
	if err != nil {
		t.Fatalf("second Entries() error = %v", err)
	}
	if again[0].HourlyRate == 999 {
		t.Error("mutation through Entries() result leaked into the store")
	}

	if _, err := store.Entries("mars-north-1"); err == nil {
		t.Error("Entries() for unknown region returned nil error")
	}
}
