package store

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"
)

// PricingCache provides a two-layer cache (in-memory + SQLite) for fetched
// instance rates, so restarts and scheduled reseeds don't depend on the
// pricing API being reachable. All methods are nil-safe: if the underlying
// *sql.DB is nil the cache operates purely in-memory.
type PricingCache struct {
	db  *sql.DB
	ttl time.Duration

	mu      sync.RWMutex
	mem     map[string]map[string]float64 // "source:region" -> instanceType -> rate
	memTime map[string]time.Time          // "source:region" -> last updated
}

const (
	defaultPricingCacheTTL = 24 * time.Hour
	memoryPricingCacheTTL  = 1 * time.Hour
)

// NewPricingCache creates a PricingCache backed by the given database.
// If db is nil, the cache works in-memory only.
func NewPricingCache(db *sql.DB) *PricingCache {
	pc := &PricingCache{
		db:      db,
		ttl:     defaultPricingCacheTTL,
		mem:     make(map[string]map[string]float64),
		memTime: make(map[string]time.Time),
	}
	if db != nil {
		pc.ensureTable()
	}
	return pc
}

func (c *PricingCache) ensureTable() {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pricing_cache (
			source TEXT NOT NULL,
			region TEXT NOT NULL,
			instance_type TEXT NOT NULL,
			rate_per_hour REAL NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (source, region, instance_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pricing_cache_updated ON pricing_cache(source, region, updated_at)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			// Log but don't fail — cache will fall back to in-memory only
			fmt.Fprintf(os.Stderr, "pricing_cache: table init failed: %v\n", err)
		}
	}
}

func cacheKey(source, region string) string {
	return source + ":" + region
}

// Get returns cached rates for a source+region. It checks the in-memory
// cache first (1h TTL), then SQLite (24h TTL). Returns nil, false on miss.
func (c *PricingCache) Get(source, region string) (map[string]float64, bool) {
	key := cacheKey(source, region)

	c.mu.RLock()
	if rates, ok := c.mem[key]; ok {
		if time.Since(c.memTime[key]) < memoryPricingCacheTTL {
			// Copy to avoid races on the caller side.
			cp := make(map[string]float64, len(rates))
			for k, v := range rates {
				cp[k] = v
			}
			c.mu.RUnlock()
			return cp, true
		}
	}
	c.mu.RUnlock()

	if c.db == nil {
		return nil, false
	}

	cutoff := time.Now().Add(-c.ttl).Unix()
	rows, err := c.db.Query(
		`SELECT instance_type, rate_per_hour FROM pricing_cache
		 WHERE source = ? AND region = ? AND updated_at > ?`,
		source, region, cutoff,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	rates := make(map[string]float64)
	for rows.Next() {
		var it string
		var rate float64
		if err := rows.Scan(&it, &rate); err != nil {
			continue
		}
		rates[it] = rate
	}
	if len(rates) == 0 {
		return nil, false
	}

	// Populate in-memory cache from SQLite.
	c.mu.Lock()
	c.mem[key] = rates
	c.memTime[key] = time.Now()
	c.mu.Unlock()

	cp := make(map[string]float64, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return cp, true
}

// Put writes rates to both the in-memory and SQLite caches.
func (c *PricingCache) Put(source, region string, rates map[string]float64) {
	key := cacheKey(source, region)

	cp := make(map[string]float64, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	c.mu.Lock()
	c.mem[key] = cp
	c.memTime[key] = time.Now()
	c.mu.Unlock()

	if c.db == nil {
		return
	}

	now := time.Now().Unix()
	tx, err := c.db.Begin()
	if err != nil {
		return
	}
	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO pricing_cache (source, region, instance_type, rate_per_hour, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		tx.Rollback()
		return
	}
	defer stmt.Close()

	for it, rate := range rates {
		if _, err = stmt.Exec(source, region, it, rate, now); err != nil {
			tx.Rollback()
			return
		}
	}
	tx.Commit()
}
