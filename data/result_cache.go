// Package data provides thread-safe storage for backend results. Reads are
// lock-free through an atomic snapshot; writers copy the map and swap it.
package data

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/metrics"
)

// Compile-time check to ensure ResultCache implements ResultStore
var _ interfaces.ResultStore = (*ResultCache)(nil)

type cacheEntry struct {
	result   *entities.DrugInfoResult
	storedAt time.Time
}

// ResultCache holds recent drug lookups keyed by NormalizeKey. Entries
// expire after ttl and the oldest entry is evicted when maxEntries is reached.
type ResultCache struct {
	entries    atomic.Value // map[string]cacheEntry
	writeMu    sync.Mutex
	pruning    atomic.Bool
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewResultCache creates an empty cache
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	rc := &ResultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
	rc.entries.Store(make(map[string]cacheEntry))
	return rc
}

func (rc *ResultCache) snapshot() map[string]cacheEntry {
	if v := rc.entries.Load(); v != nil {
		if m, ok := v.(map[string]cacheEntry); ok {
			return m
		}
	}

	logging.Warn("Result cache is empty or invalid")
	return map[string]cacheEntry{}
}

// Lookup returns the cached result for drugName if it has not expired
func (rc *ResultCache) Lookup(drugName string) (*entities.DrugInfoResult, bool) {
	key := NormalizeKey(drugName)
	if key == "" {
		return nil, false
	}

	entry, ok := rc.snapshot()[key]
	if ok && rc.now().Sub(entry.storedAt) >= rc.ttl {
		ok = false
	}

	metrics.ObserveCacheLookup(ok)
	if !ok {
		return nil, false
	}
	return entry.result, true
}

// Store saves result under drugName, evicting the oldest entries when full.
// Nil results and blank names are ignored.
func (rc *ResultCache) Store(drugName string, result *entities.DrugInfoResult) {
	key := NormalizeKey(drugName)
	if key == "" || result == nil || rc.maxEntries <= 0 {
		return
	}

	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()

	current := rc.snapshot()
	next := make(map[string]cacheEntry, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = cacheEntry{result: result, storedAt: rc.now()}

	for len(next) > rc.maxEntries {
		evictOldest(next)
	}

	rc.entries.Store(next)
	metrics.ResultCacheEntries.Set(float64(len(next)))
}

func evictOldest(m map[string]cacheEntry) {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, v := range m {
		if first || v.storedAt.Before(oldest) || (v.storedAt.Equal(oldest) && k < oldestKey) {
			oldestKey, oldest, first = k, v.storedAt, false
		}
	}
	delete(m, oldestKey)
}

// Prune drops entries that expired at now and returns how many were removed
func (rc *ResultCache) Prune(now time.Time) int {
	rc.writeMu.Lock()
	defer rc.writeMu.Unlock()

	current := rc.snapshot()
	next := make(map[string]cacheEntry, len(current))
	for k, v := range current {
		if now.Sub(v.storedAt) < rc.ttl {
			next[k] = v
		}
	}

	removed := len(current) - len(next)
	if removed > 0 {
		rc.entries.Store(next)
	}
	metrics.ResultCacheEntries.Set(float64(len(next)))
	return removed
}

// Len returns the number of entries, expired or not
func (rc *ResultCache) Len() int {
	return len(rc.snapshot())
}

// BeginPrune marks a prune in progress. It returns false if one already is.
func (rc *ResultCache) BeginPrune() bool {
	return rc.pruning.CompareAndSwap(false, true)
}

// EndPrune clears the prune-in-progress flag
func (rc *ResultCache) EndPrune() {
	rc.pruning.Store(false)
}

// IsPruning reports whether a prune is running
func (rc *ResultCache) IsPruning() bool {
	return rc.pruning.Load()
}
