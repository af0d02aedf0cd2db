package stats

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/placehub/placehub-api/internal/repository"
)

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Pipeline  PipelineStats `json:"pipeline"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapSys      uint64 `json:"heap_sys"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

type PipelineStats struct {
	UpstreamRequests   int64  `json:"upstream_requests"`
	GeoCacheSize       int    `json:"geo_cache_size"`
	GeoCacheHits       int64  `json:"geo_cache_hits"`
	FavoritesCount     int    `json:"favorites_count"`
	PersistedFavorites *int64 `json:"persisted_favorites,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// UpstreamSource reports issued provider requests
type UpstreamSource interface {
	Requests() int64
}

// CacheSource reports geocode cache usage
type CacheSource interface {
	CacheLen() int
	CacheHits() int64
}

// FavoritesSource reports the in-memory favorites count
type FavoritesSource interface {
	Len() int
}

type Collector struct {
	upstream  UpstreamSource
	cache     CacheSource
	favorites FavoritesSource
	db        *sqlx.DB // nil when favorites are memory-only

	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var (
	memStatsCacheDuration = 5 * time.Second
)

func NewCollector(upstream UpstreamSource, cache CacheSource, favorites FavoritesSource, db *sqlx.DB) *Collector {
	return &Collector{
		upstream:  upstream,
		cache:     cache,
		favorites: favorites,
		db:        db,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()
	stats.Pipeline = c.collectPipelineStats(ctx)
	stats.Runtime = c.collectRuntimeStats()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectPipelineStats(ctx context.Context) PipelineStats {
	stats := PipelineStats{}

	if c.upstream != nil {
		stats.UpstreamRequests = c.upstream.Requests()
	}
	if c.cache != nil {
		stats.GeoCacheSize = c.cache.CacheLen()
		stats.GeoCacheHits = c.cache.CacheHits()
	}
	if c.favorites != nil {
		stats.FavoritesCount = c.favorites.Len()
	}
	if c.db != nil {
		if count, err := repository.CountFavorites(ctx, c.db); err == nil {
			stats.PersistedFavorites = &count
		}
	}

	return stats
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
