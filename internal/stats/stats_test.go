package stats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct{ n int64 }

func (f fakeUpstream) Requests() int64 { return f.n }

type fakeCache struct {
	size int
	hits int64
}

func (f fakeCache) CacheLen() int    { return f.size }
func (f fakeCache) CacheHits() int64 { return f.hits }

type fakeFavorites struct{ n int }

func (f fakeFavorites) Len() int { return f.n }

func TestCollector_Collect(t *testing.T) {
	collector := NewCollector(fakeUpstream{n: 42}, fakeCache{size: 3, hits: 7}, fakeFavorites{n: 2}, nil)

	stats, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), stats.Pipeline.UpstreamRequests)
	assert.Equal(t, 3, stats.Pipeline.GeoCacheSize)
	assert.Equal(t, int64(7), stats.Pipeline.GeoCacheHits)
	assert.Equal(t, 2, stats.Pipeline.FavoritesCount)
	assert.Nil(t, stats.Pipeline.PersistedFavorites)

	assert.NotZero(t, stats.Memory.Sys)
	assert.Greater(t, stats.Runtime.NumGoroutines, 0)
	assert.False(t, stats.Timestamp.IsZero())
}

func TestCollector_NilSources(t *testing.T) {
	collector := NewCollector(nil, nil, nil, nil)

	stats, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.Pipeline.UpstreamRequests)
	assert.Zero(t, stats.Pipeline.GeoCacheSize)
	assert.Zero(t, stats.Pipeline.FavoritesCount)
}

func TestCollector_MemoryStatsCached(t *testing.T) {
	collector := NewCollector(nil, nil, nil, nil)

	first, err := collector.Collect(context.Background())
	require.NoError(t, err)
	second, err := collector.Collect(context.Background())
	require.NoError(t, err)

	// Within the cache window both collections see the same snapshot
	assert.Equal(t, first.Memory, second.Memory)
}
