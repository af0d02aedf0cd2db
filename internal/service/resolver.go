package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/placehub/placehub-api/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Geocoder is the upstream primitive GeoResolver builds on
type Geocoder interface {
	Geocode(ctx context.Context, city string) (model.BoundingBox, error)
}

// GeoResolver resolves free-text city names to bounding boxes and memoizes
// results for the process lifetime. Keys are the trimmed original input:
// textual variants of the same city are distinct entries on purpose.
type GeoResolver struct {
	geocoder     Geocoder
	logger       *zap.Logger
	singleFlight bool
	group        singleflight.Group

	mu    sync.RWMutex
	cache map[string]model.BoundingBox
	hits  atomic.Int64
}

// NewGeoResolver creates a resolver. With singleFlight enabled, concurrent
// resolves of the same uncached city share one upstream call instead of
// each issuing their own.
func NewGeoResolver(geocoder Geocoder, singleFlight bool, logger *zap.Logger) *GeoResolver {
	return &GeoResolver{
		geocoder:     geocoder,
		logger:       logger,
		singleFlight: singleFlight,
		cache:        make(map[string]model.BoundingBox),
	}
}

// Resolve returns the bounding box for a city name. Cache hits make no
// network call.
func (r *GeoResolver) Resolve(ctx context.Context, city string) (model.BoundingBox, error) {
	key := strings.TrimSpace(city)

	r.mu.RLock()
	bbox, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		r.hits.Add(1)
		return bbox, nil
	}

	if r.singleFlight {
		v, err, _ := r.group.Do(key, func() (interface{}, error) {
			return r.fetch(ctx, key)
		})
		if err != nil {
			return model.BoundingBox{}, err
		}
		return v.(model.BoundingBox), nil
	}

	return r.fetch(ctx, key)
}

func (r *GeoResolver) fetch(ctx context.Context, key string) (model.BoundingBox, error) {
	bbox, err := r.geocoder.Geocode(ctx, key)
	if err != nil {
		return model.BoundingBox{}, err
	}

	// Last writer wins on a race; values for the same key are expected
	// to be equal.
	r.mu.Lock()
	r.cache[key] = bbox
	r.mu.Unlock()

	r.logger.Debug("Resolved city", zap.String("city", key))
	return bbox, nil
}

// CacheLen returns the number of memoized cities
func (r *GeoResolver) CacheLen() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// CacheHits returns how many resolves were served from the cache
func (r *GeoResolver) CacheHits() int64 {
	return r.hits.Load()
}
