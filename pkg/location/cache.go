package location

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"coffeeshop/internal/models"
)

// Geocoder resolves an address to candidate locations.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]models.GeoResult, error)
}

// CachedGeocoder remembers successful lookups per address and collapses
// concurrent lookups of the same address into one upstream call. Failures
// are not cached.
type CachedGeocoder struct {
	next  Geocoder
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string][]models.GeoResult
}

func NewCachedGeocoder(next Geocoder) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: make(map[string][]models.GeoResult)}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) ([]models.GeoResult, error) {
	g.mu.RLock()
	cached, ok := g.cache[address]
	g.mu.RUnlock()
	if ok {
		return append([]models.GeoResult(nil), cached...), nil
	}

	v, err, _ := g.group.Do(address, func() (any, error) {
		results, err := g.next.Geocode(ctx, address)
		if err != nil {
			return nil, err
		}
		g.mu.Lock()
		g.cache[address] = results
		g.mu.Unlock()
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]models.GeoResult(nil), v.([]models.GeoResult)...), nil
}
