package geocode

import (
	"context"
	"errors"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"log"
	"strings"
)

// CachingGeocoder checks a persistent cache before delegating to the wrapped
// Geocoder. Only hits are cached; a miss is asked again next time.
// Cache failures are logged and never fail the lookup.
type CachingGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachingGeocoder(next ports.Geocoder, cache ports.GeocodeCache) (*CachingGeocoder, error) {
	if next == nil {
		return nil, errors.New("caching geocoder: next geocoder is nil")
	}
	return &CachingGeocoder{next: next, cache: cache}, nil
}

func (g *CachingGeocoder) Geocode(ctx context.Context, text string) (domain.Coordinates, bool, error) {
	key := CacheKey(text)

	if g.cache != nil && key != "" {
		c, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			log.Printf("geocode cache read failed: key=%q err=%v", key, err)
		} else if ok {
			return c, true, nil
		}
	}

	c, found, err := g.next.Geocode(ctx, text)
	if err != nil || !found {
		return c, found, err
	}

	if g.cache != nil && key != "" {
		if err := g.cache.Put(ctx, key, c); err != nil {
			log.Printf("geocode cache write failed: key=%q err=%v", key, err)
		}
	}

	return c, true, nil
}

// normalize collapses whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CacheKey is the normalized, case-folded form used as cache key.
func CacheKey(s string) string {
	return strings.ToLower(normalize(s))
}
