package geocode

import (
	"context"
	"locate-route-service/internal/domain"
	"sync"
)

// MockGeocoder resolves from a fixed table keyed by CacheKey(text).
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[string]domain.Coordinates
	err   error
	calls []string
}

func NewMockGeocoder(places map[string]domain.Coordinates) *MockGeocoder {
	m := make(map[string]domain.Coordinates, len(places))
	for k, v := range places {
		m[CacheKey(k)] = v
	}
	return &MockGeocoder{m: m}
}

// FailWith makes every later call return err.
func (g *MockGeocoder) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *MockGeocoder) Geocode(ctx context.Context, text string) (domain.Coordinates, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, text)
	if g.err != nil {
		return domain.Coordinates{}, false, g.err
	}

	c, ok := g.m[CacheKey(text)]
	return c, ok, nil
}

// Calls returns the queries seen so far.
func (g *MockGeocoder) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	copy(out, g.calls)
	return out
}
