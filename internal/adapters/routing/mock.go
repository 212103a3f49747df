package routing

import (
	"context"
	"fmt"
	"locate-route-service/internal/domain"
	"sync"
)

// MockRouter returns a straight two-point route and records every request.
type MockRouter struct {
	mu       sync.Mutex
	err      error
	requests []domain.RouteRequest
	seq      int
}

func NewMockRouter() *MockRouter {
	return &MockRouter{}
}

// FailWith makes every later call return err.
func (r *MockRouter) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *MockRouter) Route(ctx context.Context, req domain.RouteRequest, destination domain.Waypoint) (domain.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)
	if r.err != nil {
		return domain.Route{}, r.err
	}

	r.seq++
	return domain.Route{
		ID:              fmt.Sprintf("mock-route-%d", r.seq),
		Origin:          req.Origin,
		Destination:     destination.Coordinates,
		DestinationText: req.DestinationText,
		Geometry:        []domain.Coordinates{req.Origin, destination.Coordinates},
	}, nil
}

func (r *MockRouter) Requests() []domain.RouteRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.RouteRequest, len(r.requests))
	copy(out, r.requests)
	return out
}
