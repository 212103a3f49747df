package ports

import (
	"context"
	"locate-route-service/internal/domain"
)

// Contract for computing a route between the current position and a destination.
type Router interface {
	Route(ctx context.Context, req domain.RouteRequest, destination domain.Waypoint) (domain.Route, error)
}
