package handlers

import (
	"context"
	"locate-route-service/internal/adapters/maprender"
	"locate-route-service/internal/domain"
)

// Navigator is the orchestration surface the HTTP layer drives.
type Navigator interface {
	Current() (domain.LocationResolution, bool)
	Reacquire(ctx context.Context) bool
	RequestRoute(ctx context.Context, destination string) (domain.Route, error)
	ActiveRoute() (domain.Route, bool)
	Status() domain.Status
}

// MapViewer exposes the rendered map state.
type MapViewer interface {
	View() maprender.View
}
