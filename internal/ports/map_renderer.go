package ports

import "locate-route-service/internal/domain"

// Port: the map display surface.
type MapRenderer interface {
	// Create the map surface centered on c.
	Attach(c domain.Coordinates, zoom int) error
	SetView(c domain.Coordinates, zoom int)
	// Force a redraw. A no-op before Attach.
	InvalidateSize()
	PlaceMarker(c domain.Coordinates)
	MoveMarker(c domain.Coordinates)
}

// Port: displays at most one route on the map.
type RouteLayer interface {
	ShowRoute(r domain.Route) error
	RemoveRoute(id string)
}
