package domain

// A route request. Only built from a resolution with ProvenanceReal.
type RouteRequest struct {
	Origin          Coordinates
	DestinationText string
}

// Represents a computed route between the current position and a geocoded destination.
// Geometry is the polyline in travel order and may be empty when the
// routing backend does not return one.
type Route struct {
	ID              string
	Origin          Coordinates
	Destination     Coordinates
	DestinationText string
	DistanceMeters  int
	DurationSeconds int
	Geometry        []Coordinates
}
