package ports

import (
	"context"
	"locate-route-service/internal/domain"
)

// Contract for converting free text into its best-matching coordinate.
type Geocoder interface {
	// Return the best match; found is false when the service had no candidates.
	Geocode(ctx context.Context, text string) (c domain.Coordinates, found bool, err error)
}

// Port: persistent cache of geocode results keyed by normalized query text.
type GeocodeCache interface {
	Get(ctx context.Context, query string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, query string, c domain.Coordinates) error
}
