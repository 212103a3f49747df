package geolocation

import (
	"context"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
)

// Unsupported models a device with no location capability.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	return domain.Coordinates{}, domain.ErrUnsupported
}

// FixedSource always reports the same position, e.g. for a kiosk with a
// surveyed location.
type FixedSource struct {
	c domain.Coordinates
}

func NewFixedSource(c domain.Coordinates) *FixedSource {
	return &FixedSource{c: c}
}

func (s *FixedSource) Supported() bool { return true }

func (s *FixedSource) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	return s.c, nil
}
