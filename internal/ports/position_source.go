package ports

import (
	"context"
	"locate-route-service/internal/domain"
	"time"
)

// Options for a single platform position request.
type PositionOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	// MaximumAge bounds how old a cached fix may be. Zero disables caching.
	MaximumAge time.Duration
}

// Port: the platform's "get current position" capability.
//
// CurrentPosition returns one of domain.ErrPermissionDenied, domain.ErrTimeout or
// domain.ErrPositionUnavailable (possibly wrapped) on failure.
type PositionSource interface {
	// Report whether the capability exists at all.
	Supported() bool
	CurrentPosition(ctx context.Context, opts PositionOptions) (domain.Coordinates, error)
}

// Optional extension of PositionSource carrying device-specific remediation
// text shown when permission is denied.
type PermissionAdvisor interface {
	PermissionHint() string
}
