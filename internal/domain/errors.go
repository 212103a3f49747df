package domain

import "errors"

// Location acquisition failures. These never reach route callers directly;
// the acquirer converts them into a default resolution.
var (
	ErrUnsupported         = errors.New("geolocation not supported")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrTimeout             = errors.New("location request timed out")
	ErrPositionUnavailable = errors.New("position unavailable")
)

// Route request failures, surfaced to the caller.
var (
	ErrEmptyDestination    = errors.New("destination must not be empty")
	ErrLocationNotReady    = errors.New("no real location fix yet")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrRoutingService      = errors.New("routing service error")
)

// ErrorCode returns the taxonomy name for err, or "INTERNAL" if err is not
// one of the known kinds.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupported):
		return "UNSUPPORTED"
	case errors.Is(err, ErrPermissionDenied):
		return "PERMISSION_DENIED"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrPositionUnavailable):
		return "POSITION_UNAVAILABLE"
	case errors.Is(err, ErrEmptyDestination):
		return "EMPTY_DESTINATION"
	case errors.Is(err, ErrLocationNotReady):
		return "LOCATION_NOT_READY"
	case errors.Is(err, ErrDestinationNotFound):
		return "DESTINATION_NOT_FOUND"
	case errors.Is(err, ErrRoutingService):
		return "ROUTING_SERVICE_ERROR"
	default:
		return "INTERNAL"
	}
}
