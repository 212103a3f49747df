package services

import (
	"context"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/platform/obs"
	"locate-route-service/internal/ports"
	"log"
	"strings"
	"sync"
	"sync/atomic"
)

// LocationReader is the view of the acquirer that route requests need.
type LocationReader interface {
	Current() (domain.LocationResolution, bool)
	Acquire(ctx context.Context) bool
}

// RouteCoordinator turns a free-text destination into a displayed route from
// the current real position. At most one route is active at a time.
type RouteCoordinator struct {
	locations LocationReader
	geocoder  ports.Geocoder
	router    ports.Router
	layer     ports.RouteLayer
	status    ports.StatusSink

	// Serializes requests so release and replacement of the active route
	// never interleave.
	mu     sync.Mutex
	active atomic.Pointer[domain.Route]
}

func NewRouteCoordinator(
	locations LocationReader,
	geocoder ports.Geocoder,
	router ports.Router,
	layer ports.RouteLayer,
	status ports.StatusSink,
) *RouteCoordinator {
	return &RouteCoordinator{
		locations: locations,
		geocoder:  geocoder,
		router:    router,
		layer:     layer,
		status:    status,
	}
}

// RequestRoute validates the destination, checks that a real fix exists,
// releases the previous route, geocodes the destination and routes to it.
//
// A request made while the current resolution is the default fallback does
// not geocode; it triggers a new acquisition and fails with ErrLocationNotReady.
func (rc *RouteCoordinator) RequestRoute(ctx context.Context, destinationText string) (_ domain.Route, err error) {
	defer obs.Time(ctx, "route.request")(&err)

	dest := strings.TrimSpace(destinationText)
	if dest == "" {
		rc.publish("Please enter a destination.", domain.ProgressComplete)
		return domain.Route{}, fmt.Errorf("request route: %w", domain.ErrEmptyDestination)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	res, ok := rc.locations.Current()
	if !ok || !res.IsReal() {
		// Publish before acquiring so the acquisition's own status lands last.
		rc.publish("Your location is not available yet. Requesting it again...", domain.ProgressAwaitingPermission)
		// The acquisition outlives this request.
		rc.locations.Acquire(context.WithoutCancel(ctx))
		return domain.Route{}, fmt.Errorf("request route to %q: %w", dest, domain.ErrLocationNotReady)
	}

	rc.release()

	rc.publish(fmt.Sprintf("Calculating route to: %s...", dest), domain.ProgressCalculatingRoute)

	target, found, err := rc.geocoder.Geocode(ctx, dest)
	if err != nil {
		rc.publish("Routing service unavailable. Please try again.", domain.ProgressComplete)
		return domain.Route{}, fmt.Errorf("request route: geocode %q: %w: %w", dest, domain.ErrRoutingService, err)
	}
	if !found {
		rc.publish(fmt.Sprintf("Destination not found: %s", dest), domain.ProgressComplete)
		return domain.Route{}, fmt.Errorf("request route: geocode %q: %w", dest, domain.ErrDestinationNotFound)
	}

	req := domain.RouteRequest{Origin: res.Coordinates, DestinationText: dest}
	route, err := rc.router.Route(ctx, req, domain.Waypoint{Label: dest, Coordinates: target})
	if err != nil {
		if errors.Is(err, domain.ErrDestinationNotFound) {
			rc.publish(fmt.Sprintf("No route found to: %s", dest), domain.ProgressComplete)
			return domain.Route{}, fmt.Errorf("request route: %w", err)
		}
		rc.publish("Routing service unavailable. Please try again.", domain.ProgressComplete)
		return domain.Route{}, fmt.Errorf("request route: route to %q: %w: %w", dest, domain.ErrRoutingService, err)
	}

	if err := rc.layer.ShowRoute(route); err != nil {
		rc.publish("Could not display the route. Please try again.", domain.ProgressComplete)
		return domain.Route{}, fmt.Errorf("request route: show route %s: %w: %w", route.ID, domain.ErrRoutingService, err)
	}
	rc.active.Store(&route)

	log.Printf("route: active id=%s dest=%q meters=%d seconds=%d",
		route.ID, dest, route.DistanceMeters, route.DurationSeconds)
	rc.publish(fmt.Sprintf("Route loaded for: %s", dest), domain.ProgressComplete)

	return route, nil
}

// ActiveRoute returns the displayed route, if any.
func (rc *RouteCoordinator) ActiveRoute() (domain.Route, bool) {
	p := rc.active.Load()
	if p == nil {
		return domain.Route{}, false
	}
	return *p, true
}

// release drops the active route. Idempotent.
func (rc *RouteCoordinator) release() {
	prev := rc.active.Swap(nil)
	if prev == nil {
		return
	}
	rc.layer.RemoveRoute(prev.ID)
	log.Printf("route: released id=%s", prev.ID)
}

func (rc *RouteCoordinator) publish(msg string, progress int) {
	if rc.status == nil {
		return
	}
	rc.status.Publish(domain.Status{Message: msg, Progress: progress})
}
