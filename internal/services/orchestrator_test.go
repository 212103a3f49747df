package services

import (
	"context"
	"errors"
	"locate-route-service/internal/adapters/geocode"
	"locate-route-service/internal/adapters/geolocation"
	"locate-route-service/internal/adapters/maprender"
	"locate-route-service/internal/adapters/routing"
	"locate-route-service/internal/adapters/status"
	"locate-route-service/internal/domain"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestOrchestrator(src *geolocation.ScriptedSource) (*Orchestrator, *maprender.RecordingRenderer, *status.Board) {
	r := maprender.NewRecordingRenderer()
	board := status.NewBoard()
	o := NewOrchestrator(OrchestratorConfig{
		Source:          src,
		Geocoder:        geocode.NewMockGeocoder(map[string]domain.Coordinates{"York": york}),
		Router:          routing.NewMockRouter(),
		Renderer:        r,
		RouteLayer:      r,
		Status:          board,
		LocationTimeout: 50 * time.Millisecond,
		MaxRetries:      1,
	})
	return o, r, board
}

func TestOrchestratorRealFixThenRoute(t *testing.T) {
	o, r, board := newTestOrchestrator(geolocation.NewScriptedSource(geolocation.Step{Coordinates: london}))

	o.Start(context.Background())
	o.Wait()

	res, ok := o.Current()
	if !ok || !res.IsReal() || res.Coordinates != london {
		t.Fatalf("current = %+v, want real %v", res, london)
	}
	if r.Count("attach 51.5000, -0.1200 z13") != 1 {
		t.Fatalf("ops = %v, want map attached at fix", r.Ops())
	}
	if got, want := board.Latest().Message, "Map centered on: 51.5000, -0.1200"; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
	if o.Status() != board.Latest() {
		t.Fatalf("relay status = %+v, want %+v", o.Status(), board.Latest())
	}

	route, err := o.RequestRoute(context.Background(), "York")
	if err != nil {
		t.Fatalf("RequestRoute: %v", err)
	}
	if route.Origin != london || route.Destination != york {
		t.Fatalf("route = %v -> %v, want %v -> %v", route.Origin, route.Destination, london, york)
	}
	if active, ok := o.ActiveRoute(); !ok || active.ID != route.ID {
		t.Fatal("route not active")
	}
}

func TestOrchestratorFallbackBlocksRoutesAndReacquires(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Err: domain.ErrPositionUnavailable})
	o, r, board := newTestOrchestrator(src)

	o.Start(context.Background())
	o.Wait()

	c, ok := o.MapCenter()
	if !ok || c != domain.DefaultCoordinates {
		t.Fatalf("map center = %v (%v), want default", c, ok)
	}
	if got, want := board.Latest().Message, "Location unavailable. Defaulting to ÖestVèl Centrè."; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}

	src.SetSteps(geolocation.Step{Coordinates: london})

	_, err := o.RequestRoute(context.Background(), "York")
	if !errors.Is(err, domain.ErrLocationNotReady) {
		t.Fatalf("err = %v, want ErrLocationNotReady", err)
	}
	o.Wait()

	if src.Calls() != 2 {
		t.Fatalf("source calls = %d, want 2", src.Calls())
	}
	if r.Count("attach") != 1 || r.Count("view 51.5000, -0.1200 z16") != 1 {
		t.Fatalf("ops = %v, want one attach then a tight recenter", r.Ops())
	}

	if _, err := o.RequestRoute(context.Background(), "York"); err != nil {
		t.Fatalf("RequestRoute after real fix: %v", err)
	}
}

func TestOrchestratorPermissionDeniedFallsBackAndRejectsRoutes(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Err: domain.ErrPermissionDenied})
	o, r, board := newTestOrchestrator(src)

	o.Start(context.Background())
	o.Wait()

	res, ok := o.Current()
	if !ok || res.IsReal() || res.Coordinates != (domain.Coordinates{Lat: 54.0084, Lon: -1.5422}) {
		t.Fatalf("current = %+v, want default resolution", res)
	}
	if !errors.Is(res.Reason, domain.ErrPermissionDenied) {
		t.Fatalf("reason = %v, want ErrPermissionDenied", res.Reason)
	}
	if !strings.HasPrefix(board.LastAlert(), "Permission Denied!") {
		t.Fatalf("alert = %q, want permission remediation", board.LastAlert())
	}

	if c, ok := o.MapCenter(); !ok || c != domain.DefaultCoordinates {
		t.Fatalf("map center = %v (%v), want default", c, ok)
	}
	if r.Count("attach 54.0084, -1.5422 z13") != 1 {
		t.Fatalf("ops = %v, want map attached at default", r.Ops())
	}

	_, err := o.RequestRoute(context.Background(), "York")
	if domain.ErrorCode(err) != "LOCATION_NOT_READY" {
		t.Fatalf("code = %q, want LOCATION_NOT_READY", domain.ErrorCode(err))
	}
	o.Wait()

	if _, ok := o.ActiveRoute(); ok {
		t.Fatal("route active without a real fix")
	}
	if r.Count("show") != 0 {
		t.Fatalf("ops = %v, want no route shown", r.Ops())
	}
}

// The re-acquisition triggered by a route request must leave its own outcome
// on the status line, not the "requesting again" notice.
func TestOrchestratorReacquireStatusLandsLast(t *testing.T) {
	for i := 0; i < 200; i++ {
		src := geolocation.NewScriptedSource()
		src.SetSupported(false)
		o, _, board := newTestOrchestrator(src)

		o.Start(context.Background())
		o.Wait()

		if _, err := o.RequestRoute(context.Background(), "York"); !errors.Is(err, domain.ErrLocationNotReady) {
			t.Fatalf("err = %v, want ErrLocationNotReady", err)
		}
		o.Wait()

		want := "Geolocation not supported. Defaulting to ÖestVèl Centrè."
		if got := board.Latest().Message; got != want {
			t.Fatalf("iteration %d: status = %q, want %q", i, got, want)
		}
		if o.Status() != board.Latest() {
			t.Fatalf("iteration %d: relay status %+v != board %+v", i, o.Status(), board.Latest())
		}
	}
}

func TestOrchestratorStartIsIdempotent(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london})
	o, r, _ := newTestOrchestrator(src)

	o.Start(context.Background())
	o.Wait()
	o.Start(context.Background())
	o.Wait()

	if src.Calls() != 1 || r.Count("attach") != 1 {
		t.Fatalf("calls=%d attaches=%d, want 1 and 1", src.Calls(), r.Count("attach"))
	}
}

func TestOrchestratorReacquireRecenters(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london}, geolocation.Step{Coordinates: york})
	o, r, _ := newTestOrchestrator(src)

	o.Start(context.Background())
	o.Wait()
	if !o.Reacquire(context.Background()) {
		t.Fatal("Reacquire = false, want true")
	}
	o.Wait()

	if c, _ := o.MapCenter(); c != york {
		t.Fatalf("center = %v, want %v", c, york)
	}
	if r.Count("move 53.9600, -1.0800") != 1 {
		t.Fatalf("ops = %v, want marker moved", r.Ops())
	}
}

func TestStatusRelayLatestMatchesSinkUnderConcurrentPublishers(t *testing.T) {
	for i := 0; i < 50; i++ {
		board := status.NewBoard()
		relay := &statusRelay{sink: board}

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for n := 0; n < 20; n++ {
					relay.Publish(domain.Status{Message: "worker", Progress: w*100 + n})
				}
			}(w)
		}
		wg.Wait()

		if relay.Latest() != board.Latest() {
			t.Fatalf("iteration %d: relay latest %+v, sink latest %+v", i, relay.Latest(), board.Latest())
		}
	}
}
