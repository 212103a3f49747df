package services

import (
	"context"
	"errors"
	"locate-route-service/internal/adapters/geolocation"
	"locate-route-service/internal/adapters/status"
	"locate-route-service/internal/domain"
	"strings"
	"sync"
	"testing"
	"time"
)

var london = domain.Coordinates{Lat: 51.5, Lon: -0.12}

func acquireOnce(t *testing.T, a *LocationAcquirer) domain.LocationResolution {
	t.Helper()
	if !a.Acquire(context.Background()) {
		t.Fatal("Acquire returned false, want attempt started")
	}
	a.Wait()
	res, ok := a.Current()
	if !ok {
		t.Fatal("no resolution after Wait")
	}
	return res
}

func TestAcquireUnsupportedFallsBackWithoutRequest(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london})
	src.SetSupported(false)
	board := status.NewBoard()

	res := acquireOnce(t, NewLocationAcquirer(src, board, time.Second, 3))

	if res.IsReal() || res.Coordinates != domain.DefaultCoordinates {
		t.Fatalf("resolution = %+v, want default", res)
	}
	if !errors.Is(res.Reason, domain.ErrUnsupported) {
		t.Fatalf("reason = %v, want ErrUnsupported", res.Reason)
	}
	if src.Calls() != 0 {
		t.Fatalf("source calls = %d, want 0", src.Calls())
	}
	if got, want := board.Latest().Message, "Geolocation not supported. Defaulting to ÖestVèl Centrè."; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
}

func TestAcquireSuccessIsReal(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london})
	board := status.NewBoard()

	res := acquireOnce(t, NewLocationAcquirer(src, board, 7*time.Second, 3))

	if !res.IsReal() || res.Coordinates != london || res.Reason != nil {
		t.Fatalf("resolution = %+v, want real %v", res, london)
	}

	opts := src.Options()
	if len(opts) != 1 {
		t.Fatalf("requests = %d, want 1", len(opts))
	}
	if !opts[0].HighAccuracy || opts[0].Timeout != 7*time.Second || opts[0].MaximumAge != 0 {
		t.Fatalf("options = %+v, want high accuracy, 7s timeout, no caching", opts[0])
	}

	if got := board.Latest(); got.Message != "Location found. Loading map" || got.Progress != domain.ProgressLocationFound {
		t.Fatalf("status = %+v, want location found", got)
	}
}

func TestAcquireTimeoutsAreBoundedThenDefault(t *testing.T) {
	const (
		timeout = 40 * time.Millisecond
		retries = 2
		// Scheduling allowance on top of the deadlines themselves.
		slack = 60 * time.Millisecond
	)
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london, Delay: 500 * time.Millisecond})
	board := status.NewBoard()

	start := time.Now()
	res := acquireOnce(t, NewLocationAcquirer(src, board, timeout, retries))
	elapsed := time.Since(start)

	if limit := (retries+1)*timeout + slack; elapsed > limit {
		t.Fatalf("resolved after %s, want at most %s", elapsed, limit)
	}

	if res.IsReal() || res.Coordinates != domain.DefaultCoordinates {
		t.Fatalf("resolution = %+v, want default", res)
	}
	if !errors.Is(res.Reason, domain.ErrTimeout) {
		t.Fatalf("reason = %v, want ErrTimeout", res.Reason)
	}
	if src.Calls() != 3 {
		t.Fatalf("source calls = %d, want 3 (1 + 2 retries)", src.Calls())
	}
	if got, want := board.Latest().Message, "Location unavailable. Defaulting to ÖestVèl Centrè."; got != want {
		t.Fatalf("status = %q, want %q", got, want)
	}
}

func TestAcquireTimeoutThenSuccess(t *testing.T) {
	src := geolocation.NewScriptedSource(
		geolocation.Step{Delay: 200 * time.Millisecond},
		geolocation.Step{Coordinates: london},
	)

	res := acquireOnce(t, NewLocationAcquirer(src, status.NewBoard(), 20*time.Millisecond, 3))

	if !res.IsReal() || res.Coordinates != london {
		t.Fatalf("resolution = %+v, want real %v", res, london)
	}
	if src.Calls() != 2 {
		t.Fatalf("source calls = %d, want 2", src.Calls())
	}
}

func TestAcquirePermissionDeniedAlertsAndFallsBack(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Err: domain.ErrPermissionDenied})
	board := status.NewBoard()

	res := acquireOnce(t, NewLocationAcquirer(src, board, time.Second, 3))

	if res.Coordinates != (domain.Coordinates{Lat: 54.0084, Lon: -1.5422}) || res.IsReal() {
		t.Fatalf("resolution = %+v, want default", res)
	}
	if domain.ErrorCode(res.Reason) != "PERMISSION_DENIED" {
		t.Fatalf("reason code = %q, want PERMISSION_DENIED", domain.ErrorCode(res.Reason))
	}
	if src.Calls() != 1 {
		t.Fatalf("source calls = %d, want 1 (no retry on denial)", src.Calls())
	}
	if !strings.HasPrefix(board.LastAlert(), "Permission Denied!") {
		t.Fatalf("alert = %q, want permission remediation", board.LastAlert())
	}
	if board.Latest().Message != board.LastAlert() {
		t.Fatalf("status = %q, want alert text", board.Latest().Message)
	}
}

func TestAcquireUnknownErrorIsPositionUnavailable(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Err: errors.New("gps chip reset")})

	res := acquireOnce(t, NewLocationAcquirer(src, status.NewBoard(), time.Second, 3))

	if !errors.Is(res.Reason, domain.ErrPositionUnavailable) {
		t.Fatalf("reason = %v, want ErrPositionUnavailable", res.Reason)
	}
	if src.Calls() != 1 {
		t.Fatalf("source calls = %d, want 1", src.Calls())
	}
}

func TestAcquireRejectsOutOfRangeFix(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: domain.Coordinates{Lat: 91, Lon: 0}})

	res := acquireOnce(t, NewLocationAcquirer(src, status.NewBoard(), time.Second, 3))

	if res.IsReal() || !errors.Is(res.Reason, domain.ErrPositionUnavailable) {
		t.Fatalf("resolution = %+v, want default with ErrPositionUnavailable", res)
	}
}

func TestAcquireIgnoredWhileInFlight(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london, Delay: 50 * time.Millisecond})
	a := NewLocationAcquirer(src, status.NewBoard(), time.Second, 3)

	var mu sync.Mutex
	var emitted []domain.LocationResolution
	a.OnResolution(func(res domain.LocationResolution) {
		mu.Lock()
		defer mu.Unlock()
		emitted = append(emitted, res)
	})

	if !a.Acquire(context.Background()) {
		t.Fatal("first Acquire = false, want true")
	}
	if a.Acquire(context.Background()) {
		t.Fatal("second Acquire = true, want ignored")
	}
	a.Wait()

	if src.Calls() != 1 {
		t.Fatalf("source calls = %d, want 1", src.Calls())
	}
	if len(emitted) != 1 {
		t.Fatalf("resolutions = %d, want 1", len(emitted))
	}
	if a.InFlight() {
		t.Fatal("still in flight after Wait")
	}

	// A new attempt is accepted once the previous one resolved.
	if !a.Acquire(context.Background()) {
		t.Fatal("Acquire after resolution = false, want true")
	}
	a.Wait()
	if len(emitted) != 2 {
		t.Fatalf("resolutions = %d, want 2", len(emitted))
	}
}

func TestAcquireDropsLateResult(t *testing.T) {
	src := geolocation.NewScriptedSource(geolocation.Step{Coordinates: london, Delay: 60 * time.Millisecond})
	a := NewLocationAcquirer(src, status.NewBoard(), 10*time.Millisecond, 0)

	res := acquireOnce(t, a)
	if res.IsReal() {
		t.Fatalf("resolution = %+v, want default", res)
	}

	// Let the platform answer after the deadline.
	time.Sleep(100 * time.Millisecond)

	if res, _ := a.Current(); res.IsReal() || res.Coordinates != domain.DefaultCoordinates {
		t.Fatalf("current after late answer = %+v, want default", res)
	}
}

func TestNewLocationAcquirerDefaults(t *testing.T) {
	a := NewLocationAcquirer(geolocation.Unsupported{}, nil, 0, -1)
	if a.timeout != DefaultLocationTimeout || a.maxRetries != DefaultMaxRetries {
		t.Fatalf("timeout=%s retries=%d, want %s and %d", a.timeout, a.maxRetries, DefaultLocationTimeout, DefaultMaxRetries)
	}
}
