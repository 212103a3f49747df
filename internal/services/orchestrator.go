package services

import (
	"context"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// OrchestratorConfig groups the collaborators wired by NewOrchestrator.
type OrchestratorConfig struct {
	Source     ports.PositionSource
	Geocoder   ports.Geocoder
	Router     ports.Router
	Renderer   ports.MapRenderer
	RouteLayer ports.RouteLayer
	Status     ports.StatusSink

	LocationTimeout time.Duration
	MaxRetries      int
}

// Orchestrator starts acquisition, feeds every resolution to the map session
// and gates route requests on the current resolution.
type Orchestrator struct {
	acquirer *LocationAcquirer
	session  *MapSession
	routes   *RouteCoordinator
	relay    *statusRelay

	startOnce sync.Once
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	relay := &statusRelay{sink: cfg.Status}
	acquirer := NewLocationAcquirer(cfg.Source, relay, cfg.LocationTimeout, cfg.MaxRetries)

	return &Orchestrator{
		acquirer: acquirer,
		session:  NewMapSession(cfg.Renderer),
		routes:   NewRouteCoordinator(acquirer, cfg.Geocoder, cfg.Router, cfg.RouteLayer, relay),
		relay:    relay,
	}
}

// Start wires resolutions into the map session and starts the first
// acquisition. Later calls are no-ops.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		o.acquirer.OnResolution(o.handleResolution)
		o.acquirer.Acquire(ctx)
	})
}

func (o *Orchestrator) handleResolution(res domain.LocationResolution) {
	if err := o.session.EnsureInitialized(res.Coordinates); err != nil {
		log.Printf("orchestrator: map init failed provenance=%s err=%v", res.Provenance, err)
		return
	}

	// A fallback keeps its explanation on the status line.
	if res.IsReal() {
		o.relay.Publish(domain.Status{
			Message:  fmt.Sprintf("Map centered on: %s", res.Coordinates),
			Progress: domain.ProgressComplete,
		})
	}
}

// Reacquire requests a fresh fix; false if one is already in flight.
func (o *Orchestrator) Reacquire(ctx context.Context) bool {
	return o.acquirer.Acquire(ctx)
}

// Current returns the latest resolution.
func (o *Orchestrator) Current() (domain.LocationResolution, bool) {
	return o.acquirer.Current()
}

func (o *Orchestrator) RequestRoute(ctx context.Context, destination string) (domain.Route, error) {
	return o.routes.RequestRoute(ctx, destination)
}

func (o *Orchestrator) ActiveRoute() (domain.Route, bool) {
	return o.routes.ActiveRoute()
}

// Status returns the most recent status update.
func (o *Orchestrator) Status() domain.Status {
	return o.relay.Latest()
}

// MapCenter returns the map center once the map exists.
func (o *Orchestrator) MapCenter() (domain.Coordinates, bool) {
	return o.session.Center()
}

// Wait blocks until any in-flight acquisition has resolved.
func (o *Orchestrator) Wait() {
	o.acquirer.Wait()
}

// statusRelay forwards status from every component to one sink and keeps
// only the latest update.
type statusRelay struct {
	sink ports.StatusSink

	// Held across store and forward so the sink sees updates in the same
	// order as latest.
	mu     sync.Mutex
	latest atomic.Pointer[domain.Status]
}

func (r *statusRelay) Publish(s domain.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latest.Store(&s)
	log.Printf("status progress=%d msg=%q", s.Progress, s.Message)
	if r.sink != nil {
		r.sink.Publish(s)
	}
}

func (r *statusRelay) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Printf("status alert msg=%q", msg)
	if r.sink != nil {
		r.sink.Alert(msg)
	}
}

func (r *statusRelay) Latest() domain.Status {
	p := r.latest.Load()
	if p == nil {
		return domain.Status{}
	}
	return *p
}
