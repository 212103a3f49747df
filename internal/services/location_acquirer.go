package services

import (
	"context"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/platform/obs"
	"locate-route-service/internal/ports"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultLocationTimeout = 7 * time.Second
	DefaultMaxRetries      = 3
)

const defaultPermissionHint = "Check your device's location settings and allow access for this service."

// LocationAcquirer wraps a PositionSource with timeout, bounded retry and
// fallback policy. Every attempt ends in exactly one LocationResolution; the
// caller is never left without a coordinate.
//
// At most one attempt is in flight. Acquire calls made while an attempt is
// outstanding are ignored.
type LocationAcquirer struct {
	source     ports.PositionSource
	status     ports.StatusSink
	timeout    time.Duration
	maxRetries int
	now        func() time.Time

	mu        sync.Mutex
	inFlight  bool
	observers []func(domain.LocationResolution)
	wg        sync.WaitGroup

	current atomic.Pointer[domain.LocationResolution]
}

func NewLocationAcquirer(
	source ports.PositionSource,
	status ports.StatusSink,
	timeout time.Duration,
	maxRetries int,
) *LocationAcquirer {
	if timeout <= 0 {
		timeout = DefaultLocationTimeout
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}

	return &LocationAcquirer{
		source:     source,
		status:     status,
		timeout:    timeout,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// OnResolution registers an observer. Observers run sequentially on the
// attempt goroutine, one resolution at a time.
func (a *LocationAcquirer) OnResolution(fn func(domain.LocationResolution)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers = append(a.observers, fn)
}

// Acquire starts a new attempt and reports whether it did. It returns false
// when an attempt is already in flight.
func (a *LocationAcquirer) Acquire(ctx context.Context) bool {
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		log.Printf("location: acquire ignored, attempt already in flight")
		return false
	}
	a.inFlight = true
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()

		done := obs.Time(ctx, "location.acquire")
		res := a.resolve(ctx)
		done(&res.Reason)

		a.emit(res)

		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	return true
}

// Wait blocks until the in-flight attempt, if any, has emitted its resolution.
func (a *LocationAcquirer) Wait() {
	a.wg.Wait()
}

// Current returns the latest resolution. ok is false before the first one.
func (a *LocationAcquirer) Current() (domain.LocationResolution, bool) {
	p := a.current.Load()
	if p == nil {
		return domain.LocationResolution{}, false
	}
	return *p, true
}

// InFlight reports whether an attempt is outstanding.
func (a *LocationAcquirer) InFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

func (a *LocationAcquirer) resolve(ctx context.Context) domain.LocationResolution {
	if !a.source.Supported() {
		a.publish(fmt.Sprintf("Geolocation not supported. Defaulting to %s.", domain.DefaultLabel), domain.ProgressComplete)
		return a.fallback(domain.ErrUnsupported)
	}

	a.publish("Requesting location permission...", domain.ProgressAwaitingPermission)

	attempt := domain.AcquisitionAttempt{StartedAt: a.now(), Timeout: a.timeout}
	opts := ports.PositionOptions{
		HighAccuracy: true,
		Timeout:      a.timeout,
		MaximumAge:   0,
	}

	// Timeouts are retried in a bounded loop; every other outcome ends the attempt.
	for {
		c, err := a.request(ctx, opts)
		if err == nil {
			log.Printf("location: fix lat=%.6f lon=%.6f retries=%d dur=%dms",
				c.Lat, c.Lon, attempt.RetriesUsed, a.now().Sub(attempt.StartedAt).Milliseconds())
			a.publish("Location found. Loading map", domain.ProgressLocationFound)
			return domain.LocationResolution{
				Coordinates: c,
				Provenance:  domain.ProvenanceReal,
				ResolvedAt:  a.now(),
			}
		}

		if errors.Is(err, domain.ErrTimeout) && attempt.RetriesUsed < a.maxRetries && ctx.Err() == nil {
			attempt.RetriesUsed++
			log.Printf("location: timeout after %s, retry=%d/%d", opts.Timeout, attempt.RetriesUsed, a.maxRetries)
			a.publish(
				fmt.Sprintf("Location request timed out, retrying (%d/%d)...", attempt.RetriesUsed, a.maxRetries),
				domain.ProgressAwaitingPermission,
			)
			continue
		}

		return a.fail(err, attempt)
	}
}

// request performs one platform call bounded by opts.Timeout. The platform
// call cannot be cancelled, so a result that arrives after the deadline is dropped.
func (a *LocationAcquirer) request(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	reqCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type result struct {
		c   domain.Coordinates
		err error
	}
	ch := make(chan result, 1)

	go func() {
		c, err := a.source.CurrentPosition(reqCtx, opts)
		ch <- result{c: c, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return domain.Coordinates{}, fmt.Errorf("%w: %w", domain.ErrTimeout, r.err)
			}
			return domain.Coordinates{}, r.err
		}
		if !r.c.Valid() {
			return domain.Coordinates{}, fmt.Errorf("%w: out of range fix %v", domain.ErrPositionUnavailable, r.c)
		}
		return r.c, nil
	case <-reqCtx.Done():
		if err := ctx.Err(); err != nil {
			return domain.Coordinates{}, err
		}
		return domain.Coordinates{}, fmt.Errorf("%w after %s", domain.ErrTimeout, opts.Timeout)
	}
}

func (a *LocationAcquirer) fail(err error, attempt domain.AcquisitionAttempt) domain.LocationResolution {
	reason := err
	switch {
	case errors.Is(err, domain.ErrPermissionDenied):
		hint := defaultPermissionHint
		if adv, ok := a.source.(ports.PermissionAdvisor); ok && adv.PermissionHint() != "" {
			hint = adv.PermissionHint()
		}
		msg := "Permission Denied! To use navigation, you must allow location access. " + hint
		a.publish(msg, domain.ProgressComplete)
		if a.status != nil {
			a.status.Alert(msg)
		}
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, domain.ErrPositionUnavailable):
		a.publish(fmt.Sprintf("Location unavailable. Defaulting to %s.", domain.DefaultLabel), domain.ProgressComplete)
	default:
		reason = fmt.Errorf("%w: %w", domain.ErrPositionUnavailable, err)
		a.publish(fmt.Sprintf("Location unavailable. Defaulting to %s.", domain.DefaultLabel), domain.ProgressComplete)
	}

	log.Printf("location: fallback to default code=%s retries=%d err=%v",
		domain.ErrorCode(reason), attempt.RetriesUsed, err)

	return a.fallback(reason)
}

func (a *LocationAcquirer) fallback(reason error) domain.LocationResolution {
	return domain.LocationResolution{
		Coordinates: domain.DefaultCoordinates,
		Provenance:  domain.ProvenanceDefault,
		ResolvedAt:  a.now(),
		Reason:      reason,
	}
}

// emit replaces the current resolution as a whole, then notifies observers.
func (a *LocationAcquirer) emit(res domain.LocationResolution) {
	a.current.Store(&res)

	a.mu.Lock()
	observers := make([]func(domain.LocationResolution), len(a.observers))
	copy(observers, a.observers)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(res)
	}
}

func (a *LocationAcquirer) publish(msg string, progress int) {
	if a.status == nil {
		return
	}
	a.status.Publish(domain.Status{Message: msg, Progress: progress})
}
