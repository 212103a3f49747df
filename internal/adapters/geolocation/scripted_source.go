package geolocation

import (
	"context"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"sync"
	"time"
)

// Step is one scripted platform response.
type Step struct {
	Coordinates domain.Coordinates
	Err         error
	// Delay before answering; a step that outlasts the request deadline
	// still answers late, like a platform that cannot cancel.
	Delay time.Duration
}

// ScriptedSource replays a fixed sequence of responses; the last step repeats.
type ScriptedSource struct {
	mu        sync.Mutex
	steps     []Step
	supported bool
	calls     int
	opts      []ports.PositionOptions
}

func NewScriptedSource(steps ...Step) *ScriptedSource {
	return &ScriptedSource{steps: steps, supported: true}
}

// SetSupported toggles the capability flag.
func (s *ScriptedSource) SetSupported(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supported = v
}

// SetSteps replaces the remaining script.
func (s *ScriptedSource) SetSteps(steps ...Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = steps
}

func (s *ScriptedSource) Supported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.supported
}

func (s *ScriptedSource) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	s.mu.Lock()
	s.calls++
	s.opts = append(s.opts, opts)
	var step Step
	if len(s.steps) > 0 {
		step = s.steps[0]
		if len(s.steps) > 1 {
			s.steps = s.steps[1:]
		}
	} else {
		step = Step{Err: domain.ErrPositionUnavailable}
	}
	s.mu.Unlock()

	if step.Delay > 0 {
		time.Sleep(step.Delay)
	}
	return step.Coordinates, step.Err
}

// Calls returns how many platform requests were made.
func (s *ScriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Options returns the options of every request made so far.
func (s *ScriptedSource) Options() []ports.PositionOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.PositionOptions, len(s.opts))
	copy(out, s.opts)
	return out
}
