package maprender

import (
	"fmt"
	"locate-route-service/internal/domain"
	"strings"
	"sync"
)

// RecordingRenderer records map and route-layer calls in order.
type RecordingRenderer struct {
	mu        sync.Mutex
	ops       []string
	attachErr error
	showErr   error
}

func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// FailAttach makes the next Attach calls return err.
func (r *RecordingRenderer) FailAttach(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachErr = err
}

// FailShow makes the next ShowRoute calls return err.
func (r *RecordingRenderer) FailShow(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.showErr = err
}

func (r *RecordingRenderer) Attach(c domain.Coordinates, zoom int) error {
	r.record("attach %s z%d", c, zoom)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attachErr
}

func (r *RecordingRenderer) SetView(c domain.Coordinates, zoom int) {
	r.record("view %s z%d", c, zoom)
}

func (r *RecordingRenderer) InvalidateSize() { r.record("invalidate") }

func (r *RecordingRenderer) PlaceMarker(c domain.Coordinates) { r.record("place %s", c) }

func (r *RecordingRenderer) MoveMarker(c domain.Coordinates) { r.record("move %s", c) }

func (r *RecordingRenderer) ShowRoute(rt domain.Route) error {
	r.record("show %s", rt.ID)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.showErr
}

func (r *RecordingRenderer) RemoveRoute(id string) { r.record("remove %s", id) }

func (r *RecordingRenderer) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.ops))
	copy(out, r.ops)
	return out
}

// Count returns how many recorded ops start with prefix.
func (r *RecordingRenderer) Count(prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if strings.HasPrefix(op, prefix) {
			n++
		}
	}
	return n
}

func (r *RecordingRenderer) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}
