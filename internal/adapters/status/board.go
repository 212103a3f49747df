package status

import (
	"locate-route-service/internal/domain"
	"sync"
	"time"
)

// Message is the wire form of a status update.
type Message struct {
	Kind      string    `json:"kind"` // "status" | "alert"
	Message   string    `json:"message"`
	Progress  int       `json:"progress,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// Board keeps the single current status line and the last alert.
type Board struct {
	mu        sync.RWMutex
	latest    domain.Status
	lastAlert string
	updates   int
}

func NewBoard() *Board {
	return &Board{}
}

func (b *Board) Publish(s domain.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = s
	b.updates++
}

func (b *Board) Alert(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastAlert = msg
}

func (b *Board) Latest() domain.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

func (b *Board) LastAlert() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastAlert
}

// Updates counts Publish calls.
func (b *Board) Updates() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updates
}
