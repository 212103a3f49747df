package services

import (
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"sync"
)

// Zoom levels for the first (coarse) view and for later precise recenters.
const (
	WideZoom  = 13
	TightZoom = 16
)

// MapSession owns the map and its single marker. The map is created once;
// later resolutions only recenter it.
type MapSession struct {
	renderer ports.MapRenderer

	mu          sync.Mutex
	initialized bool
	center      domain.Coordinates
}

func NewMapSession(renderer ports.MapRenderer) *MapSession {
	return &MapSession{renderer: renderer}
}

// EnsureInitialized creates the map centered on c at WideZoom and places the
// marker, or, if the map already exists, recenters it at TightZoom and moves
// the marker in place.
func (m *MapSession) EnsureInitialized(c domain.Coordinates) error {
	if m.renderer == nil {
		return errors.New("map session: renderer is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		m.renderer.SetView(c, TightZoom)
		m.renderer.MoveMarker(c)
		m.center = c
		return nil
	}

	if err := m.renderer.Attach(c, WideZoom); err != nil {
		return fmt.Errorf("map session: attach at %v: %w", c, err)
	}
	m.initialized = true
	m.center = c

	m.renderer.PlaceMarker(c)
	// Invalidate only once the surface is attached and the marker is loading.
	m.renderer.InvalidateSize()

	return nil
}

// Center returns the last center; ok is false before initialization.
func (m *MapSession) Center() (domain.Coordinates, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center, m.initialized
}
