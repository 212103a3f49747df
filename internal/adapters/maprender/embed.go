package maprender

import (
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"log"
	"net/url"
	"strconv"
	"sync"
)

const embedBaseURL = "https://maps.google.com/maps"

// View is a snapshot of what the embedded map currently shows.
type View struct {
	Attached bool
	Center   domain.Coordinates
	Zoom     int
	Marker   *domain.Coordinates
	RouteID  string
	URL      string
}

// EmbedMap renders the map as a Google Maps embed URL. It implements both
// the map surface and the route layer; a displayed route takes over the URL
// until it is removed.
type EmbedMap struct {
	mu       sync.Mutex
	attached bool
	center   domain.Coordinates
	zoom     int
	marker   *domain.Coordinates
	route    *domain.Route
	redraws  int
}

func NewEmbedMap() *EmbedMap {
	return &EmbedMap{}
}

func (m *EmbedMap) Attach(c domain.Coordinates, zoom int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attached {
		return errors.New("embed map: already attached")
	}
	m.attached = true
	m.center = c
	m.zoom = zoom
	return nil
}

func (m *EmbedMap) SetView(c domain.Coordinates, zoom int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.center = c
	m.zoom = zoom
}

func (m *EmbedMap) InvalidateSize() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.attached {
		return
	}
	m.redraws++
}

func (m *EmbedMap) PlaceMarker(c domain.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marker = &c
}

func (m *EmbedMap) MoveMarker(c domain.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.marker == nil {
		log.Printf("embed map: move before place, placing marker at %s", c)
	}
	m.marker = &c
}

func (m *EmbedMap) ShowRoute(r domain.Route) error {
	if r.ID == "" {
		return errors.New("embed map: route has no id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.route != nil {
		return fmt.Errorf("embed map: route %s still displayed", m.route.ID)
	}
	m.route = &r
	return nil
}

func (m *EmbedMap) RemoveRoute(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.route != nil && m.route.ID == id {
		m.route = nil
	}
}

// Redraws counts InvalidateSize calls made after Attach.
func (m *EmbedMap) Redraws() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.redraws
}

func (m *EmbedMap) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{Attached: m.attached, Center: m.center, Zoom: m.zoom}
	if m.marker != nil {
		c := *m.marker
		v.Marker = &c
	}
	if m.route != nil {
		v.RouteID = m.route.ID
		v.URL = RouteURL(m.route.Origin, m.route.DestinationText)
	} else if m.attached {
		v.URL = CenterURL(m.center, m.zoom)
	}
	return v
}

func CenterURL(c domain.Coordinates, zoom int) string {
	q := url.Values{}
	q.Set("q", latLon(c))
	q.Set("z", strconv.Itoa(zoom))
	q.Set("output", "embed")
	return embedBaseURL + "?" + q.Encode()
}

func RouteURL(origin domain.Coordinates, destination string) string {
	q := url.Values{}
	q.Set("q", "from "+latLon(origin)+" to "+destination)
	q.Set("output", "embed")
	return embedBaseURL + "?" + q.Encode()
}

func latLon(c domain.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}
