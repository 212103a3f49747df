package status

import (
	"encoding/json"
	"locate-route-service/internal/domain"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
)

func TestBoardKeepsOnlyLatest(t *testing.T) {
	b := NewBoard()
	b.Publish(domain.Status{Message: "Requesting location permission...", Progress: 10})
	b.Publish(domain.Status{Message: "Location found. Loading map", Progress: 40})

	if got := b.Latest(); got.Message != "Location found. Loading map" || got.Progress != 40 {
		t.Fatalf("latest = %+v, want location found at 40", got)
	}
	if b.Updates() != 2 {
		t.Fatalf("updates = %d, want 2", b.Updates())
	}
}

func TestFanoutForwardsToEverySink(t *testing.T) {
	a, b := NewBoard(), NewBoard()
	f := Fanout{a, nil, b}

	f.Publish(domain.Status{Message: "x", Progress: 100})
	f.Alert("allow location access")

	if a.Latest().Message != "x" || b.Latest().Message != "x" {
		t.Fatalf("status not forwarded: %+v %+v", a.Latest(), b.Latest())
	}
	if a.LastAlert() != "allow location access" || b.LastAlert() != "allow location access" {
		t.Fatal("alert not forwarded")
	}
}

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu   sync.Mutex
	sent []published
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return &fakeToken{}
}

func TestMQTTPublisherRetainsStatusNotAlerts(t *testing.T) {
	c := &fakeClient{}
	p := newMQTTPublisher(c, "locate/status")

	p.Publish(domain.Status{Message: "Route loaded for: York", Progress: 100})
	p.Alert("Permission Denied!")

	if len(c.sent) != 2 {
		t.Fatalf("published %d messages, want 2", len(c.sent))
	}

	if c.sent[0].topic != "locate/status" || !c.sent[0].retained {
		t.Fatalf("status publish = %s retained=%v, want locate/status retained", c.sent[0].topic, c.sent[0].retained)
	}
	var m Message
	if err := json.Unmarshal(c.sent[0].payload, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Kind != "status" || m.Message != "Route loaded for: York" || m.Progress != 100 {
		t.Fatalf("payload = %+v", m)
	}

	if c.sent[1].topic != "locate/status/alert" || c.sent[1].retained {
		t.Fatalf("alert publish = %s retained=%v, want locate/status/alert not retained", c.sent[1].topic, c.sent[1].retained)
	}
}

func TestHubSendsLatestThenUpdates(t *testing.T) {
	hub := NewHub()
	hub.Publish(domain.Status{Message: "Requesting location permission...", Progress: 10})

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() Message {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m Message
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		return m
	}

	if m := read(); m.Message != "Requesting location permission..." || m.Progress != 10 {
		t.Fatalf("first message = %+v, want current status", m)
	}
	if hub.Clients() != 1 {
		t.Fatalf("clients = %d, want 1", hub.Clients())
	}

	hub.Publish(domain.Status{Message: "Location found. Loading map", Progress: 40})
	if m := read(); m.Message != "Location found. Loading map" {
		t.Fatalf("second message = %+v, want update", m)
	}

	hub.Alert("Permission Denied!")
	if m := read(); m.Kind != "alert" {
		t.Fatalf("third message kind = %q, want alert", m.Kind)
	}
}
