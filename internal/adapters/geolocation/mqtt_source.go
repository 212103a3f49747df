package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
)

// gpsFix is the JSON payload published by GPS producers on the fix topic.
type gpsFix struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Validity  string  `json:"validity"` // "A" (valid) / "V" (void)
}

type MQTTOptions struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
}

// MQTTSource waits for the next GPS fix published on an MQTT topic.
// Retained messages are the broker's cached copy of an older fix and are
// ignored unless the request allows cached positions.
type MQTTSource struct {
	client mqtt.Client
	topic  string

	// unsubscribeWait bounds how long a request lingers on a broker that
	// does not acknowledge the unsubscribe.
	unsubscribeWait time.Duration
}

func NewMQTTSource(o MQTTOptions) *MQTTSource {
	if o.Broker == "" {
		return &MQTTSource{topic: o.Topic}
	}

	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	return &MQTTSource{client: mqtt.NewClient(opts), topic: o.Topic, unsubscribeWait: 2 * time.Second}
}

func (s *MQTTSource) Supported() bool {
	return s.client != nil && s.topic != ""
}

func (s *MQTTSource) PermissionHint() string {
	return fmt.Sprintf("Ask the broker administrator to grant this client subscribe access to %q, then retry.", s.topic)
}

func (s *MQTTSource) CurrentPosition(ctx context.Context, opts ports.PositionOptions) (domain.Coordinates, error) {
	if err := s.connect(ctx); err != nil {
		return domain.Coordinates{}, err
	}

	allowCached := opts.MaximumAge > 0
	fixes := make(chan domain.Coordinates, 1)

	token := s.client.Subscribe(s.topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		c, ok := decodeFix(msg.Payload(), msg.Retained(), allowCached)
		if !ok {
			return
		}
		select {
		case fixes <- c:
		default:
		}
	})
	if err := waitToken(ctx, token); err != nil {
		return domain.Coordinates{}, mapMQTTError("subscribe "+s.topic, err)
	}
	defer func() {
		t := s.client.Unsubscribe(s.topic)
		if !t.WaitTimeout(s.unsubscribeWait) {
			log.Printf("gps mqtt: unsubscribe %s timed out", s.topic)
			return
		}
		if err := t.Error(); err != nil {
			log.Printf("gps mqtt: unsubscribe %s: %v", s.topic, err)
		}
	}()

	select {
	case c := <-fixes:
		return c, nil
	case <-ctx.Done():
		return domain.Coordinates{}, fmt.Errorf("%w: no fix on %s: %w", domain.ErrTimeout, s.topic, ctx.Err())
	}
}

func (s *MQTTSource) connect(ctx context.Context) error {
	if s.client.IsConnected() {
		return nil
	}
	if err := waitToken(ctx, s.client.Connect()); err != nil {
		return mapMQTTError("connect", err)
	}
	log.Printf("gps mqtt: connected, topic=%s", s.topic)
	return nil
}

// Close disconnects from the broker.
func (s *MQTTSource) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

// decodeFix returns the coordinate carried by a fix payload if it is valid
// and fresh enough for the request.
func decodeFix(payload []byte, retained, allowCached bool) (domain.Coordinates, bool) {
	if retained && !allowCached {
		return domain.Coordinates{}, false
	}

	var f gpsFix
	if err := json.Unmarshal(payload, &f); err != nil {
		log.Printf("gps mqtt: payload unmarshal error: %v", err)
		return domain.Coordinates{}, false
	}
	if f.Validity != "" && f.Validity != "A" {
		return domain.Coordinates{}, false
	}

	c := domain.Coordinates{Lat: f.Latitude, Lon: f.Longitude}
	if !c.Valid() {
		return domain.Coordinates{}, false
	}
	return c, true
}

func waitToken(ctx context.Context, t mqtt.Token) error {
	select {
	case <-t.Done():
		return t.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func mapMQTTError(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("gps mqtt %s: %w: %w", op, domain.ErrTimeout, err)
	case errors.Is(err, packets.ErrorRefusedNotAuthorised),
		errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword):
		return fmt.Errorf("gps mqtt %s: %w: %w", op, domain.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("gps mqtt %s: %w: %w", op, domain.ErrPositionUnavailable, err)
	}
}
