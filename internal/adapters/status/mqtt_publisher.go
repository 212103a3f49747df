package status

import (
	"encoding/json"
	"locate-route-service/internal/domain"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishWait = 2 * time.Second

// publisher is the subset of mqtt.Client used here.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher mirrors the status line to a retained MQTT topic so late
// subscribers (dashboards, the vehicle display) see the current line at once.
// Alerts go to <topic>/alert and are not retained.
type MQTTPublisher struct {
	client publisher
	topic  string
	now    func() time.Time
}

func NewMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return newMQTTPublisher(client, topic)
}

func newMQTTPublisher(client publisher, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, now: time.Now}
}

func (p *MQTTPublisher) Publish(s domain.Status) {
	p.send(p.topic, true, Message{Kind: "status", Message: s.Message, Progress: s.Progress, Timestamp: p.now()})
}

func (p *MQTTPublisher) Alert(msg string) {
	p.send(p.topic+"/alert", false, Message{Kind: "alert", Message: msg, Timestamp: p.now()})
}

func (p *MQTTPublisher) send(topic string, retained bool, m Message) {
	payload, err := json.Marshal(m)
	if err != nil {
		log.Printf("status mqtt: marshal error: %v", err)
		return
	}

	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishWait) {
		log.Printf("status mqtt: publish %s timed out", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("status mqtt: publish %s: %v", topic, err)
	}
}
