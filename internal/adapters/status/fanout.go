package status

import (
	"locate-route-service/internal/domain"
	"locate-route-service/internal/ports"
)

// Fanout forwards every update to each sink in order.
type Fanout []ports.StatusSink

func (f Fanout) Publish(s domain.Status) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(s)
		}
	}
}

func (f Fanout) Alert(msg string) {
	for _, sink := range f {
		if sink != nil {
			sink.Alert(msg)
		}
	}
}
