package ports

import "locate-route-service/internal/domain"

// Write-only channel for human-readable progress text.
type StatusSink interface {
	// Replace the current status line.
	Publish(s domain.Status)
	// Interruptive notification; only used when the user must act.
	Alert(msg string)
}
