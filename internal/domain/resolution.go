package domain

import "time"

// Provenance tags whether a coordinate came from the real sensor or the fallback.
type Provenance int

const (
	ProvenanceDefault Provenance = iota
	ProvenanceReal
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceReal:
		return "real"
	default:
		return "default"
	}
}

// LocationResolution is the outcome of one acquisition cycle.
// It is treated as an immutable value and always replaced as a whole.
type LocationResolution struct {
	Coordinates Coordinates
	Provenance  Provenance
	ResolvedAt  time.Time
	// Reason is nil for a real fix, otherwise the error kind that forced the fallback.
	Reason error
}

// IsReal reports whether the resolution carries a sensor fix.
func (r LocationResolution) IsReal() bool { return r.Provenance == ProvenanceReal }

// AcquisitionAttempt is the transient state of one in-flight acquisition.
type AcquisitionAttempt struct {
	StartedAt   time.Time
	Timeout     time.Duration
	RetriesUsed int
}
