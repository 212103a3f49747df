package dto

import "time"

type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type LocationResponse struct {
	Coordinates CoordinatesResponse `json:"coordinates"`
	Provenance  string              `json:"provenance"`
	ResolvedAt  time.Time           `json:"resolved_at"`
	Reason      string              `json:"reason,omitempty"`
}

type AcquireResponse struct {
	Started bool `json:"started"`
}
