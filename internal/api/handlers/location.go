package handlers

import (
	"context"
	"locate-route-service/internal/api/dto"
	"locate-route-service/internal/domain"
	"net/http"
)

type LocationHandler struct {
	Nav Navigator
}

// Get returns the current resolution, or 503 before the first one exists.
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	res, ok := h.Nav.Current()
	if !ok {
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusServiceUnavailable, "location not resolved yet")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.LocationResponse{
		Coordinates: coords(res.Coordinates),
		Provenance:  res.Provenance.String(),
		ResolvedAt:  res.ResolvedAt,
		Reason:      domain.ErrorCode(res.Reason),
	})
}

// Acquire starts a new acquisition; 202 if started, 200 if one is already running.
func (h *LocationHandler) Acquire(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	// The attempt outlives the request.
	started := h.Nav.Reacquire(context.WithoutCancel(r.Context()))

	status := http.StatusOK
	if started {
		status = http.StatusAccepted
	}
	writeJSON(w, r, status, dto.AcquireResponse{Started: started})
}
