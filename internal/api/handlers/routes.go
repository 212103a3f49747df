package handlers

import (
	"locate-route-service/internal/api/dto"
	"locate-route-service/internal/domain"
	"net/http"
)

type RouteHandler struct {
	Nav Navigator
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.RouteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.Nav.RequestRoute(r.Context(), req.Destination)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, routeResponse(route))
}

func (h *RouteHandler) Active(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	route, ok := h.Nav.ActiveRoute()
	if !ok {
		writeError(w, r, http.StatusNotFound, "no active route")
		return
	}

	writeJSON(w, r, http.StatusOK, routeResponse(route))
}

func routeResponse(rt domain.Route) dto.RouteResponse {
	geom := make([]dto.CoordinatesResponse, 0, len(rt.Geometry))
	for _, c := range rt.Geometry {
		geom = append(geom, coords(c))
	}

	return dto.RouteResponse{
		RouteID:         rt.ID,
		Origin:          coords(rt.Origin),
		Destination:     coords(rt.Destination),
		DestinationText: rt.DestinationText,
		DistanceMeters:  rt.DistanceMeters,
		DurationSeconds: rt.DurationSeconds,
		Geometry:        geom,
	}
}
