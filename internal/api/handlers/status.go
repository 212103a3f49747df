package handlers

import (
	"locate-route-service/internal/api/dto"
	"net/http"
)

type StatusHandler struct {
	Nav Navigator
	Map MapViewer
}

func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	s := h.Nav.Status()
	writeJSON(w, r, http.StatusOK, dto.StatusResponse{Message: s.Message, Progress: s.Progress})
}

// MapView reports what the embedded map shows, including its embed URL.
func (h *StatusHandler) MapView(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.Map == nil {
		writeError(w, r, http.StatusNotFound, "no map renderer configured")
		return
	}

	v := h.Map.View()
	res := dto.MapResponse{Attached: v.Attached, RouteID: v.RouteID, URL: v.URL}
	if v.Attached {
		c := coords(v.Center)
		res.Center = &c
		res.Zoom = v.Zoom
	}
	if v.Marker != nil {
		m := coords(*v.Marker)
		res.Marker = &m
	}

	writeJSON(w, r, http.StatusOK, res)
}
