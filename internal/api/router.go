package api

import (
	"locate-route-service/internal/api/handlers"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// statusStream serves the websocket status feed; nil disables it.
func NewRouter(nav handlers.Navigator, m handlers.MapViewer, statusStream http.Handler) http.Handler {
	mux := http.NewServeMux()

	locHandler := &handlers.LocationHandler{Nav: nav}
	routeHandler := &handlers.RouteHandler{Nav: nav}
	statusHandler := &handlers.StatusHandler{Nav: nav, Map: m}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/location", locHandler.Get)
	mux.HandleFunc("/location/acquire", locHandler.Acquire)
	mux.HandleFunc("/routes", routeHandler.Create)
	mux.HandleFunc("/routes/active", routeHandler.Active)
	mux.HandleFunc("/status", statusHandler.Get)
	mux.HandleFunc("/map", statusHandler.MapView)
	if statusStream != nil {
		mux.Handle("/status/ws", statusStream)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}
