package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"locate-route-service/internal/api/dto"
	"locate-route-service/internal/domain"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)

	var status int
	switch code {
	case "EMPTY_DESTINATION":
		status = http.StatusBadRequest
	case "LOCATION_NOT_READY":
		status = http.StatusConflict
	case "DESTINATION_NOT_FOUND":
		status = http.StatusNotFound
	case "ROUTING_SERVICE_ERROR":
		status = http.StatusBadGateway
	default:
		log.Printf("unexpected error: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeJSON(w, r, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
		return
	}

	writeJSON(w, r, status, dto.ErrorResponse{Error: rootMessage(err), Code: code})
}

// rootMessage returns the sentinel text rather than the full wrapped chain,
// which may carry upstream details.
func rootMessage(err error) string {
	for _, s := range []error{
		domain.ErrEmptyDestination,
		domain.ErrLocationNotReady,
		domain.ErrDestinationNotFound,
		domain.ErrRoutingService,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// decodeBody decodes exactly one JSON object with no unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return errors.New("invalid json body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON object")
	}
	return nil
}

func coords(c domain.Coordinates) dto.CoordinatesResponse {
	return dto.CoordinatesResponse{Lat: c.Lat, Lon: c.Lon}
}
