package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/platform/httpx"
	"locate-route-service/internal/platform/obs"
	"net/http"
	"strconv"
	"time"
)

// Nominatim returns candidates in rank order with coordinates as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder implements Geocoder against an OpenStreetMap Nominatim
// free-text search endpoint (GET /search?q=...).
type NominatimGeocoder struct {
	client  *httpx.Client
	baseURL string
}

func NewNominatimGeocoder(baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	if userAgent == "" {
		userAgent = "locate-route-service"
	}

	return &NominatimGeocoder{
		// The public instance rejects requests without an identifying User-Agent.
		client:  httpx.New(10*time.Second, map[string]string{"User-Agent": userAgent}),
		baseURL: baseURL,
	}
}

// SetRetry tunes the underlying HTTP retry policy.
func (n *NominatimGeocoder) SetRetry(maxAttempts int, backoff time.Duration) {
	n.client.SetRetry(maxAttempts, backoff)
}

func (n *NominatimGeocoder) Geocode(ctx context.Context, text string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "nominatim.geocode")(&err)

	norm := normalize(text)
	if norm == "" {
		return domain.Coordinates{}, false, errors.New("nominatim geocode: text must be non-empty")
	}

	endpoint := n.baseURL + "/search"

	resp, err := n.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := n.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode: decode response: %w", err)
	}

	if len(places) == 0 {
		return domain.Coordinates{}, false, nil
	}

	best := places[0]
	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode: parse lat %q: %w", best.Lat, err)
	}
	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim geocode: parse lon %q: %w", best.Lon, err)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}
