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
	"time"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder implements Geocoder using OpenRouteService (/geocode/search).
type ORSGeocoder struct {
	client  *httpx.Client
	baseURL string
	// Optional ISO country restriction, e.g. "GB".
	country string
}

func NewORSGeocoder(apiKey, baseURL, country string) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &ORSGeocoder{
		client:  httpx.New(10*time.Second, map[string]string{"Authorization": apiKey}),
		baseURL: baseURL,
		country: country,
	}, nil
}

func (o *ORSGeocoder) Geocode(ctx context.Context, text string) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "ors.geocode")(&err)

	norm := normalize(text)
	if norm == "" {
		return domain.Coordinates{}, false, errors.New("ors geocode: text must be non-empty")
	}

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		if o.country != "" {
			q.Set("boundary.country", o.country)
		}
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, false, nil
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, false, fmt.Errorf("ors geocode: invalid coordinate format for %q", norm)
	}

	return domain.Coordinates{Lon: coords[0], Lat: coords[1]}, true, nil
}
