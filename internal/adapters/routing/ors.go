package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"locate-route-service/internal/domain"
	"locate-route-service/internal/platform/httpx"
	"locate-route-service/internal/platform/obs"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// ORSRouter implements Router using the OpenRouteService directions endpoint.
type ORSRouter struct {
	client  *httpx.Client
	baseURL string
	profile string
}

func NewORSRouter(apiKey, baseURL, profile string) (*ORSRouter, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	if profile == "" {
		profile = "driving-car"
	}

	return &ORSRouter{
		client:  httpx.New(15*time.Second, map[string]string{"Authorization": apiKey}),
		baseURL: baseURL,
		profile: profile,
	}, nil
}

// Route retrieves a single origin->destination route as GeoJSON.
func (o *ORSRouter) Route(
	ctx context.Context,
	req domain.RouteRequest,
	destination domain.Waypoint,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "ors.route")(&err)

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{
			req.Origin.CoordsToList(),
			destination.Coordinates.CoordsToList(),
		},
	})
	if err != nil {
		return domain.Route{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.client.NewRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		// ORS reports unroutable points as 404.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return domain.Route{}, fmt.Errorf("directions request: %w", domain.ErrDestinationNotFound)
		}
		return domain.Route{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return domain.Route{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Features) == 0 {
		return domain.Route{}, fmt.Errorf("directions response: %w", domain.ErrDestinationNotFound)
	}

	f := dr.Features[0]
	geometry := make([]domain.Coordinates, 0, len(f.Geometry.Coordinates))
	for _, pair := range f.Geometry.Coordinates {
		if len(pair) < 2 {
			return domain.Route{}, fmt.Errorf("directions returned invalid point %v", pair)
		}
		geometry = append(geometry, domain.Coordinates{Lon: pair[0], Lat: pair[1]})
	}

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return domain.Route{
		ID:              uuid.NewString(),
		Origin:          req.Origin,
		Destination:     destination.Coordinates,
		DestinationText: req.DestinationText,
		DistanceMeters:  int(math.Round(f.Properties.Summary.Distance)),
		DurationSeconds: int(math.Round(f.Properties.Summary.Duration)),
		Geometry:        geometry,
	}, nil
}
