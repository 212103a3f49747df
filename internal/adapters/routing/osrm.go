package routing

import (
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

// OSRM response format
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// OSRMRouter implements Router against an OSRM /route/v1 endpoint.
type OSRMRouter struct {
	client  *httpx.Client
	baseURL string
	profile string
}

func NewOSRMRouter(baseURL, profile string) *OSRMRouter {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	if profile == "" {
		profile = "driving"
	}

	return &OSRMRouter{
		client:  httpx.New(15*time.Second, nil),
		baseURL: baseURL,
		profile: profile,
	}
}

func (o *OSRMRouter) Route(
	ctx context.Context,
	req domain.RouteRequest,
	destination domain.Waypoint,
) (_ domain.Route, err error) {
	defer obs.Time(ctx, "osrm.route")(&err)

	from, to := req.Origin, destination.Coordinates
	endpoint := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		o.baseURL, o.profile, from.Lon, from.Lat, to.Lon, to.Lat)

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.client.NewRequest(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		// OSRM answers 400 with code=NoRoute when the points are not connected.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code == http.StatusBadRequest && isNoRoute(se.Body) {
			return domain.Route{}, fmt.Errorf("osrm route: %w", domain.ErrDestinationNotFound)
		}
		return domain.Route{}, fmt.Errorf("osrm route: execute request: %w", err)
	}
	defer resp.Body.Close()

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Route{}, fmt.Errorf("osrm route: decode response: %w", err)
	}

	if parsed.Code == "NoRoute" || len(parsed.Routes) == 0 {
		return domain.Route{}, fmt.Errorf("osrm route: %w", domain.ErrDestinationNotFound)
	}
	if parsed.Code != "" && parsed.Code != "Ok" {
		return domain.Route{}, fmt.Errorf("osrm route: unexpected code %q", parsed.Code)
	}

	best := parsed.Routes[0]
	geometry := make([]domain.Coordinates, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			return domain.Route{}, fmt.Errorf("osrm route: invalid geometry point %v", pair)
		}
		geometry = append(geometry, domain.Coordinates{Lon: pair[0], Lat: pair[1]})
	}

	return domain.Route{
		ID:              uuid.NewString(),
		Origin:          from,
		Destination:     to,
		DestinationText: req.DestinationText,
		DistanceMeters:  int(math.Round(best.Distance)),
		DurationSeconds: int(math.Round(best.Duration)),
		Geometry:        geometry,
	}, nil
}

func isNoRoute(body string) bool {
	var r osrmResponse
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return false
	}
	return r.Code == "NoRoute"
}
