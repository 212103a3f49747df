package dto

type RouteRequest struct {
	Destination string `json:"destination"`
}

type RouteResponse struct {
	RouteID         string                `json:"route_id"`
	Origin          CoordinatesResponse   `json:"origin"`
	Destination     CoordinatesResponse   `json:"destination"`
	DestinationText string                `json:"destination_text"`
	DistanceMeters  int                   `json:"distance_meters"`
	DurationSeconds int                   `json:"duration_seconds"`
	Geometry        []CoordinatesResponse `json:"geometry"`
}
