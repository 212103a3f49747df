package dto

type StatusResponse struct {
	Message  string `json:"message"`
	Progress int    `json:"progress"`
}

type MapResponse struct {
	Attached bool                 `json:"attached"`
	Center   *CoordinatesResponse `json:"center,omitempty"`
	Zoom     int                  `json:"zoom,omitempty"`
	Marker   *CoordinatesResponse `json:"marker,omitempty"`
	RouteID  string               `json:"route_id,omitempty"`
	URL      string               `json:"url,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
