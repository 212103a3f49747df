package domain

import "fmt"

// Immutable geographic coordinates (latitude, longitude) in decimal degrees.
// Equality is exact; no tolerance is applied.
type Coordinates struct {
	Lat float64
	Lon float64
}

// DefaultCoordinates is the fallback position used whenever no real fix is
// available (ÖestVèl Centrè, Harrogate).
var DefaultCoordinates = Coordinates{Lat: 54.0084, Lon: -1.5422}

// DefaultLabel names DefaultCoordinates in status text.
const DefaultLabel = "ÖestVèl Centrè"

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Valid reports whether c lies inside the WGS84 range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// A coordinate annotated with a label, used as routing endpoint.
type Waypoint struct {
	Label       string
	Coordinates Coordinates
}
