package track

// Coordinate is a single point of a route, in file order.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Format of an uploaded track file.
type Format string

const (
	FormatGPX Format = "GPX"
	FormatKML Format = "KML"
)

// Summary is what the upload preview endpoint returns so the client can
// draw the route before asking for an animation.
type Summary struct {
	FileName   string       `json:"file_name"`
	Format     Format       `json:"format"`
	PointCount int          `json:"point_count"`
	DistanceKm float64      `json:"distance_km"`
	Points     []Coordinate `json:"points"`
}
