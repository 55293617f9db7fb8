package snapshot

import (
	"math"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
)

// Tile identifies one slippy-map tile.
type Tile struct {
	X, Y, Z int
}

// deg2num converts a coordinate to fractional tile coordinates at a zoom
// level (standard Web Mercator tiling).
func deg2num(lat, lng float64, zoom int) (float64, float64) {
	latRad := lat * math.Pi / 180
	n := math.Pow(2, float64(zoom))
	xtile := (lng + 180) / 360 * n
	ytile := (1 - math.Asinh(math.Tan(latRad))/math.Pi) / 2 * n
	return xtile, ytile
}

type bounds struct {
	minLat, maxLat float64
	minLng, maxLng float64
}

func boundsOf(points []track.Coordinate) bounds {
	b := bounds{
		minLat: points[0].Lat, maxLat: points[0].Lat,
		minLng: points[0].Lng, maxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		b.minLat = math.Min(b.minLat, p.Lat)
		b.maxLat = math.Max(b.maxLat, p.Lat)
		b.minLng = math.Min(b.minLng, p.Lng)
		b.maxLng = math.Max(b.maxLng, p.Lng)
	}
	return b
}

func (b bounds) center() (float64, float64) {
	return (b.minLat + b.maxLat) / 2, (b.minLng + b.maxLng) / 2
}

// zoomFor picks the largest zoom level at which the whole bounding box
// fits the canvas, with a margin so the route does not touch the edges.
func zoomFor(b bounds, width, height, maxZoom int) int {
	for z := maxZoom; z > 1; z-- {
		x1, y1 := deg2num(b.maxLat, b.minLng, z)
		x2, y2 := deg2num(b.minLat, b.maxLng, z)
		w := (x2 - x1) * tileSize
		h := (y2 - y1) * tileSize
		if w <= 0.85*float64(width) && h <= 0.85*float64(height) {
			return z
		}
	}
	return 1
}
