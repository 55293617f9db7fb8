package track

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/shared/geo"
)

// The parsers are intentionally permissive: they pull coordinates out of
// whatever markup surrounds them and silently skip anything that does not
// carry two numeric fields. Malformed XML outside the matched substrings
// is ignored.
var (
	trkptRe = regexp.MustCompile(`<trkpt\b[^>]*>`)
	latRe   = regexp.MustCompile(`\blat="(-?[0-9]+(?:\.[0-9]+)?)"`)
	lonRe   = regexp.MustCompile(`\blon="(-?[0-9]+(?:\.[0-9]+)?)"`)
	coordRe = regexp.MustCompile(`(?s)<coordinates>(.*?)</coordinates>`)
)

// DetectFormat maps a file name to a track format by extension,
// case-insensitive. Content is never sniffed.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".gpx":
		return FormatGPX, nil
	case ".kml":
		return FormatKML, nil
	default:
		return "", fmt.Errorf("unsupported file type: %q, expected .gpx or .kml", filepath.Ext(fileName))
	}
}

// Parse extracts the ordered coordinate sequence from raw track text.
// An input from which nothing can be extracted is an error, never an
// empty track.
func Parse(data []byte, format Format) ([]Coordinate, error) {
	var points []Coordinate
	switch format {
	case FormatGPX:
		points = parseGPX(string(data))
	case FormatKML:
		points = parseKML(string(data))
	default:
		return nil, fmt.Errorf("unknown track format: %s", format)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("no track points found in the %s file", format)
	}
	return points, nil
}

// parseGPX collects every <trkpt> marker carrying lat and lon attributes,
// in document order. Markers missing either attribute are skipped.
func parseGPX(text string) []Coordinate {
	var points []Coordinate
	for _, marker := range trkptRe.FindAllString(text, -1) {
		latMatch := latRe.FindStringSubmatch(marker)
		lonMatch := lonRe.FindStringSubmatch(marker)
		if latMatch == nil || lonMatch == nil {
			continue
		}
		lat, err1 := strconv.ParseFloat(latMatch[1], 64)
		lng, err2 := strconv.ParseFloat(lonMatch[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		points = append(points, Coordinate{Lat: lat, Lng: lng})
	}
	return points
}

// parseKML reads the first <coordinates> block only; documents with
// multiple placemarks are not supported. Tokens are "lon,lat[,alt]" and
// unparsable tokens are dropped.
func parseKML(text string) []Coordinate {
	block := coordRe.FindStringSubmatch(text)
	if block == nil {
		return nil
	}

	var points []Coordinate
	for _, token := range strings.Fields(block[1]) {
		parts := strings.Split(token, ",")
		if len(parts) < 2 {
			continue
		}
		lng, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		points = append(points, Coordinate{Lat: lat, Lng: lng})
	}
	return points
}

// DistanceKm sums the haversine length of the path.
func DistanceKm(points []Coordinate) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.HaversineKm(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return total
}
