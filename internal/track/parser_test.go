package track

import (
	"strings"
	"testing"
)

func TestParseGPX(t *testing.T) {
	input := `<trkpt lat="45.0" lon="7.5"/><trkpt lat="45.1" lon="7.6"/>`
	points, err := Parse([]byte(input), FormatGPX)
	if err != nil {
		t.Fatalf("parse gpx: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0] != (Coordinate{Lat: 45.0, Lng: 7.5}) || points[1] != (Coordinate{Lat: 45.1, Lng: 7.6}) {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestParseGPXDocumentOrder(t *testing.T) {
	input := `<?xml version="1.0"?>
<gpx><trk><trkseg>
  <trkpt lat="1.0" lon="2.0"><ele>100</ele></trkpt>
  <trkpt lon="2.1" lat="1.1"></trkpt>
  <trkpt lat="1.2" lon="2.2"/>
</trkseg></trk></gpx>`
	points, err := Parse([]byte(input), FormatGPX)
	if err != nil {
		t.Fatalf("parse gpx: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, want := range []Coordinate{{1.0, 2.0}, {1.1, 2.1}, {1.2, 2.2}} {
		if points[i] != want {
			t.Fatalf("point %d: got %+v want %+v", i, points[i], want)
		}
	}
}

func TestParseGPXSkipsMarkersWithoutAttributes(t *testing.T) {
	input := `<trkpt lat="45.0"/><trkpt lon="7.5"/><trkpt lat="45.1" lon="7.6"/>`
	points, err := Parse([]byte(input), FormatGPX)
	if err != nil {
		t.Fatalf("parse gpx: %v", err)
	}
	if len(points) != 1 || points[0] != (Coordinate{Lat: 45.1, Lng: 7.6}) {
		t.Fatalf("unexpected points: %+v", points)
	}
}

func TestParseGPXDuplicatePointsAreLegal(t *testing.T) {
	input := `<trkpt lat="45.0" lon="7.5"/><trkpt lat="45.0" lon="7.5"/>`
	points, err := Parse([]byte(input), FormatGPX)
	if err != nil {
		t.Fatalf("parse gpx: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected stationary duplicates to be kept, got %d", len(points))
	}
}

func TestParseKML(t *testing.T) {
	input := `<coordinates>7.5,45.0,0 7.6,45.1,0</coordinates>`
	points, err := Parse([]byte(input), FormatKML)
	if err != nil {
		t.Fatalf("parse kml: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0] != (Coordinate{Lat: 45.0, Lng: 7.5}) || points[1] != (Coordinate{Lat: 45.1, Lng: 7.6}) {
		t.Fatalf("lon/lat not swapped correctly: %+v", points)
	}
}

func TestParseKMLFirstBlockOnly(t *testing.T) {
	input := `<Placemark><coordinates>7.5,45.0</coordinates></Placemark>
<Placemark><coordinates>8.5,46.0</coordinates></Placemark>`
	points, err := Parse([]byte(input), FormatKML)
	if err != nil {
		t.Fatalf("parse kml: %v", err)
	}
	if len(points) != 1 || points[0] != (Coordinate{Lat: 45.0, Lng: 7.5}) {
		t.Fatalf("expected only the first coordinates block, got %+v", points)
	}
}

func TestParseKMLDropsBadTokens(t *testing.T) {
	input := `<coordinates>
		7.5,45.0,0
		not-a-number
		7.6
		7.7,abc
		7.8,45.3
	</coordinates>`
	points, err := Parse([]byte(input), FormatKML)
	if err != nil {
		t.Fatalf("parse kml: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 valid points, got %d: %+v", len(points), points)
	}
}

func TestParseNoPointsIsError(t *testing.T) {
	for _, tc := range []struct {
		format Format
		input  string
	}{
		{FormatGPX, `<gpx><trk></trk></gpx>`},
		{FormatKML, `<kml><Placemark></Placemark></kml>`},
		{FormatKML, `<coordinates>garbage tokens only</coordinates>`},
	} {
		_, err := Parse([]byte(tc.input), tc.format)
		if err == nil {
			t.Fatalf("%s: expected error for input without points", tc.format)
		}
		if !strings.Contains(err.Error(), "no track points found") {
			t.Fatalf("%s: unexpected error: %v", tc.format, err)
		}
		if !strings.Contains(err.Error(), string(tc.format)) {
			t.Fatalf("%s: error should name the format: %v", tc.format, err)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	for _, tc := range []struct {
		name   string
		format Format
	}{
		{"ride.gpx", FormatGPX},
		{"RIDE.GPX", FormatGPX},
		{"walk.kml", FormatKML},
		{"Walk.Kml", FormatKML},
	} {
		got, err := DetectFormat(tc.name)
		if err != nil || got != tc.format {
			t.Fatalf("%s: got %q err %v", tc.name, got, err)
		}
	}

	if _, err := DetectFormat("notes.txt"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := DetectFormat("noextension"); err == nil {
		t.Fatalf("expected error for missing extension")
	}
}

func TestDistanceKm(t *testing.T) {
	points := []Coordinate{{Lat: -6.2, Lng: 106.816}, {Lat: -6.9175, Lng: 107.6191}}
	d := DistanceKm(points)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
	if DistanceKm(points[:1]) != 0 {
		t.Fatalf("single point track has zero length")
	}
}
