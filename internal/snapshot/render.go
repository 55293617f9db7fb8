package snapshot

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"log"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
)

const (
	tileSize       = 256
	defaultWidth   = 1280
	defaultHeight  = 720
	defaultMaxZoom = 16
	defaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

	pathWidth    = 4.0
	markerRadius = 6.0
)

var (
	pathColor   = color.RGBA{R: 230, G: 57, B: 70, A: 255}
	startColor  = color.RGBA{R: 42, G: 157, B: 80, A: 255}
	endColor    = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	labelColor  = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	groundColor = color.RGBA{R: 232, G: 230, B: 224, A: 255}
)

type Options struct {
	Width    int
	Height   int
	TileURL  string
	CacheDir string
	MaxZoom  int
}

// Renderer draws a whole route onto a static map image, the snapshot that
// gets submitted to the video generation service.
type Renderer struct {
	opts  Options
	tiles *Fetcher
	font  *truetype.Font
}

func NewRenderer(opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.TileURL == "" {
		opts.TileURL = defaultTileURL
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = defaultMaxZoom
	}

	// goregular ships with the binary; a parse failure only costs the
	// attribution label.
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("could not parse embedded font: %v", err)
	}

	return &Renderer{
		opts:  opts,
		tiles: NewFetcher(opts.TileURL, opts.CacheDir),
		font:  font,
	}
}

// viewport is the pixel window of the world the snapshot shows.
type viewport struct {
	zoom    int
	originX int
	originY int
}

func (r *Renderer) viewportFor(points []track.Coordinate) viewport {
	b := boundsOf(points)
	zoom := zoomFor(b, r.opts.Width, r.opts.Height, r.opts.MaxZoom)

	cLat, cLng := b.center()
	cx, cy := deg2num(cLat, cLng, zoom)
	return viewport{
		zoom:    zoom,
		originX: int(cx*tileSize) - r.opts.Width/2,
		originY: int(cy*tileSize) - r.opts.Height/2,
	}
}

// TilesFor lists every tile the snapshot of the given route will touch,
// so callers can prefetch them with progress reporting.
func (r *Renderer) TilesFor(points []track.Coordinate) []Tile {
	if len(points) == 0 {
		return nil
	}
	v := r.viewportFor(points)

	txMin := int(math.Floor(float64(v.originX) / tileSize))
	tyMin := int(math.Floor(float64(v.originY) / tileSize))
	txMax := int(math.Floor(float64(v.originX+r.opts.Width-1) / tileSize))
	tyMax := int(math.Floor(float64(v.originY+r.opts.Height-1) / tileSize))

	var tiles []Tile
	for x := txMin; x <= txMax; x++ {
		for y := tyMin; y <= tyMax; y++ {
			tiles = append(tiles, Tile{X: x, Y: y, Z: v.zoom})
		}
	}
	return tiles
}

// Prefetch warms the tile cache for a route.
func (r *Renderer) Prefetch(ctx context.Context, tiles []Tile, done func()) {
	r.tiles.Prefetch(ctx, tiles, done)
}

// Render produces the PNG snapshot: base map tiles, the route polyline,
// start and end markers, and an attribution label.
func (r *Renderer) Render(ctx context.Context, points []track.Coordinate) ([]byte, error) {
	if len(points) == 0 {
		return nil, errors.New("cannot render an empty track")
	}

	v := r.viewportFor(points)

	dc := gg.NewContext(r.opts.Width, r.opts.Height)
	dc.SetColor(groundColor)
	dc.Clear()

	for _, t := range r.TilesFor(points) {
		img, err := r.tiles.Get(ctx, t)
		if err != nil {
			log.Printf("could not get tile %d/%d/%d: %v", t.Z, t.X, t.Y, err)
			continue
		}
		dc.DrawImage(img, t.X*tileSize-v.originX, t.Y*tileSize-v.originY)
	}

	project := func(p track.Coordinate) (float64, float64) {
		x, y := deg2num(p.Lat, p.Lng, v.zoom)
		return x*tileSize - float64(v.originX), y*tileSize - float64(v.originY)
	}

	if len(points) > 1 {
		dc.SetColor(pathColor)
		dc.SetLineWidth(pathWidth)
		dc.SetLineCapRound()
		dc.SetLineJoinRound()
		for i, p := range points {
			x, y := project(p)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	drawMarker := func(p track.Coordinate, fill color.Color) {
		x, y := project(p)
		dc.SetColor(fill)
		dc.DrawCircle(x, y, markerRadius)
		dc.Fill()
		dc.SetColor(color.White)
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, markerRadius)
		dc.Stroke()
	}
	drawMarker(points[0], startColor)
	drawMarker(points[len(points)-1], endColor)

	if r.font != nil {
		face := truetype.NewFace(r.font, &truetype.Options{Size: 12})
		dc.SetFontFace(face)
		dc.SetColor(labelColor)
		dc.DrawStringAnchored("© OpenStreetMap contributors", float64(r.opts.Width)-8, float64(r.opts.Height)-8, 1, 0)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
