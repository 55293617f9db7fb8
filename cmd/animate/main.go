// Command animate renders a route snapshot and drives the video job from
// the terminal, without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/config"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/snapshot"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/videogen"
)

func main() {
	var (
		in           = flag.String("in", "", "GPX or KML track file")
		out          = flag.String("out", "", "output video file (default <track>-animation.mp4)")
		snapshotOnly = flag.Bool("snapshot", false, "write the PNG snapshot instead of generating a video")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *in, *out, *snapshotOnly); err != nil {
		log.Fatalf("animate: %v", err)
	}
}

func run(ctx context.Context, in, out string, snapshotOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	format, err := track.DetectFormat(in)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	points, err := track.Parse(data, format)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d points, %.1f km\n", filepath.Base(in), len(points), track.DistanceKm(points))

	renderer := snapshot.NewRenderer(snapshot.Options{
		Width:    cfg.SnapshotWidth,
		Height:   cfg.SnapshotHeight,
		TileURL:  cfg.TileURL,
		CacheDir: cfg.TileCacheDir,
	})

	tiles := renderer.TilesFor(points)
	bar := progressbar.Default(int64(len(tiles)), "Downloading tiles")
	renderer.Prefetch(ctx, tiles, func() { _ = bar.Add(1) })
	_ = bar.Finish()

	image, err := renderer.Render(ctx, points)
	if err != nil {
		return err
	}

	if snapshotOnly {
		name := outName(in, out, ".png")
		if err := os.WriteFile(name, image, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", name)
		return nil
	}

	fmt.Println("Submitting video job, this can take a few minutes...")
	generator := videogen.New(cfg.GeminiAPIKey, cfg.VideoModel, cfg.VideoAPIBaseURL, cfg.PollInterval())
	video, err := generator.Generate(ctx, image)
	if err != nil {
		return err
	}

	name := outName(in, out, ".mp4")
	if err := os.WriteFile(name, video, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", name, len(video))
	return nil
}

func outName(in, out, ext string) string {
	if out != "" {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return base + "-animation" + ext
}
