package snapshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const fetchConcurrency = 8

// Fetcher downloads map tiles from a {z}/{x}/{y} URL template, keeping an
// in-memory cache and, when a directory is configured, a disk cache.
type Fetcher struct {
	urlTemplate string
	cacheDir    string
	client      *http.Client
	cache       sync.Map
}

func NewFetcher(urlTemplate, cacheDir string) *Fetcher {
	return &Fetcher{
		urlTemplate: urlTemplate,
		cacheDir:    cacheDir,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Fetcher) Get(ctx context.Context, t Tile) (image.Image, error) {
	key := fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
	if img, ok := f.cache.Load(key); ok {
		return img.(image.Image), nil
	}

	if f.cacheDir != "" {
		if img, err := f.loadFromDisk(t); err == nil {
			f.cache.Store(key, img)
			return img, nil
		}
	}

	img, err := f.download(ctx, t)
	if err != nil {
		return nil, err
	}

	if f.cacheDir != "" {
		f.saveToDisk(t, img)
	}
	f.cache.Store(key, img)
	return img, nil
}

// Prefetch warms the cache for a set of tiles with bounded concurrency.
// Individual tile failures are tolerated; Render falls back to a blank
// background for tiles it cannot get. done, when set, is called once per
// tile for progress reporting.
func (f *Fetcher) Prefetch(ctx context.Context, tiles []Tile, done func()) {
	var wg sync.WaitGroup
	limit := make(chan struct{}, fetchConcurrency)

	for _, t := range tiles {
		wg.Add(1)
		limit <- struct{}{}
		go func(t Tile) {
			defer wg.Done()
			_, _ = f.Get(ctx, t)
			if done != nil {
				done()
			}
			<-limit
		}(t)
	}
	wg.Wait()
}

func (f *Fetcher) download(ctx context.Context, t Tile) (image.Image, error) {
	url := strings.Replace(f.urlTemplate, "{z}", strconv.Itoa(t.Z), 1)
	url = strings.Replace(url, "{x}", strconv.Itoa(t.X), 1)
	url = strings.Replace(url, "{y}", strconv.Itoa(t.Y), 1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "gps-route-video-generator/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download tile %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download tile %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile %s: %w", url, err)
	}
	return img, nil
}

func (f *Fetcher) tilePath(t Tile) string {
	return filepath.Join(f.cacheDir, strconv.Itoa(t.Z), strconv.Itoa(t.X), strconv.Itoa(t.Y)+".png")
}

func (f *Fetcher) loadFromDisk(t Tile) (image.Image, error) {
	file, err := os.Open(f.tilePath(t))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	return img, err
}

func (f *Fetcher) saveToDisk(t Tile, img image.Image) {
	path := f.tilePath(t)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	out, err := os.Create(path)
	if err != nil {
		return
	}
	defer out.Close()
	_ = png.Encode(out, img)
}
