package animation

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/harmony365/GPS-Route-Video-Generator/internal/stream"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/track"
	"github.com/harmony365/GPS-Route-Video-Generator/internal/videogen"
)

// Renderer turns a route into the snapshot image handed to the video
// service.
type Renderer interface {
	Render(ctx context.Context, points []track.Coordinate) ([]byte, error)
}

// Generator drives the external video job to completion and returns the
// video bytes.
type Generator interface {
	Generate(ctx context.Context, image []byte) ([]byte, error)
}

const defaultProgressInterval = 4 * time.Second

// progressMessages cycle on a timer while a job runs. They are cosmetic
// and carry no relation to the actual job state.
var progressMessages = []string{
	"Plotting your route on the map...",
	"Scouting camera angles...",
	"Handing the route to the animator...",
	"Generating video frames, this can take a few minutes...",
	"Polishing the final cut...",
}

const renderFailedMessage = "Could not render the route map. Please try again."

type Service struct {
	store            *Store
	renderer         Renderer
	generator        Generator
	hub              *stream.Hub
	progressInterval time.Duration
}

func NewService(store *Store, renderer Renderer, generator Generator, hub *stream.Hub) *Service {
	return &Service{
		store:            store,
		renderer:         renderer,
		generator:        generator,
		hub:              hub,
		progressInterval: defaultProgressInterval,
	}
}

func (s *Service) Job(id string) (Job, bool) {
	return s.store.Get(id)
}

func (s *Service) Video(id string) ([]byte, string, bool) {
	return s.store.Video(id)
}

// Start registers a job and runs it in its own goroutine. The job is
// deliberately detached from the request context: a client navigating
// away stops watching, it does not cancel the external operation.
func (s *Service) Start(points []track.Coordinate, fileName string) Job {
	job := s.store.Create(fileName, len(points))
	go s.run(context.Background(), job.ID, points)
	return job
}

func (s *Service) run(ctx context.Context, id string, points []track.Coordinate) {
	stopProgress := s.startProgressTicker(id)
	defer stopProgress()

	s.transition(id, StatusRendering, "")
	image, err := s.renderer.Render(ctx, points)
	if err != nil {
		log.Printf("animation %s: render snapshot: %v", id, err)
		s.transition(id, StatusFailed, renderFailedMessage)
		return
	}

	s.transition(id, StatusGenerating, "")
	video, err := s.generator.Generate(ctx, image)
	if err != nil {
		log.Printf("animation %s: generate video: %v", id, err)
		s.transition(id, StatusFailed, videogen.UserMessage(err))
		return
	}

	s.store.SetVideo(id, video)
	s.transition(id, StatusDone, "")
	log.Printf("animation %s: video ready (%d bytes)", id, len(video))
}

func (s *Service) transition(id string, status Status, message string) {
	s.store.SetStatus(id, status, message)
	s.broadcast(id, Event{JobID: id, Status: status, Message: message})
}

// startProgressTicker cycles the canned messages until the returned stop
// function is called. Every exit path of run stops it via defer.
func (s *Service) startProgressTicker(id string) func() {
	stop := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.progressInterval)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				job, ok := s.store.Get(id)
				if !ok || job.Status == StatusDone || job.Status == StatusFailed {
					return
				}
				s.broadcast(id, Event{JobID: id, Status: job.Status, Message: progressMessages[i%len(progressMessages)]})
				i++
			}
		}
	}()

	return func() { close(stop) }
}

func (s *Service) broadcast(id string, event Event) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.hub.Broadcast(id, payload)
}
