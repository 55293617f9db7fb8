package animation

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps jobs in memory. A job lives from its generate action until
// the process exits; nothing is persisted.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewStore() *Store {
	return &Store{jobs: map[string]*Job{}}
}

func (s *Store) Create(fileName string, pointCount int) Job {
	job := &Job{
		ID:         uuid.NewString(),
		FileName:   fileName,
		VideoName:  videoName(fileName),
		Status:     StatusQueued,
		PointCount: pointCount,
		CreatedAt:  time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job
}

func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	out := *job
	out.video = nil
	return out, true
}

func (s *Store) SetStatus(id string, status Status, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.Message = message
	}
}

func (s *Store) SetVideo(id string, video []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[id]; ok {
		job.video = video
	}
}

// Video returns the finished bytes and download name once the job is done.
func (s *Store) Video(id string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != StatusDone || job.video == nil {
		return nil, "", false
	}
	return job.video, job.VideoName, true
}

// videoName derives the download file name from the uploaded base name:
// "alps.gpx" becomes "alps-animation.mp4".
func videoName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "route"
	}
	return base + "-animation.mp4"
}
