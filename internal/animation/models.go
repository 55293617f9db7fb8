package animation

import "time"

type Status string

const (
	StatusQueued     Status = "queued"
	StatusRendering  Status = "rendering"
	StatusGenerating Status = "generating"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Job is one generate action. It owns its own operation against the
// external service and never interacts with other jobs.
type Job struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	VideoName  string    `json:"video_name"`
	Status     Status    `json:"status"`
	Message    string    `json:"message,omitempty"`
	PointCount int       `json:"point_count"`
	CreatedAt  time.Time `json:"created_at"`

	video []byte
}

// Event is what the progress stream pushes to connected clients.
type Event struct {
	JobID   string `json:"job_id"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}
