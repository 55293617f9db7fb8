package videogen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoVideo means the operation completed but carried no result reference.
var ErrNoVideo = errors.New("video generation completed but no video was returned")

// DownloadError covers the second network retrieval, fetching the finished
// video from the locator the operation returned.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("download video %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("download video %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// User-facing messages. Raw error detail is logged, not shown.
const (
	MsgInvalidAPIKey  = "Your API key is not valid. Please check the GEMINI_API_KEY configuration."
	MsgGenerateFailed = "Video generation failed. The model may be busy, please try again in a few minutes."
	MsgNoVideo        = "Video generation completed but no video was returned. Please try again."
	MsgDownloadFailed = "Could not download the generated video. Please try again."
)

// UserMessage collapses any error out of Generate into the single message
// shown to the end user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *DownloadError
	switch {
	case errors.Is(err, ErrNoVideo):
		return MsgNoVideo
	case errors.As(err, &de):
		return MsgDownloadFailed
	case strings.Contains(err.Error(), "API key not valid"):
		return MsgInvalidAPIKey
	default:
		return MsgGenerateFailed
	}
}
