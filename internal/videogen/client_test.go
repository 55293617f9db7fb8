package videogen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return New("test-key", "veo-test", baseURL, time.Millisecond)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func doneOperation(uri string) map[string]any {
	return map[string]any{
		"name": "operations/op-1",
		"done": true,
		"response": map[string]any{
			"generateVideoResponse": map[string]any{
				"generatedSamples": []map[string]any{
					{"video": map[string]any{"uri": uri}},
				},
			},
		},
	}
}

func TestGeneratePollsUntilDone(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode submit body: %v", err)
		}
		if len(req.Instances) != 1 || req.Instances[0].Prompt == "" {
			t.Errorf("submit body missing prompt instance")
		}
		if req.Parameters.SampleCount != 1 {
			t.Errorf("expected exactly one requested video, got %d", req.Parameters.SampleCount)
		}
		writeJSON(t, w, map[string]any{"name": "operations/op-1", "done": false})
	})

	mux.HandleFunc("/v1beta/operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		// done=false twice in total (submit + first poll), then done.
		if polls.Add(1) == 1 {
			writeJSON(t, w, map[string]any{"name": "operations/op-1", "done": false})
			return
		}
		writeJSON(t, w, doneOperation(srv.URL+"/files/video-1"))
	})

	mux.HandleFunc("/files/video-1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("download missing key query parameter")
		}
		fmt.Fprint(w, "MP4DATA")
	})

	video, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(video) != "MP4DATA" {
		t.Fatalf("unexpected video bytes: %q", video)
	}
	if got := polls.Load(); got != 2 {
		t.Fatalf("expected exactly 2 polls, got %d", got)
	}
}

func TestGenerateCompletedWithoutVideo(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"name": "operations/op-2", "done": true, "response": map[string]any{}})
	})

	_, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	if !errors.Is(err, ErrNoVideo) {
		t.Fatalf("expected ErrNoVideo, got %v", err)
	}
	if UserMessage(err) != MsgNoVideo {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestGenerateInvalidAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key."}}`)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected service message to flow through, got %v", err)
	}
	if UserMessage(err) != MsgInvalidAPIKey {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestGenerateSubmitFailureIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if UserMessage(err) != MsgGenerateFailed {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestGenerateOperationError(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"name": "operations/op-3",
			"done": true,
			"error": map[string]any{"code": 8, "message": "resource exhausted"},
		})
	})

	_, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	if err == nil || !strings.Contains(err.Error(), "resource exhausted") {
		t.Fatalf("expected operation error, got %v", err)
	}
	if UserMessage(err) != MsgGenerateFailed {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestGenerateDownloadFailure(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, doneOperation(srv.URL+"/files/video-missing"))
	})
	mux.HandleFunc("/files/video-missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := testClient(srv.URL).Generate(context.Background(), []byte("png"))
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if de.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", de.StatusCode)
	}
	if UserMessage(err) != MsgDownloadFailed {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
}

func TestDownloadAppendsKeyToExistingQuery(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, doneOperation(srv.URL+"/files/video-2?alt=media"))
	})
	mux.HandleFunc("/files/video-2", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "media" || r.URL.Query().Get("key") != "test-key" {
			t.Errorf("query parameters not preserved: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, "MP4DATA")
	})

	if _, err := testClient(srv.URL).Generate(context.Background(), []byte("png")); err != nil {
		t.Fatalf("generate: %v", err)
	}
}

func TestGenerateContextCancelledDuringPoll(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/v1beta/models/veo-test:predictLongRunning", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"name": "operations/op-4", "done": false})
	})
	mux.HandleFunc("/v1beta/operations/op-4", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"name": "operations/op-4", "done": false})
	})

	client := New("test-key", "veo-test", srv.URL, 50*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, []byte("png"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
}

func TestUserMessageNil(t *testing.T) {
	if UserMessage(nil) != "" {
		t.Fatalf("expected empty message for nil error")
	}
}
