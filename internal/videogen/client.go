package videogen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// animationPrompt is the fixed instruction sent with every snapshot.
const animationPrompt = "Create a smooth cinematic flyover animation that traces the " +
	"highlighted route on this map from its start marker to its end marker, keeping " +
	"the camera centered on the moving path."

// Client drives a single long-running video generation job against the
// external service: submit the snapshot, poll the operation until done,
// download the result.
type Client struct {
	apiKey       string
	model        string
	baseURL      string
	pollInterval time.Duration
	httpClient   *http.Client
}

func New(apiKey, model, baseURL string, pollInterval time.Duration) *Client {
	return &Client{
		apiKey:       apiKey,
		model:        model,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		pollInterval: pollInterval,
		httpClient:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// Generate runs the full submit -> poll -> download sequence and returns
// the raw video bytes. Polling has no retry cap; a stuck job polls until
// the context dies.
func (c *Client) Generate(ctx context.Context, image []byte) ([]byte, error) {
	op, err := c.submit(ctx, image)
	if err != nil {
		return nil, err
	}
	log.Printf("video job %s submitted", op.Name)

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		op, err = c.poll(ctx, op.Name)
		if err != nil {
			return nil, err
		}
	}

	if op.Error != nil {
		return nil, fmt.Errorf("video job failed: %s", op.Error.Message)
	}

	uri, err := op.videoURI()
	if err != nil {
		return nil, err
	}
	return c.download(ctx, uri)
}

func (c *Client) submit(ctx context.Context, image []byte) (*operation, error) {
	payload, err := json.Marshal(submitRequest{
		Instances: []instance{{
			Prompt: animationPrompt,
			Image: inlineImage{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(image),
				MimeType:           "image/png",
			},
		}},
		Parameters: parameters{SampleCount: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("submit video job: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:predictLongRunning", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("submit video job: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit video job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError("submit video job", resp)
	}

	var op operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("submit video job: decode response: %w", err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("submit video job: response carries no operation name")
	}
	return &op, nil
}

func (c *Client) poll(ctx context.Context, name string) (*operation, error) {
	endpoint := fmt.Sprintf("%s/v1beta/%s", c.baseURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("poll video job: %w", err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll video job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError("poll video job", resp)
	}

	var op operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("poll video job: decode response: %w", err)
	}
	return &op, nil
}

// download fetches the finished video from the locator the operation
// returned, with the API key appended as a query parameter.
func (c *Client) download(ctx context.Context, uri string) ([]byte, error) {
	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri+sep+"key="+url.QueryEscape(c.apiKey), nil)
	if err != nil {
		return nil, &DownloadError{URL: uri, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &DownloadError{URL: uri, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DownloadError{URL: uri, StatusCode: resp.StatusCode}
	}

	video, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &DownloadError{URL: uri, Err: err}
	}
	return video, nil
}

// apiError surfaces the service's own error message when the body carries
// one, so messages like "API key not valid" reach the caller verbatim.
func apiError(action string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("%s: %s", action, payload.Error.Message)
	}
	return fmt.Errorf("%s: HTTP %d", action, resp.StatusCode)
}
