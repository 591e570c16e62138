// Package syncengine is the HTTP client for the external audio/video sync
// engine. The engine aligns waveforms and muxes the multi-track output; this
// service only submits jobs and reads back their state.
package syncengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"vim-audiosync/internal/models"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoffs   []time.Duration
}

type CreateJobRequest struct {
	Reference   string `json:"reference"`
	Filename    string `json:"filename"`
	SourcePath  string `json:"source_path"`
	SourceURL   string `json:"source_url"`
	OutputPath  string `json:"output_path"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// Job is the engine's view of a job. Status values are engine specific;
// see MapStatus.
type Job struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// WithBackoffs overrides the retry schedule.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	return c
}

func (c *Client) CreateJob(ctx context.Context, reqBody CreateJobRequest) (*Job, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var job Job
	if err := c.do(req, &job, http.StatusOK, http.StatusCreated, http.StatusAccepted); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("engine returned an empty job id")
	}
	return &job, nil
}

func (c *Client) GetJob(ctx context.Context, engineJobID string) (*Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+url.PathEscape(engineJobID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var job Job
	if err := c.do(req, &job, http.StatusOK); err != nil {
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	return &job, nil
}

func (c *Client) do(req *http.Request, out any, okStatuses ...int) error {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	ok := false
	for _, s := range okStatuses {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	return nil
}

// RetryWithBackoff executes fn up to maxRetries times, sleeping between
// attempts according to the client's backoff schedule.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// MapStatus translates an engine status into the public job status.
// Unrecognised values pass through and stay non-terminal.
func MapStatus(engineStatus string) models.JobStatus {
	switch strings.ToLower(strings.TrimSpace(engineStatus)) {
	case "queued", "pending", "running", "in progress", "in_progress", "processing", "syncing":
		return models.JobStatusProcessing
	case "completed", "complete", "done", "succeeded", "ready":
		return models.JobStatusReady
	case "failed", "error", "cancelled", "canceled":
		return models.JobStatusError
	default:
		return models.JobStatus(engineStatus)
	}
}
