// Package apiclient talks to the AudioSync web backend over HTTP.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"vim-audiosync/internal/lifecycle"
	"vim-audiosync/internal/models"
)

// UploadField is the multipart field the backend reads the media from.
const UploadField = "file"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ lifecycle.JobAPI = (*Client)(nil)

// NewClient builds a client for baseURL. Uploads can take hours for large
// RAW files, so no overall timeout is set; callers bound requests with ctx.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Upload streams file as multipart/form-data to POST /upload.
func (c *Client) Upload(ctx context.Context, file lifecycle.File) (*models.UploadResponse, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(UploadField, file.Name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result models.UploadResponse
	if err := c.do(req, &result); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	if result.JobID == "" {
		return nil, fmt.Errorf("upload response has no jobId")
	}
	return &result, nil
}

// GetJob fetches the status snapshot from GET /job/{id}.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.JobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/job/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var job models.JobResponse
	if err := c.do(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// MarkPaid reports a captured PayPal order for jobID.
func (c *Client) MarkPaid(ctx context.Context, jobID, orderID string) error {
	body, err := json.Marshal(models.MarkPaidRequest{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/paypal/mark-paid/"+url.PathEscape(jobID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, nil)
}

func (c *Client) DownloadURL(jobID string) string {
	return c.baseURL + "/download/" + url.PathEscape(jobID)
}

// Download copies the synced output of jobID into w and returns the filename
// suggested by the server.
func (c *Client) Download(ctx context.Context, jobID string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(jobID), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serverError(resp)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("failed to read download: %w", err)
	}
	return filenameFrom(resp.Header.Get("Content-Disposition"), jobID), nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// serverError keeps the body verbatim; the upload handler answers in plain
// text and the UI shows it as-is.
func serverError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return &lifecycle.ServerError{StatusCode: resp.StatusCode, Body: string(body)}
}

func filenameFrom(disposition, jobID string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return "synced-" + jobID + ".mov"
}
