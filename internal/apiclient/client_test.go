package apiclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/apiclient"
	"vim-audiosync/internal/lifecycle"
	"vim-audiosync/internal/models"
)

func file(name, body string) lifecycle.File {
	return lifecycle.File{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestClient_UploadStreamsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)

		f, hdr, err := r.FormFile(apiclient.UploadField)
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "A001.mov", hdr.Filename)
		assert.Equal(t, "frames", string(data))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.UploadResponse{JobID: "42", Status: "processing"})
	}))
	defer srv.Close()

	resp, err := apiclient.NewClient(srv.URL+"/").Upload(context.Background(), file("A001.mov", "frames"))

	require.NoError(t, err)
	assert.Equal(t, "42", resp.JobID)
	assert.Equal(t, "processing", resp.Status)
}

func TestClient_UploadServerErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = io.WriteString(w, " file too large\n")
	}))
	defer srv.Close()

	_, err := apiclient.NewClient(srv.URL).Upload(context.Background(), file("big.mov", "x"))

	var serverErr *lifecycle.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, serverErr.StatusCode)
	assert.Equal(t, " file too large\n", serverErr.Body)
}

func TestClient_GetJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/42", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"42","status":"ready","previewUrl":"https://x/preview.mp4"}`))
	}))
	defer srv.Close()

	job, err := apiclient.NewClient(srv.URL).GetJob(context.Background(), "42")

	require.NoError(t, err)
	assert.Equal(t, "ready", job.Status)
	assert.Equal(t, "https://x/preview.mp4", job.PreviewURL)
}

func TestClient_GetJobNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"job not found"}`))
	}))
	defer srv.Close()

	_, err := apiclient.NewClient(srv.URL).GetJob(context.Background(), "missing")

	var serverErr *lifecycle.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.StatusCode)
}

func TestClient_MarkPaid(t *testing.T) {
	var got models.MarkPaidRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paypal/mark-paid/42", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"jobId":"42","paid":true}`))
	}))
	defer srv.Close()

	err := apiclient.NewClient(srv.URL).MarkPaid(context.Background(), "42", "ORDER-1")

	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", got.OrderID)
}

func TestClient_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/download/paid":
			w.Header().Set("Content-Disposition", `attachment; filename="A001_synced.mov"`)
			_, _ = w.Write([]byte("movie"))
		default:
			http.Error(w, "payment required", http.StatusPaymentRequired)
		}
	}))
	defer srv.Close()
	client := apiclient.NewClient(srv.URL)

	var buf bytes.Buffer
	name, err := client.Download(context.Background(), "paid", &buf)
	require.NoError(t, err)
	assert.Equal(t, "A001_synced.mov", name)
	assert.Equal(t, "movie", buf.String())

	_, err = client.Download(context.Background(), "unpaid", &buf)
	var serverErr *lifecycle.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusPaymentRequired, serverErr.StatusCode)
}

func TestClient_DownloadURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/download/42", apiclient.NewClient("http://localhost:8080/").DownloadURL("42"))
}
