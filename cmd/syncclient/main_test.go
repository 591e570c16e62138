package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vim-audiosync/internal/apiclient"
	"vim-audiosync/internal/lifecycle"
)

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := newTerminalRenderer(&buf)

	r.Status(lifecycle.MsgReady)
	r.ShowResult(lifecycle.Result{JobID: "42", DownloadURL: "/download/42", PreviewURL: "https://x/p.mp4"})
	r.Navigate("http://localhost:8080/download/42")

	assert.Contains(t, buf.String(), lifecycle.MsgReady)
	assert.Contains(t, buf.String(), "Preview: https://x/p.mp4")
	assert.Equal(t, "http://localhost:8080/download/42", r.downloadURL())
}

func TestPriceNotice(t *testing.T) {
	for _, tc := range []struct {
		name     string
		required bool
		want     string
	}{
		{"gated", true, "Pay-per-job: $9.50 USD"},
		{"free", false, ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := lifecycle.NewController(apiclient.NewClient("http://localhost:8080"), newTerminalRenderer(io.Discard), lifecycle.Options{
				PaymentRequired: tc.required,
				PayPerJobAmount: "9.50",
			})
			defer ctrl.Close()

			notice := priceNotice(ctrl.Payments())
			if tc.want == "" {
				assert.Empty(t, notice)
				return
			}
			assert.Contains(t, notice, tc.want)
			assert.Contains(t, notice, "-order-id")
		})
	}
}

func TestSelectFiles(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "A001.mov")
	require.NoError(t, os.WriteFile(clip, []byte("frames"), 0o644))

	files, err := selectFiles([]string{clip})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "A001.mov", files[0].Name)
	assert.Equal(t, int64(6), files[0].Size)

	_, err = selectFiles([]string{dir})
	assert.Error(t, err)
	_, err = selectFiles([]string{filepath.Join(dir, "missing.wav")})
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="A001_synced.mov"`)
		_, _ = w.Write([]byte("movie"))
	}))
	defer srv.Close()
	client := apiclient.NewClient(srv.URL)
	dir := t.TempDir()

	saved, err := save(context.Background(), client, "42", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "A001_synced.mov"), saved)
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "movie", string(data))

	explicit := filepath.Join(dir, "out.mov")
	saved, err = save(context.Background(), client, "42", explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, saved)
}
