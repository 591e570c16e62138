package supabase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient keeps uploaded sources and synced outputs in one Supabase
// Storage bucket:
//
//	jobs/{job_id}/source/{filename}
//	jobs/{job_id}/output/{filename}
//
// storage-go keeps per-request headers such as content-type in a header map
// shared by every call on a client, so each call gets its own client.
type StorageClient struct {
	apiKey  string
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, apiKey, bucket string) *StorageClient {
	return &StorageClient{
		apiKey:  apiKey,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(supabaseURL, "/"),
	}
}

func (s *StorageClient) client() *storage.Client {
	return storage.NewClient(s.baseURL+"/storage/v1", s.apiKey, nil)
}

// SourcePath is where the upload for jobID is stored.
func SourcePath(jobID, filename string) string {
	return fmt.Sprintf("jobs/%s/source/%s", jobID, cleanName(filename))
}

// OutputPath is where the synced output for jobID is expected.
func OutputPath(jobID, filename string) string {
	return fmt.Sprintf("jobs/%s/output/%s", jobID, cleanName(filename))
}

func cleanName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

// Upload streams r to storagePath. The storage client does not take a
// context, so cancellation is only observed between calls.
func (s *StorageClient) Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	upsert := false
	_, err := s.client().UploadFile(s.bucket, storagePath, r, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

// SignedURL returns a time-limited link to storagePath.
func (s *StorageClient) SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client().CreateSignedUrl(s.bucket, storagePath, int(ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", storagePath, err)
	}
	if strings.HasPrefix(resp.SignedURL, "http") {
		return resp.SignedURL, nil
	}
	return s.baseURL + "/storage/v1" + resp.SignedURL, nil
}

func (s *StorageClient) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.client().RemoveFile(s.bucket, []string{storagePath})
	return err
}
