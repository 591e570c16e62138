// Package lifecycle drives one sync job from file selection to download:
// upload, status polling, payment gating and the processing narration.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vim-audiosync/internal/models"
)

var (
	// ErrNoFileSelected is returned by Submit when the selection is empty.
	ErrNoFileSelected = errors.New("no file selected")
	// ErrPaymentRequired is returned when the download is blocked by the payment gate.
	ErrPaymentRequired = errors.New("payment required")
	// ErrNoJob is returned when an action needs a job that was never created.
	ErrNoJob = errors.New("no job")
	// ErrJobNotReady is returned when the download is requested before the job is ready.
	ErrJobNotReady = errors.New("job not ready")
	// ErrPollFailed wraps the last transport error once poll retries are exhausted.
	ErrPollFailed = errors.New("job status unavailable")
)

// File is one user-selected media file.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// JobAPI is the backend surface the client talks to.
type JobAPI interface {
	Upload(ctx context.Context, file File) (*models.UploadResponse, error)
	GetJob(ctx context.Context, jobID string) (*models.JobResponse, error)
	MarkPaid(ctx context.Context, jobID, orderID string) error
	DownloadURL(jobID string) string
}

// ServerError is a non-2xx answer from the backend. Body is kept verbatim.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// Result is what the user sees once a job is ready.
type Result struct {
	JobID       string
	DownloadURL string
	PreviewURL  string
}

// Renderer is the view surface. Implementations must be safe to call from
// the poller and overlay goroutines.
type Renderer interface {
	FileSummary(text string)
	Status(text string)
	PaymentStatus(text string)
	Alert(text string)
	ShowOverlay()
	HideOverlay()
	OverlayStep(step, caption string)
	ShowResult(result Result)
	ShowFailure(text string)
	Navigate(url string)
}

// User-facing copy.
const (
	MsgSelectFile       = "Please select a file to upload."
	MsgUploading        = "Uploading & syncing… please keep this tab open."
	MsgUnexpected       = "Unexpected error. Please try again or contact VIM Media support."
	MsgReady            = "Done! Your synced file is ready."
	MsgJobFailed        = "Something went wrong while syncing. Please contact VIM Media support at streaming@watchvim.com."
	MsgPollFailed       = "We lost contact with the sync service while checking your job. Please refresh or contact VIM Media support."
	MsgUploadFirst      = "Upload your media before downloading."
	MsgNotReady         = "Your synced file is not ready yet."
	MsgPayBeforeDL      = "Please complete the Pay-per-job payment before downloading."
	MsgPaymentPending   = "Complete payment to unlock the download for this job."
	MsgPaymentDisabled  = "Payment is disabled in this environment (testing mode)."
	MsgPaidNoJob        = "Payment received. Upload your media to start the sync job."
	MsgPaidWithJob      = "Payment received. Your download is unlocked."
	MsgPaymentCancelled = "Payment cancelled. You can try again when ready."
	MsgPaymentError     = "There was an error with PayPal. Please try again."
)
