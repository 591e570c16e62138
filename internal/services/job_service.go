package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"vim-audiosync/internal/models"
	"vim-audiosync/internal/obs"
	"vim-audiosync/internal/paypal"
	"vim-audiosync/internal/store"
	"vim-audiosync/internal/supabase"
	"vim-audiosync/internal/syncengine"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrPaymentRequired     = errors.New("payment required")
	ErrJobNotReady         = errors.New("job not ready")
	ErrOrderRequired       = errors.New("orderId is required")
	ErrEngineUnavailable   = errors.New("sync engine unavailable")
)

const (
	engineRetries  = 3
	sourceURLTTL   = 24 * time.Hour
	downloadURLTTL = 10 * time.Minute
)

var allowedExtensions = map[string]bool{
	// video
	".mp4": true, ".mov": true, ".mxf": true, ".avi": true, ".mkv": true,
	".braw": true, ".r3d": true, ".crm": true,
	// audio
	".wav": true, ".mp3": true, ".m4a": true, ".aac": true, ".flac": true,
}

// AllowedFile reports whether filename has an accepted media extension.
func AllowedFile(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

type FileStore interface {
	Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) error
	SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error)
}

type Engine interface {
	CreateJob(ctx context.Context, req syncengine.CreateJobRequest) (*syncengine.Job, error)
	GetJob(ctx context.Context, engineJobID string) (*syncengine.Job, error)
	RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error
}

type JobServiceConfig struct {
	PaymentRequired bool
	// CallbackURL is where the engine posts status updates. Empty disables callbacks.
	CallbackURL string
	// Cleanup, when set, deletes source uploads of finished jobs.
	Cleanup *StorageService
}

// JobService owns the server side of a job: storing the upload, submitting
// it to the engine, tracking status and enforcing the payment gate.
type JobService struct {
	jobs     store.JobStore
	files    FileStore
	engine   Engine
	verifier paypal.OrderVerifier
	cfg      JobServiceConfig
	log      logrus.FieldLogger
}

// NewJobService builds the service. verifier may be nil, in which case
// mark-paid trusts the caller.
func NewJobService(jobs store.JobStore, files FileStore, engine Engine, verifier paypal.OrderVerifier, cfg JobServiceConfig, log logrus.FieldLogger) *JobService {
	return &JobService{
		jobs:     jobs,
		files:    files,
		engine:   engine,
		verifier: verifier,
		cfg:      cfg,
		log:      log,
	}
}

func (s *JobService) PaymentRequired() bool { return s.cfg.PaymentRequired }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// CreateJob stores the media read from r and submits it to the engine.
func (s *JobService) CreateJob(ctx context.Context, filename, contentType string, r io.Reader) (*models.Job, error) {
	ctx, span := obs.Tracer("services").Start(ctx, "JobService.CreateJob")
	defer span.End()

	if !AllowedFile(filename) {
		return nil, ErrUnsupportedFileType
	}

	id := uuid.NewString()
	entry := s.log.WithFields(logrus.Fields{"job_id": id, "filename": filename})
	span.SetAttributes(attribute.String("job.id", id))

	sourcePath := supabase.SourcePath(id, filename)
	body := &countingReader{r: r}
	if err := s.files.Upload(ctx, sourcePath, body, contentType); err != nil {
		obs.RecordJobEvent("created", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	obs.RecordUpload(body.n)
	entry.WithField("bytes", body.n).Info("upload stored")

	now := time.Now().UTC()
	job := &models.Job{
		ID:         id,
		Status:     models.JobStatusProcessing,
		Filename:   filepath.Base(filename),
		SourcePath: sourcePath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		obs.RecordJobEvent("created", err)
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	sourceURL, err := s.files.SignedURL(ctx, sourcePath, sourceURLTTL)
	if err != nil {
		return s.failSubmit(ctx, job, err)
	}

	var engineJob *syncengine.Job
	err = s.engine.RetryWithBackoff(ctx, func() error {
		var err error
		engineJob, err = s.engine.CreateJob(ctx, syncengine.CreateJobRequest{
			Reference:   id,
			Filename:    job.Filename,
			SourcePath:  sourcePath,
			SourceURL:   sourceURL,
			OutputPath:  supabase.OutputPath(id, syncedName(job.Filename)),
			CallbackURL: s.cfg.CallbackURL,
		})
		return err
	}, engineRetries)
	if err != nil {
		return s.failSubmit(ctx, job, err)
	}

	updated, err := s.jobs.Update(ctx, id, func(j *models.Job) {
		j.EngineJobID = engineJob.ID
		applyEngineJob(j, engineJob)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save engine job id: %w", err)
	}

	obs.RecordJobEvent("created", nil)
	entry.WithField("engine_job_id", engineJob.ID).Info("job submitted to sync engine")
	return updated, nil
}

func (s *JobService) failSubmit(ctx context.Context, job *models.Job, cause error) (*models.Job, error) {
	s.log.WithError(cause).WithField("job_id", job.ID).Error("failed to submit job to sync engine")
	obs.RecordJobEvent("created", cause)
	failed, err := s.jobs.Update(ctx, job.ID, func(j *models.Job) {
		j.Status = models.JobStatusError
		j.Error = cause.Error()
	})
	if err != nil {
		s.log.WithError(err).WithField("job_id", job.ID).Warn("failed to record submit error")
	} else {
		s.finished(failed)
	}
	return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, cause)
}

// GetJob returns the job, refreshing a non-terminal job from the engine.
// A refresh failure is logged and the stored snapshot returned.
func (s *JobService) GetJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() || job.EngineJobID == "" {
		return job, nil
	}

	engineJob, err := s.engine.GetJob(ctx, job.EngineJobID)
	if err != nil {
		s.log.WithError(err).WithField("job_id", id).Warn("engine status refresh failed")
		return job, nil
	}
	return s.update(ctx, id, engineJob)
}

// ApplyEngineUpdate records a status callback. The job is looked up by our
// reference first and by the engine id otherwise.
func (s *JobService) ApplyEngineUpdate(ctx context.Context, event models.EngineWebhookEvent) (*models.Job, error) {
	var (
		job *models.Job
		err error
	)
	if event.Reference != "" {
		job, err = s.jobs.Get(ctx, event.Reference)
	} else {
		job, err = s.jobs.FindByEngineJobID(ctx, event.JobID)
	}
	if err != nil {
		return nil, err
	}

	return s.update(ctx, job.ID, &syncengine.Job{
		ID:         event.JobID,
		Status:     event.Status,
		OutputPath: event.OutputPath,
		PreviewURL: event.PreviewURL,
		Error:      event.Error,
	})
}

func (s *JobService) update(ctx context.Context, id string, engineJob *syncengine.Job) (*models.Job, error) {
	var before models.JobStatus
	job, err := s.jobs.Update(ctx, id, func(j *models.Job) {
		before = j.Status
		applyEngineJob(j, engineJob)
	})
	if err != nil {
		return nil, err
	}
	if job.Status != before && job.Status.IsTerminal() {
		event := "ready"
		if job.Status == models.JobStatusError {
			event = "failed"
		}
		obs.RecordJobEvent(event, nil)
		s.log.WithFields(logrus.Fields{"job_id": id, "status": job.Status}).Info("job reached terminal state")
		s.finished(job)
	}
	return job, nil
}

func (s *JobService) finished(job *models.Job) {
	if s.cfg.Cleanup != nil {
		go s.cfg.Cleanup.HandleJobFinished(job)
	}
}

// applyEngineJob merges engine state into j. Terminal states are final.
// syncedName names the multi-track output after its source: A001.mov
// becomes A001_synced.mov.
func syncedName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "upload"
	}
	return base + "_synced.mov"
}

func applyEngineJob(j *models.Job, e *syncengine.Job) {
	if j.Status.IsTerminal() {
		return
	}
	status := syncengine.MapStatus(e.Status)
	if status == "" {
		return
	}
	if status == models.JobStatusReady && e.OutputPath == "" && j.OutputPath == "" {
		// ready without an output is unusable; treat as failed
		status = models.JobStatusError
		j.Error = "engine reported ready without an output path"
	}
	j.Status = status
	if e.OutputPath != "" {
		j.OutputPath = e.OutputPath
	}
	if e.PreviewURL != "" {
		j.PreviewURL = e.PreviewURL
	}
	if e.Error != "" {
		j.Error = e.Error
	}
}

// MarkPaid records a captured pay-per-job order for the job. With a
// verifier configured the order must exist, be captured and match the price.
// Marking an already paid job again is a no-op. An order pays for one job
// only; reusing it fails with store.ErrOrderUsed.
func (s *JobService) MarkPaid(ctx context.Context, id, orderID string) (*models.Job, error) {
	ctx, span := obs.Tracer("services").Start(ctx, "JobService.MarkPaid")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", id))

	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Paid {
		return job, nil
	}

	orderID = strings.TrimSpace(orderID)
	if s.verifier != nil {
		if orderID == "" {
			return nil, ErrOrderRequired
		}
		if err := s.verifier.VerifyOrder(ctx, orderID); err != nil {
			obs.RecordJobEvent("paid", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "order verification failed")
			return nil, err
		}
	} else {
		s.log.WithField("job_id", id).Warn("marking job paid without order verification")
	}

	job, err = s.jobs.ClaimOrder(ctx, id, orderID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, store.ErrOrderUsed) {
			s.log.WithFields(logrus.Fields{"job_id": id, "order_id": orderID}).Warn("order already paid for another job")
		}
		obs.RecordJobEvent("paid", err)
		span.RecordError(err)
		return nil, err
	}

	obs.RecordJobEvent("paid", nil)
	s.log.WithFields(logrus.Fields{"job_id": id, "order_id": orderID}).Info("job marked paid")
	return job, nil
}

// DownloadURL authorizes a download of the synced output and returns a
// short-lived link to it. The paid flag in the store is authoritative.
func (s *JobService) DownloadURL(ctx context.Context, id string) (string, *models.Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if s.cfg.PaymentRequired && !job.Paid {
		obs.RecordJobEvent("download", ErrPaymentRequired)
		return "", job, ErrPaymentRequired
	}
	if job.Status != models.JobStatusReady || job.OutputPath == "" {
		return "", job, ErrJobNotReady
	}

	link, err := s.files.SignedURL(ctx, job.OutputPath, downloadURLTTL)
	if err != nil {
		obs.RecordJobEvent("download", err)
		return "", job, fmt.Errorf("failed to sign output: %w", err)
	}
	obs.RecordJobEvent("download", nil)
	return link, job, nil
}
