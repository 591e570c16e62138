package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
)

type Options struct {
	PaymentRequired bool
	PayPerJobAmount string
	OverlayInterval time.Duration
	Poll            PollerConfig
	Logger          logrus.FieldLogger
}

// Controller sequences file selection, upload, polling and payment gating
// for one job at a time.
type Controller struct {
	api     JobAPI
	r       Renderer
	log     logrus.FieldLogger
	session *Session
	gate    *PaymentGate
	overlay *Overlay
	poller  *Poller

	mu    sync.Mutex
	files []File

	wg   sync.WaitGroup
	done chan struct{}
}

func NewController(api JobAPI, r Renderer, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	session := NewSession(opts.PaymentRequired)
	c := &Controller{
		api:     api,
		r:       r,
		log:     log,
		session: session,
		gate:    NewPaymentGate(opts.PaymentRequired, opts.PayPerJobAmount, session, api, r, log),
		overlay: NewOverlay(r, opts.OverlayInterval),
		poller:  NewPoller(api, opts.Poll, log),
		done:    make(chan struct{}, 1),
	}
	r.FileSummary(FileSummary(nil))
	return c
}

func (c *Controller) Session() *Session { return c.session }

func (c *Controller) Payments() *PaymentGate { return c.gate }

// SelectFiles replaces the current selection and re-renders the summary.
func (c *Controller) SelectFiles(files []File) {
	c.mu.Lock()
	c.files = append([]File(nil), files...)
	c.mu.Unlock()
	c.r.FileSummary(FileSummary(files))
}

// Submit uploads the first selected file and starts polling in the
// background. Polling runs under ctx and stops when ctx is cancelled or a
// later Submit replaces the job.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	files := append([]File(nil), c.files...)
	c.mu.Unlock()

	if len(files) == 0 {
		c.r.Alert(MsgSelectFile)
		return ErrNoFileSelected
	}
	file := files[0]
	if len(files) > 1 {
		c.log.WithFields(logrus.Fields{
			"selected": len(files),
			"uploaded": file.Name,
		}).Warn("only the first selected file is uploaded")
	}

	gen := c.session.BeginSubmit()
	c.r.Status(MsgUploading)
	c.overlay.Start()

	resp, err := c.api.Upload(ctx, file)
	if err != nil {
		if !c.session.Current(gen) {
			return err
		}
		c.overlay.Stop()
		var serverErr *ServerError
		if errors.As(err, &serverErr) {
			c.r.Status("Error: " + serverErr.Body)
		} else {
			c.log.WithError(err).Error("upload failed")
			c.r.Status(MsgUnexpected)
		}
		return err
	}

	pollCtx, ok := c.session.StartJob(ctx, gen, resp.JobID)
	if !ok {
		c.log.WithField("job_id", resp.JobID).Debug("upload superseded by a newer submit")
		return nil
	}
	c.log.WithFields(logrus.Fields{"job_id": resp.JobID, "status": resp.Status}).Info("job created")
	c.gate.AttachPendingOrder(ctx, resp.JobID)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		job, err := c.poller.Poll(pollCtx, resp.JobID)
		c.finish(gen, resp.JobID, job, err)
	}()
	return nil
}

// Download triggers navigation to /download/{id} when the job is ready and
// the payment gate allows it.
func (c *Controller) Download() error {
	jobID := c.session.JobID()
	if jobID == "" {
		c.r.Alert(MsgUploadFirst)
		return ErrNoJob
	}
	if !c.session.Ready() {
		c.r.Alert(MsgNotReady)
		return ErrJobNotReady
	}
	return c.gate.Download(jobID)
}

// Done delivers one value per poll loop that rendered a terminal state.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Wait blocks until every poll goroutine has returned.
func (c *Controller) Wait() { c.wg.Wait() }

// Close cancels polling and hides the overlay.
func (c *Controller) Close() {
	c.session.Close()
	c.wg.Wait()
	if c.overlay.Active() {
		c.overlay.Stop()
	}
}

func (c *Controller) finish(gen uint64, jobID string, job *models.JobResponse, err error) {
	ready := err == nil && job != nil && normalize(job.Status) == models.JobStatusReady
	if !c.session.FinishPoll(gen, ready) {
		c.log.WithField("job_id", jobID).Debug("poll loop superseded")
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.overlay.Stop()
		return
	}

	c.overlay.Stop()
	switch {
	case err != nil:
		c.r.ShowFailure(MsgPollFailed)
	case ready:
		c.r.Status(MsgReady)
		c.r.ShowResult(Result{
			JobID:       jobID,
			DownloadURL: c.api.DownloadURL(jobID),
			PreviewURL:  job.PreviewURL,
		})
	default:
		c.r.ShowFailure(MsgJobFailed)
	}

	select {
	case c.done <- struct{}{}:
	default:
	}
}

func normalize(status string) models.JobStatus {
	return models.JobStatus(strings.ToLower(strings.TrimSpace(status)))
}
