package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
)

const DefaultPollInterval = 5 * time.Second

// DefaultPollBackoff is the wait before each retry of a failed status request.
var DefaultPollBackoff = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

type PollerConfig struct {
	Interval time.Duration
	// Backoff holds one entry per retry; its length bounds the retries after a failure.
	Backoff []time.Duration
}

// Poller queries job status until the job reaches a terminal state.
type Poller struct {
	api      JobAPI
	interval time.Duration
	backoff  []time.Duration
	log      logrus.FieldLogger
}

func NewPoller(api JobAPI, cfg PollerConfig, log logrus.FieldLogger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Backoff == nil {
		cfg.Backoff = DefaultPollBackoff
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{api: api, interval: cfg.Interval, backoff: cfg.Backoff, log: log}
}

// Poll blocks until jobID is ready or failed, ctx is cancelled, or transport
// retries are exhausted. Non-terminal snapshots, including unknown statuses,
// keep the loop going without side effects.
func (p *Poller) Poll(ctx context.Context, jobID string) (*models.JobResponse, error) {
	entry := p.log.WithField("job_id", jobID)
	failures := 0

	for {
		job, err := p.api.GetJob(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if failures >= len(p.backoff) {
				entry.WithError(err).Warn("job status unavailable, giving up")
				return nil, fmt.Errorf("%w: %v", ErrPollFailed, err)
			}
			wait := p.backoff[failures]
			failures++
			entry.WithError(err).WithField("attempt", failures).Debug("job status request failed, retrying")
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}
		failures = 0

		if models.JobStatus(job.Status).IsTerminal() {
			entry.WithField("status", job.Status).Info("job reached terminal state")
			return job, nil
		}

		if err := sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
