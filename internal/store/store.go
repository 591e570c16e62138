// Package store persists sync jobs. The status, paid flag and output path
// must stay consistent across server replicas and restarts, so every
// implementation applies updates atomically.
package store

import (
	"context"
	"errors"
	"time"

	"vim-audiosync/internal/models"
)

var (
	ErrNotFound = errors.New("job not found")
	ErrExists   = errors.New("job already exists")
	// ErrOrderUsed means the order already paid for a different job.
	ErrOrderUsed = errors.New("order already used")
)

type JobStore interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	// Update applies fn to the stored job and persists the result. fn may be
	// invoked more than once when a concurrent writer wins.
	Update(ctx context.Context, id string, fn func(j *models.Job)) (*models.Job, error)
	// ClaimOrder marks the job paid with orderID. An order pays for at most
	// one job; claiming it for a second job fails with ErrOrderUsed. A job
	// that is already paid is returned unchanged. An empty orderID claims
	// nothing.
	ClaimOrder(ctx context.Context, id, orderID string, paidAt time.Time) (*models.Job, error)
	// FindByEngineJobID resolves the job the sync engine knows as engineJobID.
	FindByEngineJobID(ctx context.Context, engineJobID string) (*models.Job, error)
	Ping(ctx context.Context) error
	Close() error
}

func clone(j *models.Job) *models.Job {
	cp := *j
	if j.PaidAt != nil {
		t := *j.PaidAt
		cp.PaidAt = &t
	}
	return &cp
}

func markPaid(j *models.Job, orderID string, paidAt time.Time) {
	t := paidAt.UTC()
	j.Paid = true
	j.PaidAt = &t
	j.PayPalOrderID = orderID
}
