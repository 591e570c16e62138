package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"vim-audiosync/internal/models"
)

const jobColumns = `id, COALESCE(engine_job_id, ''), status, filename, source_path, output_path,
	preview_url, paid, paid_at, paypal_order_id, error_message, created_at, updated_at`

// PostgresStore keeps jobs in the sync_jobs table created by the database
// migrations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var (
		j      models.Job
		status string
		paidAt sql.NullTime
	)
	err := row.Scan(
		&j.ID, &j.EngineJobID, &status, &j.Filename, &j.SourcePath, &j.OutputPath,
		&j.PreviewURL, &j.Paid, &paidAt, &j.PayPalOrderID, &j.Error, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	j.Status = models.JobStatus(status)
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		j.PaidAt = &t
	}
	return &j, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *PostgresStore) Create(ctx context.Context, job *models.Job) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_jobs (id, engine_job_id, status, filename, source_path, output_path,
			preview_url, paid, paid_at, paypal_order_id, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, job.ID, nullString(job.EngineJobID), string(job.Status), job.Filename, job.SourcePath, job.OutputPath,
		job.PreviewURL, job.Paid, job.PaidAt, job.PayPalOrderID, job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM sync_jobs WHERE id = $1`, id)
	return scanJob(row)
}

// Update locks the row for the duration of fn.
func (s *PostgresStore) Update(ctx context.Context, id string, fn func(j *models.Job)) (*models.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	j, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM sync_jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}

	fn(j)
	j.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE sync_jobs
		SET engine_job_id = $1, status = $2, output_path = $3, preview_url = $4,
			paid = $5, paid_at = $6, paypal_order_id = $7, error_message = $8, updated_at = $9
		WHERE id = $10
	`, nullString(j.EngineJobID), string(j.Status), j.OutputPath, j.PreviewURL,
		j.Paid, j.PaidAt, j.PayPalOrderID, j.Error, j.UpdatedAt, j.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit job update: %w", err)
	}
	return j, nil
}

// uniqueViolation is the SQLSTATE raised by sync_jobs_paypal_order_id_idx.
const uniqueViolation = "23505"

// ClaimOrder relies on the unique index over paypal_order_id to reject an
// order that already paid for another job.
func (s *PostgresStore) ClaimOrder(ctx context.Context, id, orderID string, paidAt time.Time) (*models.Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	j, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM sync_jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if j.Paid {
		return j, nil
	}

	markPaid(j, orderID, paidAt)
	j.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE sync_jobs SET paid = $1, paid_at = $2, paypal_order_id = $3, updated_at = $4
		WHERE id = $5
	`, j.Paid, j.PaidAt, j.PayPalOrderID, j.UpdatedAt, j.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrOrderUsed
		}
		return nil, fmt.Errorf("failed to mark job paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrOrderUsed
		}
		return nil, fmt.Errorf("failed to commit job payment: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) FindByEngineJobID(ctx context.Context, engineJobID string) (*models.Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM sync_jobs WHERE engine_job_id = $1`, engineJobID)
	return scanJob(row)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
