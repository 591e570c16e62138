package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"vim-audiosync/internal/models"
)

const (
	jobKeyPrefix    = "audiosync:job:"
	engineKeyPrefix = "audiosync:engine:"
	orderKeyPrefix  = "audiosync:order:"
	maxUpdateTries  = 8
)

type jobRecord struct {
	ID            string           `json:"id"`
	EngineJobID   string           `json:"engineJobId,omitempty"`
	Status        models.JobStatus `json:"status"`
	Filename      string           `json:"filename"`
	SourcePath    string           `json:"sourcePath"`
	OutputPath    string           `json:"outputPath,omitempty"`
	PreviewURL    string           `json:"previewUrl,omitempty"`
	Paid          bool             `json:"paid"`
	PaidAt        *time.Time       `json:"paidAt,omitempty"`
	PayPalOrderID string           `json:"paypalOrderId,omitempty"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func recordFromJob(j *models.Job) jobRecord {
	return jobRecord{
		ID:            j.ID,
		EngineJobID:   j.EngineJobID,
		Status:        j.Status,
		Filename:      j.Filename,
		SourcePath:    j.SourcePath,
		OutputPath:    j.OutputPath,
		PreviewURL:    j.PreviewURL,
		Paid:          j.Paid,
		PaidAt:        j.PaidAt,
		PayPalOrderID: j.PayPalOrderID,
		Error:         j.Error,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func jobFromRecord(r jobRecord) *models.Job {
	return &models.Job{
		ID:            r.ID,
		EngineJobID:   r.EngineJobID,
		Status:        r.Status,
		Filename:      r.Filename,
		SourcePath:    r.SourcePath,
		OutputPath:    r.OutputPath,
		PreviewURL:    r.PreviewURL,
		Paid:          r.Paid,
		PaidAt:        r.PaidAt,
		PayPalOrderID: r.PayPalOrderID,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// RedisStore shares job state across replicas. Updates use WATCH/MULTI so a
// webhook and a mark-paid call racing on one job never lose a write.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisStore(ctx context.Context, opts RedisOptions, log logrus.FieldLogger) (*RedisStore, error) {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(opts.Password),
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.WithFields(logrus.Fields{"addr": addr, "db": opts.DB, "ttl": opts.TTL}).Info("job store: redis enabled")
	return &RedisStore{rdb: rdb, ttl: opts.TTL}, nil
}

func jobKey(id string) string { return jobKeyPrefix + strings.TrimSpace(id) }

func engineKey(id string) string { return engineKeyPrefix + strings.TrimSpace(id) }

func orderKey(id string) string { return orderKeyPrefix + strings.TrimSpace(id) }

func (s *RedisStore) Create(ctx context.Context, job *models.Job) error {
	if job == nil || strings.TrimSpace(job.ID) == "" {
		return errors.New("job id is empty")
	}
	b, err := json.Marshal(recordFromJob(job))
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, jobKey(job.ID), b, s.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrExists
	}
	if job.EngineJobID != "" {
		return s.rdb.Set(ctx, engineKey(job.EngineJobID), job.ID, s.ttl).Err()
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	val, err := s.rdb.Get(ctx, jobKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec jobRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, err
	}
	return jobFromRecord(rec), nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(j *models.Job)) (*models.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	if fn == nil {
		return nil, errors.New("update fn is nil")
	}
	key := jobKey(id)

	var out *models.Job
	for i := 0; i < maxUpdateTries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			var rec jobRecord
			if err := json.Unmarshal([]byte(val), &rec); err != nil {
				return err
			}
			j := jobFromRecord(rec)
			prevEngineID := j.EngineJobID
			fn(j)
			j.UpdatedAt = time.Now().UTC()

			nb, err := json.Marshal(recordFromJob(j))
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, nb, s.ttl)
				if j.EngineJobID != "" && j.EngineJobID != prevEngineID {
					pipe.Set(ctx, engineKey(j.EngineJobID), j.ID, s.ttl)
				}
				return nil
			})
			if err == nil {
				out = j
			}
			return err
		}, key)

		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, errors.New("redis update retry exceeded")
}

// ClaimOrder watches both the job and the order key so two jobs racing for
// one order cannot both commit.
func (s *RedisStore) ClaimOrder(ctx context.Context, id, orderID string, paidAt time.Time) (*models.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	key := jobKey(id)
	keys := []string{key}
	if orderID != "" {
		keys = append(keys, orderKey(orderID))
	}

	var out *models.Job
	for i := 0; i < maxUpdateTries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			var rec jobRecord
			if err := json.Unmarshal([]byte(val), &rec); err != nil {
				return err
			}
			j := jobFromRecord(rec)
			if j.Paid {
				out = j
				return nil
			}

			if orderID != "" {
				owner, err := tx.Get(ctx, orderKey(orderID)).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					return err
				}
				if err == nil && owner != j.ID {
					return ErrOrderUsed
				}
			}

			markPaid(j, orderID, paidAt)
			j.UpdatedAt = time.Now().UTC()
			nb, err := json.Marshal(recordFromJob(j))
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, nb, s.ttl)
				if orderID != "" {
					pipe.Set(ctx, orderKey(orderID), j.ID, s.ttl)
				}
				return nil
			})
			if err == nil {
				out = j
			}
			return err
		}, keys...)

		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, errors.New("redis claim retry exceeded")
}

func (s *RedisStore) FindByEngineJobID(ctx context.Context, engineJobID string) (*models.Job, error) {
	if strings.TrimSpace(engineJobID) == "" {
		return nil, ErrNotFound
	}
	id, err := s.rdb.Get(ctx, engineKey(engineJobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
