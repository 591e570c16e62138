package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"vim-audiosync/internal/models"
)

// MemoryStore keeps jobs in process. Jobs are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	jobs   map[string]*models.Job
	orders map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:   make(map[string]*models.Job),
		orders: make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return ErrExists
	}
	s.jobs[job.ID] = clone(job)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(j), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(j *models.Job)) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	fn(j)
	j.UpdatedAt = time.Now().UTC()
	return clone(j), nil
}

func (s *MemoryStore) ClaimOrder(ctx context.Context, id, orderID string, paidAt time.Time) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[strings.TrimSpace(id)]
	if !ok {
		return nil, ErrNotFound
	}
	if j.Paid {
		return clone(j), nil
	}
	if orderID != "" {
		if owner, ok := s.orders[orderID]; ok && owner != j.ID {
			return nil, ErrOrderUsed
		}
		s.orders[orderID] = j.ID
	}
	markPaid(j, orderID, paidAt)
	j.UpdatedAt = time.Now().UTC()
	return clone(j), nil
}

func (s *MemoryStore) FindByEngineJobID(ctx context.Context, engineJobID string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if j.EngineJobID != "" && j.EngineJobID == engineJobID {
			return clone(j), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
