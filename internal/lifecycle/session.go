package lifecycle

import (
	"context"
	"sync"
)

// Session holds the client state for the job currently on screen.
type Session struct {
	mu sync.Mutex

	jobID          string
	ready          bool
	hasPaid        bool
	orderID        string
	pendingOrderID string

	pollGen    uint64
	cancelPoll context.CancelFunc
}

// NewSession starts unpaid when payment is required and paid otherwise.
func NewSession(paymentRequired bool) *Session {
	return &Session{hasPaid: !paymentRequired}
}

func (s *Session) JobID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobID
}

func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *Session) HasPaid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasPaid
}

// OrderID returns the last captured one-off order.
func (s *Session) OrderID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderID
}

// RecordPayment flips hasPaid and remembers the order. When no job exists yet
// the order is parked until the next upload attaches it.
func (s *Session) RecordPayment(orderID string) (jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasPaid = true
	s.orderID = orderID
	if s.jobID == "" {
		s.pendingOrderID = orderID
	}
	return s.jobID
}

// TakePendingOrder returns and clears an order captured before any job existed.
func (s *Session) TakePendingOrder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.pendingOrderID
	s.pendingOrderID = ""
	return id
}

// BeginSubmit retires the current job before a new upload starts. Its poll
// loop is cancelled and can no longer render. The returned generation must
// be passed to StartJob once the upload succeeds.
func (s *Session) BeginSubmit() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.pollGen++
	s.jobID = ""
	s.ready = false
	return s.pollGen
}

// StartJob makes jobID current for gen and returns its poll context. It
// reports false when a later BeginSubmit has superseded gen.
func (s *Session) StartJob(parent context.Context, gen uint64, jobID string) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.pollGen {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	s.jobID = jobID
	s.ready = false
	s.cancelPoll = cancel
	return ctx, true
}

// Current reports whether gen still belongs to the latest submit.
func (s *Session) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.pollGen
}

// FinishPoll releases the poll context for gen and reports whether gen is
// still the current job. A stale loop must not render anything.
func (s *Session) FinishPoll(gen uint64, ready bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.pollGen {
		return false
	}
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.ready = ready
	return true
}

// Close cancels any running poll loop.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
}
