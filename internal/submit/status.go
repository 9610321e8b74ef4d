package submit

import (
	"context"
	"sync"
	"time"
)

// Status tracks one submitted transaction. It is created pending and
// resolved once the transport answers; until then it reads as not failed.
type Status struct {
	Hash        string
	SubmittedAt time.Time

	done chan struct{}

	mu          sync.RWMutex
	failed      bool
	code        int64
	err         error
	completedAt time.Time
}

func newStatus(hash string) *Status {
	return &Status{
		Hash:        hash,
		SubmittedAt: time.Now(),
		done:        make(chan struct{}),
	}
}

// Done is closed once the transport has answered.
func (s *Status) Done() <-chan struct{} { return s.done }

// Wait blocks until the status resolves or ctx is done, and returns the
// submission error, if any.
func (s *Status) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed reports whether the submission was rejected or could not be sent.
func (s *Status) Failed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failed
}

// Err returns why the submission failed, or nil.
func (s *Status) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Code returns the transport result. Negative values are node rejections.
func (s *Status) Code() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

// Latency is the time from submission to the transport's answer, or zero
// while pending.
func (s *Status) Latency() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.completedAt.IsZero() {
		return 0
	}
	return s.completedAt.Sub(s.SubmittedAt)
}

func (s *Status) resolve(code int64, err error) {
	s.mu.Lock()
	s.code = code
	s.err = err
	s.failed = err != nil
	s.completedAt = time.Now()
	s.mu.Unlock()
	close(s.done)
}
