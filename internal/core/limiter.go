package core

// limiter.go bounds how many CSV imports run at once. Each import holds a
// database transaction for its whole file, so unbounded parallel imports
// would exhaust the pool.

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Defaults used when configuration leaves the limiter unset.
const (
	DefaultMaxConcurrentImports = 3
	DefaultImportWait           = 10 * time.Second
)

// ImportLimiter is a counting semaphore with a bounded wait.
type ImportLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	active   atomic.Int32
	inflight sync.WaitGroup
}

// NewImportLimiter allows maxConcurrent imports; callers that cannot get a
// slot within maxWait receive ErrTooManyImports.
func NewImportLimiter(maxConcurrent int, maxWait time.Duration) *ImportLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentImports
	}
	if maxWait <= 0 {
		maxWait = DefaultImportWait
	}
	return &ImportLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *ImportLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.inflight.Add(1)
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *ImportLimiter) Release() {
	l.active.Add(-1)
	l.inflight.Done()
	<-l.slots
}

// Active returns the number of imports holding a slot.
func (l *ImportLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the configured concurrency limit.
func (l *ImportLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until running imports finish or ctx ends.
func (l *ImportLimiter) WaitForDrain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
