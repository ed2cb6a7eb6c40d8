package core

// limiter.go bounds concurrent parse and convert work.
//
// Every upload parse and every preview or conversion takes one slot. When all
// slots are held, callers wait up to maxWait before failing with
// ErrTooManyConversions. WaitForDrain blocks shutdown until running work
// completes.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyConversions is returned when no slot frees up within the wait time.
// Clients should retry after a short delay.
var ErrTooManyConversions = errors.New("too many conversions in progress, please try again later")

// DefaultMaxConcurrent is the default number of parallel conversions.
const DefaultMaxConcurrent = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// ConversionLimiter controls concurrent table work with a weighted semaphore.
type ConversionLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	maxWait time.Duration
	active  atomic.Int64
}

// NewConversionLimiter creates a limiter that allows at most maxConcurrent
// simultaneous conversions. Requests that cannot get a slot within maxWait
// receive ErrTooManyConversions.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &ConversionLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     int64(maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire waits for a slot. The caller must call Release once done.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		// Distinguish caller cancellation from our own timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyConversions
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking and reports whether it did.
func (l *ConversionLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ConversionLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of slots in use.
func (l *ConversionLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *ConversionLimiter) MaxConcurrent() int {
	return int(l.max)
}

// Available returns the number of free slots.
func (l *ConversionLimiter) Available() int {
	return int(l.max - l.active.Load())
}

// WaitForDrain blocks until every slot is free or ctx is done.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.max); err != nil {
		return err
	}
	l.sem.Release(l.max)
	return nil
}

// LimiterStatus is a snapshot of the limiter state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *ConversionLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     l.MaxConcurrent() - active,
		MaxConcurrent: l.MaxConcurrent(),
	}
}
