package core

// save_limiter.go serialises writes to the plan store.
//
// The limiter is a semaphore. With the default capacity of one, a save always
// finishes before the next one starts, so saves reach the store in the order
// the edits were made. A caller that cannot get a slot within maxWait fails
// with ErrTooManySaves.
//
// WaitForDrain blocks until in-flight saves complete and is used on shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySaves is returned when the save slot stays occupied for the whole
// wait timeout.
var ErrTooManySaves = errors.New("too many concurrent saves, please try again later")

// DefaultMaxConcurrentSaves is the default limit for parallel saves.
const DefaultMaxConcurrentSaves = 1

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// SaveLimiter controls concurrent saves using a semaphore pattern.
type SaveLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewSaveLimiter creates a limiter that allows at most maxConcurrent simultaneous saves.
// Requests that cannot acquire a slot within maxWait will receive ErrTooManySaves.
func NewSaveLimiter(maxConcurrent int, maxWait time.Duration) *SaveLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSaves
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &SaveLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a save slot.
// Returns nil on success, ErrTooManySaves if timeout expires.
// The caller MUST call Release() when the save completes (use defer).
func (l *SaveLimiter) Acquire(ctx context.Context) error {
	// Create timeout context for waiting
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManySaves

	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to acquire a slot without blocking.
// Returns true if a slot was acquired, false otherwise.
func (l *SaveLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *SaveLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	// Release the semaphore slot
	<-l.semaphore
}

// ActiveCount returns the number of saves in progress.
func (l *SaveLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent saves.
func (l *SaveLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of available slots.
func (l *SaveLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all active saves complete or context is cancelled.
// Used for graceful shutdown so a save is never cut off mid-write.
func (l *SaveLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// SaveLimiterStatus is a snapshot of the limiter's current state.
type SaveLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for the health endpoint.
func (l *SaveLimiter) Status() SaveLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return SaveLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
