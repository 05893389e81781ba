package core

// autosave.go saves the plan a short while after the last edit.
//
// Every change calls Notify. The autosaver waits until no change has arrived
// for the configured delay and then saves once, so a burst of edits costs a
// single write. Saves go through a SaveLimiter with one slot: the next save
// cannot start before the previous one has finished. When the run context is
// cancelled, pending edits are saved before Run returns.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultAutosaveDelay is how long edits must settle before a save.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// Autosaver debounces change notifications into saves.
type Autosaver struct {
	saver   Saver
	delay   time.Duration
	timeout time.Duration
	limiter *SaveLimiter

	trigger chan struct{}
	done    chan struct{}
}

// NewAutosaver creates an autosaver for saver. Zero durations use the
// defaults.
func NewAutosaver(saver Saver, delay, timeout time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	return &Autosaver{
		saver:   saver,
		delay:   delay,
		timeout: timeout,
		limiter: NewSaveLimiter(DefaultMaxConcurrentSaves, timeout),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Notify schedules a save. It never blocks.
func (a *Autosaver) Notify() {
	select {
	case a.trigger <- struct{}{}:
	default:
	}
}

// Limiter exposes the save limiter for status reporting.
func (a *Autosaver) Limiter() *SaveLimiter {
	return a.limiter
}

// Done is closed when Run has returned.
func (a *Autosaver) Done() <-chan struct{} {
	return a.done
}

// Run processes notifications until ctx is cancelled, then saves any pending
// edits with a fresh timeout and returns.
func (a *Autosaver) Run(ctx context.Context) error {
	defer close(a.done)
	slog.Info("autosaver started", "delay", a.delay)

	timer := time.NewTimer(a.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
			err := a.Flush(flushCtx)
			cancel()
			if err != nil {
				slog.Error("final save failed", "error", err)
			}
			slog.Info("autosaver stopped")
			return nil

		case <-a.trigger:
			timer.Reset(a.delay)

		case <-timer.C:
			saveCtx, cancel := context.WithTimeout(ctx, a.timeout)
			// Errors are logged by the saver; the next edit retries.
			_ = a.Flush(saveCtx)
			cancel()
		}
	}
}

// Flush saves immediately, waiting for an in-flight save to finish first.
func (a *Autosaver) Flush(ctx context.Context) error {
	if err := a.limiter.Acquire(ctx); err != nil {
		return err
	}
	defer a.limiter.Release()
	return a.saver.Save(ctx)
}

// WaitForDrain blocks until no save is running.
func (a *Autosaver) WaitForDrain(ctx context.Context) error {
	return a.limiter.WaitForDrain(ctx)
}
