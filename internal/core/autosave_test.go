package core

import (
	"context"
	"testing"
	"time"
)

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func startAutosaver(t *testing.T, svc *Service, delay time.Duration) (*Autosaver, context.CancelFunc) {
	t.Helper()
	a := NewAutosaver(svc, delay, time.Second)
	svc.OnChange(a.Notify)

	ctx, cancel := context.WithCancel(context.Background())
	go a.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-a.Done()
	})
	return a, cancel
}

func TestAutosaver_CoalescesBurst(t *testing.T) {
	svc, store, _ := loadedService(t)
	startAutosaver(t, svc, 40*time.Millisecond)

	for i := 0; i < 5; i++ {
		if _, err := svc.UpdateWeek(context.Background(), 0, WeekEdit{ActualMileage: ptr(float64(20 + i))}); err != nil {
			t.Fatalf("UpdateWeek() error = %v", err)
		}
	}

	if !waitFor(t, time.Second, func() bool { return store.saveCount() == 1 }) {
		t.Fatalf("saveCount = %d, want 1", store.saveCount())
	}
	time.Sleep(100 * time.Millisecond)
	if got := store.saveCount(); got != 1 {
		t.Errorf("saveCount = %d after burst, want 1", got)
	}
	if store.lastSave() != svc.CSV() {
		t.Error("saved text is not the latest plan")
	}
	if svc.Dirty() {
		t.Error("plan still dirty after autosave")
	}
}

func TestAutosaver_SavesAgainAfterLaterEdit(t *testing.T) {
	svc, store, _ := loadedService(t)
	startAutosaver(t, svc, 20*time.Millisecond)
	ctx := context.Background()

	if _, err := svc.UpdateWeek(ctx, 0, WeekEdit{ActualMileage: ptr(20.0)}); err != nil {
		t.Fatalf("UpdateWeek() error = %v", err)
	}
	if !waitFor(t, time.Second, func() bool { return store.saveCount() == 1 }) {
		t.Fatalf("first save did not happen")
	}

	if _, err := svc.UpdateWeek(ctx, 1, WeekEdit{ActualMileage: ptr(30.0)}); err != nil {
		t.Fatalf("UpdateWeek() error = %v", err)
	}
	if !waitFor(t, time.Second, func() bool { return store.saveCount() == 2 }) {
		t.Fatalf("saveCount = %d, want 2", store.saveCount())
	}
}

func TestAutosaver_FlushesOnShutdown(t *testing.T) {
	svc, store, _ := loadedService(t)
	a, cancel := startAutosaver(t, svc, time.Hour)

	if _, err := svc.UpdateWeek(context.Background(), 2, WeekEdit{Notes: ptr("race day")}); err != nil {
		t.Fatalf("UpdateWeek() error = %v", err)
	}
	cancel()

	select {
	case <-a.Done():
	case <-time.After(time.Second):
		t.Fatal("autosaver did not stop")
	}
	if got := store.saveCount(); got != 1 {
		t.Errorf("saveCount = %d after shutdown, want 1", got)
	}
}

func TestAutosaver_WaitForDrain(t *testing.T) {
	svc, store, _ := loadedService(t)
	a := NewAutosaver(svc, time.Hour, time.Second)

	if _, err := svc.UpdateWeek(context.Background(), 0, WeekEdit{ActualMileage: ptr(10.0)}); err != nil {
		t.Fatalf("UpdateWeek() error = %v", err)
	}

	release := make(chan struct{})
	store.mu.Lock()
	store.block = release
	store.mu.Unlock()

	flushed := make(chan error, 1)
	go func() {
		flushed <- a.Flush(context.Background())
	}()

	if !waitFor(t, time.Second, func() bool { return a.Limiter().ActiveCount() == 1 }) {
		t.Fatal("flush did not start")
	}

	drained := make(chan error, 1)
	go func() {
		drained <- a.WaitForDrain(context.Background())
	}()

	select {
	case <-drained:
		t.Fatal("WaitForDrain returned during a save")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	if err := <-flushed; err != nil {
		t.Errorf("Flush() error = %v", err)
	}
	select {
	case err := <-drained:
		if err != nil {
			t.Errorf("WaitForDrain() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not return after the save finished")
	}
}

func TestAutosaver_NotifyNeverBlocks(t *testing.T) {
	a := NewAutosaver(nil, 0, 0)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			a.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked without a running autosaver")
	}
	if a.delay != DefaultAutosaveDelay {
		t.Errorf("delay = %v, want default %v", a.delay, DefaultAutosaveDelay)
	}
}
