//go:build linux
// +build linux

// File: timer/timer_test.go
// License: Apache-2.0

package timer_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/zenpkg/eventkit/dispatch"
	"github.com/zenpkg/eventkit/timer"
)

func newTestDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	d, err := dispatch.NewForThread()
	if err != nil {
		t.Fatalf("NewForThread() error: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestSingleShotFiresOnceAndDeregisters(t *testing.T) {
	d := newTestDispatcher(t)

	fired := 0
	tm := timer.NewSingleShot(func() {
		fired++
		d.Quit()
	})
	if err := tm.Start(10); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if d.RunningTimers() != 1 {
		t.Fatalf("RunningTimers() = %d, want 1", d.RunningTimers())
	}

	d.Run()

	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
	if tm.IsRunning() {
		t.Fatal("single-shot timer still running after expiry")
	}
	if d.RunningTimers() != 0 {
		t.Fatalf("RunningTimers() = %d after single shot, want 0", d.RunningTimers())
	}
}

func TestRecurringTimerRearms(t *testing.T) {
	d := newTestDispatcher(t)

	fired := 0
	var tm *timer.Timer
	tm = timer.New(func() {
		fired++
		if fired == 3 {
			tm.Stop()
			d.Quit()
		}
	})
	if err := tm.Start(5); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	start := time.Now()
	d.Run()
	elapsed := time.Since(start)

	if fired != 3 {
		t.Fatalf("fired %d times, want 3", fired)
	}
	if elapsed < 12*time.Millisecond {
		t.Fatalf("three 5ms intervals elapsed in %v, too fast for a rearming timer", elapsed)
	}
	if tm.IsRunning() || d.RunningTimers() != 0 {
		t.Fatal("stopped timer left registered")
	}
}

func TestStartWithoutDispatcher(t *testing.T) {
	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		done <- timer.New(nil).Start(5)
	}()
	if err := <-done; !errors.Is(err, dispatch.ErrNoDispatcher) {
		t.Fatalf("Start() without dispatcher = %v, want ErrNoDispatcher", err)
	}
}

func TestRemainingCountsDown(t *testing.T) {
	newTestDispatcher(t)

	tm := timer.New(nil)
	if err := tm.Start(50); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if rem := tm.Remaining(); rem == 0 || rem > 50 {
		t.Fatalf("Remaining() = %d right after Start(50), want (0, 50]", rem)
	}
	time.Sleep(60 * time.Millisecond)
	if rem := tm.Remaining(); rem != 0 {
		t.Fatalf("Remaining() = %d past the deadline, want 0", rem)
	}
}

func TestRestartReplacesInterval(t *testing.T) {
	d := newTestDispatcher(t)

	tm := timer.New(nil)
	if err := tm.Start(10); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := tm.Start(1000); err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if d.RunningTimers() != 1 {
		t.Fatalf("RunningTimers() = %d after restart, want 1", d.RunningTimers())
	}
	if rem := tm.Remaining(); rem <= 500 {
		t.Fatalf("Remaining() = %d after Start(1000), want the new interval", rem)
	}
	if tm.Interval() != 1000 {
		t.Fatalf("Interval() = %d, want 1000", tm.Interval())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	d := newTestDispatcher(t)

	tm := timer.New(nil)
	if err := tm.Start(10); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	tm.Stop()
	tm.Stop()
	if tm.IsRunning() || d.RunningTimers() != 0 {
		t.Fatal("Stop did not deregister the timer")
	}
}
