// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wicketlabs/wicket/lib/clock"
	"github.com/wicketlabs/wicket/lib/testutil"
)

var testEpoch = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// faultRecorder captures the backoff interval passed to OnFault.
type faultRecorder struct {
	mu        sync.Mutex
	intervals []time.Duration
	faults    []Fault
}

func (r *faultRecorder) record(fault Fault, _ error, backoff time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults = append(r.faults, fault)
	r.intervals = append(r.intervals, backoff)
}

func (r *faultRecorder) snapshot() ([]Fault, []time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fault(nil), r.faults...), append([]time.Duration(nil), r.intervals...)
}

func TestBackoffDoublesAcrossConsecutiveFaults(t *testing.T) {
	fakeClock := clock.Fake(testEpoch)
	recorder := &faultRecorder{}
	errConflict := errors.New("conflict: stream already claimed")

	r := New(Config{
		BaseBackoff: 5 * time.Second,
		MaxBackoff:  120 * time.Second,
		Classify:    func(error) Fault { return FaultConflict },
		OnFault:     recorder.record,
		Clock:       fakeClock,
	})

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background(), func(context.Context) error {
			attempts++
			if attempts > 3 {
				return nil
			}
			return errConflict
		})
	}()

	// Three faults: the runner must sleep 5s, 10s, 20s.
	for _, want := range []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second} {
		fakeClock.WaitForTimers(1)
		if got := r.State(); got != Backoff {
			t.Fatalf("state during sleep = %v, want backoff", got)
		}
		fakeClock.Advance(want)
	}

	if err := testutil.RequireReceive(t, done, 5*time.Second, "runner exit"); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}

	faults, intervals := recorder.snapshot()
	wantIntervals := []time.Duration{5 * time.Second, 10 * time.Second, 20 * time.Second}
	if len(intervals) != len(wantIntervals) {
		t.Fatalf("intervals = %v, want %v", intervals, wantIntervals)
	}
	for i, want := range wantIntervals {
		if intervals[i] != want {
			t.Fatalf("interval[%d] = %v, want %v", i, intervals[i], want)
		}
		if faults[i] != FaultConflict {
			t.Fatalf("fault[%d] = %v, want conflict", i, faults[i])
		}
	}

	if got := r.State(); got != Stopped {
		t.Fatalf("final state = %v, want stopped", got)
	}
}

func TestBackoffCapsAtCeiling(t *testing.T) {
	fakeClock := clock.Fake(testEpoch)
	recorder := &faultRecorder{}

	r := New(Config{
		BaseBackoff: 5 * time.Second,
		MaxBackoff:  120 * time.Second,
		OnFault:     recorder.record,
		Clock:       fakeClock,
	})

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background(), func(context.Context) error {
			attempts++
			if attempts > 7 {
				return nil
			}
			return errors.New("boom")
		})
	}()

	// 5, 10, 20, 40, 80, then capped at 120 for every later fault.
	wantIntervals := []time.Duration{5, 10, 20, 40, 80, 120, 120}
	for i := range wantIntervals {
		wantIntervals[i] *= time.Second
	}
	for _, want := range wantIntervals {
		fakeClock.WaitForTimers(1)
		fakeClock.Advance(want)
	}

	if err := testutil.RequireReceive(t, done, 5*time.Second, "runner exit"); err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}

	_, intervals := recorder.snapshot()
	if len(intervals) != len(wantIntervals) {
		t.Fatalf("intervals = %v, want %v", intervals, wantIntervals)
	}
	for i, want := range wantIntervals {
		if intervals[i] != want {
			t.Fatalf("interval[%d] = %v, want %v", i, intervals[i], want)
		}
	}
}

func TestCleanExitStopsWithoutRestart(t *testing.T) {
	attempts := 0
	r := New(Config{Clock: clock.Fake(testEpoch)})

	err := r.Run(context.Background(), func(context.Context) error {
		attempts++
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned %v, want nil", err)
	}
	if attempts != 1 {
		t.Fatalf("listener ran %d times, want 1", attempts)
	}
	if got := r.State(); got != Stopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestCancellationInterruptsBackoffSleep(t *testing.T) {
	fakeClock := clock.Fake(testEpoch)
	ctx, cancel := context.WithCancel(context.Background())

	r := New(Config{
		BaseBackoff: time.Hour,
		Clock:       fakeClock,
	})

	done := make(chan error, 1)
	go func() {
		done <- r.Run(ctx, func(context.Context) error {
			return errors.New("boom")
		})
	}()

	// Wait for the runner to enter the backoff sleep, then cancel
	// without advancing the clock.
	fakeClock.WaitForTimers(1)
	cancel()

	err := testutil.RequireReceive(t, done, 5*time.Second, "runner exit after cancel")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if got := r.State(); got != Stopped {
		t.Fatalf("state = %v, want stopped", got)
	}
}

func TestDefaultClassification(t *testing.T) {
	fakeClock := clock.Fake(testEpoch)
	recorder := &faultRecorder{}

	r := New(Config{
		BaseBackoff: time.Second,
		OnFault:     recorder.record,
		Clock:       fakeClock,
	})

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background(), func(context.Context) error {
			attempts++
			if attempts > 1 {
				return nil
			}
			return errors.New("unclassified")
		})
	}()

	fakeClock.WaitForTimers(1)
	fakeClock.Advance(time.Second)
	testutil.RequireReceive(t, done, 5*time.Second, "runner exit")

	faults, _ := recorder.snapshot()
	if len(faults) != 1 || faults[0] != FaultOther {
		t.Fatalf("faults = %v, want [other]", faults)
	}
}
