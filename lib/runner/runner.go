// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wicketlabs/wicket/lib/clock"
)

// State is the runner's position in its lifecycle.
type State int

const (
	// Starting means the runner has not yet handed control to the
	// listener.
	Starting State = iota
	// Listening means the listener is running.
	Listening
	// Backoff means the listener faulted and the runner is sleeping
	// before the next restart.
	Backoff
	// Stopped is terminal: the listener exited cleanly or the context
	// was cancelled.
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Listening:
		return "listening"
	case Backoff:
		return "backoff"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Fault classifies a listener failure.
type Fault int

const (
	// FaultOther is any unexpected listener failure: transport errors,
	// protocol surprises, anything not specifically recognized.
	FaultOther Fault = iota
	// FaultConflict means another process is already consuming the
	// same event stream — the expected failure mode of a
	// misconfigured second instance.
	FaultConflict
)

func (f Fault) String() string {
	if f == FaultConflict {
		return "conflict"
	}
	return "other"
}

// Config configures a Runner. Zero-value fields take the defaults
// noted on each field.
type Config struct {
	// BaseBackoff is the sleep before the first restart. Default 5s.
	BaseBackoff time.Duration

	// MaxBackoff caps the doubling. Default 120s.
	MaxBackoff time.Duration

	// Classify maps a listener error to a Fault. Nil classifies
	// everything as FaultOther.
	Classify func(error) Fault

	// OnFault is called after each listener failure with the
	// classification and the backoff about to be slept. Use it to
	// emit operator alerts. May be nil. Called from the runner
	// goroutine; must not block for long.
	OnFault func(fault Fault, err error, backoff time.Duration)

	// Clock is the time source. Nil uses the real clock.
	Clock clock.Clock

	// Logger is used for structured logging. Nil uses slog.Default().
	Logger *slog.Logger
}

// Runner restarts a listener until it exits cleanly or the context is
// cancelled. Create with New; a Runner runs at most once.
type Runner struct {
	config Config

	mu    sync.Mutex
	state State
}

// New creates a Runner with defaults applied.
func New(config Config) *Runner {
	if config.BaseBackoff <= 0 {
		config.BaseBackoff = 5 * time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 120 * time.Second
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Runner{config: config, state: Starting}
}

// State returns the runner's current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(state State) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

// Run drives the listener until it exits cleanly (returns nil) or ctx
// is cancelled. On any listener error the runner classifies the
// fault, reports it, sleeps the current backoff interval, doubles the
// interval up to Config.MaxBackoff, and restarts the listener. The
// backoff sleep is interruptible by ctx.
//
// Returns nil on clean listener exit, or ctx.Err() when cancelled.
func (r *Runner) Run(ctx context.Context, listen func(context.Context) error) error {
	backoff := r.config.BaseBackoff

	for {
		if ctx.Err() != nil {
			r.setState(Stopped)
			return ctx.Err()
		}

		r.setState(Listening)
		err := listen(ctx)
		if err == nil {
			r.config.Logger.Info("listener exited cleanly, runner stopping")
			r.setState(Stopped)
			return nil
		}
		if ctx.Err() != nil {
			r.setState(Stopped)
			return ctx.Err()
		}

		fault := FaultOther
		if r.config.Classify != nil {
			fault = r.config.Classify(err)
		}

		r.config.Logger.Error("listener faulted, restarting after backoff",
			"fault", fault.String(),
			"backoff", backoff,
			"error", err,
		)
		if r.config.OnFault != nil {
			r.config.OnFault(fault, err, backoff)
		}

		r.setState(Backoff)
		select {
		case <-ctx.Done():
			r.setState(Stopped)
			return ctx.Err()
		case <-r.config.Clock.After(backoff):
		}

		backoff *= 2
		if backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}
}
