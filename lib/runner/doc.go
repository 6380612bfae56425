// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package runner supervises the long-running listener: it keeps the
// inbound event loop alive across transient platform faults with
// exponential backoff, and it is the only place in the process where
// unbounded retries occur.
//
// The restart policy is modeled as an explicit state machine
// (Starting, Listening, Backoff, Stopped) rather than an implicit
// catch-sleep-loop, so backoff growth and termination conditions are
// independently testable. Faults are classified by the caller
// (conflicting listener vs. anything else); classification feeds the
// operator alert hook but both classes restart the listener. A clean
// listener exit (nil error) terminates the runner; it does not
// restart. Context cancellation interrupts the backoff sleep and
// terminates.
//
// Inner components never reconnect on their own — every retry path
// funnels through this package.
package runner
