// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

// Package approval owns the durable record of approved join requests.
//
// [Store] maps each space (channel or group) to its ordered member
// list, plus one global operator-set promotion text. All mutations run
// under a single exclusive section covering the read-modify-write and
// the subsequent disk write; event volume is human-scale, so a coarse
// lock is the entire concurrency story. Readers that need a consistent
// view take [Store.Snapshot], which deep-copies under the same lock so
// long-running iteration (broadcast fan-out, reporting) never observes
// interleaved mutation.
//
// Persistence is deliberately availability-over-durability: the state
// file is rewritten atomically (temporary file, fsync, rename) after
// every mutation, but a failed write is logged and swallowed — the
// in-memory state stays authoritative for the rest of the process
// lifetime. At startup a missing file yields an empty store and a
// malformed file yields an empty store with a warning; neither is
// fatal.
package approval
