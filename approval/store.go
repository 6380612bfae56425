// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package approval

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/wicketlabs/wicket/lib/clock"
)

// Member is one approved identity within a space. ID is the opaque
// numeric identity and the unique key within the space.
type Member struct {
	ID          int64     `json:"identity"`
	DisplayName string    `json:"display_name"`
	Username    string    `json:"handle,omitempty"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// Space is the stored entry for one membership-gated chat. Members is
// ordered by approval time and never contains two records with the
// same identity.
type Space struct {
	Title   string   `json:"title"`
	Members []Member `json:"members"`
}

// fileState is the on-disk layout: one JSON document holding the
// promotion text and every known space, keyed by the decimal space ID.
type fileState struct {
	Promotion string           `json:"promotion_text"`
	Spaces    map[string]Space `json:"spaces"`
}

// Store is the durable approval record. All methods are safe for
// concurrent use; mutations persist to disk before returning.
type Store struct {
	path   string
	logger *slog.Logger
	clock  clock.Clock

	mu        sync.Mutex
	promotion string
	spaces    map[int64]*Space
	// order holds space IDs in first-seen order within a process.
	// Open sorts reloaded IDs numerically, so snapshots and reports
	// are deterministic across process restarts.
	order []int64
}

// Open loads the store from path. A missing file starts empty; a
// malformed file is logged at warn and also starts empty. Open never
// fails on file content — only the path argument is validated.
func Open(path string, logger *slog.Logger, clk clock.Clock) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("approval: store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.Real()
	}

	store := &Store{
		path:   path,
		logger: logger,
		clock:  clk,
		spaces: make(map[int64]*Space),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no state file, starting empty", "path", path)
			return store, nil
		}
		logger.Warn("state file unreadable, starting empty", "path", path, "error", err)
		return store, nil
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("state file malformed, starting empty", "path", path, "error", err)
		return store, nil
	}

	store.promotion = state.Promotion
	for key, space := range state.Spaces {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			logger.Warn("skipping space with malformed ID", "key", key)
			continue
		}
		copied := space
		copied.Members = append([]Member(nil), space.Members...)
		store.spaces[id] = &copied
		store.order = append(store.order, id)
	}
	// The file keys carry no order, so a reloaded store lists spaces
	// in ascending ID order. Every reload of the same file produces
	// the same order.
	slices.Sort(store.order)

	logger.Info("loaded state",
		"path", path,
		"spaces", len(store.spaces),
	)
	return store, nil
}

// Promotion returns the current promotion text, or the empty string
// when unset.
func (s *Store) Promotion() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promotion
}

// SetPromotion sets the promotion text and persists. An empty string
// clears it.
func (s *Store) SetPromotion(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotion = text
	s.persistLocked()
}

// RecordJoin idempotently records an approved identity in the space,
// creating the space entry if needed. Titles drift over time on the
// platform, so the latest title always wins even when the member is
// already recorded. Returns true when a new record was inserted, false
// when the identity was already present. Persists on any change.
func (s *Store) RecordJoin(spaceID int64, title string, member Member) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	space, known := s.spaces[spaceID]
	if !known {
		space = &Space{}
		s.spaces[spaceID] = space
		s.order = append(s.order, spaceID)
	}

	changed := !known
	if space.Title != title {
		space.Title = title
		changed = true
	}

	for _, existing := range space.Members {
		if existing.ID == member.ID {
			// Duplicate delivery or a re-request after approval: the
			// original record stands untouched.
			if changed {
				s.persistLocked()
			}
			return false
		}
	}

	if member.ApprovedAt.IsZero() {
		member.ApprovedAt = s.clock.Now().UTC()
	}
	space.Members = append(space.Members, member)
	s.persistLocked()
	return true
}

// persistLocked writes the current state to disk atomically: encode,
// write to a temporary file in the same directory, fsync, rename into
// place, then sync the parent directory. Write failures are logged and
// swallowed — the in-memory state remains authoritative.
//
// Must be called with s.mu held.
func (s *Store) persistLocked() {
	state := fileState{
		Promotion: s.promotion,
		Spaces:    make(map[string]Space, len(s.spaces)),
	}
	for id, space := range s.spaces {
		state.Spaces[strconv.FormatInt(id, 10)] = *space
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode state", "error", err)
		return
	}
	data = append(data, '\n')

	temporaryPath := s.path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		s.logger.Error("failed to create temporary state file", "path", temporaryPath, "error", err)
		return
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		s.logger.Error("failed to write state file", "path", temporaryPath, "error", err)
		return
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		s.logger.Error("failed to sync state file", "path", temporaryPath, "error", err)
		return
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		s.logger.Error("failed to close state file", "path", temporaryPath, "error", err)
		return
	}

	if err := os.Rename(temporaryPath, s.path); err != nil {
		os.Remove(temporaryPath)
		s.logger.Error("failed to rename state file into place", "path", s.path, "error", err)
		return
	}

	// Sync the parent directory so the rename survives power loss.
	if parent, err := os.Open(filepath.Dir(s.path)); err == nil {
		parent.Sync()
		parent.Close()
	}
}
