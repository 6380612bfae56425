// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package approval

// Snapshot is a consistent point-in-time copy of the store, safe to
// iterate without holding the store's lock. Broadcast fan-out and
// reporting work from snapshots so they never observe interleaved
// mutation from concurrent join-request pipelines.
type Snapshot struct {
	// Promotion is the promotion text at snapshot time.
	Promotion string
	// Spaces holds a deep copy of every known space, in the store's
	// stable order: first-seen within a process, ascending ID after a
	// reload.
	Spaces []SpaceSnapshot
}

// SpaceSnapshot is one space within a Snapshot.
type SpaceSnapshot struct {
	ID      int64
	Title   string
	Members []Member
}

// Snapshot returns a deep copy of the store's current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		Promotion: s.promotion,
		Spaces:    make([]SpaceSnapshot, 0, len(s.order)),
	}
	for _, id := range s.order {
		space := s.spaces[id]
		snapshot.Spaces = append(snapshot.Spaces, SpaceSnapshot{
			ID:      id,
			Title:   space.Title,
			Members: append([]Member(nil), space.Members...),
		})
	}
	return snapshot
}

// Recipients returns every distinct member identity across all spaces,
// in first-seen order. An identity approved in multiple spaces appears
// once.
func (s Snapshot) Recipients() []int64 {
	seen := make(map[int64]struct{})
	var recipients []int64
	for _, space := range s.Spaces {
		for _, member := range space.Members {
			if _, duplicate := seen[member.ID]; duplicate {
				continue
			}
			seen[member.ID] = struct{}{}
			recipients = append(recipients, member.ID)
		}
	}
	return recipients
}

// TotalMembers returns the total stored record count across all
// spaces. Identities in multiple spaces are counted once per space,
// matching the per-space record semantics.
func (s Snapshot) TotalMembers() int {
	total := 0
	for _, space := range s.Spaces {
		total += len(space.Members)
	}
	return total
}
