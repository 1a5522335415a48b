package movement

import (
	"sync"
	"time"

	"github.com/valuehound/valuehound/pkg/models"
)

// Store is the in-memory odds snapshot index, keyed by event ID with
// snapshots kept in append (chronological) order per event.
//
// It is the only shared mutable state in the pipeline: the fetch cycle
// appends, the analyzer reads. A mutex serializes writers so append order
// per key is preserved even if fetches are parallelized.
type Store struct {
	mu        sync.Mutex
	history   map[string][]models.OddsSnapshot
	retention time.Duration
	now       func() time.Time
}

// NewStore creates a snapshot store retaining the given number of hours.
// The clock is injectable for tests via WithClock.
func NewStore(retentionHours int) *Store {
	return &Store{
		history:   make(map[string][]models.OddsSnapshot),
		retention: time.Duration(retentionHours) * time.Hour,
		now:       time.Now,
	}
}

// WithClock replaces the store's clock. For tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Append adds snapshots to the live index in the order given.
// Callers must not reorder or skip timestamps: trend detection depends on
// the chronological last-3 sequence.
func (s *Store) Append(snapshots []models.OddsSnapshot) {
	if len(snapshots) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snapshots {
		s.history[snap.EventID] = append(s.history[snap.EventID], snap)
	}
}

// Purge drops snapshots older than the retention window and removes
// events left with no snapshots.
func (s *Store) Purge() {
	cutoff := s.now().Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	for eventID, snaps := range s.history {
		kept := snaps[:0]
		for _, snap := range snaps {
			if snap.Timestamp.After(cutoff) {
				kept = append(kept, snap)
			}
		}
		if len(kept) == 0 {
			delete(s.history, eventID)
		} else {
			s.history[eventID] = kept
		}
	}
}

// Snapshots returns a copy of the retained snapshots for an event,
// in chronological order.
func (s *Store) Snapshots(eventID string) []models.OddsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := s.history[eventID]
	if len(snaps) == 0 {
		return nil
	}
	out := make([]models.OddsSnapshot, len(snaps))
	copy(out, snaps)
	return out
}

// SelectionSnapshots returns the retained snapshots for one selection of an event
func (s *Store) SelectionSnapshots(eventID, selection string) []models.OddsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.OddsSnapshot
	for _, snap := range s.history[eventID] {
		if snap.Selection == selection {
			out = append(out, snap)
		}
	}
	return out
}

// EventCount returns the number of events currently indexed
func (s *Store) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}
