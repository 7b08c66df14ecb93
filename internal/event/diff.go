package event

import (
	"sort"
	"time"
)

// Snapshot is the set of events produced by one sync run, keyed by UID
type Snapshot struct {
	Events    map[string]*Event `json:"events"`
	UpdatedAt string            `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Events: make(map[string]*Event),
	}
}

// Change represents a difference detected for an assignment between runs
type Change struct {
	UID      string `json:"uid"`
	Field    string `json:"field"` // "due_date" or "title"
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// DiffResult contains the results of comparing a run against the previous
// snapshot
type DiffResult struct {
	NewEvents []*Event
	Changes   []*Change
}

// Diff compares the current run's events against a previous snapshot.
// Events whose UID was never seen before are reported as new; events whose
// due date or title moved are reported as changes.
func Diff(previous *Snapshot, current []*Event) *DiffResult {
	if previous == nil {
		previous = NewSnapshot()
	}

	result := &DiffResult{
		NewEvents: make([]*Event, 0),
		Changes:   make([]*Change, 0),
	}

	for _, evt := range current {
		prev, exists := previous.Events[evt.UID]
		if !exists {
			result.NewEvents = append(result.NewEvents, evt)
			continue
		}
		result.Changes = append(result.Changes, DetectChanges(prev, evt)...)
	}

	// Sort for consistent output; consumers must not depend on ordering
	sort.Slice(result.NewEvents, func(i, j int) bool {
		return result.NewEvents[i].UID < result.NewEvents[j].UID
	})

	return result
}

// DetectChanges compares two events with the same UID and returns the
// per-field differences
func DetectChanges(previous, current *Event) []*Change {
	var changes []*Change

	if !previous.Start.Equal(current.Start) {
		changes = append(changes, &Change{
			UID:      current.UID,
			Field:    "due_date",
			OldValue: previous.Start.Format(time.RFC3339),
			NewValue: current.Start.Format(time.RFC3339),
		})
	}

	if previous.Title != current.Title {
		changes = append(changes, &Change{
			UID:      current.UID,
			Field:    "title",
			OldValue: previous.Title,
			NewValue: current.Title,
		})
	}

	return changes
}

// CreateSnapshot creates a snapshot from a list of events
func CreateSnapshot(events []*Event, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt

	for _, evt := range events {
		snap.Events[evt.UID] = evt
	}

	return snap
}
