package raceservice

import (
	"context"
	"slices"
	"sync"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

// Merger computes a merged leaderboard for an ordered set of races.
type Merger interface {
	MergeRaces(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error)
}

// MergeSet is the user's working selection of races to combine. It always
// contains the race it was opened for. Every change recomputes the merged
// result from stored logs.
type MergeSet struct {
	mu      sync.Mutex
	merger  Merger
	current uuid.UUID
	ids     []uuid.UUID
}

// NewMergeSet opens a merge set for the current race.
func NewMergeSet(merger Merger, current uuid.UUID) *MergeSet {
	return &MergeSet{
		merger:  merger,
		current: current,
		ids:     []uuid.UUID{current},
	}
}

// IDs returns the races in merge order.
func (m *MergeSet) IDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ids)
}

// Add appends a race. Adding a race twice keeps the set unchanged.
func (m *MergeSet) Add(ctx context.Context, raceID uuid.UUID) (*racedomain.MergedResult, error) {
	m.mu.Lock()
	if !slices.Contains(m.ids, raceID) {
		m.ids = append(m.ids, raceID)
	}
	ids := slices.Clone(m.ids)
	m.mu.Unlock()

	return m.merger.MergeRaces(ctx, ids)
}

// Remove drops a race from the set.
func (m *MergeSet) Remove(ctx context.Context, raceID uuid.UUID) (*racedomain.MergedResult, error) {
	if raceID == m.current {
		return nil, ErrCurrentRaceRequired
	}

	m.mu.Lock()
	m.ids = slices.DeleteFunc(m.ids, func(id uuid.UUID) bool { return id == raceID })
	ids := slices.Clone(m.ids)
	m.mu.Unlock()

	return m.merger.MergeRaces(ctx, ids)
}

// Recompute rebuilds the merged result without changing the set.
func (m *MergeSet) Recompute(ctx context.Context) (*racedomain.MergedResult, error) {
	return m.merger.MergeRaces(ctx, m.IDs())
}
