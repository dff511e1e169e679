package racedomain

import (
	"math"
	"slices"

	"github.com/google/uuid"
)

// PointsTable maps place-1 to championship points.
var PointsTable = [...]int{25, 20, 16, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0, 0, 0, 0}

// PointsForPlace returns the points for a 1-based place; out of range scores 0.
func PointsForPlace(place int) int {
	if place < 1 || place > len(PointsTable) {
		return 0
	}
	return PointsTable[place-1]
}

// RaceResult is one driver's outcome in one merged race. A zero value means
// the driver was not registered for that race.
type RaceResult struct {
	Position     int
	Points       int
	Laps         int
	PenaltyCount int
}

// MergedDriverResult aligns a driver's results with MergedResult.Races.
type MergedDriverResult struct {
	Driver      Driver
	Results     []RaceResult
	TotalPoints int
}

// MergedResult is the combined leaderboard for a merge set.
type MergedResult struct {
	Races   []RaceSummary
	Drivers []MergedDriverResult
}

// Merge ranks each race independently and combines the placements into one
// leaderboard ordered by total points. Ties are broken by the most recent race
// first, with a missing result ranking behind any real position.
func Merge(details []RaceDetail) MergedResult {
	merged := MergedResult{
		Races:   make([]RaceSummary, 0, len(details)),
		Drivers: []MergedDriverResult{},
	}

	index := map[uuid.UUID]int{}
	for _, detail := range details {
		for _, d := range detail.Drivers {
			if _, ok := index[d.ID]; ok {
				continue
			}
			index[d.ID] = len(merged.Drivers)
			merged.Drivers = append(merged.Drivers, MergedDriverResult{
				Driver:  d,
				Results: make([]RaceResult, len(details)),
			})
		}
	}

	for ri, detail := range details {
		merged.Races = append(merged.Races, detail.Summary())
		for _, p := range Rank(detail) {
			row := &merged.Drivers[index[p.Driver.ID]]
			points := PointsForPlace(p.Place)
			row.Results[ri] = RaceResult{
				Position:     p.Place,
				Points:       points,
				Laps:         p.TotalLaps,
				PenaltyCount: p.PenaltyLaps,
			}
			row.TotalPoints += points
		}
	}

	slices.SortStableFunc(merged.Drivers, compareMerged)
	return merged
}

func compareMerged(a, b MergedDriverResult) int {
	if a.TotalPoints != b.TotalPoints {
		if a.TotalPoints > b.TotalPoints {
			return -1
		}
		return 1
	}
	for i := len(a.Results) - 1; i >= 0; i-- {
		pa, pb := tieBreakPosition(a.Results[i]), tieBreakPosition(b.Results[i])
		if pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
	}
	return 0
}

func tieBreakPosition(r RaceResult) int {
	if r.Position == 0 {
		return math.MaxInt
	}
	return r.Position
}
