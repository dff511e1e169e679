package racedomain

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
)

// Placement is one row of a single-race ranking.
type Placement struct {
	Driver        Driver
	Place         int
	TotalLaps     int
	PenaltyLaps   int
	ValidDuration int64
	Participated  bool
}

// Rank orders the race roster. Participants are grouped by valid circle count
// (descending) and ordered by valid duration inside a group; equal drivers keep
// the order in which they first appear in the circle log. Drivers without
// entries follow in roster order.
func Rank(detail RaceDetail) []Placement {
	stats := Aggregate(detail)

	roster := make(map[uuid.UUID]Driver, len(detail.Drivers))
	for _, d := range detail.Drivers {
		if _, dup := roster[d.ID]; !dup {
			roster[d.ID] = d
		}
	}

	var participants, noShows []Placement
	seen := make(map[uuid.UUID]struct{}, len(detail.Drivers))
	for _, c := range detail.Circles {
		for _, e := range c.Entries {
			d, ok := roster[e.DriverID]
			if !ok {
				continue
			}
			if _, dup := seen[d.ID]; dup {
				continue
			}
			seen[d.ID] = struct{}{}

			s := stats[d.ID]
			participants = append(participants, Placement{
				Driver:        d,
				TotalLaps:     s.TotalLaps(),
				PenaltyLaps:   s.InvalidCircles,
				ValidDuration: s.ValidDuration,
				Participated:  true,
			})
		}
	}
	for _, d := range detail.Drivers {
		if _, dup := seen[d.ID]; dup {
			continue
		}
		seen[d.ID] = struct{}{}
		noShows = append(noShows, Placement{Driver: d})
	}

	// Stable: equal drivers keep log order.
	slices.SortStableFunc(participants, func(a, b Placement) int {
		av, bv := stats[a.Driver.ID].ValidCircles, stats[b.Driver.ID].ValidCircles
		if av != bv {
			return cmp.Compare(bv, av)
		}
		return cmp.Compare(a.ValidDuration, b.ValidDuration)
	})

	ranking := append(participants, noShows...)
	for i := range ranking {
		ranking[i].Place = i + 1
	}
	return ranking
}
