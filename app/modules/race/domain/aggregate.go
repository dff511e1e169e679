package racedomain

import "github.com/google/uuid"

// DriverStats is the reduction of one driver's entries in a race.
type DriverStats struct {
	ValidDuration  int64
	ValidCircles   int
	InvalidCircles int
}

// Participated reports whether the driver has at least one entry.
func (s DriverStats) Participated() bool {
	return s.ValidCircles+s.InvalidCircles > 0
}

// TotalLaps is the number of recorded crossings.
func (s DriverStats) TotalLaps() int {
	return s.ValidCircles + s.InvalidCircles
}

// Aggregate reduces the circle log into per-driver statistics. Every roster
// driver is present in the result; entries for unregistered drivers are ignored.
func Aggregate(detail RaceDetail) map[uuid.UUID]DriverStats {
	stats := make(map[uuid.UUID]DriverStats, len(detail.Drivers))
	for _, d := range detail.Drivers {
		stats[d.ID] = DriverStats{}
	}

	for _, c := range detail.Circles {
		for _, e := range c.Entries {
			s, ok := stats[e.DriverID]
			if !ok {
				continue
			}
			if e.UseDuration {
				s.ValidCircles++
				s.ValidDuration += e.Duration
			} else {
				s.InvalidCircles++
			}
			stats[e.DriverID] = s
		}
	}

	return stats
}
