package racedomain

import "github.com/google/uuid"

// ReconcilePenalties forfeits one normal lap for every penalty a roster driver
// never cleared. The forfeited entry is the driver's most recent valid normal
// entry before the penalty circle; a penalty with no earlier normal lap
// forfeits nothing. The input log is not modified. Running it again on its own output is a no-op.
func ReconcilePenalties(circles []Circle, roster []Driver) []Circle {
	out := CloneCircles(circles)

	for ci := range out {
		penalty := out[ci]
		for _, d := range roster {
			if !penalty.UnresolvedPenalty(d.ID) {
				continue
			}
			if alreadyForfeited(out, d.ID, penalty.ID) {
				continue
			}

			target := lastNormalEntry(out[:ci], d.ID)
			if target < 0 {
				continue
			}

			c := &out[target]
			ei := c.EntryIndex(d.ID)
			id := penalty.ID
			c.Entries[ei].UseDuration = false
			c.Entries[ei].InvalidatedBy = &id
		}
	}

	return out
}

// lastNormalEntry returns the index of the last circle holding a valid entry
// for the driver that is not itself a penalty crossing.
func lastNormalEntry(circles []Circle, driverID uuid.UUID) int {
	for i := len(circles) - 1; i >= 0; i-- {
		c := circles[i]
		if c.OwesPenalty(driverID) {
			continue
		}
		ei := c.EntryIndex(driverID)
		if ei >= 0 && c.Entries[ei].UseDuration {
			return i
		}
	}
	return -1
}

func alreadyForfeited(circles []Circle, driverID, penaltyID uuid.UUID) bool {
	for _, c := range circles {
		ei := c.EntryIndex(driverID)
		if ei < 0 {
			continue
		}
		if by := c.Entries[ei].InvalidatedBy; by != nil && *by == penaltyID {
			return true
		}
	}
	return false
}
