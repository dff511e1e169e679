package racedomain

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// LiveRace is the in-memory state of a race being recorded. Transitions
// return a new value and never modify the receiver's slices.
type LiveRace struct {
	Race    Race
	Drivers []Driver
	Circles []Circle
	Elapsed int64
}

// Detail exposes the live state as a race detail snapshot.
func (lr LiveRace) Detail() RaceDetail {
	race := lr.Race
	race.FinishOrder = slices.Clone(lr.Race.FinishOrder)
	return RaceDetail{
		Race:    race,
		Drivers: slices.Clone(lr.Drivers),
		Circles: CloneCircles(lr.Circles),
	}
}

func (lr LiveRace) driver(id uuid.UUID) (Driver, bool) {
	i := slices.IndexFunc(lr.Drivers, func(d Driver) bool { return d.ID == id })
	if i < 0 {
		return Driver{}, false
	}
	return lr.Drivers[i], true
}

// Tick advances the race clock. The clock never moves backwards.
func (lr LiveRace) Tick(elapsed int64) (LiveRace, error) {
	if lr.Race.Finished {
		return lr, ErrRaceFinished
	}
	if elapsed > lr.Elapsed {
		lr.Elapsed = elapsed
	}
	return lr, nil
}

// RecordCrossing appends a crossing for the driver at the current clock.
// The entry lands in the first circle the driver has not crossed yet, or in a
// new circle when the driver already crossed the last one.
func (lr LiveRace) RecordCrossing(driverID uuid.UUID, penalty bool) (LiveRace, error) {
	if lr.Race.Finished {
		return lr, ErrRaceFinished
	}
	driver, ok := lr.driver(driverID)
	if !ok {
		return lr, fmt.Errorf("%w: %s", ErrDriverNotRegistered, driverID)
	}

	var served int64
	for _, c := range lr.Circles {
		if i := c.EntryIndex(driverID); i >= 0 {
			served += c.Entries[i].Duration
		}
	}
	entry := Entry{
		DriverID:    driverID,
		Duration:    lr.Elapsed - served,
		UseDuration: !penalty,
	}

	circles := CloneCircles(lr.Circles)
	target := slices.IndexFunc(circles, func(c Circle) bool { return !c.HasEntry(driverID) })
	if len(circles) == 0 || circles[len(circles)-1].HasEntry(driverID) || target < 0 {
		circles = append(circles, Circle{
			ID:     uuid.New(),
			RaceID: lr.Race.ID,
			Seq:    len(circles),
		})
		target = len(circles) - 1
	}

	c := &circles[target]
	c.Entries = append(c.Entries, entry)
	if penalty {
		c.PenaltyFor = append(c.PenaltyFor, driverID)
	}

	lr.Circles = circles
	lr.Race.FinishOrder = append(slices.Clone(lr.Race.FinishOrder), driver.Number)
	return lr, nil
}

// ResolvePenalty marks the driver's penalty in the circle as served.
func (lr LiveRace) ResolvePenalty(circleID, driverID uuid.UUID) (LiveRace, error) {
	if lr.Race.Finished {
		return lr, ErrRaceFinished
	}
	ci := slices.IndexFunc(lr.Circles, func(c Circle) bool { return c.ID == circleID })
	if ci < 0 {
		return lr, fmt.Errorf("%w: %s", ErrCircleNotFound, circleID)
	}
	if !lr.Circles[ci].OwesPenalty(driverID) {
		return lr, ErrNoPenaltyOwed
	}
	if lr.Circles[ci].PenaltyCleared(driverID) {
		return lr, nil
	}

	circles := CloneCircles(lr.Circles)
	circles[ci].FinishPenaltyDrivers = append(circles[ci].FinishPenaltyDrivers, driverID)
	lr.Circles = circles
	return lr, nil
}

// Finish closes the race at the current clock and reconciles unresolved
// penalties. It is the only transition that rewrites recorded entries.
func (lr LiveRace) Finish() (LiveRace, error) {
	if lr.Race.Finished {
		return lr, ErrRaceFinished
	}
	lr.Circles = ReconcilePenalties(lr.Circles, lr.Drivers)
	lr.Race.Finished = true
	lr.Race.DurationSeconds = lr.Elapsed
	return lr, nil
}
