package racedomain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Driver is a roster member that can be registered for races.
type Driver struct {
	ID        uuid.UUID
	Number    int64
	Name      string
	LastName  string
	City      string
	BoatModel string
	Rank      string
	Team      string
}

// DisplayName renders "LastName Name", trimming the gap when either part is missing.
func (d Driver) DisplayName() string {
	return strings.TrimSpace(d.LastName + " " + d.Name)
}

// Race holds race metadata. FinishOrder lists driver numbers in crossing order.
type Race struct {
	ID              uuid.UUID
	Title           string
	CreatedAt       time.Time
	DurationSeconds int64
	Finished        bool
	FinishOrder     []int64
}

// Entry is a single driver crossing inside a circle.
type Entry struct {
	DriverID uuid.UUID
	// Duration is the number of seconds since the driver's previous crossing.
	Duration    int64
	UseDuration bool
	// InvalidatedBy is the penalty circle that forfeited this entry during
	// reconciliation. Nil for entries recorded as penalties.
	InvalidatedBy *uuid.UUID
}

// Circle groups driver crossings for one lap.
type Circle struct {
	ID                   uuid.UUID
	RaceID               uuid.UUID
	Seq                  int
	PenaltyFor           []uuid.UUID
	FinishPenaltyDrivers []uuid.UUID
	Entries              []Entry
}

// EntryIndex returns the position of the driver's entry, or -1.
func (c Circle) EntryIndex(driverID uuid.UUID) int {
	return slices.IndexFunc(c.Entries, func(e Entry) bool { return e.DriverID == driverID })
}

// HasEntry reports whether the driver crossed in this circle.
func (c Circle) HasEntry(driverID uuid.UUID) bool {
	return c.EntryIndex(driverID) >= 0
}

// OwesPenalty reports whether the circle holds a penalty for the driver.
func (c Circle) OwesPenalty(driverID uuid.UUID) bool {
	return slices.Contains(c.PenaltyFor, driverID)
}

// PenaltyCleared reports whether the driver has served this circle's penalty.
func (c Circle) PenaltyCleared(driverID uuid.UUID) bool {
	return slices.Contains(c.FinishPenaltyDrivers, driverID)
}

// UnresolvedPenalty is true when the driver owes the penalty, crossed in the
// circle and never cleared it.
func (c Circle) UnresolvedPenalty(driverID uuid.UUID) bool {
	return c.OwesPenalty(driverID) && c.HasEntry(driverID) && !c.PenaltyCleared(driverID)
}

// Clone returns a deep copy so callers can mutate it freely.
func (c Circle) Clone() Circle {
	out := c
	out.PenaltyFor = slices.Clone(c.PenaltyFor)
	out.FinishPenaltyDrivers = slices.Clone(c.FinishPenaltyDrivers)
	out.Entries = make([]Entry, len(c.Entries))
	for i, e := range c.Entries {
		out.Entries[i] = e
		if e.InvalidatedBy != nil {
			id := *e.InvalidatedBy
			out.Entries[i].InvalidatedBy = &id
		}
	}
	return out
}

// CloneCircles deep-copies a circle log.
func CloneCircles(circles []Circle) []Circle {
	out := make([]Circle, len(circles))
	for i, c := range circles {
		out[i] = c.Clone()
	}
	return out
}

// RaceDetail is a read-only snapshot of a race, its roster in registration
// order and its circles in creation order.
type RaceDetail struct {
	Race    Race
	Drivers []Driver
	Circles []Circle
}

// RaceSummary is the race metadata shown in merged results.
type RaceSummary struct {
	ID              uuid.UUID
	Title           string
	CreatedAt       time.Time
	DurationSeconds int64
}

// Summary extracts the summary of the detail's race.
func (d RaceDetail) Summary() RaceSummary {
	return RaceSummary{
		ID:              d.Race.ID,
		Title:           d.Race.Title,
		CreatedAt:       d.Race.CreatedAt,
		DurationSeconds: d.Race.DurationSeconds,
	}
}
