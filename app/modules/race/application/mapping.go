package raceservice

import (
	"slices"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/google/uuid"
)

func toDomainDriver(d racedb.Driver) racedomain.Driver {
	return racedomain.Driver{
		ID:        d.ID,
		Number:    d.Number,
		Name:      d.Name,
		LastName:  d.LastName,
		City:      d.City,
		BoatModel: d.BoatModel,
		Rank:      d.Rank,
		Team:      d.Team,
	}
}

func toDomainDrivers(in []racedb.Driver) []racedomain.Driver {
	out := make([]racedomain.Driver, 0, len(in))
	for _, d := range in {
		out = append(out, toDomainDriver(d))
	}
	return out
}

func toDomainRace(r racedb.Race) racedomain.Race {
	return racedomain.Race{
		ID:              r.ID,
		Title:           r.Title,
		CreatedAt:       r.CreatedAt,
		DurationSeconds: r.DurationSeconds,
		Finished:        r.Finished,
		FinishOrder:     slices.Clone(r.FinishOrder),
	}
}

func toDomainCircles(in []racedb.Circle) []racedomain.Circle {
	out := make([]racedomain.Circle, 0, len(in))
	for _, c := range in {
		circle := racedomain.Circle{
			ID:                   c.ID,
			RaceID:               c.RaceID,
			Seq:                  c.Seq,
			PenaltyFor:           parseIDs(c.PenaltyFor),
			FinishPenaltyDrivers: parseIDs(c.FinishPenaltyDrivers),
			Entries:              make([]racedomain.Entry, 0, len(c.Entries)),
		}
		for _, e := range c.Entries {
			circle.Entries = append(circle.Entries, racedomain.Entry{
				DriverID:      e.DriverID,
				Duration:      e.Duration,
				UseDuration:   e.UseDuration,
				InvalidatedBy: e.InvalidatedBy,
			})
		}
		out = append(out, circle)
	}
	return out
}

func toDBCircles(raceID uuid.UUID, in []racedomain.Circle) []racedb.Circle {
	out := make([]racedb.Circle, 0, len(in))
	for i, c := range in {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		circle := racedb.Circle{
			ID:                   id,
			RaceID:               raceID,
			Seq:                  i,
			PenaltyFor:           formatIDs(c.PenaltyFor),
			FinishPenaltyDrivers: formatIDs(c.FinishPenaltyDrivers),
		}
		for pos, e := range c.Entries {
			circle.Entries = append(circle.Entries, &racedb.CircleEntry{
				CircleID:      id,
				DriverID:      e.DriverID,
				Position:      pos,
				Duration:      e.Duration,
				UseDuration:   e.UseDuration,
				InvalidatedBy: e.InvalidatedBy,
			})
		}
		out = append(out, circle)
	}
	return out
}

// parseIDs drops malformed ids, matching the core's best-effort policy.
func parseIDs(in []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func formatIDs(in []uuid.UUID) []string {
	out := make([]string, 0, len(in))
	for _, id := range in {
		out = append(out, id.String())
	}
	return out
}

func fromDriverInput(input DriverInput) racedb.Driver {
	return racedb.Driver{
		Number:    input.Number,
		Name:      input.Name,
		LastName:  input.LastName,
		City:      input.City,
		BoatModel: input.BoatModel,
		Rank:      input.Rank,
		Team:      input.Team,
	}
}
