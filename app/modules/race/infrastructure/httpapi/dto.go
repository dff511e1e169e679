package racehttp

import (
	"time"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

type driverDTO struct {
	ID        uuid.UUID `json:"id"`
	Number    int64     `json:"number"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	City      string    `json:"city,omitempty"`
	BoatModel string    `json:"boat_model,omitempty"`
	Rank      string    `json:"rank,omitempty"`
	Team      string    `json:"team,omitempty"`
}

type raceDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	DurationSeconds int64     `json:"duration_seconds"`
	Duration        string    `json:"duration"`
	Finished        bool      `json:"finished"`
	FinishOrder     []int64   `json:"finish_order"`
}

type entryDTO struct {
	DriverID      uuid.UUID  `json:"driver_id"`
	Duration      int64      `json:"duration"`
	UseDuration   bool       `json:"use_duration"`
	InvalidatedBy *uuid.UUID `json:"invalidated_by,omitempty"`
}

type circleDTO struct {
	ID                   uuid.UUID   `json:"id"`
	Seq                  int         `json:"seq"`
	PenaltyFor           []uuid.UUID `json:"penalty_for"`
	FinishPenaltyDrivers []uuid.UUID `json:"finish_penalty_drivers"`
	Entries              []entryDTO  `json:"entries"`
}

type raceDetailDTO struct {
	Race    raceDTO     `json:"race"`
	Drivers []driverDTO `json:"drivers"`
	Circles []circleDTO `json:"circles"`
}

type placementDTO struct {
	Place         int       `json:"place"`
	Driver        driverDTO `json:"driver"`
	TotalLaps     int       `json:"total_laps"`
	PenaltyLaps   int       `json:"penalty_laps"`
	ValidDuration int64     `json:"valid_duration"`
	Time          string    `json:"time"`
	Participated  bool      `json:"participated"`
}

type raceResultDTO struct {
	Position     int `json:"position"`
	Points       int `json:"points"`
	Laps         int `json:"laps"`
	PenaltyCount int `json:"penalty_count"`
}

type mergedDriverDTO struct {
	Driver      driverDTO       `json:"driver"`
	Results     []raceResultDTO `json:"results"`
	TotalPoints int             `json:"total_points"`
}

type raceSummaryDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	CreatedAt       time.Time `json:"created_at"`
	DurationSeconds int64     `json:"duration_seconds"`
}

type mergedDTO struct {
	Races   []raceSummaryDTO  `json:"races"`
	Drivers []mergedDriverDTO `json:"drivers"`
}

type sessionDTO struct {
	SessionID string        `json:"session_id"`
	Version   uint64        `json:"version"`
	Closed    bool          `json:"closed"`
	Elapsed   int64         `json:"elapsed"`
	Detail    raceDetailDTO `json:"detail"`
}

func toDriverDTO(d racedomain.Driver) driverDTO {
	return driverDTO{
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

func toDriverDTOs(in []racedomain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(in))
	for _, d := range in {
		out = append(out, toDriverDTO(d))
	}
	return out
}

func toRaceDTO(r racedomain.Race) raceDTO {
	order := r.FinishOrder
	if order == nil {
		order = []int64{}
	}
	return raceDTO{
		ID:              r.ID,
		Title:           r.Title,
		CreatedAt:       r.CreatedAt,
		DurationSeconds: r.DurationSeconds,
		Duration:        racedomain.FormatSeconds(r.DurationSeconds),
		Finished:        r.Finished,
		FinishOrder:     order,
	}
}

func toRaceDTOs(in []racedomain.Race) []raceDTO {
	out := make([]raceDTO, 0, len(in))
	for _, r := range in {
		out = append(out, toRaceDTO(r))
	}
	return out
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

func toCircleDTOs(in []racedomain.Circle) []circleDTO {
	out := make([]circleDTO, 0, len(in))
	for _, c := range in {
		dto := circleDTO{
			ID:                   c.ID,
			Seq:                  c.Seq,
			PenaltyFor:           nonNilIDs(c.PenaltyFor),
			FinishPenaltyDrivers: nonNilIDs(c.FinishPenaltyDrivers),
			Entries:              make([]entryDTO, 0, len(c.Entries)),
		}
		for _, e := range c.Entries {
			dto.Entries = append(dto.Entries, entryDTO{
				DriverID:      e.DriverID,
				Duration:      e.Duration,
				UseDuration:   e.UseDuration,
				InvalidatedBy: e.InvalidatedBy,
			})
		}
		out = append(out, dto)
	}
	return out
}

func fromCircleDTOs(raceID uuid.UUID, in []circleDTO) []racedomain.Circle {
	out := make([]racedomain.Circle, 0, len(in))
	for i, c := range in {
		circle := racedomain.Circle{
			ID:                   c.ID,
			RaceID:               raceID,
			Seq:                  i,
			PenaltyFor:           c.PenaltyFor,
			FinishPenaltyDrivers: c.FinishPenaltyDrivers,
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

func toRaceDetailDTO(d racedomain.RaceDetail) raceDetailDTO {
	return raceDetailDTO{
		Race:    toRaceDTO(d.Race),
		Drivers: toDriverDTOs(d.Drivers),
		Circles: toCircleDTOs(d.Circles),
	}
}

func toPlacementDTOs(in []racedomain.Placement) []placementDTO {
	out := make([]placementDTO, 0, len(in))
	for _, p := range in {
		out = append(out, placementDTO{
			Place:         p.Place,
			Driver:        toDriverDTO(p.Driver),
			TotalLaps:     p.TotalLaps,
			PenaltyLaps:   p.PenaltyLaps,
			ValidDuration: p.ValidDuration,
			Time:          racedomain.FormatSeconds(p.ValidDuration),
			Participated:  p.Participated,
		})
	}
	return out
}

func toMergedDTO(m racedomain.MergedResult) mergedDTO {
	out := mergedDTO{
		Races:   make([]raceSummaryDTO, 0, len(m.Races)),
		Drivers: make([]mergedDriverDTO, 0, len(m.Drivers)),
	}
	for _, r := range m.Races {
		out.Races = append(out.Races, raceSummaryDTO{
			ID:              r.ID,
			Title:           r.Title,
			CreatedAt:       r.CreatedAt,
			DurationSeconds: r.DurationSeconds,
		})
	}
	for _, d := range m.Drivers {
		row := mergedDriverDTO{
			Driver:      toDriverDTO(d.Driver),
			Results:     make([]raceResultDTO, 0, len(d.Results)),
			TotalPoints: d.TotalPoints,
		}
		for _, r := range d.Results {
			row.Results = append(row.Results, raceResultDTO(r))
		}
		out.Drivers = append(out.Drivers, row)
	}
	return out
}
