package racedb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Driver is a roster member.
type Driver struct {
	bun.BaseModel `bun:"table:drivers,alias:d"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Number    int64     `bun:"number,notnull"`
	Name      string    `bun:"name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	City      string    `bun:"city,notnull"`
	BoatModel string    `bun:"boat_model,notnull"`
	Rank      string    `bun:"rank,notnull"`
	Team      string    `bun:"team,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Race is a single heat. FinishOrder holds driver numbers in crossing order.
type Race struct {
	bun.BaseModel `bun:"table:races,alias:r"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Title           string    `bun:"title,notnull"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	DurationSeconds int64     `bun:"duration_seconds,notnull"`
	Finished        bool      `bun:"finished,notnull"`
	FinishOrder     []int64   `bun:"finish_order,array"`
}

// RaceDriver registers a driver for a race. Position keeps registration order.
type RaceDriver struct {
	bun.BaseModel `bun:"table:race_drivers,alias:rd"`

	RaceID   uuid.UUID `bun:"race_id,pk,type:uuid"`
	DriverID uuid.UUID `bun:"driver_id,pk,type:uuid"`
	Position int       `bun:"position,notnull"`
}

// Circle is one lap of a race. Driver id sets are stored as text arrays.
type Circle struct {
	bun.BaseModel `bun:"table:circles,alias:c"`

	ID                   uuid.UUID      `bun:"id,pk,type:uuid"`
	RaceID               uuid.UUID      `bun:"race_id,type:uuid,notnull"`
	Seq                  int            `bun:"seq,notnull"`
	PenaltyFor           []string       `bun:"penalty_for,array"`
	FinishPenaltyDrivers []string       `bun:"finish_penalty_drivers,array"`
	Entries              []*CircleEntry `bun:"rel:has-many,join:id=circle_id"`
}

// CircleEntry is a driver crossing inside a circle.
type CircleEntry struct {
	bun.BaseModel `bun:"table:circle_entries,alias:ce"`

	CircleID      uuid.UUID  `bun:"circle_id,pk,type:uuid"`
	DriverID      uuid.UUID  `bun:"driver_id,pk,type:uuid"`
	Position      int        `bun:"position,notnull"`
	Duration      int64      `bun:"duration,notnull"`
	UseDuration   bool       `bun:"use_duration,notnull"`
	InvalidatedBy *uuid.UUID `bun:"invalidated_by,type:uuid"`
}

// Settings is the single-row preference bag.
type Settings struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	ID        int       `bun:"id,pk"`
	Vibration bool      `bun:"vibration,notnull"`
	Sound     bool      `bun:"sound,notnull"`
	Email     string    `bun:"email,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// SettingsRowID is the primary key of the only settings row.
const SettingsRowID = 1

// RaceFilter narrows ListRaces.
type RaceFilter struct {
	Since        *time.Time
	FinishedOnly bool
	ExcludeIDs   []uuid.UUID
}
