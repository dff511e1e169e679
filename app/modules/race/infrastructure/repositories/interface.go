package racedb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for race persistence. Every method accepts
// an optional bun.IDB so callers can run it inside a transaction.
type Repository interface {
	// Drivers
	CreateDriver(ctx context.Context, db bun.IDB, driver *Driver) error
	UpdateDriver(ctx context.Context, db bun.IDB, driver *Driver) error
	DeleteDriver(ctx context.Context, db bun.IDB, driverID uuid.UUID) error
	GetDriversByIDs(ctx context.Context, db bun.IDB, driverIDs []uuid.UUID) ([]Driver, error)
	ListDrivers(ctx context.Context, db bun.IDB) ([]Driver, error)
	SearchDrivers(ctx context.Context, db bun.IDB, query string) ([]Driver, error)

	// Races
	CreateRace(ctx context.Context, db bun.IDB, race *Race, driverIDs []uuid.UUID) error
	GetRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) (*Race, error)
	ListRaces(ctx context.Context, db bun.IDB, filter RaceFilter) ([]Race, error)
	DeleteRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) error
	GetRaceDrivers(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]Driver, error)
	FinishRace(ctx context.Context, db bun.IDB, race *Race) error

	// Circles
	GetCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]Circle, error)
	ReplaceCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID, circles []Circle) error

	// Settings
	GetSettings(ctx context.Context, db bun.IDB) (*Settings, error)
	UpsertSettings(ctx context.Context, db bun.IDB, settings *Settings) error
}
