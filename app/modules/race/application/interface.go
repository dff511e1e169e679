package raceservice

import (
	"context"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

// Service defines the race application operations.
type Service interface {
	// Roster
	CreateDriver(ctx context.Context, input DriverInput) (*racedomain.Driver, error)
	UpdateDriver(ctx context.Context, driverID uuid.UUID, input DriverInput) (*racedomain.Driver, error)
	DeleteDriver(ctx context.Context, driverID uuid.UUID) error
	ListDrivers(ctx context.Context) ([]racedomain.Driver, error)
	SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error)

	// Races
	CreateRace(ctx context.Context, title string, driverIDs []uuid.UUID) (*racedomain.Race, error)
	CopyRace(ctx context.Context, raceID uuid.UUID) (*racedomain.Race, error)
	DeleteRace(ctx context.Context, raceID uuid.UUID) error
	ListRaces(ctx context.Context, filter RaceFilter) ([]racedomain.Race, error)
	GetRaceDetail(ctx context.Context, raceID uuid.UUID) (*racedomain.RaceDetail, error)
	FinishRace(ctx context.Context, input FinishRaceInput) (*racedomain.RaceDetail, error)

	// Results
	GetRanking(ctx context.Context, raceID uuid.UUID) ([]racedomain.Placement, error)
	MergeRaces(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error)
	AvailableForMerge(ctx context.Context, exceptIDs []uuid.UUID) ([]racedomain.Race, error)
	GetReportData(ctx context.Context, raceIDs []uuid.UUID) (*ReportData, error)

	// Settings
	GetSettings(ctx context.Context) (*Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) (*Settings, error)

	// Export
	RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}

// EventPublisher delivers race events to the bus.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// ReportQueue schedules report generation off the request path.
type ReportQueue interface {
	EnqueueExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}
