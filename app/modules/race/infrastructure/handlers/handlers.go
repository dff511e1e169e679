package racehandlers

import (
	"context"
	"log/slog"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/google/uuid"
)

// ExportRequester schedules reports.
type ExportRequester interface {
	RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}

// Sessions looks up the live session of a race.
type Sessions interface {
	Get(raceID uuid.UUID) (*raceservice.Session, bool)
}

// RaceHandlers handles race events.
type RaceHandlers struct {
	exports  ExportRequester
	sessions Sessions
	logger   *slog.Logger
}

// NewRaceHandlers creates a new instance of RaceHandlers.
func NewRaceHandlers(exports ExportRequester, sessions Sessions, logger *slog.Logger) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &RaceHandlers{
		exports:  exports,
		sessions: sessions,
		logger:   logger,
	}
}
