package racehandlers

import (
	"context"

	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
)

// Result is an event a handler wants published after it succeeded.
type Result struct {
	Topic   string
	Payload any
}

// Handlers defines the race event handlers.
type Handlers interface {
	// HandleRaceFinished schedules the report of a freshly finished race.
	HandleRaceFinished(ctx context.Context, payload *raceevents.RaceFinishedPayloadV1) ([]Result, error)

	// HandleExportRequested schedules a report over a merge set.
	HandleExportRequested(ctx context.Context, payload *raceevents.ExportRequestedPayloadV1) ([]Result, error)

	// HandleCrossingRecorded feeds a timing-device crossing into the live session.
	HandleCrossingRecorded(ctx context.Context, payload *raceevents.CrossingRecordedPayloadV1) ([]Result, error)

	// HandlePenaltyResolved marks a penalty as served in the live session.
	HandlePenaltyResolved(ctx context.Context, payload *raceevents.PenaltyResolvedPayloadV1) ([]Result, error)
}
