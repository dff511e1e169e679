package racehandlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	"github.com/google/uuid"
)

// rejected reports command errors caused by the event itself. Those events are
// dropped since redelivery would fail the same way.
func rejected(err error) bool {
	return errors.Is(err, racedomain.ErrRaceFinished) ||
		errors.Is(err, racedomain.ErrDriverNotRegistered) ||
		errors.Is(err, racedomain.ErrCircleNotFound) ||
		errors.Is(err, racedomain.ErrNoPenaltyOwed) ||
		errors.Is(err, raceservice.ErrSessionClosed)
}

func (h *RaceHandlers) session(ctx context.Context, raceID uuid.UUID) (*raceservice.Session, bool) {
	s, ok := h.sessions.Get(raceID)
	if !ok {
		h.logger.WarnContext(ctx, "No live session for race, dropping event",
			attr.ExtractCorrelationID(ctx),
			attr.String("race_id", raceID.String()),
		)
	}
	return s, ok
}

func (h *RaceHandlers) commandResult(ctx context.Context, command string, err error) ([]Result, error) {
	if err == nil {
		return nil, nil
	}
	if rejected(err) {
		h.logger.WarnContext(ctx, "Live session rejected event",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", command),
			attr.Error(err),
		)
		return nil, nil
	}
	return nil, fmt.Errorf("failed to apply %s: %w", command, err)
}

func (h *RaceHandlers) HandleCrossingRecorded(ctx context.Context, payload *raceevents.CrossingRecordedPayloadV1) ([]Result, error) {
	s, ok := h.session(ctx, payload.RaceID)
	if !ok {
		return nil, nil
	}
	return h.commandResult(ctx, "record_crossing", s.RecordCrossingAt(ctx, payload.DriverID, payload.Penalty, payload.Elapsed))
}

func (h *RaceHandlers) HandlePenaltyResolved(ctx context.Context, payload *raceevents.PenaltyResolvedPayloadV1) ([]Result, error) {
	s, ok := h.session(ctx, payload.RaceID)
	if !ok {
		return nil, nil
	}
	return h.commandResult(ctx, "resolve_penalty", s.ResolvePenalty(ctx, payload.CircleID, payload.DriverID))
}
