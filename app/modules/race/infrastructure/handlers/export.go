package racehandlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	"github.com/google/uuid"
)

// HandleRaceFinished queues the single-race report. Deployments without a
// queue skip it.
func (h *RaceHandlers) HandleRaceFinished(ctx context.Context, payload *raceevents.RaceFinishedPayloadV1) ([]Result, error) {
	h.logger.InfoContext(ctx, "Received RaceFinished event",
		attr.ExtractCorrelationID(ctx),
		attr.String("race_id", payload.RaceID.String()),
	)

	jobID, err := h.exports.RequestExport(ctx, []uuid.UUID{payload.RaceID})
	if errors.Is(err, raceservice.ErrNoExportQueue) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to queue report for finished race: %w", err)
	}

	h.logger.InfoContext(ctx, "Queued report for finished race",
		attr.String("race_id", payload.RaceID.String()),
		attr.Int64("job_id", jobID),
	)
	return nil, nil
}

// HandleExportRequested queues a merge-set report. Requests that can never
// succeed are answered with a failure event instead of being retried.
func (h *RaceHandlers) HandleExportRequested(ctx context.Context, payload *raceevents.ExportRequestedPayloadV1) ([]Result, error) {
	h.logger.InfoContext(ctx, "Received ExportRequested event",
		attr.ExtractCorrelationID(ctx),
		attr.Int("races", len(payload.RaceIDs)),
	)

	jobID, err := h.exports.RequestExport(ctx, payload.RaceIDs)
	if err != nil {
		if errors.Is(err, raceservice.ErrEmptyMergeSet) || errors.Is(err, raceservice.ErrNoExportQueue) {
			return []Result{{
				Topic: raceevents.ReportExportFailedV1,
				Payload: raceevents.ReportExportFailedPayloadV1{
					RaceIDs: payload.RaceIDs,
					Reason:  err.Error(),
				},
			}}, nil
		}
		return nil, fmt.Errorf("failed to queue report: %w", err)
	}

	h.logger.InfoContext(ctx, "Queued report", attr.Int64("job_id", jobID))
	return nil, nil
}
