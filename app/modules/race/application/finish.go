package raceservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FinishRace reconciles unresolved penalties in the recorded circle log and
// stores it together with the final race metadata in one transaction.
func (s *RaceService) FinishRace(ctx context.Context, input FinishRaceInput) (*racedomain.RaceDetail, error) {
	detail, err := run(s, ctx, "FinishRace", input.RaceID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.RaceDetail, error], error) {
		return s.finishRaceLogic(ctx, db, input)
	})
	if err != nil {
		return nil, err
	}

	s.publishFinished(ctx, detail)
	return detail, nil
}

func (s *RaceService) finishRaceLogic(ctx context.Context, db bun.IDB, input FinishRaceInput) (results.OperationResult[*racedomain.RaceDetail, error], error) {
	race, err := s.repo.GetRace(ctx, db, input.RaceID)
	if err != nil {
		if errors.Is(err, racedb.ErrNotFound) {
			return results.FailureResult[*racedomain.RaceDetail, error](ErrRaceNotFound), nil
		}
		return results.OperationResult[*racedomain.RaceDetail, error]{}, err
	}
	if race.Finished {
		return results.FailureResult[*racedomain.RaceDetail, error](racedomain.ErrRaceFinished), nil
	}

	drivers, err := s.repo.GetRaceDrivers(ctx, db, input.RaceID)
	if err != nil {
		return results.OperationResult[*racedomain.RaceDetail, error]{}, err
	}
	roster := toDomainDrivers(drivers)
	circles := racedomain.ReconcilePenalties(input.Circles, roster)

	if err := s.repo.ReplaceCircles(ctx, db, input.RaceID, toDBCircles(input.RaceID, circles)); err != nil {
		return results.OperationResult[*racedomain.RaceDetail, error]{}, err
	}

	race.DurationSeconds = input.DurationSeconds
	race.FinishOrder = input.FinishOrder
	if err := s.repo.FinishRace(ctx, db, race); err != nil {
		if errors.Is(err, racedb.ErrNoRowsAffected) {
			return results.FailureResult[*racedomain.RaceDetail, error](racedomain.ErrRaceFinished), nil
		}
		return results.OperationResult[*racedomain.RaceDetail, error]{}, err
	}

	return results.SuccessResult[*racedomain.RaceDetail, error](&racedomain.RaceDetail{
		Race:    toDomainRace(*race),
		Drivers: roster,
		Circles: circles,
	}), nil
}

// publishFinished announces a stored race. Delivery failures are logged and
// do not undo the finish.
func (s *RaceService) publishFinished(ctx context.Context, detail *racedomain.RaceDetail) {
	if s.publisher == nil || detail == nil {
		return
	}
	payload := raceevents.RaceFinishedPayloadV1{
		RaceID:          detail.Race.ID,
		Title:           detail.Race.Title,
		DurationSeconds: detail.Race.DurationSeconds,
		Drivers:         len(detail.Drivers),
		FinishedAt:      s.now(),
	}
	if err := s.publisher.Publish(ctx, raceevents.RaceFinishedV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish race finished event",
			attr.ExtractCorrelationID(ctx),
			attr.String("race_id", detail.Race.ID.String()),
			attr.Error(err),
		)
	}
}
