package raceservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetRanking ranks a single race from its stored log.
func (s *RaceService) GetRanking(ctx context.Context, raceID uuid.UUID) ([]racedomain.Placement, error) {
	return run(s, ctx, "GetRanking", raceID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]racedomain.Placement, error], error) {
		detail, err := s.loadDetail(ctx, db, raceID)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[[]racedomain.Placement, error](ErrRaceNotFound), nil
			}
			return results.OperationResult[[]racedomain.Placement, error]{}, err
		}
		return results.SuccessResult[[]racedomain.Placement, error](racedomain.Rank(*detail)), nil
	})
}

// MergeRaces builds the combined leaderboard for the races in the given order.
func (s *RaceService) MergeRaces(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error) {
	return run(s, ctx, "MergeRaces", fmt.Sprintf("%d races", len(raceIDs)), func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.MergedResult, error], error) {
		details, err := s.loadDetails(ctx, db, raceIDs)
		if err != nil {
			if errors.Is(err, ErrEmptyMergeSet) || errors.Is(err, ErrRaceNotFound) {
				return results.FailureResult[*racedomain.MergedResult, error](err), nil
			}
			return results.OperationResult[*racedomain.MergedResult, error]{}, err
		}

		merged := racedomain.Merge(details)
		return results.SuccessResult[*racedomain.MergedResult, error](&merged), nil
	})
}

// loadDetails reads every race of a merge set in order.
func (s *RaceService) loadDetails(ctx context.Context, db bun.IDB, raceIDs []uuid.UUID) ([]racedomain.RaceDetail, error) {
	ids := dedupeIDs(raceIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyMergeSet
	}

	details := make([]racedomain.RaceDetail, 0, len(ids))
	for _, id := range ids {
		detail, err := s.loadDetail(ctx, db, id)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrRaceNotFound, id)
			}
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, nil
}

// AvailableForMerge lists finished races that are not yet in the merge set.
func (s *RaceService) AvailableForMerge(ctx context.Context, exceptIDs []uuid.UUID) ([]racedomain.Race, error) {
	return run(s, ctx, "AvailableForMerge", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]racedomain.Race, error], error) {
		races, err := s.repo.ListRaces(ctx, db, racedb.RaceFilter{
			FinishedOnly: true,
			ExcludeIDs:   exceptIDs,
		})
		if err != nil {
			return results.OperationResult[[]racedomain.Race, error]{}, err
		}
		return results.SuccessResult[[]racedomain.Race, error](toDomainRaces(races)), nil
	})
}

// ReportData is what a report renderer needs for a merge set.
type ReportData struct {
	Merged  racedomain.MergedResult
	Details []racedomain.RaceDetail
}

// GetReportData loads the merge set and its combined leaderboard.
func (s *RaceService) GetReportData(ctx context.Context, raceIDs []uuid.UUID) (*ReportData, error) {
	return run(s, ctx, "GetReportData", fmt.Sprintf("%d races", len(raceIDs)), func(ctx context.Context, db bun.IDB) (results.OperationResult[*ReportData, error], error) {
		details, err := s.loadDetails(ctx, db, raceIDs)
		if err != nil {
			if errors.Is(err, ErrEmptyMergeSet) || errors.Is(err, ErrRaceNotFound) {
				return results.FailureResult[*ReportData, error](err), nil
			}
			return results.OperationResult[*ReportData, error]{}, err
		}
		return results.SuccessResult[*ReportData, error](&ReportData{
			Merged:  racedomain.Merge(details),
			Details: details,
		}), nil
	})
}
