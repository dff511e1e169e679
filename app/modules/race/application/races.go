package raceservice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateRace opens a new race with the given roster in registration order.
func (s *RaceService) CreateRace(ctx context.Context, title string, driverIDs []uuid.UUID) (*racedomain.Race, error) {
	return run(s, ctx, "CreateRace", title, func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.Race, error], error) {
		return s.createRaceLogic(ctx, db, title, driverIDs)
	})
}

func (s *RaceService) createRaceLogic(ctx context.Context, db bun.IDB, title string, driverIDs []uuid.UUID) (results.OperationResult[*racedomain.Race, error], error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = racedomain.DefaultRaceTitle
	}

	ids := dedupeIDs(driverIDs)
	known, err := s.repo.GetDriversByIDs(ctx, db, ids)
	if err != nil {
		return results.OperationResult[*racedomain.Race, error]{}, err
	}
	if len(known) != len(ids) {
		return results.FailureResult[*racedomain.Race, error](fmt.Errorf("%w: unknown driver in roster", ErrInvalidDriver)), nil
	}

	race := racedb.Race{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateRace(ctx, db, &race, ids); err != nil {
		return results.OperationResult[*racedomain.Race, error]{}, err
	}

	out := toDomainRace(race)
	return results.SuccessResult[*racedomain.Race, error](&out), nil
}

// CopyRace creates a new open race with the source race's roster and no circles.
func (s *RaceService) CopyRace(ctx context.Context, raceID uuid.UUID) (*racedomain.Race, error) {
	return run(s, ctx, "CopyRace", raceID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.Race, error], error) {
		source, err := s.repo.GetRace(ctx, db, raceID)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[*racedomain.Race, error](ErrRaceNotFound), nil
			}
			return results.OperationResult[*racedomain.Race, error]{}, err
		}
		drivers, err := s.repo.GetRaceDrivers(ctx, db, raceID)
		if err != nil {
			return results.OperationResult[*racedomain.Race, error]{}, err
		}

		ids := make([]uuid.UUID, 0, len(drivers))
		for _, d := range drivers {
			ids = append(ids, d.ID)
		}
		return s.createRaceLogic(ctx, db, racedomain.GenerateCopyName(source.Title), ids)
	})
}

// DeleteRace removes a race with its circles and registrations.
func (s *RaceService) DeleteRace(ctx context.Context, raceID uuid.UUID) error {
	_, err := run(s, ctx, "DeleteRace", raceID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteRace(ctx, db, raceID); err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[bool, error](ErrRaceNotFound), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}

// ListRaces returns races newest first.
func (s *RaceService) ListRaces(ctx context.Context, filter RaceFilter) ([]racedomain.Race, error) {
	return run(s, ctx, "ListRaces", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]racedomain.Race, error], error) {
		races, err := s.repo.ListRaces(ctx, db, racedb.RaceFilter{
			Since:        filter.Since,
			FinishedOnly: filter.FinishedOnly,
		})
		if err != nil {
			return results.OperationResult[[]racedomain.Race, error]{}, err
		}
		return results.SuccessResult[[]racedomain.Race, error](toDomainRaces(races)), nil
	})
}

// GetRaceDetail loads the race, its roster and its circle log.
func (s *RaceService) GetRaceDetail(ctx context.Context, raceID uuid.UUID) (*racedomain.RaceDetail, error) {
	return run(s, ctx, "GetRaceDetail", raceID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.RaceDetail, error], error) {
		detail, err := s.loadDetail(ctx, db, raceID)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[*racedomain.RaceDetail, error](ErrRaceNotFound), nil
			}
			return results.OperationResult[*racedomain.RaceDetail, error]{}, err
		}
		return results.SuccessResult[*racedomain.RaceDetail, error](detail), nil
	})
}

func (s *RaceService) loadDetail(ctx context.Context, db bun.IDB, raceID uuid.UUID) (*racedomain.RaceDetail, error) {
	race, err := s.repo.GetRace(ctx, db, raceID)
	if err != nil {
		return nil, err
	}
	drivers, err := s.repo.GetRaceDrivers(ctx, db, raceID)
	if err != nil {
		return nil, err
	}
	circles, err := s.repo.GetCircles(ctx, db, raceID)
	if err != nil {
		return nil, err
	}
	return &racedomain.RaceDetail{
		Race:    toDomainRace(*race),
		Drivers: toDomainDrivers(drivers),
		Circles: toDomainCircles(circles),
	}, nil
}

func toDomainRaces(in []racedb.Race) []racedomain.Race {
	out := make([]racedomain.Race, 0, len(in))
	for _, r := range in {
		out = append(out, toDomainRace(r))
	}
	return out
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
