package raceservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func validateDriver(input DriverInput) error {
	if input.Number <= 0 {
		return fmt.Errorf("%w: number must be positive", ErrInvalidDriver)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDriver)
	}
	return nil
}

// CreateDriver adds a driver to the roster.
func (s *RaceService) CreateDriver(ctx context.Context, input DriverInput) (*racedomain.Driver, error) {
	return run(s, ctx, "CreateDriver", input.Name, func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.Driver, error], error) {
		if err := validateDriver(input); err != nil {
			return results.FailureResult[*racedomain.Driver, error](err), nil
		}

		driver := fromDriverInput(input)
		driver.ID = uuid.New()
		if err := s.repo.CreateDriver(ctx, db, &driver); err != nil {
			return results.OperationResult[*racedomain.Driver, error]{}, err
		}

		out := toDomainDriver(driver)
		return results.SuccessResult[*racedomain.Driver, error](&out), nil
	})
}

// UpdateDriver overwrites a driver's attributes.
func (s *RaceService) UpdateDriver(ctx context.Context, driverID uuid.UUID, input DriverInput) (*racedomain.Driver, error) {
	return run(s, ctx, "UpdateDriver", driverID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*racedomain.Driver, error], error) {
		if err := validateDriver(input); err != nil {
			return results.FailureResult[*racedomain.Driver, error](err), nil
		}

		driver := fromDriverInput(input)
		driver.ID = driverID
		if err := s.repo.UpdateDriver(ctx, db, &driver); err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[*racedomain.Driver, error](ErrDriverNotFound), nil
			}
			return results.OperationResult[*racedomain.Driver, error]{}, err
		}

		out := toDomainDriver(driver)
		return results.SuccessResult[*racedomain.Driver, error](&out), nil
	})
}

// DeleteDriver removes a driver and its race registrations.
func (s *RaceService) DeleteDriver(ctx context.Context, driverID uuid.UUID) error {
	_, err := run(s, ctx, "DeleteDriver", driverID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
		if err := s.repo.DeleteDriver(ctx, db, driverID); err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				return results.FailureResult[bool, error](ErrDriverNotFound), nil
			}
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	return err
}

// ListDrivers returns the roster ordered by driver number.
func (s *RaceService) ListDrivers(ctx context.Context) ([]racedomain.Driver, error) {
	return run(s, ctx, "ListDrivers", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]racedomain.Driver, error], error) {
		drivers, err := s.repo.ListDrivers(ctx, db)
		if err != nil {
			return results.OperationResult[[]racedomain.Driver, error]{}, err
		}
		return results.SuccessResult[[]racedomain.Driver, error](toDomainDrivers(drivers)), nil
	})
}

// SearchDrivers filters the roster by name or last name.
func (s *RaceService) SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error) {
	return run(s, ctx, "SearchDrivers", query, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]racedomain.Driver, error], error) {
		drivers, err := s.repo.SearchDrivers(ctx, db, query)
		if err != nil {
			return results.OperationResult[[]racedomain.Driver, error]{}, err
		}
		return results.SuccessResult[[]racedomain.Driver, error](toDomainDrivers(drivers)), nil
	})
}
