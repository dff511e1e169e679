package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateRace inserts the race and registers drivers in the given order.
func (r *Impl) CreateRace(ctx context.Context, db bun.IDB, race *Race, driverIDs []uuid.UUID) error {
	db = r.resolveDB(db)
	if race.ID == uuid.Nil {
		race.ID = uuid.New()
	}

	return runInTx(ctx, db, func(ctx context.Context, tx bun.IDB) error {
		if _, err := tx.NewInsert().Model(race).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create race: %w", err)
		}
		if len(driverIDs) == 0 {
			return nil
		}

		links := make([]RaceDriver, 0, len(driverIDs))
		for i, id := range driverIDs {
			links = append(links, RaceDriver{RaceID: race.ID, DriverID: id, Position: i})
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("failed to register race drivers: %w", err)
		}
		return nil
	})
}

// GetRace retrieves race metadata.
func (r *Impl) GetRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) (*Race, error) {
	db = r.resolveDB(db)
	race := new(Race)
	err := db.NewSelect().
		Model(race).
		Where("id = ?", raceID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get race: %w", err)
	}
	return race, nil
}

// ListRaces returns races newest first.
func (r *Impl) ListRaces(ctx context.Context, db bun.IDB, filter RaceFilter) ([]Race, error) {
	db = r.resolveDB(db)
	var races []Race
	q := db.NewSelect().Model(&races)
	if filter.Since != nil {
		q = q.Where("created_at >= ?", *filter.Since)
	}
	if filter.FinishedOnly {
		q = q.Where("finished = TRUE")
	}
	if len(filter.ExcludeIDs) > 0 {
		q = q.Where("id NOT IN (?)", bun.In(filter.ExcludeIDs))
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	return races, nil
}

// DeleteRace removes a race together with its circles and registrations.
func (r *Impl) DeleteRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Race)(nil)).
		Where("id = ?", raceID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete race: %w", err)
	}
	return checkAffected(result, ErrNotFound)
}

// GetRaceDrivers returns the race roster in registration order.
func (r *Impl) GetRaceDrivers(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]Driver, error) {
	db = r.resolveDB(db)
	var drivers []Driver
	err := db.NewSelect().
		Model(&drivers).
		Join("JOIN race_drivers AS rd ON rd.driver_id = d.id").
		Where("rd.race_id = ?", raceID).
		OrderExpr("rd.position ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get race drivers: %w", err)
	}
	return drivers, nil
}

// FinishRace stores the final duration and finish order. It only touches
// races that are still open and reports ErrNoRowsAffected otherwise.
func (r *Impl) FinishRace(ctx context.Context, db bun.IDB, race *Race) error {
	db = r.resolveDB(db)
	race.Finished = true
	result, err := db.NewUpdate().
		Model(race).
		Column("duration_seconds", "finished", "finish_order").
		WherePK().
		Where("finished = FALSE").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finish race: %w", err)
	}
	return checkAffected(result, ErrNoRowsAffected)
}
