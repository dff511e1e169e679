package racedb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateDriver inserts a roster member.
func (r *Impl) CreateDriver(ctx context.Context, db bun.IDB, driver *Driver) error {
	db = r.resolveDB(db)
	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(driver).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

// UpdateDriver overwrites the driver's display attributes.
func (r *Impl) UpdateDriver(ctx context.Context, db bun.IDB, driver *Driver) error {
	db = r.resolveDB(db)
	driver.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(driver).
		Column("number", "name", "last_name", "city", "boat_model", "rank", "team", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update driver: %w", err)
	}
	if err := checkAffected(result, ErrNotFound); err != nil {
		return err
	}
	return nil
}

// DeleteDriver removes a driver. Race registrations cascade.
func (r *Impl) DeleteDriver(ctx context.Context, db bun.IDB, driverID uuid.UUID) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Driver)(nil)).
		Where("id = ?", driverID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}
	return checkAffected(result, ErrNotFound)
}

// GetDriversByIDs loads the given drivers ordered by number.
func (r *Impl) GetDriversByIDs(ctx context.Context, db bun.IDB, driverIDs []uuid.UUID) ([]Driver, error) {
	db = r.resolveDB(db)
	var drivers []Driver
	if len(driverIDs) == 0 {
		return drivers, nil
	}
	err := db.NewSelect().
		Model(&drivers).
		Where("id IN (?)", bun.In(driverIDs)).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get drivers: %w", err)
	}
	return drivers, nil
}

// ListDrivers returns the whole roster ordered by number.
func (r *Impl) ListDrivers(ctx context.Context, db bun.IDB) ([]Driver, error) {
	db = r.resolveDB(db)
	var drivers []Driver
	if err := db.NewSelect().Model(&drivers).Order("number ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// SearchDrivers matches the query against name and last name, case-insensitively.
func (r *Impl) SearchDrivers(ctx context.Context, db bun.IDB, query string) ([]Driver, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.ListDrivers(ctx, db)
	}
	db = r.resolveDB(db)

	pattern := "%" + escapeLike(query) + "%"
	var drivers []Driver
	err := db.NewSelect().
		Model(&drivers).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", pattern).WhereOr("last_name ILIKE ?", pattern)
		}).
		Order("number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search drivers: %w", err)
	}
	return drivers, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
