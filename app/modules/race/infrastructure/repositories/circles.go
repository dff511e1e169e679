package racedb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GetCircles returns the circle log in creation order with entries loaded.
func (r *Impl) GetCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]Circle, error) {
	db = r.resolveDB(db)
	var circles []Circle
	err := db.NewSelect().
		Model(&circles).
		Relation("Entries", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("ce.position ASC")
		}).
		Where("c.race_id = ?", raceID).
		Order("c.seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get circles: %w", err)
	}
	return circles, nil
}

// ReplaceCircles swaps the stored circle log of a race for the given one.
func (r *Impl) ReplaceCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID, circles []Circle) error {
	db = r.resolveDB(db)

	return runInTx(ctx, db, func(ctx context.Context, tx bun.IDB) error {
		if _, err := tx.NewDelete().
			Model((*Circle)(nil)).
			Where("race_id = ?", raceID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear circles: %w", err)
		}
		if len(circles) == 0 {
			return nil
		}

		var entries []*CircleEntry
		for i := range circles {
			circles[i].RaceID = raceID
			for pos, e := range circles[i].Entries {
				e.CircleID = circles[i].ID
				e.Position = pos
				entries = append(entries, e)
			}
		}

		if _, err := tx.NewInsert().Model(&circles).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert circles: %w", err)
		}
		if len(entries) > 0 {
			if _, err := tx.NewInsert().Model(&entries).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert circle entries: %w", err)
			}
		}
		return nil
	})
}
