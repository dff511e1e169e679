package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// GetSettings returns the stored preferences or ErrNotFound before the first save.
func (r *Impl) GetSettings(ctx context.Context, db bun.IDB) (*Settings, error) {
	db = r.resolveDB(db)
	settings := new(Settings)
	err := db.NewSelect().
		Model(settings).
		Where("id = ?", SettingsRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpsertSettings saves the preference row.
func (r *Impl) UpsertSettings(ctx context.Context, db bun.IDB, settings *Settings) error {
	db = r.resolveDB(db)
	settings.ID = SettingsRowID
	settings.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(settings).
		On("CONFLICT (id) DO UPDATE").
		Set("vibration = EXCLUDED.vibration").
		Set("sound = EXCLUDED.sound").
		Set("email = EXCLUDED.email").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}
	return nil
}
