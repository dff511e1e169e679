package racemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating race tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS drivers (
					id UUID PRIMARY KEY,
					number BIGINT NOT NULL,
					name TEXT NOT NULL,
					last_name TEXT NOT NULL DEFAULT '',
					city TEXT NOT NULL DEFAULT '',
					boat_model TEXT NOT NULL DEFAULT '',
					rank TEXT NOT NULL DEFAULT '',
					team TEXT NOT NULL DEFAULT '',
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_drivers_number ON drivers(number);
			`); err != nil {
				return fmt.Errorf("failed to create drivers table: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS races (
					id UUID PRIMARY KEY,
					title TEXT NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					duration_seconds BIGINT NOT NULL DEFAULT 0,
					finished BOOLEAN NOT NULL DEFAULT FALSE,
					finish_order BIGINT[]
				);
				CREATE INDEX IF NOT EXISTS idx_races_created_at ON races(created_at DESC);

				CREATE TABLE IF NOT EXISTS race_drivers (
					race_id UUID NOT NULL REFERENCES races(id) ON DELETE CASCADE,
					driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE CASCADE,
					position INT NOT NULL,
					PRIMARY KEY (race_id, driver_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create race tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS circles (
					id UUID PRIMARY KEY,
					race_id UUID NOT NULL REFERENCES races(id) ON DELETE CASCADE,
					seq INT NOT NULL,
					penalty_for TEXT[],
					finish_penalty_drivers TEXT[]
				);
				CREATE INDEX IF NOT EXISTS idx_circles_race_seq ON circles(race_id, seq);

				CREATE TABLE IF NOT EXISTS circle_entries (
					circle_id UUID NOT NULL REFERENCES circles(id) ON DELETE CASCADE,
					driver_id UUID NOT NULL,
					position INT NOT NULL,
					duration BIGINT NOT NULL,
					use_duration BOOLEAN NOT NULL,
					invalidated_by UUID,
					PRIMARY KEY (circle_id, driver_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create circle tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS settings (
					id INT PRIMARY KEY,
					vibration BOOLEAN NOT NULL DEFAULT TRUE,
					sound BOOLEAN NOT NULL DEFAULT TRUE,
					email TEXT NOT NULL DEFAULT '',
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
			`); err != nil {
				return fmt.Errorf("failed to create settings table: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping race tables...")

		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS circle_entries;
			DROP TABLE IF EXISTS circles;
			DROP TABLE IF EXISTS race_drivers;
			DROP TABLE IF EXISTS races;
			DROP TABLE IF EXISTS drivers;
			DROP TABLE IF EXISTS settings;
		`)
		return err
	})
}
