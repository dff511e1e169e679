package raceservice

import (
	"context"
	"errors"

	"github.com/Black-And-White-Club/frolf-bot-shared/utils/results"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// DefaultSettings is returned until preferences are saved for the first time.
var DefaultSettings = Settings{Vibration: true, Sound: true}

// GetSettings returns the stored preferences.
func (s *RaceService) GetSettings(ctx context.Context) (*Settings, error) {
	return run(s, ctx, "GetSettings", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[*Settings, error], error) {
		stored, err := s.repo.GetSettings(ctx, db)
		if err != nil {
			if errors.Is(err, racedb.ErrNotFound) {
				defaults := DefaultSettings
				return results.SuccessResult[*Settings, error](&defaults), nil
			}
			return results.OperationResult[*Settings, error]{}, err
		}
		return results.SuccessResult[*Settings, error](&Settings{
			Vibration: stored.Vibration,
			Sound:     stored.Sound,
			Email:     stored.Email,
		}), nil
	})
}

// UpdateSettings replaces the stored preferences.
func (s *RaceService) UpdateSettings(ctx context.Context, settings Settings) (*Settings, error) {
	return run(s, ctx, "UpdateSettings", "", func(ctx context.Context, db bun.IDB) (results.OperationResult[*Settings, error], error) {
		if err := s.repo.UpsertSettings(ctx, db, &racedb.Settings{
			Vibration: settings.Vibration,
			Sound:     settings.Sound,
			Email:     settings.Email,
		}); err != nil {
			return results.OperationResult[*Settings, error]{}, err
		}
		out := settings
		return results.SuccessResult[*Settings, error](&out), nil
	})
}
