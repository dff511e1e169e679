package racehandlers

import (
	"context"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

// FakeExportRequester implements ExportRequester for handler testing.
type FakeExportRequester struct {
	trace []string

	RequestExportFunc func(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}

func (f *FakeExportRequester) RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error) {
	f.trace = append(f.trace, "RequestExport")
	if f.RequestExportFunc != nil {
		return f.RequestExportFunc(ctx, raceIDs)
	}
	return 1, nil
}

func (f *FakeExportRequester) Trace() []string {
	return f.trace
}

// FakeSessions implements Sessions over a fixed set of sessions.
type FakeSessions map[uuid.UUID]*raceservice.Session

func (f FakeSessions) Get(raceID uuid.UUID) (*raceservice.Session, bool) {
	s, ok := f[raceID]
	return s, ok
}

// FakeFinisher implements raceservice.RaceFinisher.
type FakeFinisher struct{}

func (FakeFinisher) FinishRace(_ context.Context, input raceservice.FinishRaceInput) (*racedomain.RaceDetail, error) {
	return &racedomain.RaceDetail{
		Race:    racedomain.Race{ID: input.RaceID, Finished: true, DurationSeconds: input.DurationSeconds},
		Circles: input.Circles,
	}, nil
}

var (
	_ ExportRequester          = (*FakeExportRequester)(nil)
	_ Sessions                 = FakeSessions(nil)
	_ raceservice.RaceFinisher = FakeFinisher{}
)
