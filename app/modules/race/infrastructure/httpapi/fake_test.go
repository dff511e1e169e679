package racehttp

import (
	"context"
	"sync"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

// FakeService implements raceservice.Service for handler testing.
type FakeService struct {
	mu    sync.Mutex
	trace []string

	CreateDriverFunc      func(ctx context.Context, input raceservice.DriverInput) (*racedomain.Driver, error)
	UpdateDriverFunc      func(ctx context.Context, driverID uuid.UUID, input raceservice.DriverInput) (*racedomain.Driver, error)
	DeleteDriverFunc      func(ctx context.Context, driverID uuid.UUID) error
	ListDriversFunc       func(ctx context.Context) ([]racedomain.Driver, error)
	SearchDriversFunc     func(ctx context.Context, query string) ([]racedomain.Driver, error)
	CreateRaceFunc        func(ctx context.Context, title string, driverIDs []uuid.UUID) (*racedomain.Race, error)
	CopyRaceFunc          func(ctx context.Context, raceID uuid.UUID) (*racedomain.Race, error)
	DeleteRaceFunc        func(ctx context.Context, raceID uuid.UUID) error
	ListRacesFunc         func(ctx context.Context, filter raceservice.RaceFilter) ([]racedomain.Race, error)
	GetRaceDetailFunc     func(ctx context.Context, raceID uuid.UUID) (*racedomain.RaceDetail, error)
	FinishRaceFunc        func(ctx context.Context, input raceservice.FinishRaceInput) (*racedomain.RaceDetail, error)
	GetRankingFunc        func(ctx context.Context, raceID uuid.UUID) ([]racedomain.Placement, error)
	MergeRacesFunc        func(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error)
	AvailableForMergeFunc func(ctx context.Context, exceptIDs []uuid.UUID) ([]racedomain.Race, error)
	GetReportDataFunc     func(ctx context.Context, raceIDs []uuid.UUID) (*raceservice.ReportData, error)
	GetSettingsFunc       func(ctx context.Context) (*raceservice.Settings, error)
	UpdateSettingsFunc    func(ctx context.Context, settings raceservice.Settings) (*raceservice.Settings, error)
	RequestExportFunc     func(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}

func (f *FakeService) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeService) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

func (f *FakeService) CreateDriver(ctx context.Context, input raceservice.DriverInput) (*racedomain.Driver, error) {
	f.record("CreateDriver")
	if f.CreateDriverFunc != nil {
		return f.CreateDriverFunc(ctx, input)
	}
	return &racedomain.Driver{ID: uuid.New(), Number: input.Number, Name: input.Name}, nil
}

func (f *FakeService) UpdateDriver(ctx context.Context, driverID uuid.UUID, input raceservice.DriverInput) (*racedomain.Driver, error) {
	f.record("UpdateDriver")
	if f.UpdateDriverFunc != nil {
		return f.UpdateDriverFunc(ctx, driverID, input)
	}
	return &racedomain.Driver{ID: driverID, Number: input.Number, Name: input.Name}, nil
}

func (f *FakeService) DeleteDriver(ctx context.Context, driverID uuid.UUID) error {
	f.record("DeleteDriver")
	if f.DeleteDriverFunc != nil {
		return f.DeleteDriverFunc(ctx, driverID)
	}
	return nil
}

func (f *FakeService) ListDrivers(ctx context.Context) ([]racedomain.Driver, error) {
	f.record("ListDrivers")
	if f.ListDriversFunc != nil {
		return f.ListDriversFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error) {
	f.record("SearchDrivers")
	if f.SearchDriversFunc != nil {
		return f.SearchDriversFunc(ctx, query)
	}
	return nil, nil
}

func (f *FakeService) CreateRace(ctx context.Context, title string, driverIDs []uuid.UUID) (*racedomain.Race, error) {
	f.record("CreateRace")
	if f.CreateRaceFunc != nil {
		return f.CreateRaceFunc(ctx, title, driverIDs)
	}
	return &racedomain.Race{ID: uuid.New(), Title: title}, nil
}

func (f *FakeService) CopyRace(ctx context.Context, raceID uuid.UUID) (*racedomain.Race, error) {
	f.record("CopyRace")
	if f.CopyRaceFunc != nil {
		return f.CopyRaceFunc(ctx, raceID)
	}
	return &racedomain.Race{ID: uuid.New()}, nil
}

func (f *FakeService) DeleteRace(ctx context.Context, raceID uuid.UUID) error {
	f.record("DeleteRace")
	if f.DeleteRaceFunc != nil {
		return f.DeleteRaceFunc(ctx, raceID)
	}
	return nil
}

func (f *FakeService) ListRaces(ctx context.Context, filter raceservice.RaceFilter) ([]racedomain.Race, error) {
	f.record("ListRaces")
	if f.ListRacesFunc != nil {
		return f.ListRacesFunc(ctx, filter)
	}
	return nil, nil
}

func (f *FakeService) GetRaceDetail(ctx context.Context, raceID uuid.UUID) (*racedomain.RaceDetail, error) {
	f.record("GetRaceDetail")
	if f.GetRaceDetailFunc != nil {
		return f.GetRaceDetailFunc(ctx, raceID)
	}
	return &racedomain.RaceDetail{Race: racedomain.Race{ID: raceID}}, nil
}

func (f *FakeService) FinishRace(ctx context.Context, input raceservice.FinishRaceInput) (*racedomain.RaceDetail, error) {
	f.record("FinishRace")
	if f.FinishRaceFunc != nil {
		return f.FinishRaceFunc(ctx, input)
	}
	return &racedomain.RaceDetail{
		Race:    racedomain.Race{ID: input.RaceID, Finished: true, DurationSeconds: input.DurationSeconds, FinishOrder: input.FinishOrder},
		Circles: input.Circles,
	}, nil
}

func (f *FakeService) GetRanking(ctx context.Context, raceID uuid.UUID) ([]racedomain.Placement, error) {
	f.record("GetRanking")
	if f.GetRankingFunc != nil {
		return f.GetRankingFunc(ctx, raceID)
	}
	return nil, nil
}

func (f *FakeService) MergeRaces(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error) {
	f.record("MergeRaces")
	if f.MergeRacesFunc != nil {
		return f.MergeRacesFunc(ctx, raceIDs)
	}
	return &racedomain.MergedResult{}, nil
}

func (f *FakeService) AvailableForMerge(ctx context.Context, exceptIDs []uuid.UUID) ([]racedomain.Race, error) {
	f.record("AvailableForMerge")
	if f.AvailableForMergeFunc != nil {
		return f.AvailableForMergeFunc(ctx, exceptIDs)
	}
	return nil, nil
}

func (f *FakeService) GetReportData(ctx context.Context, raceIDs []uuid.UUID) (*raceservice.ReportData, error) {
	f.record("GetReportData")
	if f.GetReportDataFunc != nil {
		return f.GetReportDataFunc(ctx, raceIDs)
	}
	return &raceservice.ReportData{}, nil
}

func (f *FakeService) GetSettings(ctx context.Context) (*raceservice.Settings, error) {
	f.record("GetSettings")
	if f.GetSettingsFunc != nil {
		return f.GetSettingsFunc(ctx)
	}
	return &raceservice.Settings{}, nil
}

func (f *FakeService) UpdateSettings(ctx context.Context, settings raceservice.Settings) (*raceservice.Settings, error) {
	f.record("UpdateSettings")
	if f.UpdateSettingsFunc != nil {
		return f.UpdateSettingsFunc(ctx, settings)
	}
	return &settings, nil
}

func (f *FakeService) RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error) {
	f.record("RequestExport")
	if f.RequestExportFunc != nil {
		return f.RequestExportFunc(ctx, raceIDs)
	}
	return 1, nil
}

// FakeSessions keeps real sessions keyed by race.
type FakeSessions struct {
	mu       sync.Mutex
	ctx      context.Context
	roster   []racedomain.Driver
	sessions map[uuid.UUID]*raceservice.Session
}

func NewFakeSessions(ctx context.Context, roster ...racedomain.Driver) *FakeSessions {
	return &FakeSessions{ctx: ctx, roster: roster, sessions: map[uuid.UUID]*raceservice.Session{}}
}

func (f *FakeSessions) Start(_ context.Context, raceID uuid.UUID) (*raceservice.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[raceID]; ok {
		return s, nil
	}
	s := raceservice.NewSession("sess-"+raceID.String()[:8], raceservice.SessionSnapshot{
		State: racedomain.LiveRace{
			Race:    racedomain.Race{ID: raceID, Title: "Live"},
			Drivers: f.roster,
		},
	}, &FakeService{}, nil, nil, nil)
	go s.Run(f.ctx)
	f.sessions[raceID] = s
	return s, nil
}

func (f *FakeSessions) Get(raceID uuid.UUID) (*raceservice.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[raceID]
	return s, ok
}

var (
	_ raceservice.Service = (*FakeService)(nil)
	_ Sessions            = (*FakeSessions)(nil)
)
