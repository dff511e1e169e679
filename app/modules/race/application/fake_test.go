package raceservice

import (
	"context"
	"sync"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Race Repo
// ------------------------

type FakeRaceRepo struct {
	trace []string

	CreateDriverFunc    func(ctx context.Context, db bun.IDB, driver *racedb.Driver) error
	UpdateDriverFunc    func(ctx context.Context, db bun.IDB, driver *racedb.Driver) error
	DeleteDriverFunc    func(ctx context.Context, db bun.IDB, driverID uuid.UUID) error
	GetDriversByIDsFunc func(ctx context.Context, db bun.IDB, driverIDs []uuid.UUID) ([]racedb.Driver, error)
	ListDriversFunc     func(ctx context.Context, db bun.IDB) ([]racedb.Driver, error)
	SearchDriversFunc   func(ctx context.Context, db bun.IDB, query string) ([]racedb.Driver, error)
	CreateRaceFunc      func(ctx context.Context, db bun.IDB, race *racedb.Race, driverIDs []uuid.UUID) error
	GetRaceFunc         func(ctx context.Context, db bun.IDB, raceID uuid.UUID) (*racedb.Race, error)
	ListRacesFunc       func(ctx context.Context, db bun.IDB, filter racedb.RaceFilter) ([]racedb.Race, error)
	DeleteRaceFunc      func(ctx context.Context, db bun.IDB, raceID uuid.UUID) error
	GetRaceDriversFunc  func(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]racedb.Driver, error)
	FinishRaceFunc      func(ctx context.Context, db bun.IDB, race *racedb.Race) error
	GetCirclesFunc      func(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]racedb.Circle, error)
	ReplaceCirclesFunc  func(ctx context.Context, db bun.IDB, raceID uuid.UUID, circles []racedb.Circle) error
	GetSettingsFunc     func(ctx context.Context, db bun.IDB) (*racedb.Settings, error)
	UpsertSettingsFunc  func(ctx context.Context, db bun.IDB, settings *racedb.Settings) error
}

func NewFakeRaceRepo() *FakeRaceRepo {
	return &FakeRaceRepo{
		trace: []string{},
	}
}

func (f *FakeRaceRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRaceRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeRaceRepo) CreateDriver(ctx context.Context, db bun.IDB, driver *racedb.Driver) error {
	f.record("CreateDriver")
	if f.CreateDriverFunc != nil {
		return f.CreateDriverFunc(ctx, db, driver)
	}
	return nil
}

func (f *FakeRaceRepo) UpdateDriver(ctx context.Context, db bun.IDB, driver *racedb.Driver) error {
	f.record("UpdateDriver")
	if f.UpdateDriverFunc != nil {
		return f.UpdateDriverFunc(ctx, db, driver)
	}
	return nil
}

func (f *FakeRaceRepo) DeleteDriver(ctx context.Context, db bun.IDB, driverID uuid.UUID) error {
	f.record("DeleteDriver")
	if f.DeleteDriverFunc != nil {
		return f.DeleteDriverFunc(ctx, db, driverID)
	}
	return nil
}

func (f *FakeRaceRepo) GetDriversByIDs(ctx context.Context, db bun.IDB, driverIDs []uuid.UUID) ([]racedb.Driver, error) {
	f.record("GetDriversByIDs")
	if f.GetDriversByIDsFunc != nil {
		return f.GetDriversByIDsFunc(ctx, db, driverIDs)
	}
	return nil, nil
}

func (f *FakeRaceRepo) ListDrivers(ctx context.Context, db bun.IDB) ([]racedb.Driver, error) {
	f.record("ListDrivers")
	if f.ListDriversFunc != nil {
		return f.ListDriversFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeRaceRepo) SearchDrivers(ctx context.Context, db bun.IDB, query string) ([]racedb.Driver, error) {
	f.record("SearchDrivers")
	if f.SearchDriversFunc != nil {
		return f.SearchDriversFunc(ctx, db, query)
	}
	return nil, nil
}

func (f *FakeRaceRepo) CreateRace(ctx context.Context, db bun.IDB, race *racedb.Race, driverIDs []uuid.UUID) error {
	f.record("CreateRace")
	if f.CreateRaceFunc != nil {
		return f.CreateRaceFunc(ctx, db, race, driverIDs)
	}
	return nil
}

func (f *FakeRaceRepo) GetRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) (*racedb.Race, error) {
	f.record("GetRace")
	if f.GetRaceFunc != nil {
		return f.GetRaceFunc(ctx, db, raceID)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) ListRaces(ctx context.Context, db bun.IDB, filter racedb.RaceFilter) ([]racedb.Race, error) {
	f.record("ListRaces")
	if f.ListRacesFunc != nil {
		return f.ListRacesFunc(ctx, db, filter)
	}
	return nil, nil
}

func (f *FakeRaceRepo) DeleteRace(ctx context.Context, db bun.IDB, raceID uuid.UUID) error {
	f.record("DeleteRace")
	if f.DeleteRaceFunc != nil {
		return f.DeleteRaceFunc(ctx, db, raceID)
	}
	return nil
}

func (f *FakeRaceRepo) GetRaceDrivers(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]racedb.Driver, error) {
	f.record("GetRaceDrivers")
	if f.GetRaceDriversFunc != nil {
		return f.GetRaceDriversFunc(ctx, db, raceID)
	}
	return nil, nil
}

func (f *FakeRaceRepo) FinishRace(ctx context.Context, db bun.IDB, race *racedb.Race) error {
	f.record("FinishRace")
	if f.FinishRaceFunc != nil {
		return f.FinishRaceFunc(ctx, db, race)
	}
	race.Finished = true
	return nil
}

func (f *FakeRaceRepo) GetCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID) ([]racedb.Circle, error) {
	f.record("GetCircles")
	if f.GetCirclesFunc != nil {
		return f.GetCirclesFunc(ctx, db, raceID)
	}
	return nil, nil
}

func (f *FakeRaceRepo) ReplaceCircles(ctx context.Context, db bun.IDB, raceID uuid.UUID, circles []racedb.Circle) error {
	f.record("ReplaceCircles")
	if f.ReplaceCirclesFunc != nil {
		return f.ReplaceCirclesFunc(ctx, db, raceID, circles)
	}
	return nil
}

func (f *FakeRaceRepo) GetSettings(ctx context.Context, db bun.IDB) (*racedb.Settings, error) {
	f.record("GetSettings")
	if f.GetSettingsFunc != nil {
		return f.GetSettingsFunc(ctx, db)
	}
	return nil, racedb.ErrNotFound
}

func (f *FakeRaceRepo) UpsertSettings(ctx context.Context, db bun.IDB, settings *racedb.Settings) error {
	f.record("UpsertSettings")
	if f.UpsertSettingsFunc != nil {
		return f.UpsertSettingsFunc(ctx, db, settings)
	}
	return nil
}

var _ racedb.Repository = (*FakeRaceRepo)(nil)

// ------------------------
// Fake Collaborators
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (f *FakePublisher) Publish(_ context.Context, topic string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Topic: topic, Payload: payload})
	return f.Err
}

func (f *FakePublisher) Events() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

type FakeQueue struct {
	EnqueueExportFunc func(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
}

func (f *FakeQueue) EnqueueExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error) {
	if f.EnqueueExportFunc != nil {
		return f.EnqueueExportFunc(ctx, raceIDs)
	}
	return 1, nil
}

type FakeJournal struct {
	mu        sync.Mutex
	snapshots map[string]SessionSnapshot
	deleted   []string

	DeleteErr error
}

func NewFakeJournal() *FakeJournal {
	return &FakeJournal{snapshots: map[string]SessionSnapshot{}}
}

func (f *FakeJournal) Save(snapshot SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[snapshot.SessionID] = snapshot
	return nil
}

func (f *FakeJournal) Delete(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, sessionID)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.snapshots, sessionID)
	return nil
}

func (f *FakeJournal) List() ([]SessionSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SessionSnapshot, 0, len(f.snapshots))
	for _, s := range f.snapshots {
		out = append(out, s)
	}
	return out, nil
}

func (f *FakeJournal) Get(sessionID string) (SessionSnapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.snapshots[sessionID]
	return s, ok
}

type FakeFinisher struct {
	FinishRaceFunc func(ctx context.Context, input FinishRaceInput) (*racedomain.RaceDetail, error)
}

func (f *FakeFinisher) FinishRace(ctx context.Context, input FinishRaceInput) (*racedomain.RaceDetail, error) {
	if f.FinishRaceFunc != nil {
		return f.FinishRaceFunc(ctx, input)
	}
	return nil, nil
}

type FakeDriverSearcher struct {
	SearchDriversFunc func(ctx context.Context, query string) ([]racedomain.Driver, error)
}

func (f *FakeDriverSearcher) SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error) {
	return f.SearchDriversFunc(ctx, query)
}

type FakeMerger struct {
	mu    sync.Mutex
	calls [][]uuid.UUID
}

func (f *FakeMerger) MergeRaces(_ context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, raceIDs)
	return &racedomain.MergedResult{}, nil
}
