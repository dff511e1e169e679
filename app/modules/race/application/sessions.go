package raceservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racemetrics "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// DetailLoader reads a stored race.
type DetailLoader interface {
	GetRaceDetail(ctx context.Context, raceID uuid.UUID) (*racedomain.RaceDetail, error)
}

// SessionManager keeps at most one live session per race.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	wg       sync.WaitGroup

	// runCtx bounds the lifetime of every session goroutine.
	runCtx   context.Context
	loader   DetailLoader
	finisher RaceFinisher
	journal  SessionJournal
	logger   *slog.Logger
	metrics  racemetrics.RaceMetrics
}

// NewSessionManager creates a manager whose sessions stop when runCtx is done.
func NewSessionManager(
	runCtx context.Context,
	loader DetailLoader,
	finisher RaceFinisher,
	journal SessionJournal,
	logger *slog.Logger,
	metrics racemetrics.RaceMetrics,
) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: map[uuid.UUID]*Session{},
		runCtx:   runCtx,
		loader:   loader,
		finisher: finisher,
		journal:  journal,
		logger:   logger,
		metrics:  metrics,
	}
}

// Start opens a live session for an unfinished race, or returns the running one.
func (m *SessionManager) Start(ctx context.Context, raceID uuid.UUID) (*Session, error) {
	if s, ok := m.Get(raceID); ok {
		return s, nil
	}

	detail, err := m.loader.GetRaceDetail(ctx, raceID)
	if err != nil {
		return nil, err
	}
	if detail.Race.Finished {
		return nil, racedomain.ErrRaceFinished
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[raceID]; ok {
		return s, nil
	}

	snap := SessionSnapshot{
		State: racedomain.LiveRace{
			Race:    detail.Race,
			Drivers: detail.Drivers,
			Circles: detail.Circles,
			Elapsed: detail.Race.DurationSeconds,
		},
	}
	s := NewSession(ksuid.New().String(), snap, m.finisher, m.journal, m.logger, m.metrics)
	if m.journal != nil {
		if err := m.journal.Save(s.Snapshot()); err != nil {
			return nil, fmt.Errorf("failed to journal new session: %w", err)
		}
	}
	m.launchLocked(s)
	return s, nil
}

// Get returns the running session for a race.
func (m *SessionManager) Get(raceID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[raceID]
	return s, ok
}

// Restore relaunches sessions found in the journal. It returns how many were resumed.
func (m *SessionManager) Restore(ctx context.Context) (int, error) {
	if m.journal == nil {
		return 0, nil
	}
	snapshots, err := m.journal.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list journaled sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	restored := 0
	for _, snap := range snapshots {
		raceID := snap.State.Race.ID
		if snap.Closed || snap.State.Race.Finished {
			if err := m.journal.Delete(snap.SessionID); err != nil {
				m.logger.WarnContext(ctx, "Failed to remove finished session from journal",
					attr.String("session_id", snap.SessionID),
					attr.Error(err),
				)
			}
			continue
		}
		if _, running := m.sessions[raceID]; running {
			continue
		}
		m.launchLocked(NewSession(snap.SessionID, snap, m.finisher, m.journal, m.logger, m.metrics))
		restored++
		m.logger.InfoContext(ctx, "Restored race session",
			attr.String("session_id", snap.SessionID),
			attr.String("race_id", raceID.String()),
		)
	}
	return restored, nil
}

func (m *SessionManager) launchLocked(s *Session) {
	raceID := s.RaceID()
	m.sessions[raceID] = s
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		s.Run(m.runCtx)

		m.mu.Lock()
		if m.sessions[raceID] == s {
			delete(m.sessions, raceID)
		}
		m.mu.Unlock()
	}()
}

// Wait blocks until every session goroutine has returned.
func (m *SessionManager) Wait() {
	m.wg.Wait()
}
