package raceservice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racemetrics "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/metrics"
	"github.com/google/uuid"
)

// SessionSnapshot is an immutable view of a live race after a fully applied
// command. Consumers must not modify the contained slices.
type SessionSnapshot struct {
	SessionID string
	Version   uint64
	State     racedomain.LiveRace
	Closed    bool
}

// SessionJournal persists live snapshots so a session survives a restart.
type SessionJournal interface {
	Save(snapshot SessionSnapshot) error
	Delete(sessionID string) error
	List() ([]SessionSnapshot, error)
}

// RaceFinisher stores the final state of a race.
type RaceFinisher interface {
	FinishRace(ctx context.Context, input FinishRaceInput) (*racedomain.RaceDetail, error)
}

type transition func(racedomain.LiveRace) (racedomain.LiveRace, error)

type command struct {
	name   string
	apply  transition
	finish bool
	reply  chan commandReply
}

type commandReply struct {
	detail *racedomain.RaceDetail
	err    error
}

// Session owns the state of one race being recorded. All mutations are
// commands applied one at a time by the Run loop.
type Session struct {
	id       string
	commands chan command
	done     chan struct{}
	closed   sync.Once

	snapshot atomic.Pointer[SessionSnapshot]

	subsMu  sync.Mutex
	subs    map[int]chan SessionSnapshot
	nextSub int

	finisher RaceFinisher
	journal  SessionJournal
	logger   *slog.Logger
	metrics  racemetrics.RaceMetrics
}

// NewSession creates a session for the given live state. journal and metrics may be nil.
func NewSession(
	id string,
	initial SessionSnapshot,
	finisher RaceFinisher,
	journal SessionJournal,
	logger *slog.Logger,
	metrics racemetrics.RaceMetrics,
) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = racemetrics.NewNoop()
	}
	initial.SessionID = id
	s := &Session{
		id:       id,
		commands: make(chan command),
		done:     make(chan struct{}),
		subs:     map[int]chan SessionSnapshot{},
		finisher: finisher,
		journal:  journal,
		logger:   logger.With(attr.String("session_id", id), attr.String("race_id", initial.State.Race.ID.String())),
		metrics:  metrics,
	}
	s.snapshot.Store(&initial)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// RaceID returns the race being recorded.
func (s *Session) RaceID() uuid.UUID { return s.Snapshot().State.Race.ID }

// Done is closed when the session stops accepting commands.
func (s *Session) Done() <-chan struct{} { return s.done }

// Snapshot returns the latest published state.
func (s *Session) Snapshot() SessionSnapshot {
	return *s.snapshot.Load()
}

// Subscribe returns a channel that always holds the most recent snapshot not
// yet read. The channel is closed when the session ends.
func (s *Session) Subscribe() (<-chan SessionSnapshot, func()) {
	ch := make(chan SessionSnapshot, 1)

	// publish stores and fans out under subsMu, so no snapshot falls between
	// the first read and registration.
	s.subsMu.Lock()
	ch <- s.Snapshot()
	select {
	case <-s.done:
		s.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Run applies commands until ctx is cancelled or the race finishes.
func (s *Session) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "Race session started")
	defer s.close()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "Race session stopped", attr.Error(ctx.Err()))
			return
		case cmd := <-s.commands:
			if s.handle(ctx, cmd) {
				return
			}
		}
	}
}

// handle applies one command and reports whether the session is over.
func (s *Session) handle(ctx context.Context, cmd command) bool {
	current := s.Snapshot()
	next, err := cmd.apply(current.State)
	s.metrics.RecordSessionCommand(ctx, cmd.name, err)
	if err != nil {
		cmd.reply <- commandReply{err: err}
		return false
	}

	var detail *racedomain.RaceDetail
	if cmd.finish {
		detail, err = s.finisher.FinishRace(ctx, FinishRaceInput{
			RaceID:          current.State.Race.ID,
			DurationSeconds: current.State.Elapsed,
			Circles:         current.State.Circles,
			FinishOrder:     current.State.Race.FinishOrder,
		})
		if errors.Is(err, racedomain.ErrRaceFinished) {
			// Stored by another writer; this session can never finish it.
			s.logger.WarnContext(ctx, "Race already finished, closing session", attr.Error(err))
			s.forget(ctx)
			cmd.reply <- commandReply{err: err}
			return true
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "Failed to store finished race", attr.Error(err))
			cmd.reply <- commandReply{err: err}
			return false
		}
		next.Race = detail.Race
		next.Circles = detail.Circles
	}

	snap := SessionSnapshot{
		SessionID: s.id,
		Version:   current.Version + 1,
		State:     next,
		Closed:    cmd.finish,
	}
	s.publish(snap)

	if cmd.finish {
		s.forget(ctx)
	} else if s.journal != nil {
		if err := s.journal.Save(snap); err != nil {
			s.logger.WarnContext(ctx, "Failed to journal race session", attr.Error(err))
		}
	}

	cmd.reply <- commandReply{detail: detail}
	return cmd.finish
}

// forget drops the session from the journal so it is not resumed.
func (s *Session) forget(ctx context.Context) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Delete(s.id); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove race session from journal", attr.Error(err))
	}
}

func (s *Session) publish(snap SessionSnapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	s.snapshot.Store(&snap)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) close() {
	s.closed.Do(func() {
		s.subsMu.Lock()
		close(s.done)
		for id, ch := range s.subs {
			delete(s.subs, id)
			close(ch)
		}
		s.subsMu.Unlock()
	})
}

func (s *Session) submit(ctx context.Context, cmd command) (*racedomain.RaceDetail, error) {
	cmd.reply = make(chan commandReply, 1)

	select {
	case s.commands <- cmd:
	case <-s.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r.detail, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Tick advances the race clock to elapsed seconds.
func (s *Session) Tick(ctx context.Context, elapsed int64) error {
	_, err := s.submit(ctx, command{
		name: "tick",
		apply: func(lr racedomain.LiveRace) (racedomain.LiveRace, error) {
			return lr.Tick(elapsed)
		},
	})
	return err
}

// RecordCrossing records a driver crossing the line at the current clock.
func (s *Session) RecordCrossing(ctx context.Context, driverID uuid.UUID, penalty bool) error {
	_, err := s.submit(ctx, command{
		name: "record_crossing",
		apply: func(lr racedomain.LiveRace) (racedomain.LiveRace, error) {
			return lr.RecordCrossing(driverID, penalty)
		},
	})
	return err
}

// RecordCrossingAt advances the clock and records the crossing as one command.
func (s *Session) RecordCrossingAt(ctx context.Context, driverID uuid.UUID, penalty bool, elapsed int64) error {
	_, err := s.submit(ctx, command{
		name: "record_crossing",
		apply: func(lr racedomain.LiveRace) (racedomain.LiveRace, error) {
			next, err := lr.Tick(elapsed)
			if err != nil {
				return lr, err
			}
			return next.RecordCrossing(driverID, penalty)
		},
	})
	return err
}

// ResolvePenalty marks a penalty as served.
func (s *Session) ResolvePenalty(ctx context.Context, circleID, driverID uuid.UUID) error {
	_, err := s.submit(ctx, command{
		name: "resolve_penalty",
		apply: func(lr racedomain.LiveRace) (racedomain.LiveRace, error) {
			return lr.ResolvePenalty(circleID, driverID)
		},
	})
	return err
}

// Finish stops the race, stores the reconciled log and ends the session.
func (s *Session) Finish(ctx context.Context) (*racedomain.RaceDetail, error) {
	return s.submit(ctx, command{
		name:   "finish",
		finish: true,
		apply: func(lr racedomain.LiveRace) (racedomain.LiveRace, error) {
			return lr.Finish()
		},
	})
}
