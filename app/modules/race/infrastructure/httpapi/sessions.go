package racehttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/google/uuid"
)

var (
	errNoSession     = errors.New("no live session for race")
	errSessionActive = errors.New("race is being recorded by a live session")
)

func sessionDone(s *raceservice.Session) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

type tickRequest struct {
	Elapsed int64 `json:"elapsed"`
}

type crossingRequest struct {
	DriverID uuid.UUID `json:"driver_id"`
	Penalty  bool      `json:"penalty"`
	// Elapsed is optional; zero keeps the session clock.
	Elapsed int64 `json:"elapsed"`
}

type penaltyRequest struct {
	CircleID uuid.UUID `json:"circle_id"`
	DriverID uuid.UUID `json:"driver_id"`
}

func toSessionDTO(snap raceservice.SessionSnapshot) sessionDTO {
	return sessionDTO{
		SessionID: snap.SessionID,
		Version:   snap.Version,
		Closed:    snap.Closed,
		Elapsed:   snap.State.Elapsed,
		Detail:    toRaceDetailDTO(snap.State.Detail()),
	}
}

func (h *Handler) liveSession(w http.ResponseWriter, r *http.Request) (*raceservice.Session, bool) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	s, ok := h.sessions.Get(id)
	if !ok {
		h.fail(w, r, errNoSession)
		return nil, false
	}
	return s, true
}

// respondSnapshot answers a command with the state it produced.
func (h *Handler) respondSnapshot(w http.ResponseWriter, r *http.Request, s *raceservice.Session, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s.Snapshot()))
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.sessions.Start(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionDTO(s.Snapshot()))
}

func (h *Handler) sessionSnapshot(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.liveSession(w, r); ok {
		writeJSON(w, http.StatusOK, toSessionDTO(s.Snapshot()))
	}
}

func (h *Handler) sessionTick(w http.ResponseWriter, r *http.Request) {
	s, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	var in tickRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, s.Tick(r.Context(), in.Elapsed))
}

func (h *Handler) sessionCrossing(w http.ResponseWriter, r *http.Request) {
	s, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	var in crossingRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, s.RecordCrossingAt(r.Context(), in.DriverID, in.Penalty, in.Elapsed))
}

func (h *Handler) sessionPenalty(w http.ResponseWriter, r *http.Request) {
	s, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	var in penaltyRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondSnapshot(w, r, s, s.ResolvePenalty(r.Context(), in.CircleID, in.DriverID))
}

func (h *Handler) sessionFinish(w http.ResponseWriter, r *http.Request) {
	s, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	detail, err := s.Finish(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRaceDetailDTO(*detail))
}

// sessionStream pushes every new snapshot as a server-sent event until the
// session closes or the client goes away.
func (h *Handler) sessionStream(w http.ResponseWriter, r *http.Request) {
	s, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.fail(w, r, errors.New("streaming unsupported"))
		return
	}

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(snap raceservice.SessionSnapshot) error {
		body, err := json.Marshal(toSessionDTO(snap))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\ndata: %s\n\n", snap.Version, body); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	// The subscription starts with the current snapshot.
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, open := <-updates:
			if !open {
				return
			}
			if err := send(snap); err != nil {
				return
			}
		}
	}
}
