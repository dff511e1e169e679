package racehttp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/google/uuid"
)

type createRaceRequest struct {
	Title     string      `json:"title"`
	DriverIDs []uuid.UUID `json:"driver_ids"`
}

type finishRaceRequest struct {
	DurationSeconds int64       `json:"duration_seconds"`
	Circles         []circleDTO `json:"circles"`
	FinishOrder     []int64     `json:"finish_order"`
}

// listRaces accepts ?since= (a date or a phrase like "yesterday") and ?finished=true.
func (h *Handler) listRaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	since, err := h.since.Parse(q.Get("since"), h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	filter := raceservice.RaceFilter{Since: since}
	if raw := q.Get("finished"); raw != "" {
		filter.FinishedOnly, err = strconv.ParseBool(raw)
		if err != nil {
			h.fail(w, r, fmt.Errorf("%w: finished must be a boolean", errBadRequest))
			return
		}
	}

	races, err := h.service.ListRaces(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRaceDTOs(races))
}

func (h *Handler) createRace(w http.ResponseWriter, r *http.Request) {
	var in createRaceRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	race, err := h.service.CreateRace(r.Context(), in.Title, in.DriverIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRaceDTO(*race))
}

func (h *Handler) getRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.service.GetRaceDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRaceDetailDTO(*detail))
}

func (h *Handler) deleteRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteRace(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) copyRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	race, err := h.service.CopyRace(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRaceDTO(*race))
}

// finishRace stores a race recorded elsewhere, e.g. by an offline timer. A
// race with a running live session is finished through that session only.
func (h *Handler) finishRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if s, ok := h.sessions.Get(id); ok && !sessionDone(s) {
		h.fail(w, r, errSessionActive)
		return
	}
	var in finishRaceRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.service.FinishRace(r.Context(), raceservice.FinishRaceInput{
		RaceID:          id,
		DurationSeconds: in.DurationSeconds,
		Circles:         fromCircleDTOs(id, in.Circles),
		FinishOrder:     in.FinishOrder,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRaceDetailDTO(*detail))
}

// availableForMerge lists finished races outside ?except=<id>,<id>.
func (h *Handler) availableForMerge(w http.ResponseWriter, r *http.Request) {
	var except []uuid.UUID
	if raw := r.URL.Query().Get("except"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(part))
			if err != nil {
				h.fail(w, r, fmt.Errorf("%w: invalid race id %q", errBadRequest, part))
				return
			}
			except = append(except, id)
		}
	}
	races, err := h.service.AvailableForMerge(r.Context(), except)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRaceDTOs(races))
}
