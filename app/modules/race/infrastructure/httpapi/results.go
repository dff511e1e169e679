package racehttp

import (
	"net/http"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/google/uuid"
)

type raceSetRequest struct {
	RaceIDs []uuid.UUID `json:"race_ids"`
}

type exportResponse struct {
	JobID int64 `json:"job_id"`
}

func (h *Handler) ranking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "raceID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	placements, err := h.service.GetRanking(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlacementDTOs(placements))
}

func (h *Handler) merge(w http.ResponseWriter, r *http.Request) {
	var in raceSetRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	merged, err := h.service.MergeRaces(r.Context(), in.RaceIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMergedDTO(*merged))
}

func (h *Handler) requestExport(w http.ResponseWriter, r *http.Request) {
	var in raceSetRequest
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	jobID, err := h.service.RequestExport(r.Context(), in.RaceIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, exportResponse{JobID: jobID})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var in raceservice.Settings
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	settings, err := h.service.UpdateSettings(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
