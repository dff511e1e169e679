package racehttp

import (
	"net/http"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
)

// listDrivers serves the roster; ?q= narrows it by name.
func (h *Handler) listDrivers(w http.ResponseWriter, r *http.Request) {
	var (
		drivers []racedomain.Driver
		err     error
	)
	if q := r.URL.Query().Get("q"); q != "" {
		drivers, err = h.service.SearchDrivers(r.Context(), q)
	} else {
		drivers, err = h.service.ListDrivers(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDriverDTOs(drivers))
}

func (h *Handler) createDriver(w http.ResponseWriter, r *http.Request) {
	var in raceservice.DriverInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.service.CreateDriver(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDriverDTO(*d))
}

func (h *Handler) updateDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "driverID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in raceservice.DriverInput
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.service.UpdateDriver(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDriverDTO(*d))
}

func (h *Handler) deleteDriver(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "driverID")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteDriver(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
