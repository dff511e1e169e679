package racehttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racetime "github.com/Black-And-White-Club/race-tally/app/modules/race/time_utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, racetime.ErrUnrecognized),
		errors.Is(err, raceservice.ErrInvalidDriver),
		errors.Is(err, raceservice.ErrEmptyMergeSet),
		errors.Is(err, racedomain.ErrDriverNotRegistered),
		errors.Is(err, racedomain.ErrNoPenaltyOwed):
		return http.StatusBadRequest
	case errors.Is(err, raceservice.ErrRaceNotFound),
		errors.Is(err, raceservice.ErrDriverNotFound),
		errors.Is(err, racedomain.ErrCircleNotFound),
		errors.Is(err, errNoSession):
		return http.StatusNotFound
	case errors.Is(err, racedomain.ErrRaceFinished),
		errors.Is(err, raceservice.ErrSessionClosed),
		errors.Is(err, errSessionActive):
		return http.StatusConflict
	case errors.Is(err, raceservice.ErrNoExportQueue):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		msg = http.StatusText(status)
	} else {
		h.logger.DebugContext(r.Context(), "Request rejected",
			attr.String("path", r.URL.Path),
			attr.Any("status", status),
			attr.Error(err),
		)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decode(r *http.Request, into any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
