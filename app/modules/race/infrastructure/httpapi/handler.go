package racehttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racetime "github.com/Black-And-White-Club/race-tally/app/modules/race/time_utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Sessions starts and finds live race sessions.
type Sessions interface {
	Start(ctx context.Context, raceID uuid.UUID) (*raceservice.Session, error)
	Get(raceID uuid.UUID) (*raceservice.Session, bool)
}

// Handler serves the race API.
type Handler struct {
	service  raceservice.Service
	sessions Sessions
	since    *racetime.SinceParser
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(service raceservice.Service, sessions Sessions, since *racetime.SinceParser, l *slog.Logger) *Handler {
	if since == nil {
		since = racetime.NewSinceParser(nil)
	}
	return &Handler{
		service:  service,
		sessions: sessions,
		since:    since,
		logger:   logger(l),
		now:      time.Now,
	}
}

// Routes mounts the API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/drivers", func(r chi.Router) {
		r.Get("/", h.listDrivers)
		r.Post("/", h.createDriver)
		r.Put("/{driverID}", h.updateDriver)
		r.Delete("/{driverID}", h.deleteDriver)
	})

	r.Route("/races", func(r chi.Router) {
		r.Get("/", h.listRaces)
		r.Post("/", h.createRace)
		r.Get("/available", h.availableForMerge)
		r.Route("/{raceID}", func(r chi.Router) {
			r.Get("/", h.getRace)
			r.Delete("/", h.deleteRace)
			r.Post("/copy", h.copyRace)
			r.Post("/finish", h.finishRace)
			r.Get("/ranking", h.ranking)

			r.Route("/session", func(r chi.Router) {
				r.Post("/", h.startSession)
				r.Get("/", h.sessionSnapshot)
				r.Get("/stream", h.sessionStream)
				r.Post("/tick", h.sessionTick)
				r.Post("/crossings", h.sessionCrossing)
				r.Post("/penalties", h.sessionPenalty)
				r.Post("/finish", h.sessionFinish)
			})
		})
	})

	r.Post("/merge", h.merge)
	r.Post("/exports", h.requestExport)
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.updateSettings)
}

// NewRouter assembles the HTTP surface: health and metrics endpoints plus the
// rate limited, authenticated API under /api/v1. metrics may be nil.
func NewRouter(h *Handler, provider *TokenProvider, limiter *IPRateLimiter, metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimitMiddleware(limiter))
		r.Use(AuthMiddleware(provider))
		h.Routes(r)
	})
	return r
}
