package race

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racehandlers "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/handlers"
	racehttp "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/httpapi"
	racejournal "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/journal"
	racemetrics "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/metrics"
	racequeue "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/queue"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	racerouter "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/router"
	racetime "github.com/Black-And-White-Club/race-tally/app/modules/race/time_utils"
	"github.com/Black-And-White-Club/race-tally/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Module represents the race module.
type Module struct {
	RaceService *raceservice.RaceService
	Sessions    *raceservice.SessionManager
	RaceRouter  *racerouter.RaceRouter
	Queue       *racequeue.Service
	HTTPServer  *http.Server

	journal        *racejournal.BadgerJournal
	logger         *slog.Logger
	sessionsCancel context.CancelFunc
	cancelFunc     context.CancelFunc
}

// NewRaceModule creates and initializes the race module. The watermill router
// is configured here but run by the caller.
func NewRaceModule(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	tracer trace.Tracer,
	registry *prometheus.Registry,
	db *bun.DB,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
) (*Module, error) {
	logger.InfoContext(ctx, "race.NewRaceModule initializing")

	if cfg.HTTP.JWTSecret == "" {
		return nil, errors.New("http.jwt_secret is required")
	}

	// 1. Metrics
	var metrics racemetrics.RaceMetrics = racemetrics.NewNoop()
	if registry != nil {
		m, err := racemetrics.NewPrometheus(registry, "racetally")
		if err != nil {
			return nil, fmt.Errorf("failed to register race metrics: %w", err)
		}
		metrics = m
	}

	// 2. Repository and service
	events := racerouter.NewPublisher(publisher)
	repo := racedb.NewRepository(db)
	service := raceservice.NewRaceService(repo, logger, metrics, tracer, db, events, nil)

	// 3. Report queue
	exporter := racequeue.NewReportExporter(service, events, cfg.Export.Dir, logger, metrics)
	queue, err := racequeue.NewService(ctx, cfg.Postgres.DSN, exporter, logger, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create race queue: %w", err)
	}
	service.SetReportQueue(queue)

	// 4. Live sessions
	journal, err := racejournal.Open(cfg.Journal.Dir)
	if err != nil {
		return nil, err
	}
	sessionsCtx, sessionsCancel := context.WithCancel(context.Background())
	sessions := raceservice.NewSessionManager(sessionsCtx, service, service, journal, logger, metrics)

	// 5. Event handlers
	raceRouter := racerouter.NewRaceRouter(logger, router, subscriber, events, tracer, registry)
	if err := raceRouter.Configure(ctx, racehandlers.NewRaceHandlers(service, sessions, logger)); err != nil {
		sessionsCancel()
		_ = journal.Close()
		return nil, fmt.Errorf("failed to configure race router: %w", err)
	}

	// 6. HTTP API
	var metricsHandler http.Handler
	if registry != nil {
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	api := racehttp.NewHandler(service, sessions, racetime.NewSinceParser(time.Local), logger)
	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: racehttp.NewRouter(
			api,
			racehttp.NewTokenProvider(cfg.HTTP.JWTSecret),
			racehttp.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
			metricsHandler,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Module{
		RaceService:    service,
		Sessions:       sessions,
		RaceRouter:     raceRouter,
		Queue:          queue,
		HTTPServer:     server,
		journal:        journal,
		logger:         logger,
		sessionsCancel: sessionsCancel,
	}, nil
}

// Run resumes journaled sessions, starts the queue and serves HTTP until ctx
// is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting race module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if n, err := m.Sessions.Restore(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to restore race sessions", attr.Error(err))
	} else if n > 0 {
		m.logger.InfoContext(ctx, "Race sessions restored", attr.Int("count", n))
	}

	// Close stops the queue so running reports can finish.
	if err := m.Queue.Start(context.WithoutCancel(ctx)); err != nil {
		m.logger.ErrorContext(ctx, "Race queue did not start", attr.Error(err))
	}

	go func() {
		m.logger.InfoContext(ctx, "Race API listening", attr.String("addr", m.HTTPServer.Addr))
		if err := m.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.ErrorContext(ctx, "Race API stopped", attr.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Race module goroutine stopped")
}

// Close shuts down the race module. Sessions are stopped without finishing
// their races so they resume from the journal on the next start.
func (m *Module) Close() error {
	m.logger.Info("Stopping race module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var errs []error
	if err := m.HTTPServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("error shutting down race API: %w", err))
	}
	if m.RaceRouter != nil {
		if err := m.RaceRouter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing RaceRouter: %w", err))
		}
	}
	if err := m.Queue.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	m.sessionsCancel()
	m.Sessions.Wait()
	if err := m.journal.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		m.logger.Error("Race module stopped with errors", attr.Error(err))
		return err
	}
	m.logger.Info("Race module stopped")
	return nil
}
