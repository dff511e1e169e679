package racequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racemetrics "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const serviceName = "river"

// Ensure Service implements the report queue
var _ raceservice.ReportQueue = (*Service)(nil)

// Service schedules report jobs on River and runs the export workers.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics racemetrics.RaceMetrics
}

// NewService creates a River-backed queue. River requires pgx, so the queue
// keeps its own pool next to the bun connection.
func NewService(ctx context.Context, dsn string, exporter *ReportExporter, logger *slog.Logger, metrics racemetrics.RaceMetrics) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = racemetrics.NewNoop()
	}
	ctxLogger := logger.With(
		attr.String("operation", "new_race_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewExportReportWorker(exporter))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 4},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	metrics.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	ctxLogger.Info("Race queue service initialized")

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

// Start starts the River workers.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Race queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Race queue service stopped")
	return nil
}

// EnqueueExport inserts a report job. Identical pending merge sets collapse
// into one job.
func (s *Service) EnqueueExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_export", serviceName)

	res, err := s.client.Insert(ctx, newExportReportArgs(raceIDs), &river.InsertOpts{
		Queue: QueueName,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue report job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_export", serviceName)
		return 0, fmt.Errorf("failed to enqueue report job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_export", serviceName)
	s.metrics.RecordOperationDuration(ctx, "enqueue_export", serviceName, time.Since(start))
	s.logger.InfoContext(ctx, "Report job enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.Any("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return res.Job.ID, nil
}

// HealthCheck verifies the queue's database connection.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
