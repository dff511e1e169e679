package racequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	raceexport "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/export"
	racemetrics "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/metrics"
	"github.com/google/uuid"
)

// ReportSource loads everything a report needs.
type ReportSource interface {
	GetReportData(ctx context.Context, raceIDs []uuid.UUID) (*raceservice.ReportData, error)
}

// ReportExporter renders merge-set reports into a directory and announces them.
type ReportExporter struct {
	source    ReportSource
	publisher raceservice.EventPublisher
	dir       string
	logger    *slog.Logger
	metrics   racemetrics.RaceMetrics
	now       func() time.Time
}

// NewReportExporter creates an exporter writing into dir. publisher may be nil.
func NewReportExporter(source ReportSource, publisher raceservice.EventPublisher, dir string, logger *slog.Logger, metrics racemetrics.RaceMetrics) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = racemetrics.NewNoop()
	}
	return &ReportExporter{
		source:    source,
		publisher: publisher,
		dir:       dir,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Export builds the report for the merge set. The first race names the file.
func (e *ReportExporter) Export(ctx context.Context, raceIDs []uuid.UUID) (raceevents.ReportExportedPayloadV1, error) {
	start := e.now()
	logger := e.logger.With(
		attr.String("operation", "export_report"),
		attr.Int("races", len(raceIDs)),
	)

	payload, err := e.export(ctx, raceIDs)
	if err != nil {
		logger.ErrorContext(ctx, "Report export failed", attr.Error(err))
		e.publish(ctx, raceevents.ReportExportFailedV1, raceevents.ReportExportFailedPayloadV1{
			RaceIDs: raceIDs,
			Reason:  err.Error(),
		})
		return raceevents.ReportExportedPayloadV1{}, err
	}

	e.metrics.RecordExportGenerated(ctx, len(raceIDs), e.now().Sub(start))
	logger.InfoContext(ctx, "Report exported",
		attr.String("path", payload.Path),
		attr.Int("bytes", payload.Bytes),
	)
	e.publish(ctx, raceevents.ReportExportedV1, payload)
	return payload, nil
}

func (e *ReportExporter) export(ctx context.Context, raceIDs []uuid.UUID) (raceevents.ReportExportedPayloadV1, error) {
	data, err := e.source.GetReportData(ctx, raceIDs)
	if err != nil {
		return raceevents.ReportExportedPayloadV1{}, err
	}
	if data == nil || len(data.Details) == 0 {
		return raceevents.ReportExportedPayloadV1{}, raceservice.ErrEmptyMergeSet
	}

	content, err := raceexport.Render(data.Merged, data.Details)
	if err != nil {
		return raceevents.ReportExportedPayloadV1{}, err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return raceevents.ReportExportedPayloadV1{}, fmt.Errorf("failed to create export dir: %w", err)
	}
	name := raceexport.FileName(data.Details[0].Race.Title, e.now())
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return raceevents.ReportExportedPayloadV1{}, fmt.Errorf("failed to write report: %w", err)
	}

	return raceevents.ReportExportedPayloadV1{
		RaceIDs:  raceIDs,
		FileName: name,
		Path:     path,
		Bytes:    len(content),
	}, nil
}

func (e *ReportExporter) publish(ctx context.Context, topic string, payload any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, topic, payload); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish report event",
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

// permanent reports errors that retrying cannot fix.
func permanent(err error) bool {
	return errors.Is(err, raceservice.ErrEmptyMergeSet) || errors.Is(err, raceservice.ErrRaceNotFound)
}
