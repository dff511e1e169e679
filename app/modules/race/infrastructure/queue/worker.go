package racequeue

import (
	"context"
	"time"

	"github.com/riverqueue/river"
)

// ExportReportWorker runs report jobs.
type ExportReportWorker struct {
	river.WorkerDefaults[ExportReportArgs]
	exporter *ReportExporter
}

func NewExportReportWorker(exporter *ReportExporter) *ExportReportWorker {
	return &ExportReportWorker{exporter: exporter}
}

// Timeout bounds a single report build.
func (w *ExportReportWorker) Timeout(*river.Job[ExportReportArgs]) time.Duration {
	return 2 * time.Minute
}

func (w *ExportReportWorker) Work(ctx context.Context, job *river.Job[ExportReportArgs]) error {
	ids, err := job.Args.ids()
	if err != nil {
		return river.JobCancel(err)
	}
	if _, err := w.exporter.Export(ctx, ids); err != nil {
		if permanent(err) {
			return river.JobCancel(err)
		}
		return err
	}
	return nil
}
