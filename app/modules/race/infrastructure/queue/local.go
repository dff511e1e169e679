package racequeue

import (
	"context"
	"sync"
	"sync/atomic"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/google/uuid"
)

var _ raceservice.ReportQueue = (*LocalQueue)(nil)

// LocalQueue runs report jobs on goroutines inside the process. It backs the
// CLI, where no River workers run.
type LocalQueue struct {
	exporter *ReportExporter
	ctx      context.Context
	nextID   atomic.Int64
	wg       sync.WaitGroup
}

// NewLocalQueue binds jobs to ctx; cancelling it aborts pending reports.
func NewLocalQueue(ctx context.Context, exporter *ReportExporter) *LocalQueue {
	return &LocalQueue{exporter: exporter, ctx: ctx}
}

func (q *LocalQueue) EnqueueExport(_ context.Context, raceIDs []uuid.UUID) (int64, error) {
	id := q.nextID.Add(1)
	ids := append([]uuid.UUID(nil), raceIDs...)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		// Failures are logged and published by the exporter.
		_, _ = q.exporter.Export(q.ctx, ids)
	}()
	return id, nil
}

// Wait blocks until every enqueued report finished.
func (q *LocalQueue) Wait() {
	q.wg.Wait()
}
