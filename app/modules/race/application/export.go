package raceservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RequestExport schedules a report over the given races and returns the job id.
// The report itself is built in the background.
func (s *RaceService) RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error) {
	ids := dedupeIDs(raceIDs)
	if len(ids) == 0 {
		return 0, ErrEmptyMergeSet
	}
	if s.queue == nil {
		return 0, ErrNoExportQueue
	}

	jobID, err := s.queue.EnqueueExport(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("RequestExport: %w", err)
	}
	return jobID, nil
}
