package racequeue

import (
	"fmt"

	"github.com/google/uuid"
)

// QueueName is the dedicated River queue for report jobs.
const QueueName = "race_reports"

// ExportReportArgs builds and stores a report over a merge set.
type ExportReportArgs struct {
	RaceIDs []string `json:"race_ids"`
}

// Kind returns the job type identifier for River
func (ExportReportArgs) Kind() string { return "race_report_export" }

func newExportReportArgs(raceIDs []uuid.UUID) ExportReportArgs {
	ids := make([]string, len(raceIDs))
	for i, id := range raceIDs {
		ids[i] = id.String()
	}
	return ExportReportArgs{RaceIDs: ids}
}

func (a ExportReportArgs) ids() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(a.RaceIDs))
	for _, raw := range a.RaceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid race id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
