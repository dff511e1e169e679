package raceevents

import (
	"time"

	"github.com/google/uuid"
)

// Stream names
const (
	RaceStreamName = "race"
)

// Race-related subjects
const (
	RaceFinishedV1       = "race.finished.v1"
	CrossingRecordedV1   = "race.crossing.recorded.v1"
	PenaltyResolvedV1    = "race.penalty.resolved.v1"
	ReportExportedV1     = "race.report.exported.v1"
	ReportExportFailedV1 = "race.report.export.failed.v1"
	ExportRequestedV1    = "race.export.requested.v1"
)

// RaceFinishedPayloadV1 is published once a race has been reconciled and stored.
type RaceFinishedPayloadV1 struct {
	RaceID          uuid.UUID `json:"race_id"`
	Title           string    `json:"title"`
	DurationSeconds int64     `json:"duration_seconds"`
	Drivers         int       `json:"drivers"`
	FinishedAt      time.Time `json:"finished_at"`
}

// CrossingRecordedPayloadV1 is emitted by timing devices for a live session.
type CrossingRecordedPayloadV1 struct {
	RaceID   uuid.UUID `json:"race_id"`
	DriverID uuid.UUID `json:"driver_id"`
	Penalty  bool      `json:"penalty"`
	// Elapsed is the race clock in seconds at the crossing. Zero keeps the
	// session clock as is.
	Elapsed int64 `json:"elapsed"`
}

// PenaltyResolvedPayloadV1 marks a penalty as served for a live session.
type PenaltyResolvedPayloadV1 struct {
	RaceID   uuid.UUID `json:"race_id"`
	CircleID uuid.UUID `json:"circle_id"`
	DriverID uuid.UUID `json:"driver_id"`
}

// ExportRequestedPayloadV1 asks for a report over the given races.
type ExportRequestedPayloadV1 struct {
	RaceIDs []uuid.UUID `json:"race_ids"`
}

// ReportExportedPayloadV1 announces a generated report file.
type ReportExportedPayloadV1 struct {
	RaceIDs  []uuid.UUID `json:"race_ids"`
	FileName string      `json:"file_name"`
	Path     string      `json:"path"`
	Bytes    int         `json:"bytes"`
}

// ReportExportFailedPayloadV1 announces a report that could not be built.
type ReportExportFailedPayloadV1 struct {
	RaceIDs []uuid.UUID `json:"race_ids"`
	Reason  string      `json:"reason"`
}
