package raceservice

import "errors"

// Application errors returned as operation failures.
var (
	ErrInvalidDriver   = errors.New("invalid driver")
	ErrRaceNotFound    = errors.New("race not found")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrRaceNotFinished = errors.New("race not finished")
	ErrEmptyMergeSet   = errors.New("merge set is empty")
	ErrSessionClosed   = errors.New("race session closed")
	ErrNoExportQueue   = errors.New("report export is not configured")
)

// ErrCurrentRaceRequired is returned when removing the race a merge set was opened for.
var ErrCurrentRaceRequired = errors.New("current race cannot be removed from merge set")
