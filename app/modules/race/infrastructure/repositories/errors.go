package racedb

import "errors"

// Repository errors. Callers map these to domain failures.
var (
	ErrNotFound       = errors.New("record not found")
	ErrNoRowsAffected = errors.New("no rows affected")
)
