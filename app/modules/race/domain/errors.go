package racedomain

import "errors"

// Domain errors raised by live race transitions.
var (
	ErrRaceFinished        = errors.New("race already finished")
	ErrDriverNotRegistered = errors.New("driver not registered for race")
	ErrCircleNotFound      = errors.New("circle not found")
	ErrNoPenaltyOwed       = errors.New("driver owes no penalty in circle")
)
