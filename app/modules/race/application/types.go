package raceservice

import (
	"time"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/google/uuid"
)

// DriverInput carries editable roster attributes.
type DriverInput struct {
	Number    int64  `json:"number"`
	Name      string `json:"name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	BoatModel string `json:"boat_model"`
	Rank      string `json:"rank"`
	Team      string `json:"team"`
}

// RaceFilter narrows race listings.
type RaceFilter struct {
	Since        *time.Time
	FinishedOnly bool
}

// FinishRaceInput is the final state of a recorded race.
type FinishRaceInput struct {
	RaceID          uuid.UUID
	DurationSeconds int64
	Circles         []racedomain.Circle
	FinishOrder     []int64
}

// Settings is the user preference bag.
type Settings struct {
	Vibration bool   `json:"vibration"`
	Sound     bool   `json:"sound"`
	Email     string `json:"email"`
}
