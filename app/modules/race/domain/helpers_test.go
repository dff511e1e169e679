package racedomain

import (
	"github.com/google/uuid"
)

func newDriver(number int64, name string) Driver {
	return Driver{ID: uuid.New(), Number: number, Name: name, LastName: "Test"}
}

func valid(d Driver, seconds int64) Entry {
	return Entry{DriverID: d.ID, Duration: seconds, UseDuration: true}
}

func penalty(d Driver, seconds int64) Entry {
	return Entry{DriverID: d.ID, Duration: seconds}
}

func circle(seq int, entries ...Entry) Circle {
	return Circle{ID: uuid.New(), Seq: seq, Entries: entries}
}

func penaltyCircle(seq int, owed []Driver, entries ...Entry) Circle {
	c := circle(seq, entries...)
	for _, d := range owed {
		c.PenaltyFor = append(c.PenaltyFor, d.ID)
	}
	return c
}

func detail(drivers []Driver, circles ...Circle) RaceDetail {
	return RaceDetail{
		Race:    Race{ID: uuid.New(), Title: "heat"},
		Drivers: drivers,
		Circles: circles,
	}
}

func driverOrder(placements []Placement) []int64 {
	out := make([]int64, len(placements))
	for i, p := range placements {
		out[i] = p.Driver.Number
	}
	return out
}
