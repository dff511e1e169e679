package racedomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPointsForPlace(t *testing.T) {
	tests := []struct {
		place int
		want  int
	}{
		{place: 0, want: 0},
		{place: 1, want: 25},
		{place: 2, want: 20},
		{place: 15, want: 1},
		{place: 16, want: 0},
		{place: 21, want: 0},
	}
	for _, tt := range tests {
		if got := PointsForPlace(tt.place); got != tt.want {
			t.Errorf("PointsForPlace(%d) = %d, want %d", tt.place, got, tt.want)
		}
	}
}

func TestMergeSingleRaceMatchesRanking(t *testing.T) {
	a, b, c := newDriver(1, "a"), newDriver(2, "b"), newDriver(3, "c")
	det := detail([]Driver{a, b, c},
		circle(0, valid(b, 10), valid(a, 12)),
		circle(1, valid(b, 10)),
	)

	merged := Merge([]RaceDetail{det})
	ranking := Rank(det)

	if len(merged.Races) != 1 || merged.Races[0].ID != det.Race.ID {
		t.Fatalf("unexpected races: %+v", merged.Races)
	}
	if len(merged.Drivers) != len(ranking) {
		t.Fatalf("expected %d drivers, got %d", len(ranking), len(merged.Drivers))
	}
	for i, p := range ranking {
		row := merged.Drivers[i]
		want := RaceResult{
			Position:     p.Place,
			Points:       PointsForPlace(p.Place),
			Laps:         p.TotalLaps,
			PenaltyCount: p.PenaltyLaps,
		}
		if row.Driver.ID != p.Driver.ID {
			t.Fatalf("row %d: expected driver %d, got %d", i, p.Driver.Number, row.Driver.Number)
		}
		if diff := cmp.Diff([]RaceResult{want}, row.Results); diff != "" {
			t.Errorf("row %d results (-want +got):\n%s", i, diff)
		}
		if row.TotalPoints != want.Points {
			t.Errorf("row %d: total %d, want %d", i, row.TotalPoints, want.Points)
		}
	}
}

func TestMergeConsistencyBeatsSingleWin(t *testing.T) {
	x, y, z := newDriver(1, "x"), newDriver(2, "y"), newDriver(3, "z")

	race1 := detail([]Driver{x, y},
		circle(0, valid(x, 10), valid(y, 11)),
	)
	race2 := detail([]Driver{z, y},
		circle(0, valid(z, 10), valid(y, 11)),
	)

	merged := Merge([]RaceDetail{race1, race2})

	byNumber := map[int64]MergedDriverResult{}
	for _, row := range merged.Drivers {
		byNumber[row.Driver.Number] = row
	}
	if byNumber[1].TotalPoints != 25 {
		t.Errorf("x total = %d, want 25", byNumber[1].TotalPoints)
	}
	if byNumber[2].TotalPoints != 40 {
		t.Errorf("y total = %d, want 40", byNumber[2].TotalPoints)
	}
	if diff := cmp.Diff(RaceResult{}, byNumber[1].Results[1]); diff != "" {
		t.Errorf("x must have an empty result for race 2 (-want +got):\n%s", diff)
	}
	if merged.Drivers[0].Driver.ID != y.ID {
		t.Errorf("expected y to lead, got driver %d", merged.Drivers[0].Driver.Number)
	}
}

func TestMergeTieBreak(t *testing.T) {
	x, y := newDriver(1, "x"), newDriver(2, "y")

	t.Run("most recent race decides", func(t *testing.T) {
		race1 := detail([]Driver{x, y}, circle(0, valid(x, 10), valid(y, 11)))
		race2 := detail([]Driver{x, y}, circle(0, valid(y, 10), valid(x, 11)))

		merged := Merge([]RaceDetail{race1, race2})

		if merged.Drivers[0].TotalPoints != merged.Drivers[1].TotalPoints {
			t.Fatalf("expected a points tie")
		}
		if merged.Drivers[0].Driver.ID != y.ID {
			t.Errorf("expected y (won last race) first, got %d", merged.Drivers[0].Driver.Number)
		}
	})

	t.Run("missing race ranks behind any position", func(t *testing.T) {
		// x: 1st then absent = 25. y: absent then 1st = 25. Last race decides.
		race1 := detail([]Driver{x}, circle(0, valid(x, 10)))
		race2 := detail([]Driver{y}, circle(0, valid(y, 10)))

		merged := Merge([]RaceDetail{race1, race2})

		order := []int64{merged.Drivers[0].Driver.Number, merged.Drivers[1].Driver.Number}
		if diff := cmp.Diff([]int64{2, 1}, order); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
	})

	t.Run("registered no-shows still score by place", func(t *testing.T) {
		merged := Merge([]RaceDetail{
			detail([]Driver{x}, circle(0, valid(x, 10))),
			detail([]Driver{y}, circle(0, valid(y, 10))),
			detail([]Driver{x, y}),
		})

		totals := []int{merged.Drivers[0].TotalPoints, merged.Drivers[1].TotalPoints}
		if diff := cmp.Diff([]int{50, 45}, totals); diff != "" {
			t.Errorf("unexpected totals (-want +got):\n%s", diff)
		}
		if merged.Drivers[0].Driver.ID != x.ID {
			t.Errorf("expected x first, got %d", merged.Drivers[0].Driver.Number)
		}
	})
}

func TestMergeEmpty(t *testing.T) {
	merged := Merge(nil)
	if len(merged.Races) != 0 || len(merged.Drivers) != 0 {
		t.Errorf("expected empty result, got %+v", merged)
	}
}
