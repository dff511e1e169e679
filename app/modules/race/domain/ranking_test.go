package racedomain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAggregate(t *testing.T) {
	d := newDriver(1, "d")
	e := newDriver(2, "e")
	stray := newDriver(99, "stray")

	stats := Aggregate(detail([]Driver{d, e},
		circle(0, valid(d, 10), penalty(e, 12), valid(stray, 5)),
		circle(1, valid(d, 8)),
	))

	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 roster drivers, got %d", len(stats))
	}
	if diff := cmp.Diff(DriverStats{ValidDuration: 18, ValidCircles: 2}, stats[d.ID]); diff != "" {
		t.Errorf("unexpected stats for d (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DriverStats{InvalidCircles: 1}, stats[e.ID]); diff != "" {
		t.Errorf("unexpected stats for e (-want +got):\n%s", diff)
	}
	if _, ok := stats[stray.ID]; ok {
		t.Errorf("unregistered driver must not be aggregated")
	}
}

func TestRank(t *testing.T) {
	a, b, c, d := newDriver(1, "a"), newDriver(2, "b"), newDriver(3, "c"), newDriver(4, "d")

	tests := []struct {
		name      string
		detail    RaceDetail
		wantOrder []int64
	}{
		{
			name:      "empty roster",
			detail:    detail(nil),
			wantOrder: []int64{},
		},
		{
			name:      "no circles keeps roster order",
			detail:    detail([]Driver{c, a, b}),
			wantOrder: []int64{3, 1, 2},
		},
		{
			name: "more valid circles beats faster time",
			detail: detail([]Driver{a, b},
				circle(0, valid(b, 20), valid(a, 10)),
				circle(1, valid(a, 8)),
			),
			wantOrder: []int64{1, 2},
		},
		{
			name: "same circle count ordered by duration",
			detail: detail([]Driver{a, b, c},
				circle(0, valid(a, 30), valid(b, 10), valid(c, 20)),
			),
			wantOrder: []int64{2, 3, 1},
		},
		{
			name: "only penalties ranks with zero valid circles ahead of no-shows",
			detail: detail([]Driver{d, a, b, c},
				circle(0, valid(a, 10), penalty(b, 10), penalty(c, 5)),
			),
			wantOrder: []int64{1, 2, 3, 4},
		},
		{
			name: "equal stats keep circle log order",
			detail: detail([]Driver{c, b},
				circle(0, valid(b, 10), valid(c, 10)),
			),
			wantOrder: []int64{2, 3},
		},
		{
			name: "penalty-only drivers keep circle log order",
			detail: detail([]Driver{a, b},
				circle(0, penalty(b, 5), penalty(a, 7)),
			),
			wantOrder: []int64{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := driverOrder(Rank(tt.detail))
			if diff := cmp.Diff(tt.wantOrder, got); diff != "" {
				t.Errorf("unexpected order (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRankPlacementFields(t *testing.T) {
	a, b, c := newDriver(1, "a"), newDriver(2, "b"), newDriver(3, "c")

	placements := Rank(detail([]Driver{a, b, c},
		circle(0, valid(a, 10), penalty(b, 11)),
		circle(1, valid(a, 9), valid(b, 12)),
	))

	for i, p := range placements {
		if p.Place != i+1 {
			t.Fatalf("expected place %d, got %d", i+1, p.Place)
		}
	}
	if placements[0].TotalLaps != 2 || placements[0].PenaltyLaps != 0 {
		t.Errorf("unexpected first placement: %+v", placements[0])
	}
	if placements[1].TotalLaps != 2 || placements[1].PenaltyLaps != 1 {
		t.Errorf("unexpected second placement: %+v", placements[1])
	}
	if placements[2].TotalLaps != 0 || placements[2].Participated {
		t.Errorf("expected no-show last, got %+v", placements[2])
	}
}

func TestRankLapCountsMatchAggregate(t *testing.T) {
	a, b := newDriver(1, "a"), newDriver(2, "b")
	det := detail([]Driver{a, b},
		circle(0, valid(a, 10), penalty(b, 4)),
		circle(1, penalty(a, 3), valid(b, 7)),
		circle(2, valid(b, 7)),
	)

	stats := Aggregate(det)
	for _, p := range Rank(det) {
		s := stats[p.Driver.ID]
		if s.ValidCircles+s.InvalidCircles != p.TotalLaps {
			t.Errorf("driver %d: valid+invalid=%d, total laps=%d", p.Driver.Number, s.ValidCircles+s.InvalidCircles, p.TotalLaps)
		}
		if s.InvalidCircles != p.PenaltyLaps {
			t.Errorf("driver %d: penalty laps %d, want %d", p.Driver.Number, p.PenaltyLaps, s.InvalidCircles)
		}
	}
}
