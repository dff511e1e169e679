package raceexport

import (
	"bytes"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// maxChartBars keeps labels readable; the standings sheet has the full list.
const maxChartBars = 20

// PointsChart renders total points per driver as a PNG bar chart. It returns
// nil when nobody scored.
func PointsChart(merged racedomain.MergedResult) ([]byte, error) {
	bars := make([]chart.Value, 0, min(len(merged.Drivers), maxChartBars))
	top := 0
	for _, d := range merged.Drivers {
		if len(bars) == maxChartBars {
			break
		}
		top = max(top, d.TotalPoints)
		bars = append(bars, chart.Value{
			Label: d.Driver.DisplayName(),
			Value: float64(d.TotalPoints),
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("2f6f4f"),
				StrokeColor: drawing.ColorFromHex("1f4a35"),
			},
		})
	}
	if top == 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    "Total points",
		Width:    max(480, 60*len(bars)),
		Height:   400,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
