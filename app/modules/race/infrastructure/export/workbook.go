package raceexport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	"github.com/xuri/excelize/v2"
)

const (
	StandingsSheet = "Standings"
	PointsSheet    = "Points"
	ChartSheet     = "Chart"

	missingCell   = "-"
	penaltySuffix = " (penalty)"
	maxSheetName  = 31
)

var fileNameReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", "?", "_", "%", "_", "*", "_",
	":", "_", "|", "_", `"`, "_", "<", "_", ">", "_",
)

// FileName builds the report file name for a race title at the given time.
func FileName(title string, at time.Time) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = racedomain.DefaultRaceTitle
	}
	return fileNameReplacer.Replace(title) + "_final_" + at.Format("02-01-2006_15-04-05") + ".xlsx"
}

// Render builds the workbook and returns it encoded as .xlsx bytes.
func Render(merged racedomain.MergedResult, details []racedomain.RaceDetail) ([]byte, error) {
	f, err := BuildWorkbook(merged, details)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildWorkbook lays out the merged standings, the points table, one sheet per
// race and a points chart. details must be ordered like merged.Races.
func BuildWorkbook(merged racedomain.MergedResult, details []racedomain.RaceDetail) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), StandingsSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	b := &builder{f: f, bold: bold}
	steps := []func() error{
		func() error { return b.standings(merged) },
		b.points,
		func() error { return b.races(details) },
		func() error { return b.chart(merged) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

type builder struct {
	f     *excelize.File
	bold  int
	names map[string]struct{}
}

func (b *builder) row(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return b.f.SetSheetRow(sheet, cell, &values)
}

func (b *builder) header(sheet string, row int, values []any) error {
	if err := b.row(sheet, row, values); err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(max(len(values), 1), row)
	return b.f.SetCellStyle(sheet, first, last, b.bold)
}

func (b *builder) standings(merged racedomain.MergedResult) error {
	header := []any{"Place", "Driver", "City", "Boat", "Rank", "Number"}
	for _, race := range merged.Races {
		header = append(header,
			race.Title+" position",
			race.Title+" laps",
			race.Title+" penalties",
			race.Title+" points",
		)
	}
	header = append(header, "Total")
	if err := b.header(StandingsSheet, 1, header); err != nil {
		return err
	}

	for i, d := range merged.Drivers {
		values := []any{i + 1, d.Driver.DisplayName(), d.Driver.City, d.Driver.BoatModel, d.Driver.Rank, d.Driver.Number}
		for _, r := range d.Results {
			if r.Position == 0 {
				values = append(values, missingCell, missingCell, missingCell, missingCell)
				continue
			}
			values = append(values, r.Position, r.Laps, r.PenaltyCount, r.Points)
		}
		values = append(values, d.TotalPoints)
		if err := b.row(StandingsSheet, i+2, values); err != nil {
			return err
		}
	}
	return b.f.SetColWidth(StandingsSheet, "B", "B", 28)
}

func (b *builder) points() error {
	if _, err := b.f.NewSheet(PointsSheet); err != nil {
		return err
	}
	if err := b.header(PointsSheet, 1, []any{"Place", "Points"}); err != nil {
		return err
	}
	for i, pts := range racedomain.PointsTable {
		if err := b.row(PointsSheet, i+2, []any{i + 1, pts}); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) races(details []racedomain.RaceDetail) error {
	b.names = map[string]struct{}{
		strings.ToLower(StandingsSheet): {},
		strings.ToLower(PointsSheet):    {},
		strings.ToLower(ChartSheet):     {},
	}
	for i, detail := range details {
		sheet := b.sheetName(i+1, detail.Race.Title)
		if _, err := b.f.NewSheet(sheet); err != nil {
			return err
		}
		if err := b.race(sheet, detail); err != nil {
			return fmt.Errorf("race %s: %w", detail.Race.ID, err)
		}
	}
	return nil
}

var sheetNameReplacer = strings.NewReplacer(
	":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// sheetName prefixes the race number so equal titles stay distinct.
func (b *builder) sheetName(n int, title string) string {
	title = strings.TrimSpace(sheetNameReplacer.Replace(title))
	if title == "" {
		title = racedomain.DefaultRaceTitle
	}
	name := truncate(fmt.Sprintf("%d. %s", n, title), maxSheetName)
	for suffix := 2; ; suffix++ {
		if _, taken := b.names[strings.ToLower(name)]; !taken {
			break
		}
		tail := " " + strconv.Itoa(suffix)
		name = truncate(fmt.Sprintf("%d. %s", n, title), maxSheetName-len(tail)) + tail
	}
	b.names[strings.ToLower(name)] = struct{}{}
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}

func (b *builder) race(sheet string, detail racedomain.RaceDetail) error {
	if err := b.header(sheet, 1, []any{detail.Race.Title}); err != nil {
		return err
	}
	if err := b.row(sheet, 2, []any{"Duration", racedomain.FormatSeconds(detail.Race.DurationSeconds)}); err != nil {
		return err
	}

	header := []any{"Place", "Driver", "Number", "Laps", "Penalties", "Time"}
	for i := range detail.Circles {
		header = append(header, "Lap "+strconv.Itoa(i+1))
	}
	if err := b.header(sheet, 4, header); err != nil {
		return err
	}

	row := 5
	for _, p := range racedomain.Rank(detail) {
		elapsed := missingCell
		if p.Participated {
			elapsed = racedomain.FormatSeconds(p.ValidDuration)
		}
		values := []any{p.Place, p.Driver.DisplayName(), p.Driver.Number, p.TotalLaps, p.PenaltyLaps, elapsed}
		values = append(values, lapCells(detail.Circles, p.Driver)...)
		if err := b.row(sheet, row, values); err != nil {
			return err
		}
		row++
	}

	order := make([]string, len(detail.Race.FinishOrder))
	for i, n := range detail.Race.FinishOrder {
		order[i] = strconv.FormatInt(n, 10)
	}
	if err := b.row(sheet, row+1, []any{"Finish order", strings.Join(order, ", ")}); err != nil {
		return err
	}
	return b.f.SetColWidth(sheet, "B", "B", 28)
}

func lapCells(circles []racedomain.Circle, driver racedomain.Driver) []any {
	cells := make([]any, len(circles))
	for i, c := range circles {
		idx := c.EntryIndex(driver.ID)
		if idx < 0 {
			cells[i] = missingCell
			continue
		}
		entry := c.Entries[idx]
		text := racedomain.FormatSeconds(entry.Duration)
		if !entry.UseDuration {
			text += penaltySuffix
		}
		cells[i] = text
	}
	return cells
}

func (b *builder) chart(merged racedomain.MergedResult) error {
	png, err := PointsChart(merged)
	if err != nil {
		return fmt.Errorf("failed to render points chart: %w", err)
	}
	if png == nil {
		return nil
	}
	if _, err := b.f.NewSheet(ChartSheet); err != nil {
		return err
	}
	return b.f.AddPictureFromBytes(ChartSheet, "A1", &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format:    &excelize.GraphicOptions{AltText: "Total points"},
	})
}
