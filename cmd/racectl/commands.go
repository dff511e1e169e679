package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
	racetime "github.com/Black-And-White-Club/race-tally/app/modules/race/time_utils"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// raceAPI is the slice of the race service the CLI drives.
type raceAPI interface {
	ListRaces(ctx context.Context, filter raceservice.RaceFilter) ([]racedomain.Race, error)
	GetRanking(ctx context.Context, raceID uuid.UUID) ([]racedomain.Placement, error)
	MergeRaces(ctx context.Context, raceIDs []uuid.UUID) (*racedomain.MergedResult, error)
	RequestExport(ctx context.Context, raceIDs []uuid.UUID) (int64, error)
	SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error)
}

type commandDeps struct {
	api      raceAPI
	since    *racetime.SinceParser
	debounce time.Duration
	in       io.Reader
	out      io.Writer
	// waitExports blocks until queued reports are written.
	waitExports func()
	now         func() time.Time
}

// newApp builds the CLI. setup runs before any command and fills in the
// dependencies that need the loaded config; it may be nil.
func newApp(deps *commandDeps, setup func(c *cli.Context, deps *commandDeps) error) *cli.App {
	if deps.now == nil {
		deps.now = time.Now
	}
	return &cli.App{
		Name:   "racectl",
		Usage:  "inspect races, merge results and export reports",
		Writer: deps.out,
		Reader: deps.in,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Before: func(c *cli.Context) error {
			if setup == nil {
				return nil
			}
			return setup(c, deps)
		},
		Commands: []*cli.Command{
			racesCommand(deps),
			mergeCommand(deps),
			exportCommand(deps),
			driversCommand(deps),
		},
	}
}

func racesCommand(deps *commandDeps) *cli.Command {
	return &cli.Command{
		Name:  "races",
		Usage: "list races and rankings",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list races, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "since", Usage: `only races created after a date or phrase such as "last monday"`},
					&cli.BoolFlag{Name: "finished", Usage: "only finished races"},
				},
				Action: func(c *cli.Context) error {
					since, err := deps.since.Parse(c.String("since"), deps.now())
					if err != nil {
						return fmt.Errorf("invalid --since: %w", err)
					}
					races, err := deps.api.ListRaces(c.Context, raceservice.RaceFilter{
						Since:        since,
						FinishedOnly: c.Bool("finished"),
					})
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(deps.out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tTITLE\tCREATED\tDURATION\tFINISHED")
					for _, r := range races {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n",
							r.ID, r.Title, r.CreatedAt.Format("2006-01-02 15:04"),
							racedomain.FormatSeconds(r.DurationSeconds), r.Finished)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "ranking",
				Usage:     "print the placements of one race",
				ArgsUsage: "<race-id>",
				Action: func(c *cli.Context) error {
					ids, err := parseIDs(c.Args().Slice())
					if err != nil {
						return err
					}
					if len(ids) != 1 {
						return fmt.Errorf("expected exactly one race id")
					}
					placements, err := deps.api.GetRanking(c.Context, ids[0])
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(deps.out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "PLACE\tNUMBER\tDRIVER\tLAPS\tPENALTIES\tTIME")
					for _, p := range placements {
						fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%d\t%s\n",
							p.Place, p.Driver.Number, p.Driver.DisplayName(),
							p.TotalLaps, p.PenaltyLaps, racedomain.FormatSeconds(p.ValidDuration))
					}
					return tw.Flush()
				},
			},
		},
	}
}

func mergeCommand(deps *commandDeps) *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "print the combined standings of several races",
		ArgsUsage: "<race-id>...",
		Action: func(c *cli.Context) error {
			ids, err := parseIDs(c.Args().Slice())
			if err != nil {
				return err
			}
			merged, err := deps.api.MergeRaces(c.Context, ids)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(deps.out, 0, 4, 2, ' ', 0)
			header := []string{"PLACE", "NUMBER", "DRIVER"}
			for _, r := range merged.Races {
				header = append(header, r.Title)
			}
			fmt.Fprintln(tw, strings.Join(append(header, "TOTAL"), "\t"))

			for i, row := range merged.Drivers {
				cells := []string{fmt.Sprint(i + 1), fmt.Sprint(row.Driver.Number), row.Driver.DisplayName()}
				for _, res := range row.Results {
					if res.Position == 0 {
						cells = append(cells, "-")
						continue
					}
					cells = append(cells, fmt.Sprintf("%d (%d)", res.Position, res.Points))
				}
				fmt.Fprintln(tw, strings.Join(append(cells, fmt.Sprint(row.TotalPoints)), "\t"))
			}
			return tw.Flush()
		},
	}
}

func exportCommand(deps *commandDeps) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write the workbook report of a merge set",
		ArgsUsage: "<race-id>...",
		Action: func(c *cli.Context) error {
			ids, err := parseIDs(c.Args().Slice())
			if err != nil {
				return err
			}
			jobID, err := deps.api.RequestExport(c.Context, ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(deps.out, "export job %d queued\n", jobID)
			if deps.waitExports != nil {
				deps.waitExports()
			}
			return nil
		},
	}
}

func driversCommand(deps *commandDeps) *cli.Command {
	return &cli.Command{
		Name:  "drivers",
		Usage: "roster tools",
		Subcommands: []*cli.Command{
			{
				Name:  "search",
				Usage: "search the roster interactively, one query per line",
				Action: func(c *cli.Context) error {
					return searchLoop(c.Context, deps)
				},
			},
		},
	}
}

// searchLoop feeds each input line to a debounced searcher. Lines typed
// faster than the debounce supersede each other; only the last one prints.
func searchLoop(ctx context.Context, deps *commandDeps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	searcher := raceservice.NewSearcher(deps.api, deps.debounce)
	var shown atomic.Uint64
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for res := range searcher.Results() {
			if res.Err != nil {
				fmt.Fprintf(deps.out, "search %q failed: %v\n", res.Query, res.Err)
			} else {
				fmt.Fprintf(deps.out, "%d match(es) for %q\n", len(res.Drivers), res.Query)
				for _, d := range res.Drivers {
					fmt.Fprintf(deps.out, "  #%d %s %s\n", d.Number, d.DisplayName(), d.City)
				}
			}
			shown.Store(res.Generation)
		}
	}()

	scanner := bufio.NewScanner(deps.in)
	var last uint64
	for scanner.Scan() {
		last = searcher.Search(ctx, strings.TrimSpace(scanner.Text()))
	}

	// Input is exhausted; let the final query print before closing.
	deadline := time.After(deps.debounce + 5*time.Second)
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
wait:
	for last > 0 && shown.Load() < last {
		select {
		case <-tick.C:
		case <-deadline:
			break wait
		case <-ctx.Done():
			break wait
		}
	}
	searcher.Close()
	<-printed
	return scanner.Err()
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("at least one race id is required")
	}
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("invalid race id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
