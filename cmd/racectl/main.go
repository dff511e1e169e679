package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	racequeue "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/queue"
	racedb "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/repositories"
	racetime "github.com/Black-And-White-Club/race-tally/app/modules/race/time_utils"
	"github.com/Black-And-White-Club/race-tally/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

func main() {
	var db *bun.DB
	deps := &commandDeps{
		since: racetime.NewSinceParser(time.Local),
		in:    os.Stdin,
		out:   os.Stdout,
	}

	app := newApp(deps, func(c *cli.Context, deps *commandDeps) error {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Observability.SlogLevel(),
		}))

		db = bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN))), pgdialect.New())

		service := raceservice.NewRaceService(racedb.NewRepository(db), logger, nil, noop.NewTracerProvider().Tracer("racectl"), db, nil, nil)
		exporter := racequeue.NewReportExporter(service, &printPublisher{out: deps.out}, cfg.Export.Dir, logger, nil)
		queue := racequeue.NewLocalQueue(c.Context, exporter)
		service.SetReportQueue(queue)

		deps.api = service
		deps.debounce = cfg.Search.Debounce
		deps.waitExports = queue.Wait
		return nil
	})
	app.After = func(*cli.Context) error {
		if db != nil {
			return db.Close()
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// printPublisher reports export events on the terminal in place of the bus.
type printPublisher struct {
	out io.Writer
}

func (p *printPublisher) Publish(_ context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.out, "%s %s\n", topic, body)
	return err
}
