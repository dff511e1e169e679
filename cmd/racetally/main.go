package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/race-tally/app/eventbus"
	"github.com/Black-And-White-Club/race-tally/app/modules/race"
	"github.com/Black-And-White-Club/race-tally/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Observability.SlogLevel(),
	})).With(attr.String("service", "race-tally"))
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("race-tally exited with error", attr.Error(err))
		os.Exit(1)
	}
	logger.Info("Graceful shutdown complete.")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Database
	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Event bus
	bus, err := eventbus.NewEventBus(ctx, cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		return err
	}

	module, err := race.NewRaceModule(
		ctx,
		cfg,
		logger,
		otel.Tracer("race-tally"),
		registry,
		db,
		router,
		bus.Subscriber,
		bus.Publisher,
	)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go module.Run(ctx, &wg)

	go func() {
		if err := router.Run(ctx); err != nil {
			logger.Error("Watermill router stopped", attr.Error(err))
		}
	}()

	var metricsServer *http.Server
	if cfg.Observability.MetricsAddress != "" {
		metricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server stopped", attr.Error(err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("Shutting down race-tally")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	err = module.Close()
	wg.Wait()
	return err
}
