package racerouter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	racehandlers "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

type RaceRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	publisher      raceservice.EventPublisher
	tracer         trace.Tracer
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewRaceRouter creates a new instance of the router. Router metrics are
// registered only when a registry is given outside the test environment.
func NewRaceRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher raceservice.EventPublisher,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *RaceRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &RaceRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers the race handlers.
func (r *RaceRouter) Configure(ctx context.Context, handlers racehandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Race")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	return r.RegisterHandlers(ctx, handlers)
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  raceservice.EventPublisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandler decodes the topic's payload, runs the handler inside a span
// and publishes the handler's results.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]racehandlers.Result, error),
) {
	handlerName := "race." + topic
	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		wrapTyped(handlerName, deps, handler),
	)
}

func wrapTyped[T any](
	handlerName string,
	deps handlerDeps,
	handler func(context.Context, *T) ([]racehandlers.Result, error),
) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		correlation := middleware.MessageCorrelationID(msg)
		ctx := WithCorrelationID(msg.Context(), correlation)
		ctx, span := deps.tracer.Start(ctx, handlerName, trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()

		logger := deps.logger.With(
			attr.String("handler", handlerName),
			attr.String("correlation_id", correlation),
			attr.String("message_id", msg.UUID),
		)

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			// Redelivery cannot fix a malformed payload.
			logger.ErrorContext(ctx, "Dropping message with invalid payload", attr.Error(err))
			span.SetStatus(codes.Error, "invalid payload")
			return nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed", attr.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		for _, res := range results {
			if err := deps.publisher.Publish(ctx, res.Topic, res.Payload); err != nil {
				span.RecordError(err)
				return fmt.Errorf("%s: %w", handlerName, err)
			}
		}
		return nil
	}
}

// RegisterHandlers binds race topics to their handlers.
func (r *RaceRouter) RegisterHandlers(ctx context.Context, handlers racehandlers.Handlers) error {
	r.logger.InfoContext(ctx, "Registering Race Event Handlers")

	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	// Live session ingest
	registerHandler(deps, raceevents.CrossingRecordedV1, handlers.HandleCrossingRecorded)
	registerHandler(deps, raceevents.PenaltyResolvedV1, handlers.HandlePenaltyResolved)

	// Reports
	registerHandler(deps, raceevents.RaceFinishedV1, handlers.HandleRaceFinished)
	registerHandler(deps, raceevents.ExportRequestedV1, handlers.HandleExportRequested)

	return nil
}

// Close stops the router and cleans up resources.
func (r *RaceRouter) Close() error {
	return r.Router.Close()
}
