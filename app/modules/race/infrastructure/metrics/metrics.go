package racemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RaceMetrics records service operation outcomes.
type RaceMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordExportGenerated(ctx context.Context, races int, duration time.Duration)
	RecordSessionCommand(ctx context.Context, command string, err error)
}

type prometheusMetrics struct {
	attempts       *prometheus.CounterVec
	successes      *prometheus.CounterVec
	failures       *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	exports        prometheus.Counter
	exportDuration prometheus.Histogram
	commands       *prometheus.CounterVec
}

// NewPrometheus registers the race metrics on the given registerer.
func NewPrometheus(reg prometheus.Registerer, namespace string) (RaceMetrics, error) {
	m := &prometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "operation_success_total",
			Help:      "Service operations completed without error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "exports_total",
			Help:      "Report workbooks generated.",
		}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "export_duration_seconds",
			Help:      "Time spent building a report workbook.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "race",
			Name:      "session_commands_total",
			Help:      "Live session commands applied, by outcome.",
		}, []string{"command", "outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.attempts, m.successes, m.failures, m.durations, m.exports, m.exportDuration, m.commands,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.durations.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordExportGenerated(_ context.Context, _ int, duration time.Duration) {
	m.exports.Inc()
	m.exportDuration.Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordSessionCommand(_ context.Context, command string, err error) {
	outcome := "applied"
	if err != nil {
		outcome = "rejected"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

type noop struct{}

// NewNoop returns metrics that discard everything.
func NewNoop() RaceMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string)                 {}
func (noop) RecordOperationSuccess(context.Context, string, string)                 {}
func (noop) RecordOperationFailure(context.Context, string, string)                 {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordExportGenerated(context.Context, int, time.Duration)              {}
func (noop) RecordSessionCommand(context.Context, string, error)                    {}
