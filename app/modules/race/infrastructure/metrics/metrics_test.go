package racemetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheus(reg, "racetally")
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "GetRanking", "RaceService")
	m.RecordOperationAttempt(ctx, "GetRanking", "RaceService")
	m.RecordOperationFailure(ctx, "GetRanking", "RaceService")
	m.RecordOperationDuration(ctx, "GetRanking", "RaceService", 20*time.Millisecond)
	m.RecordSessionCommand(ctx, "record_crossing", nil)
	m.RecordSessionCommand(ctx, "record_crossing", errors.New("boom"))

	pm := m.(*prometheusMetrics)
	assert.Equal(t, 2.0, testutil.ToFloat64(pm.attempts.WithLabelValues("GetRanking", "RaceService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.failures.WithLabelValues("GetRanking", "RaceService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.commands.WithLabelValues("record_crossing", "rejected")))

	_, err = NewPrometheus(reg, "racetally")
	assert.Error(t, err, "registering twice on one registry must fail")
}
