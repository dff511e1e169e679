package racerouter

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	raceevents "github.com/Black-And-White-Club/race-tally/app/modules/race/domain/events"
	racehandlers "github.com/Black-And-White-Club/race-tally/app/modules/race/infrastructure/handlers"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type FakeExportRequester struct {
	calls atomic.Int32
	err   error
}

func (f *FakeExportRequester) RequestExport(context.Context, []uuid.UUID) (int64, error) {
	f.calls.Add(1)
	return 1, f.err
}

type noSessions struct{}

func (noSessions) Get(uuid.UUID) (*raceservice.Session, bool) { return nil, false }

func startRouter(t *testing.T, exports *FakeExportRequester) *gochannel.GoChannel {
	t.Helper()
	t.Setenv(TestEnvironmentFlag, TestEnvironmentValue)

	wmLogger := watermill.NopLogger{}
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	require.NoError(t, err)

	r := NewRaceRouter(discardLogger(), router, pubsub, NewPublisher(pubsub), noop.NewTracerProvider().Tracer("test"), nil)
	require.NoError(t, r.Configure(context.Background(), racehandlers.NewRaceHandlers(exports, noSessions{}, discardLogger())))

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = router.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = r.Close()
	})

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	return pubsub
}

func TestRouterPublishesHandlerResults(t *testing.T) {
	exports := &FakeExportRequester{err: raceservice.ErrEmptyMergeSet}
	pubsub := startRouter(t, exports)

	failed, err := pubsub.Subscribe(context.Background(), raceevents.ReportExportFailedV1)
	require.NoError(t, err)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, NewPublisher(pubsub).Publish(ctx, raceevents.ExportRequestedV1, raceevents.ExportRequestedPayloadV1{}))

	select {
	case msg := <-failed:
		msg.Ack()
		assert.Equal(t, "corr-1", middleware.MessageCorrelationID(msg))
		var payload raceevents.ReportExportFailedPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, raceservice.ErrEmptyMergeSet.Error(), payload.Reason)
	case <-time.After(5 * time.Second):
		t.Fatal("no failure event published")
	}
	assert.Equal(t, int32(1), exports.calls.Load())
}

func TestRouterDropsInvalidPayload(t *testing.T) {
	exports := &FakeExportRequester{}
	pubsub := startRouter(t, exports)

	require.NoError(t, pubsub.Publish(raceevents.RaceFinishedV1, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	valid, err := json.Marshal(raceevents.RaceFinishedPayloadV1{RaceID: uuid.New()})
	require.NoError(t, err)
	require.NoError(t, pubsub.Publish(raceevents.RaceFinishedV1, message.NewMessage(watermill.NewUUID(), valid)))

	assert.Eventually(t, func() bool { return exports.calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)
}
