package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/nats-io/nats.go/jetstream"
)

// RaceStream captures every race subject.
var RaceStream = jetstream.StreamConfig{
	Name:      "RACE",
	Subjects:  []string{"race.>"},
	Retention: jetstream.LimitsPolicy,
	MaxAge:    30 * 24 * time.Hour,
}

// StreamManager is the part of JetStream used to provision streams.
type StreamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// EnsureStream creates the race stream when it does not exist yet.
func EnsureStream(ctx context.Context, js StreamManager, logger *slog.Logger) error {
	_, err := js.Stream(ctx, RaceStream.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to check stream %s: %w", RaceStream.Name, err)
	}

	if _, err := js.CreateStream(ctx, RaceStream); err != nil {
		logger.Error("Failed to create JetStream stream", attr.String("stream", RaceStream.Name), attr.Error(err))
		return fmt.Errorf("failed to create stream %s: %w", RaceStream.Name, err)
	}
	logger.Info("Created JetStream stream", attr.String("stream", RaceStream.Name))
	return nil
}
