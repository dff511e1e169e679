package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/Black-And-White-Club/race-tally/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

const (
	clientName = "race-tally"
	queueGroup = "race-tally"
)

// EventBus carries race events over NATS. Messages travel on core NATS
// subjects; the race stream keeps a copy of every event for replay.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	conn   *nc.Conn
	logger *slog.Logger
}

// NewEventBus connects the watermill publisher and subscriber to NATS.
func NewEventBus(ctx context.Context, cfg config.NATSConfig, logger *slog.Logger) (*EventBus, error) {
	opts, err := natsOptions(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := nc.Connect(cfg.URL, opts...)
	if err != nil {
		logger.Error("Failed to connect to NATS", attr.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}
	if err := EnsureStream(ctx, js, logger); err != nil {
		conn.Close()
		return nil, err
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   jsConfig,
	}, wmLogger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: queueGroup,
		NatsOptions:      opts,
		Unmarshaler:      marshaler,
		JetStream:        jsConfig,
	}, wmLogger)
	if err != nil {
		_ = publisher.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &EventBus{
		Publisher:  publisher,
		Subscriber: subscriber,
		conn:       conn,
		logger:     logger,
	}, nil
}

// natsOptions builds the connection options. A configured nkey seed signs
// the server's authentication nonce.
func natsOptions(cfg config.NATSConfig) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.Name(clientName),
		nc.RetryOnFailedConnect(true),
	}
	if cfg.NKeySeed == "" {
		return opts, nil
	}

	kp, err := nkeys.FromSeed([]byte(cfg.NKeySeed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive NATS nkey: %w", err)
	}
	return append(opts, nc.Nkey(pub, kp.Sign)), nil
}

// Close closes the publisher, subscriber and connection.
func (eb *EventBus) Close() error {
	var errs []error
	if err := eb.Publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
	}
	if err := eb.Subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close subscriber: %w", err))
	}
	eb.conn.Close()
	if err := errors.Join(errs...); err != nil {
		eb.logger.Error("Event bus closed with errors", attr.Error(err))
		return err
	}
	return nil
}
