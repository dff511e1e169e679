package racerouter

import (
	"context"
	"encoding/json"
	"fmt"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

type correlationKey struct{}

// WithCorrelationID carries a correlation id to messages published under ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return watermill.NewUUID()
}

// Publisher encodes payloads as JSON watermill messages.
type Publisher struct {
	pub message.Publisher
}

var _ raceservice.EventPublisher = (*Publisher)(nil)

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID(ctx), msg)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}
