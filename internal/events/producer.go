package events

import (
	"context"
	"time"

	"github.com/Digvijay2347/B2B-Customer-Relationship-Management-CRM/internal/domain"
)

// Producer publishes domain events to the event feed. Publishing is best
// effort: callers log failures and carry on, the triggering request never
// fails because the feed is down.
type Producer interface {
	Publish(ctx context.Context, event domain.Event) error
	Close() error
}

// NoopProducer drops every event. Used when no broker is configured.
type NoopProducer struct{}

// NewNoopProducer creates a producer that discards events.
func NewNoopProducer() *NoopProducer {
	return &NoopProducer{}
}

func (NoopProducer) Publish(ctx context.Context, event domain.Event) error { return nil }

func (NoopProducer) Close() error { return nil }

// NewEvent builds an event envelope stamped with the current time.
func NewEvent(eventType, entityID, actorID string, payload map[string]interface{}) domain.Event {
	return domain.Event{
		Type:      eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
