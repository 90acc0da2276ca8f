// Package events carries the in-process pub/sub backbone: lead mutations
// publish domain events and the notification side subscribes. The concrete
// event types live in internal/events; this package knows nothing about them.
package events

import (
	"context"
	"time"
)

// Event is a domain occurrence. Implementations embed BaseEvent and add
// their payload fields.
type Event interface {
	// EventName identifies the event type, e.g. "leads.lead.assigned".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp every event shares.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a new base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of one type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is the publish/subscribe surface. Publication is fire-and-forget: a
// mutation never fails because a subscriber did.
type Bus interface {
	// Publish hands the event to every handler subscribed to its name.
	// Handlers run asynchronously.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a handler for the name an Event reports from
	// EventName.
	Subscribe(eventName string, handler Handler)
}
