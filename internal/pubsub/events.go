// Package pubsub fans typed events out to subscribers. Layers publish item
// edits, the watcher publishes dataset reloads and the logger publishes
// formatted lines for the viewer's log tail.
package pubsub

import (
	"context"
	"time"
)

// EventType names what happened.
type EventType string

const (
	// EditedEvent is published by a layer after a behavior edited a datum.
	EditedEvent EventType = "edited"
	// ReloadedEvent is published by the watcher when a dataset file changed.
	ReloadedEvent EventType = "reloaded"
	// LoggedEvent carries one formatted log line.
	LoggedEvent EventType = "logged"
)

// Event is a published payload with its type and publish time.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
