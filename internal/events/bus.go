// Package events provides an in-memory pub/sub bus used to stream lookup
// progress to SSE subscribers.
package events

import "sync"

// Event types published by the lookup layer.
const (
	EventLookupStarted   = "lookup.started"
	EventLookupCompleted = "lookup.completed"
	EventLookupFailed    = "lookup.failed"
)

// Event represents a single event on the bus.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event

// Bus manages event subscriptions and publishing. Publishing never blocks:
// an event is dropped for subscribers whose buffer is full.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Subscriber
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string][]Subscriber),
	}
}

// Subscribe registers a subscriber for an event type. The empty event type
// subscribes to everything. The returned function unsubscribes and closes
// the channel.
func (b *Bus) Subscribe(eventType string) (Subscriber, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 64)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[eventType]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return ch, unsubscribe
}

// Publish sends an event to all subscribers of its type and to wildcard
// subscribers.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		select {
		case ch <- event:
		default:
		}
	}
	if event.Type != "" {
		for _, ch := range b.subscribers[""] {
			select {
			case ch <- event:
			default:
			}
		}
	}
}
