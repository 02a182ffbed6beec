package service

import (
	"sync"

	"fleetops/internal/domain"
)

// EventType distinguishes the payload carried by a broker event.
type EventType string

const (
	EventTypeAlert    EventType = "ALERT"
	EventTypePosition EventType = "POSITION"
)

// Event is one item pushed to tracking subscribers.
type Event struct {
	Type  EventType
	Alert *domain.Alert
	Point *domain.TrackingPoint
}

// subscriberBuffer is the per-subscriber channel depth. Publish drops
// events for a subscriber whose buffer is full, so a slow consumer can
// never stall the ingestion tick.
const subscriberBuffer = 16

// AlertBroker fans tracking events out to subscribers. Subscribers are
// identified by caller-chosen IDs so they can be detached again.
type AlertBroker struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

// NewAlertBroker creates a new AlertBroker.
func NewAlertBroker() *AlertBroker {
	return &AlertBroker{subs: make(map[string]chan Event)}
}

// Subscribe registers a subscriber and returns its event channel.
// Re-subscribing with an existing ID replaces the old subscription.
func (b *AlertBroker) Subscribe(id string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if old, ok := b.subs[id]; ok {
		close(old)
	}
	b.subs[id] = ch
	b.mu.Unlock()

	return ch
}

// Unsubscribe detaches a subscriber and closes its channel.
func (b *AlertBroker) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every subscriber without blocking. Events
// to full buffers are dropped.
func (b *AlertBroker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// SubscriberCount returns the number of attached subscribers.
func (b *AlertBroker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
