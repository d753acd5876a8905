// Package eventbus is the in-process publish/subscribe channel feeding the
// live-event fan-out. Delivery is best-effort: a subscriber that cannot keep
// up drops events rather than blocking publishers.
package eventbus

import "sync"

// EventType enumerates the live-event envelope types.
type EventType string

const (
	EventRideCreated           EventType = "RIDE_CREATED"
	EventRideUpdated           EventType = "RIDE_UPDATED"
	EventDriverCreated         EventType = "DRIVER_CREATED"
	EventDriverStatusChanged   EventType = "DRIVER_STATUS_CHANGED"
	EventDriverLocationUpdated EventType = "DRIVER_LOCATION_UPDATED"
	EventDriverAssigned        EventType = "DRIVER_ASSIGNED"
	EventTripAccepted          EventType = "TRIP_ACCEPTED"
	EventTripStarted           EventType = "TRIP_STARTED"
	EventTripEnded             EventType = "TRIP_ENDED"
	EventTripReceipt           EventType = "TRIP_RECEIPT"
	EventPaymentCompleted      EventType = "PAYMENT_COMPLETED"
	EventPaymentFailed         EventType = "PAYMENT_FAILED"
)

// Event is the envelope pushed to subscribers.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// Bus fans events out to all current subscribers.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan Event
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber with the given channel buffer and returns
// the receive channel plus an unsubscribe function. Unsubscribing closes the
// channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber whose buffer has room.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber; drop rather than block the publisher.
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
