// Package events carries booking-related change notifications to open
// views. It replaces a process-wide singleton with an explicit broadcaster:
// subscribers register for a channel, publishers fan out to everyone.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event describes one booking-related change.
type Event struct {
	Type       string    `json:"type"` // e.g. "booking.created", "booking.cancelled", "enrollment.created"
	BookingID  string    `json:"booking_id,omitempty"`
	ClassID    string    `json:"class_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

const subscriberBuffer = 16

// Broadcaster fans events out to all current subscribers. Each subscriber
// gets a buffered queue; a subscriber that stops draining loses newest
// events rather than blocking publishers.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]chan Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
// The channel is closed on Unsubscribe.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	return id, ch
}

// Unsubscribe removes the subscriber and closes its channel. Unknown ids
// are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the event to every current subscriber.
func (b *Broadcaster) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Queue full; the subscriber is behind and will refetch anyway.
		}
	}
}
