package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	id1, ch1 := b.Subscribe()
	id2, ch2 := b.Subscribe()
	defer b.Unsubscribe(id1)
	defer b.Unsubscribe(id2)

	b.Publish(Event{Type: "booking.created", BookingID: "b-1"})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			require.Equal(t, "booking.created", e.Type)
			require.Equal(t, "b-1", e.BookingID)
			require.False(t, e.OccurredAt.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	b.Unsubscribe(id)

	_, ok := <-ch
	require.False(t, ok)

	// Unsubscribing twice is harmless.
	b.Unsubscribe(id)
}

func TestPublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	id, _ := b.Subscribe()
	defer b.Unsubscribe(id)

	// Overfill the subscriber's queue; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < subscriberBuffer*2; i++ {
			b.Publish(Event{Type: "booking.updated"})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
