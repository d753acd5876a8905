package eventbus

import (
	"testing"
	"time"
)

func TestBus_FanOut(t *testing.T) {
	t.Parallel()

	bus := New()
	ch1, cancel1 := bus.Subscribe(4)
	ch2, cancel2 := bus.Subscribe(4)
	defer cancel1()
	defer cancel2()

	bus.Publish(Event{Type: EventRideCreated, Payload: "r1"})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Type != EventRideCreated {
				t.Errorf("subscriber %d: expected %s, got %s", i, EventRideCreated, evt.Type)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event delivered", i)
		}
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()

	bus := New()
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	// Buffer of one: the second publish must drop, not block.
	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Type: EventTripStarted})
		bus.Publish(Event{Type: EventTripEnded})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	evt := <-ch
	if evt.Type != EventTripStarted {
		t.Errorf("expected first event retained, got %s", evt.Type)
	}
	select {
	case evt := <-ch:
		t.Errorf("expected second event dropped, got %s", evt.Type)
	default:
	}
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := New()
	ch, cancel := bus.Subscribe(1)

	if bus.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", bus.SubscriberCount())
	}

	cancel()

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", bus.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Error("expected channel closed after cancel")
	}

	// Cancel is safe to call twice.
	cancel()

	// Publishing with no subscribers is a no-op.
	bus.Publish(Event{Type: EventPaymentCompleted})
}

func TestBus_PublishAfterUnsubscribeDoesNotPanic(t *testing.T) {
	t.Parallel()

	bus := New()
	_, cancel := bus.Subscribe(1)
	ch2, cancel2 := bus.Subscribe(1)
	defer cancel2()

	cancel()
	bus.Publish(Event{Type: EventDriverAssigned})

	select {
	case evt := <-ch2:
		if evt.Type != EventDriverAssigned {
			t.Errorf("expected %s, got %s", EventDriverAssigned, evt.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("remaining subscriber did not receive event")
	}
}
