package service

import (
	"testing"

	"fleetops/internal/domain"
)

func TestBrokerDeliversToAllSubscribers(t *testing.T) {
	b := NewAlertBroker()
	ch1 := b.Subscribe("c1")
	ch2 := b.Subscribe("c2")

	b.Publish(Event{Type: EventTypeAlert, Alert: &domain.Alert{ID: "a1"}})

	for name, ch := range map[string]<-chan Event{"c1": ch1, "c2": ch2} {
		select {
		case evt := <-ch:
			if evt.Alert == nil || evt.Alert.ID != "a1" {
				t.Errorf("%s: unexpected event %+v", name, evt)
			}
		default:
			t.Errorf("%s: expected a buffered event", name)
		}
	}
}

func TestBrokerDropsWhenBufferFull(t *testing.T) {
	b := NewAlertBroker()
	ch := b.Subscribe("slow")

	// Publish must never block, even well past the buffer size.
	for i := 0; i < subscriberBuffer*3; i++ {
		b.Publish(Event{Type: EventTypePosition, Point: &domain.TrackingPoint{VehicleID: "v1"}})
	}

	if got := len(ch); got != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, got)
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewAlertBroker()
	ch := b.Subscribe("c1")
	b.Unsubscribe("c1")

	if _, open := <-ch; open {
		t.Errorf("expected the channel to be closed")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}

	// Publishing with no subscribers is a no-op.
	b.Publish(Event{Type: EventTypeAlert, Alert: &domain.Alert{ID: "a1"}})
}

func TestBrokerResubscribeReplacesOldChannel(t *testing.T) {
	b := NewAlertBroker()
	old := b.Subscribe("c1")
	fresh := b.Subscribe("c1")

	if _, open := <-old; open {
		t.Errorf("expected the replaced channel to be closed")
	}

	b.Publish(Event{Type: EventTypeAlert, Alert: &domain.Alert{ID: "a1"}})
	select {
	case evt := <-fresh:
		if evt.Alert.ID != "a1" {
			t.Errorf("unexpected event %+v", evt)
		}
	default:
		t.Errorf("expected the fresh channel to receive")
	}
}
