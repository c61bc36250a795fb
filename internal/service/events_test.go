package service

import (
	"testing"

	"bountyhunter/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestEventHub_PublishReachesSubscriber(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe(1)
	defer hub.Unsubscribe(1, ch)

	hub.Publish(1, model.Event{Type: model.EventPointsAwarded})
	hub.Publish(2, model.Event{Type: model.EventTaskCompleted})

	select {
	case event := <-ch:
		assert.Equal(t, model.EventPointsAwarded, event.Type)
	default:
		t.Fatal("expected an event for user 1")
	}

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s for user 1", event.Type)
	default:
	}
}

func TestEventHub_SlowSubscriberLosesEvents(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe(1)
	defer hub.Unsubscribe(1, ch)

	// one more than the buffer; Publish must not block
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Publish(1, model.Event{Type: model.EventPointsAwarded})
	}

	assert.Len(t, ch, subscriberBuffer)
}

func TestEventHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewEventHub()

	ch := hub.Subscribe(1)
	hub.Unsubscribe(1, ch)

	_, open := <-ch
	assert.False(t, open)

	// publishing to a user with no subscribers is fine
	hub.Publish(1, model.Event{Type: model.EventPointsAwarded})
}
