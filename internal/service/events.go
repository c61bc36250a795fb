package service

import (
	"sync"

	"bountyhunter/internal/model"
)

// EventHub fans domain events out to per-user websocket subscribers. Delivery
// is best effort: a subscriber that cannot keep up loses events rather than
// blocking the publisher.
type EventHub struct {
	mu   sync.RWMutex
	subs map[int64]map[chan model.Event]struct{}
}

const subscriberBuffer = 16

func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[int64]map[chan model.Event]struct{}),
	}
}

func (h *EventHub) Subscribe(userID int64) chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan model.Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}

	return ch
}

func (h *EventHub) Unsubscribe(userID int64, ch chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set, ok := h.subs[userID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
		if len(set) == 0 {
			delete(h.subs, userID)
		}
	}
}

func (h *EventHub) Publish(userID int64, event model.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
