package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/polkiloo/homecare/internal/domain/model"
)

const defaultBuffer = 16

// Broadcaster fans a message event out to every interested subscriber.
type Broadcaster interface {
	Broadcast(ctx context.Context, event model.MessageEvent) error
}

// Hub keeps per-user subscriptions of this instance.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

var _ Broadcaster = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), logger: logger}
}

// Subscription receives events addressed to one user. Close must be called once the consumer is gone.
type Subscription struct {
	hub    *Hub
	userID string
	ch     chan model.MessageEvent
	once   sync.Once
}

// Events is closed when the subscription is closed.
func (s *Subscription) Events() <-chan model.MessageEvent {
	return s.ch
}

// Close unregisters the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if set, ok := s.hub.subs[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.hub.subs, s.userID)
			}
		}
		close(s.ch)
	})
}

// Subscribe registers a consumer for events of the user with a bounded buffer.
func (h *Hub) Subscribe(userID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	sub := &Subscription{hub: h, userID: userID, ch: make(chan model.MessageEvent, buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Publish hands the event to subscribers of its recipient without blocking.
// A full subscriber buffer drops the event.
func (h *Hub) Publish(event model.MessageEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.RecipientID] {
		select {
		case sub.ch <- event:
		default:
			h.logger.Warn("subscriber buffer full, event dropped",
				slog.String("user_id", event.RecipientID),
				slog.String("message_id", event.MessageID))
		}
	}
}

func (h *Hub) Broadcast(_ context.Context, event model.MessageEvent) error {
	h.Publish(event)
	return nil
}

// SubscriberCount returns the number of open subscriptions of the user.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
