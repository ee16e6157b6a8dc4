// Package projection builds read-side views from observed events.
// Projections consume the fan-out stream like any session sink but keep
// their state in memory; they never emit events back.
package projection

import (
	"context"
	"sync"

	"messenger-core/contract"
	"messenger-core/domain"
	"messenger-core/domain/event"
)

var _ contract.EventSink = (*ChatTimeline)(nil)

// ChatTimeline keeps the most recent messages of every chat, capped per
// chat. It backs the debug inspector and gives operators a live view of
// traffic without touching the store.
type ChatTimeline struct {
	mu       sync.RWMutex
	capacity int
	byChat   map[domain.ChatID][]domain.Message
}

func NewChatTimeline(capacity int) *ChatTimeline {
	return &ChatTimeline{
		capacity: capacity,
		byChat:   make(map[domain.ChatID][]domain.Message),
	}
}

func (t *ChatTimeline) Consume(_ context.Context, e event.DomainEvent) error {
	created, ok := e.(event.MessageCreated)
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	recent := append(t.byChat[created.Message.Chat], created.Message)
	if len(recent) > t.capacity {
		recent = recent[len(recent)-t.capacity:]
	}
	t.byChat[created.Message.Chat] = recent
	return nil
}

// Recent returns a copy of the chat's tail, oldest first.
func (t *ChatTimeline) Recent(chat domain.ChatID) []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	recent := t.byChat[chat]
	out := make([]domain.Message, len(recent))
	copy(out, recent)
	return out
}

// Stats summarizes the projection for the debug dashboard.
func (t *ChatTimeline) Stats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	total := 0
	for _, recent := range t.byChat {
		total += len(recent)
	}
	return map[string]any{
		"chats_observed":  len(t.byChat),
		"messages_cached": total,
	}
}
