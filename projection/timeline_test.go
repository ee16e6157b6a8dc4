package projection

import (
	"context"
	"testing"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func created(chat domain.ChatID, sender domain.UserID, content string) event.MessageCreated {
	return event.MessageCreated{Message: domain.Message{
		ID:        uuid.New(),
		Chat:      chat,
		Sender:    sender,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}}
}

func TestChatTimeline_Consume_MessageCreated(t *testing.T) {
	req := require.New(t)
	timeline := NewChatTimeline(10)
	ctx := context.Background()

	req.NoError(timeline.Consume(ctx, created(1, 10, "Hello Bob")))
	req.NoError(timeline.Consume(ctx, created(1, 12, "Hi Bob")))
	req.NoError(timeline.Consume(ctx, created(2, 10, "other chat")))

	recent := timeline.Recent(1)
	req.Len(recent, 2)
	req.Equal(domain.UserID(10), recent[0].Sender)
	req.Equal(domain.UserID(12), recent[1].Sender)
	req.Len(timeline.Recent(2), 1)
}

func TestChatTimeline_Caps_Per_Chat(t *testing.T) {
	req := require.New(t)
	timeline := NewChatTimeline(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		req.NoError(timeline.Consume(ctx, created(1, 10, "tick")))
	}

	req.Len(timeline.Recent(1), 3)
}

func TestChatTimeline_Ignores_Status_Events(t *testing.T) {
	req := require.New(t)
	timeline := NewChatTimeline(10)

	err := timeline.Consume(context.Background(), event.StatusChanged{
		MessageIDs: []uuid.UUID{uuid.New()},
		NewStatus:  domain.StatusRead,
		Subject:    11,
		Sender:     10,
	})
	req.NoError(err)
	req.Empty(timeline.Recent(1))

	stats := timeline.Stats()
	req.Equal(0, stats["chats_observed"])
}
