package transport

import (
	"testing"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestToOutbound_MessageCreated(t *testing.T) {
	req := require.New(t)
	msgID := uuid.New()
	att := &domain.Attachment{Ref: "att-1", URL: "https://cdn.example.com/a.png", MimeType: "image/png"}

	frame, ok := toOutbound(event.MessageCreated{
		Message:    domain.Message{ID: msgID, Chat: 1, Sender: 10, Content: "hi", CreatedAt: time.Now().UTC()},
		Attachment: att,
		Recipients: []event.RecipientStatus{{Subject: 11, Status: domain.StatusSent}},
	})

	req.True(ok)
	req.Equal("message_created", frame.Type)
	msg, ok := frame.Data.(wireMessage)
	req.True(ok)
	req.Equal(msgID.String(), msg.ID)
	req.Equal(int64(10), msg.SenderID)
	req.NotNil(msg.Attachment)
	req.Equal("att-1", msg.Attachment.Ref)
	req.Equal([]wireRecipientStatus{{Subject: 11, Status: 0}}, msg.Recipients)
}

func TestToOutbound_StatusChanged(t *testing.T) {
	req := require.New(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}

	frame, ok := toOutbound(event.StatusChanged{
		MessageIDs: ids,
		NewStatus:  domain.StatusRead,
		Subject:    12,
		Sender:     10,
	})

	req.True(ok)
	req.Equal("status_changed", frame.Type)
	change, ok := frame.Data.(wireStatusChange)
	req.True(ok)
	req.Equal([]string{ids[0].String(), ids[1].String()}, change.MessageIDs)
	req.Equal(2, change.Status)
	req.Equal(int64(12), change.Subject)
}

func TestToOutbound_Skips_Unknown_Events(t *testing.T) {
	req := require.New(t)
	_, ok := toOutbound(nil)
	req.False(ok)
}
