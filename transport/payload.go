package transport

import (
	"encoding/json"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"
	"messenger-core/runtime"
	"messenger-core/services"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Inbound frames carry an action name and an action-specific payload.
// Payloads are validated before dispatch; validation failures are answered
// with an error frame, never with a dropped connection.
type inboundFrame struct {
	Action string          `json:"action" validate:"required"`
	Data   json.RawMessage `json:"data"`
}

type sendMessagePayload struct {
	ChatID     int64  `json:"chat_id" validate:"required"`
	Content    string `json:"content" validate:"required_without=Attachment"`
	Attachment string `json:"attachment,omitempty"`
}

type advanceStatusPayload struct {
	MessageID string `json:"message_id" validate:"required,uuid4"`
	Status    int    `json:"status" validate:"min=0,max=2"`
}

type advanceBatchPayload struct {
	ChatID     int64    `json:"chat_id" validate:"required"`
	Status     int      `json:"status" validate:"min=0,max=2"`
	MessageIDs []string `json:"message_ids,omitempty" validate:"omitempty,dive,uuid4"`
}

type topicPayload struct {
	Topic string `json:"topic" validate:"required"`
}

type createChatRequest struct {
	Members []int64 `json:"members" validate:"required,min=2"`
}

// Outbound frames mirror the inbound shape with a type discriminator.
type outboundFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type wireAttachment struct {
	Ref      string `json:"ref"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

type wireRecipientStatus struct {
	Subject int64 `json:"subject"`
	Status  int   `json:"status"`
}

type wireMessage struct {
	ID         string                `json:"id"`
	ChatID     int64                 `json:"chat_id"`
	SenderID   int64                 `json:"sender_id"`
	Content    string                `json:"content"`
	Attachment *wireAttachment       `json:"attachment,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	Recipients []wireRecipientStatus `json:"recipients"`
}

type wireStatusChange struct {
	MessageIDs []string `json:"message_ids"`
	Status     int      `json:"status"`
	Subject    int64    `json:"subject"`
}

type wireBatchResult struct {
	Moved  []string `json:"moved"`
	Failed []string `json:"failed,omitempty"`
}

type wireError struct {
	Action string `json:"action,omitempty"`
	Reason string `json:"reason"`
}

func toWireAttachment(att *domain.Attachment) *wireAttachment {
	if att == nil {
		return nil
	}
	return &wireAttachment{Ref: att.Ref, URL: att.URL, MimeType: att.MimeType}
}

func toWireRecipients(recipients []event.RecipientStatus) []wireRecipientStatus {
	return lo.Map(recipients, func(r event.RecipientStatus, _ int) wireRecipientStatus {
		return wireRecipientStatus{Subject: int64(r.Subject), Status: int(r.Status)}
	})
}

func toWireMessage(view runtime.MessageView) wireMessage {
	return wireMessage{
		ID:         view.Message.ID.String(),
		ChatID:     int64(view.Message.Chat),
		SenderID:   int64(view.Message.Sender),
		Content:    view.Message.Content,
		Attachment: toWireAttachment(view.Attachment),
		CreatedAt:  view.Message.CreatedAt,
		Recipients: toWireRecipients(view.Recipients),
	}
}

func toWireHistoryEntry(entry services.HistoryEntry) wireMessage {
	return wireMessage{
		ID:        entry.Message.ID.String(),
		ChatID:    int64(entry.Message.Chat),
		SenderID:  int64(entry.Message.Sender),
		Content:   entry.Message.Content,
		CreatedAt: entry.Message.CreatedAt,
		Recipients: lo.Map(entry.Recipients, func(s domain.MessageStatus, _ int) wireRecipientStatus {
			return wireRecipientStatus{Subject: int64(s.Subject), Status: int(s.Status)}
		}),
	}
}

// toOutbound translates a routed domain event into the frame pushed to the
// socket. Unknown event types are skipped rather than failing the session.
func toOutbound(e event.DomainEvent) (outboundFrame, bool) {
	switch evt := e.(type) {
	case event.MessageCreated:
		return outboundFrame{Type: "message_created", Data: toWireMessage(runtime.MessageView{
			Message:    evt.Message,
			Attachment: evt.Attachment,
			Recipients: evt.Recipients,
		})}, true
	case event.StatusChanged:
		return outboundFrame{Type: "status_changed", Data: wireStatusChange{
			MessageIDs: lo.Map(evt.MessageIDs, func(id uuid.UUID, _ int) string { return id.String() }),
			Status:     int(evt.NewStatus),
			Subject:    int64(evt.Subject),
		}}, true
	default:
		return outboundFrame{}, false
	}
}
