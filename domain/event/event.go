// Package event defines the outbound events produced for the transport
// gateway to push to live sessions.
package event

import (
	"messenger-core/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything routable to a set of live sessions.
type DomainEvent interface {
	Topic() domain.Topic
}

// RecipientStatus pairs a recipient with its current delivery status,
// shaped for direct consumption by subscribed sessions.
type RecipientStatus struct {
	Subject domain.UserID
	Status  domain.Status
}

// MessageCreated is published to the chat topic after the message and all
// its status rows have been durably committed. Attachment is nil when the
// message carries no attachment or the reference could not be resolved.
type MessageCreated struct {
	Message    domain.Message
	Attachment *domain.Attachment
	Recipients []RecipientStatus
}

func (e MessageCreated) Topic() domain.Topic {
	return domain.ChatTopic(e.Message.Chat)
}

// StatusChanged is published to the personal topic of the message sender,
// the party interested in knowing its message's fate. It is never broadcast
// to the whole chat, read receipts stay between subject and sender.
// A batch advance collapses into one event per distinct sender.
type StatusChanged struct {
	MessageIDs []uuid.UUID
	NewStatus  domain.Status
	Subject    domain.UserID
	Sender     domain.UserID
}

func (e StatusChanged) Topic() domain.Topic {
	return domain.UserTopic(e.Sender)
}
