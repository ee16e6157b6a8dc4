// Package domain contains core concepts of the messaging system.
// This file defines Message entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserID int64

type ChatID int64

// Message represents an immutable chat event.
// Attachment holds an opaque reference; resolution to a URL and mime type
// happens only when composing outbound payloads, never for the durable write.
type Message struct {
	ID         uuid.UUID
	Chat       ChatID
	Sender     UserID
	Content    string
	Attachment string
	CreatedAt  time.Time
}

// MessageRef is the minimal projection of a message needed to route
// status events back to the interested party.
type MessageRef struct {
	ID     uuid.UUID
	Sender UserID
}

// MessageStatus is the delivery progress of one message for one recipient.
// Exactly one row exists per (message, subject) pair, created when the
// message is persisted. The Status field only ever moves forward.
type MessageStatus struct {
	MessageID uuid.UUID
	Subject   UserID
	Status    Status
	UpdatedAt time.Time
}

// Attachment is the resolved form of an attachment reference,
// shaped for direct consumption by connected clients.
type Attachment struct {
	Ref      string
	URL      string
	MimeType string
}

// Chat groups a set of members exchanging messages.
// Membership is read-only input to the delivery engine; a chat always
// has at least two members and is never assumed to have exactly two.
type Chat struct {
	ID        ChatID
	Members   []UserID
	CreatedAt time.Time
}
