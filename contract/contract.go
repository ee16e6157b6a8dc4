//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives events routed to one live session or projection.
// Consume must respect ctx so a slow consumer can be dropped on timeout.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps topics to the set of live sessions interested in them.
// All methods are safe for concurrent use; Join and Leave are idempotent,
// and Publish to a just-removed session is a harmless no-op.
type IRegistry interface {
	Join(topic domain.Topic, session domain.SessionID, sink EventSink)
	Leave(topic domain.Topic, session domain.SessionID)
	Publish(ctx context.Context, topic domain.Topic, e event.DomainEvent)
	SessionClosed(session domain.SessionID)
	HasSessions(topic domain.Topic) bool
}

// MessageStore is the durable table of messages belonging to chats.
// PersistMessage writes the message and every status row as a single
// atomic unit: either both exist afterwards or neither does.
type MessageStore interface {
	PersistMessage(ctx context.Context, m domain.Message, statuses []domain.MessageStatus) error
	Message(ctx context.Context, id uuid.UUID) (domain.Message, error)
	Messages(ctx context.Context, chat domain.ChatID, cursor *string) ([]domain.Message, *string, error)
	RefsInChat(ctx context.Context, chat domain.ChatID) ([]domain.MessageRef, error)
}

// StatusStore is the durable table mapping (message, subject) to a status.
// Advance applies the monotonic rule inside one transaction: it reports
// moved=false without writing when target does not exceed the current value.
type StatusStore interface {
	Status(ctx context.Context, messageID uuid.UUID, subject domain.UserID) (domain.MessageStatus, error)
	Advance(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status, at time.Time) (bool, error)
	ForMessage(ctx context.Context, messageID uuid.UUID) ([]domain.MessageStatus, error)
}

// MembershipProvider is the chat-membership collaborator. Members must
// reflect membership at call time; staleness tolerance is its concern.
type MembershipProvider interface {
	Members(ctx context.Context, chat domain.ChatID) ([]domain.UserID, error)
}

// AttachmentResolver is the attachment collaborator, consulted only when
// composing outbound payloads, never for the durable write itself.
type AttachmentResolver interface {
	Resolve(ctx context.Context, ref string) (domain.Attachment, error)
}

// ILifecycle enforces the monotonic status transitions per (message, subject).
type ILifecycle interface {
	Advance(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status) (bool, error)
	AdvanceBatch(ctx context.Context, chat domain.ChatID, subject domain.UserID, target domain.Status, only []uuid.UUID) (domain.BatchResult, error)
}
