package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"messenger-core/contract"
	"messenger-core/domain"
	"messenger-core/domain/event"
	errs "messenger-core/errors"

	"github.com/google/uuid"
)

var _ contract.ILifecycle = (*Lifecycle)(nil)

// Lifecycle enforces the monotonic status transitions per (message, subject)
// pair: Sent -> Delivered -> Read, never backwards. Accepted transitions are
// announced to the personal topic of the message sender.
type Lifecycle struct {
	log      *slog.Logger
	messages contract.MessageStore
	statuses contract.StatusStore
	events   chan<- event.DomainEvent
}

func NewLifecycle(log *slog.Logger, messages contract.MessageStore,
	statuses contract.StatusStore, events chan<- event.DomainEvent) *Lifecycle {
	return &Lifecycle{log: log, messages: messages, statuses: statuses, events: events}
}

// Advance moves one (message, subject) pair towards target. When target does
// not exceed the stored value the call is an idempotent no-op: no write, no
// event, success reported. That property is what absorbs a late-arriving
// "delivered" acknowledgement after the message was already read.
func (l *Lifecycle) Advance(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status) (bool, error) {
	if !target.Valid() {
		return false, errs.ErrInvalidStatus
	}
	moved, err := l.statuses.Advance(ctx, messageID, subject, target, time.Now().UTC())
	if errors.Is(err, errs.ErrStatusNotTracked) {
		// No row means the subject was never a recipient of this message,
		// or the message itself is unknown. Distinguish for the caller.
		if _, lookupErr := l.messages.Message(ctx, messageID); lookupErr != nil {
			return false, errs.ErrUnknownMessage
		}
		return false, errs.ErrNotAMember
	}
	if err != nil {
		return false, errs.Persistence("status advance", err)
	}
	if !moved {
		return false, nil
	}

	msg, err := l.messages.Message(ctx, messageID)
	if err != nil {
		// The transition is durably committed; only the notification is lost.
		l.log.Error("Status advanced but sender lookup failed, event skipped",
			"message_id", messageID.String(), "error", err)
		return true, nil
	}
	l.emit(event.StatusChanged{
		MessageIDs: []uuid.UUID{messageID},
		NewStatus:  target,
		Subject:    subject,
		Sender:     msg.Sender,
	})
	return true, nil
}

// AdvanceBatch applies Advance over a chat's messages for one subject,
// typically "mark chat as read". Failed items are collected, never aborting
// the rest. Instead of one event per message, all moved ids are grouped by
// message sender and announced in a single StatusChanged per sender, which
// bounds fan-out cost when a batch touches hundreds of messages.
//
// When only is non-nil the batch is restricted to those message ids; ids
// that do not belong to the chat are reported as failed items.
func (l *Lifecycle) AdvanceBatch(ctx context.Context, chat domain.ChatID, subject domain.UserID, target domain.Status, only []uuid.UUID) (domain.BatchResult, error) {
	if !target.Valid() {
		return domain.BatchResult{}, errs.ErrInvalidStatus
	}
	refs, err := l.messages.RefsInChat(ctx, chat)
	if err != nil {
		return domain.BatchResult{}, errs.Persistence("batch scan", err)
	}

	var result domain.BatchResult
	candidates := refs
	if only != nil {
		known := make(map[uuid.UUID]domain.MessageRef, len(refs))
		for _, ref := range refs {
			known[ref.ID] = ref
		}
		candidates = candidates[:0]
		for _, id := range only {
			ref, ok := known[id]
			if !ok {
				result.Failed = append(result.Failed, domain.BatchFailure{MessageID: id, Err: errs.ErrUnknownMessage})
				continue
			}
			candidates = append(candidates, ref)
		}
	}

	now := time.Now().UTC()
	movedBySender := make(map[domain.UserID][]uuid.UUID)
	for _, ref := range candidates {
		if ref.Sender == subject {
			// The subject's own messages carry no status row for them.
			continue
		}
		moved, err := l.statuses.Advance(ctx, ref.ID, subject, target, now)
		if errors.Is(err, errs.ErrStatusNotTracked) {
			result.Failed = append(result.Failed, domain.BatchFailure{MessageID: ref.ID, Err: errs.ErrNotAMember})
			continue
		}
		if err != nil {
			result.Failed = append(result.Failed, domain.BatchFailure{MessageID: ref.ID, Err: err})
			continue
		}
		if moved {
			result.Moved = append(result.Moved, ref.ID)
			movedBySender[ref.Sender] = append(movedBySender[ref.Sender], ref.ID)
		}
	}

	for sender, ids := range movedBySender {
		l.emit(event.StatusChanged{
			MessageIDs: ids,
			NewStatus:  target,
			Subject:    subject,
			Sender:     sender,
		})
	}
	return result, nil
}

func (l *Lifecycle) emit(e event.DomainEvent) {
	select {
	case l.events <- e:
	default:
		l.log.Warn(fmt.Sprintf("Event channel full, dropping %T for topic %s", e, e.Topic()))
	}
}
