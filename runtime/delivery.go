package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"messenger-core/contract"
	"messenger-core/domain"
	"messenger-core/domain/event"
	errs "messenger-core/errors"
	"messenger-core/runtime/workers"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const chatLockShards = 16

// SendCommand is the inbound shape of a message send.
type SendCommand struct {
	Sender     domain.UserID
	Chat       domain.ChatID
	Content    string
	Attachment string
}

// MessageView is what the caller and every subscribed session receive:
// the persisted message plus each recipient's current status.
type MessageView struct {
	Message    domain.Message
	Attachment *domain.Attachment
	Recipients []event.RecipientStatus
}

// DeliveryEngine persists a message together with its status rows and
// routes the resulting events. The durable write always happens before any
// publish, so no session ever observes state the store cannot also show.
type DeliveryEngine struct {
	log         *slog.Logger
	messages    contract.MessageStore
	members     contract.MembershipProvider
	attachments contract.AttachmentResolver
	registry    contract.IRegistry
	events      chan<- event.DomainEvent
	promotions  chan<- workers.Promotion

	// Commit and publish-enqueue are serialized per chat so the fan-out
	// order observed by subscribers matches persistence commit order.
	chatLocks [chatLockShards]sync.Mutex

	mu     sync.Mutex
	lastAt map[domain.ChatID]time.Time
}

func NewDeliveryEngine(log *slog.Logger, messages contract.MessageStore,
	members contract.MembershipProvider, attachments contract.AttachmentResolver,
	registry contract.IRegistry, events chan<- event.DomainEvent,
	promotions chan<- workers.Promotion) *DeliveryEngine {
	return &DeliveryEngine{
		log:         log,
		messages:    messages,
		members:     members,
		attachments: attachments,
		registry:    registry,
		events:      events,
		promotions:  promotions,
		lastAt:      make(map[domain.ChatID]time.Time),
	}
}

// SendMessage persists the message and one Sent status row per recipient as
// a single atomic unit, then publishes MessageCreated to the chat topic and
// schedules an asynchronous Delivered promotion for every recipient with a
// live session. Promotion is deliberately decoupled from the durable write:
// durability must never hinge on transport availability.
func (e *DeliveryEngine) SendMessage(ctx context.Context, cmd SendCommand) (MessageView, error) {
	members, err := e.members.Members(ctx, cmd.Chat)
	if err != nil {
		return MessageView{}, err
	}
	if !lo.Contains(members, cmd.Sender) {
		return MessageView{}, errs.ErrNotAMember
	}
	recipients := lo.Without(members, cmd.Sender)

	// Resolved before the critical section: the resolver may do I/O and the
	// outcome only decorates the outbound payload, never the durable write.
	var attachment *domain.Attachment
	if cmd.Attachment != "" {
		att, err := e.attachments.Resolve(ctx, cmd.Attachment)
		if err != nil {
			e.log.Warn("Attachment did not resolve, publishing message without it",
				"ref", cmd.Attachment, "error", err)
		} else {
			attachment = &att
		}
	}

	lock := &e.chatLocks[uint64(cmd.Chat)%chatLockShards]
	lock.Lock()
	defer lock.Unlock()

	at := e.nextTimestamp(cmd.Chat)
	msg := domain.Message{
		ID:         uuid.New(),
		Chat:       cmd.Chat,
		Sender:     cmd.Sender,
		Content:    cmd.Content,
		Attachment: cmd.Attachment,
		CreatedAt:  at,
	}
	statuses := lo.Map(recipients, func(r domain.UserID, _ int) domain.MessageStatus {
		return domain.MessageStatus{MessageID: msg.ID, Subject: r, Status: domain.StatusSent, UpdatedAt: at}
	})

	if err := e.messages.PersistMessage(ctx, msg, statuses); err != nil {
		return MessageView{}, errs.Persistence("send message", err)
	}

	view := MessageView{
		Message:    msg,
		Attachment: attachment,
		Recipients: lo.Map(statuses, func(s domain.MessageStatus, _ int) event.RecipientStatus {
			return event.RecipientStatus{Subject: s.Subject, Status: s.Status}
		}),
	}
	e.emit(event.MessageCreated{Message: msg, Attachment: attachment, Recipients: view.Recipients})

	for _, r := range recipients {
		if e.registry.HasSessions(domain.UserTopic(r)) {
			e.promote(workers.Promotion{MessageID: msg.ID, Subject: r})
		}
	}
	return view, nil
}

// nextTimestamp assigns the server timestamp, clamped so creation times are
// monotonically non-decreasing within a chat even if the wall clock steps
// backwards. Callers hold the chat lock, so assignment order is commit order.
func (e *DeliveryEngine) nextTimestamp(chat domain.ChatID) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	at := time.Now().UTC()
	if last, ok := e.lastAt[chat]; ok && at.Before(last) {
		at = last
	}
	e.lastAt[chat] = at
	return at
}

func (e *DeliveryEngine) emit(evt event.DomainEvent) {
	select {
	case e.events <- evt:
	default:
		e.log.Warn(fmt.Sprintf("Event channel full, dropping %T for topic %s", evt, evt.Topic()))
	}
}

func (e *DeliveryEngine) promote(p workers.Promotion) {
	select {
	case e.promotions <- p:
	default:
		// Best effort: the recipient's own acknowledgement will still move
		// the status forward, the eager promotion is only a shortcut.
		e.log.Warn("Promotion channel full, skipping eager delivered promotion",
			"message_id", p.MessageID.String(), "subject", int64(p.Subject))
	}
}
