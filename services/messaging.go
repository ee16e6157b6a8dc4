//go:generate go run go.uber.org/mock/mockgen -source=messaging.go -destination=../mocks/servicemocks/mock_messaging.go -package=servicemocks
package services

import (
	"context"

	"messenger-core/contract"
	"messenger-core/domain"
	"messenger-core/repositories"
	"messenger-core/runtime"

	"github.com/google/uuid"
)

// HistoryEntry pairs a stored message with each recipient's current status,
// the same shape live sessions receive on MessageCreated.
type HistoryEntry struct {
	Message    domain.Message
	Recipients []domain.MessageStatus
}

// IMessagingService is the inbound RPC surface consumed by the transport
// gateway.
type IMessagingService interface {
	SendMessage(ctx context.Context, cmd runtime.SendCommand) (runtime.MessageView, error)
	AdvanceStatus(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status) (bool, error)
	AdvanceBatch(ctx context.Context, chat domain.ChatID, subject domain.UserID, target domain.Status, only []uuid.UUID) (domain.BatchResult, error)
	JoinTopic(topic domain.Topic, session domain.SessionID, sink contract.EventSink)
	LeaveTopic(topic domain.Topic, session domain.SessionID)
	SessionClosed(session domain.SessionID)
	CreateChat(ctx context.Context, members []domain.UserID) (domain.Chat, error)
	ChatMembers(ctx context.Context, chat domain.ChatID) ([]domain.UserID, error)
	History(ctx context.Context, chat domain.ChatID, cursor *string) ([]HistoryEntry, *string, error)
}

type MessagingService struct {
	engine    *runtime.DeliveryEngine
	lifecycle contract.ILifecycle
	registry  contract.IRegistry
	chats     *repositories.ChatRepository
	messages  contract.MessageStore
	statuses  contract.StatusStore
}

func NewMessagingService(engine *runtime.DeliveryEngine, lifecycle contract.ILifecycle,
	registry contract.IRegistry, chats *repositories.ChatRepository,
	messages contract.MessageStore, statuses contract.StatusStore) *MessagingService {
	return &MessagingService{
		engine:    engine,
		lifecycle: lifecycle,
		registry:  registry,
		chats:     chats,
		messages:  messages,
		statuses:  statuses,
	}
}

func (s *MessagingService) SendMessage(ctx context.Context, cmd runtime.SendCommand) (runtime.MessageView, error) {
	return s.engine.SendMessage(ctx, cmd)
}

func (s *MessagingService) AdvanceStatus(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status) (bool, error) {
	return s.lifecycle.Advance(ctx, messageID, subject, target)
}

func (s *MessagingService) AdvanceBatch(ctx context.Context, chat domain.ChatID, subject domain.UserID, target domain.Status, only []uuid.UUID) (domain.BatchResult, error) {
	return s.lifecycle.AdvanceBatch(ctx, chat, subject, target, only)
}

func (s *MessagingService) JoinTopic(topic domain.Topic, session domain.SessionID, sink contract.EventSink) {
	s.registry.Join(topic, session, sink)
}

func (s *MessagingService) LeaveTopic(topic domain.Topic, session domain.SessionID) {
	s.registry.Leave(topic, session)
}

func (s *MessagingService) SessionClosed(session domain.SessionID) {
	s.registry.SessionClosed(session)
}

func (s *MessagingService) CreateChat(ctx context.Context, members []domain.UserID) (domain.Chat, error) {
	return s.chats.CreateChat(ctx, members)
}

func (s *MessagingService) ChatMembers(ctx context.Context, chat domain.ChatID) ([]domain.UserID, error) {
	return s.chats.Members(ctx, chat)
}

func (s *MessagingService) History(ctx context.Context, chat domain.ChatID, cursor *string) ([]HistoryEntry, *string, error) {
	messages, next, err := s.messages.Messages(ctx, chat, cursor)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		statuses, err := s.statuses.ForMessage(ctx, msg.ID)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, HistoryEntry{Message: msg, Recipients: statuses})
	}
	return entries, next, nil
}
