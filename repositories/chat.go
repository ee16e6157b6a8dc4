package repositories

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// ChatRepository stores chat membership and implements the
// chat-membership collaborator consumed by the delivery engine.
// Chat ids come from a badger sequence so concurrent creators never collide.
type ChatRepository struct {
	store Store
	seq   *badger.Sequence
	log   *slog.Logger
}

func NewChatRepository(store Store, log *slog.Logger) (*ChatRepository, error) {
	seq, err := store.db.GetSequence([]byte("seq:chat"), 64)
	if err != nil {
		return nil, err
	}
	return &ChatRepository{store: store, seq: seq, log: log}, nil
}

// Close releases the id sequence; unused ids in the current lease are lost,
// which only leaves gaps in chat numbering.
func (r *ChatRepository) Close() error {
	return r.seq.Release()
}

func (r *ChatRepository) CreateChat(ctx context.Context, members []domain.UserID) (domain.Chat, error) {
	next, err := r.seq.Next()
	if err != nil {
		return domain.Chat{}, err
	}
	chat := domain.Chat{
		// Sequence starts at 0, chat ids start at 1.
		ID:        domain.ChatID(next + 1),
		Members:   lo.Uniq(members),
		CreatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(chatRecord{
		ID:        int64(chat.ID),
		Members:   lo.Map(chat.Members, func(u domain.UserID, _ int) int64 { return int64(u) }),
		CreatedAt: chat.CreatedAt.UnixNano(),
	})
	if err != nil {
		return domain.Chat{}, err
	}
	err = r.store.Update(ctx, func(txn *badger.Txn) error {
		return txn.Set(chatKey(chat.ID), raw)
	})
	if err != nil {
		return domain.Chat{}, err
	}
	return chat, nil
}

func (r *ChatRepository) Members(ctx context.Context, chat domain.ChatID) ([]domain.UserID, error) {
	var members []domain.UserID
	err := r.store.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(chatKey(chat))
		if err == badger.ErrKeyNotFound {
			return errs.ErrUnknownChat
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			var rec chatRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			members = lo.Map(rec.Members, func(id int64, _ int) domain.UserID { return domain.UserID(id) })
			return nil
		})
	})
	return members, err
}
