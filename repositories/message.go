package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type MessageRepository struct {
	store         Store
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(store Store, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{store: store, log: log, limitMessages: limitMessages}
}

// PersistMessage writes the message and all its status rows in one
// transaction. Either everything is committed or nothing is: a failed send
// can never leave an orphaned message without statuses, nor the reverse.
//
// The message is stored twice, under the chat-ordered key for scans and
// under its id for direct lookup. Messages are immutable, so the copies
// can never diverge.
func (m MessageRepository) PersistMessage(ctx context.Context, msg domain.Message, statuses []domain.MessageStatus) error {
	raw, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	return m.store.Update(ctx, func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(msg.Chat, msg.CreatedAt, msg.ID), raw); err != nil {
			return err
		}
		if err := txn.Set(messageIDKey(msg.ID), raw); err != nil {
			return err
		}
		for _, s := range statuses {
			rawStatus, err := encodeStatus(s.Status, s.UpdatedAt)
			if err != nil {
				return err
			}
			if err := txn.Set(statusKey(s.MessageID, s.Subject), rawStatus); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m MessageRepository) Message(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var msg domain.Message
	err := m.store.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(id))
		if err == badger.ErrKeyNotFound {
			return errs.ErrUnknownMessage
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			msg, err = decodeMessage(value)
			return err
		})
	})
	return msg, err
}

// Messages retrieves a page of a chat's history using a prefix scan.
// Thanks to the padded timestamp in the key, messages are naturally sorted
// by time; the iterator walks backwards from the cursor (or from the newest
// message when the cursor is nil) and stops at the configured page limit.
// Returned messages are in reverse chronological order with the cursor of
// the next older page.
func (m MessageRepository) Messages(ctx context.Context, chat domain.ChatID, cursor *string) ([]domain.Message, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := m.store.View(ctx, func(txn *badger.Txn) error {
		prefix := messagePrefix(chat)
		prefixLen := len(prefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key, then walk backwards.
			seekKey = append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		default:
			seekKey = append(append([]byte{}, prefix...), []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			// Memorize cursor part of the actual key
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				rawMessages = append(rawMessages, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	// An empty page means the history is exhausted; a nil cursor tells the
	// client to stop paging.
	if len(rawMessages) == 0 {
		return nil, nil, nil
	}

	var messages []domain.Message
	for _, raw := range rawMessages {
		msg, err := decodeMessage(raw)
		if err != nil {
			return nil, nil, err
		}
		messages = append(messages, msg)
	}
	return messages, &lastKey, nil
}

// RefsInChat walks every message of a chat and returns the (id, sender)
// pairs needed to route status events. Batch advances use this instead of
// loading full message bodies.
func (m MessageRepository) RefsInChat(ctx context.Context, chat domain.ChatID) ([]domain.MessageRef, error) {
	var refs []domain.MessageRef
	err := m.store.View(ctx, func(txn *badger.Txn) error {
		prefix := messagePrefix(chat)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				msg, err := decodeMessage(value)
				if err != nil {
					return err
				}
				refs = append(refs, domain.MessageRef{ID: msg.ID, Sender: msg.Sender})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return refs, err
}
