package repositories

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Badger serializable transactions abort with ErrConflict when two advances
// race on the same row; a handful of retries is enough for the loser to
// re-read and re-apply the monotonic comparison.
const maxConflictRetries = 5

type StatusRepository struct {
	store Store
	log   *slog.Logger
}

func NewStatusRepository(store Store, log *slog.Logger) StatusRepository {
	return StatusRepository{store: store, log: log}
}

func (r StatusRepository) Status(ctx context.Context, messageID uuid.UUID, subject domain.UserID) (domain.MessageStatus, error) {
	var status domain.MessageStatus
	err := r.store.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(statusKey(messageID, subject))
		if err == badger.ErrKeyNotFound {
			return errs.ErrStatusNotTracked
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			s, at, err := decodeStatus(value)
			if err != nil {
				return err
			}
			status = domain.MessageStatus{MessageID: messageID, Subject: subject, Status: s, UpdatedAt: at}
			return nil
		})
	})
	return status, err
}

// Advance applies the monotonic transition rule inside one transaction:
// the current value is read and the row is rewritten only when target
// exceeds it. A target at or below the current value reports moved=false
// without any write, which is what makes a late-arriving "delivered"
// acknowledgement a harmless no-op after "read".
//
// The read and the write share the transaction, so two devices racing on
// the same row cannot interleave; the loser conflicts and retries against
// the fresh value.
func (r StatusRepository) Advance(ctx context.Context, messageID uuid.UUID, subject domain.UserID, target domain.Status, at time.Time) (bool, error) {
	if !target.Valid() {
		return false, errs.ErrInvalidStatus
	}
	key := statusKey(messageID, subject)
	for attempt := 0; ; attempt++ {
		moved := false
		err := r.store.Update(ctx, func(txn *badger.Txn) error {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				return errs.ErrStatusNotTracked
			}
			if err != nil {
				return err
			}
			var current domain.Status
			err = item.Value(func(value []byte) error {
				current, _, err = decodeStatus(value)
				return err
			})
			if err != nil {
				return err
			}
			if target <= current {
				return nil
			}
			raw, err := encodeStatus(target, at)
			if err != nil {
				return err
			}
			moved = true
			return txn.Set(key, raw)
		})
		if err == badger.ErrConflict && attempt < maxConflictRetries {
			r.log.Debug("Status advance conflicted, retrying",
				"message_id", messageID.String(), "subject", int64(subject))
			continue
		}
		return moved, err
	}
}

// ForMessage returns every recipient's status row for one message,
// shaped for the MessageCreated payload.
func (r StatusRepository) ForMessage(ctx context.Context, messageID uuid.UUID) ([]domain.MessageStatus, error) {
	var statuses []domain.MessageStatus
	err := r.store.View(ctx, func(txn *badger.Txn) error {
		prefix := statusPrefix(messageID)
		prefixLen := len(prefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			subject, err := strconv.ParseInt(string(item.Key()[prefixLen:]), 10, 64)
			if err != nil {
				return err
			}
			err = item.Value(func(value []byte) error {
				s, at, err := decodeStatus(value)
				if err != nil {
					return err
				}
				statuses = append(statuses, domain.MessageStatus{
					MessageID: messageID,
					Subject:   domain.UserID(subject),
					Status:    s,
					UpdatedAt: at,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return statuses, err
}
