package repositories

import (
	"context"
	"encoding/json"
	"log/slog"

	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/dgraph-io/badger/v4"
)

// AttachmentRepository resolves opaque attachment references to the URL and
// mime type handed to clients. Blob storage itself lives elsewhere; only the
// metadata registered by the upload pipeline is kept here.
type AttachmentRepository struct {
	store Store
	log   *slog.Logger
}

func NewAttachmentRepository(store Store, log *slog.Logger) AttachmentRepository {
	return AttachmentRepository{store: store, log: log}
}

func (r AttachmentRepository) Register(ctx context.Context, att domain.Attachment) error {
	raw, err := json.Marshal(attachmentRecord{Ref: att.Ref, URL: att.URL, MimeType: att.MimeType})
	if err != nil {
		return err
	}
	return r.store.Update(ctx, func(txn *badger.Txn) error {
		return txn.Set(attachmentKey(att.Ref), raw)
	})
}

func (r AttachmentRepository) Resolve(ctx context.Context, ref string) (domain.Attachment, error) {
	var att domain.Attachment
	err := r.store.View(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(attachmentKey(ref))
		if err == badger.ErrKeyNotFound {
			return errs.ErrUnknownAttachment
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			var rec attachmentRecord
			if err := json.Unmarshal(value, &rec); err != nil {
				return err
			}
			att = domain.Attachment{Ref: rec.Ref, URL: rec.URL, MimeType: rec.MimeType}
			return nil
		})
	})
	return att, err
}
