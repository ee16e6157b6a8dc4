package workers

import (
	"context"
	"errors"
	"log/slog"

	"messenger-core/contract"
	"messenger-core/domain"
	errs "messenger-core/errors"

	"github.com/google/uuid"
)

var _ contract.Worker = (*Promoter)(nil)

// Promotion asks for one (message, recipient) pair to be moved to
// Delivered because the recipient had a live session at send time.
type Promotion struct {
	MessageID uuid.UUID
	Subject   domain.UserID
}

// Promoter consumes promotion jobs and applies the Delivered transition
// through the lifecycle. It runs detached from the send path: a send never
// waits for its promotions, and a failed promotion costs nothing because
// the recipient's own acknowledgement advances the status anyway.
type Promoter struct {
	log       *slog.Logger
	jobs      <-chan Promotion
	lifecycle contract.ILifecycle
}

func NewPromoter(log *slog.Logger, jobs <-chan Promotion, lifecycle contract.ILifecycle) *Promoter {
	return &Promoter{log: log, jobs: jobs, lifecycle: lifecycle}
}

func (w *Promoter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping promoter")
			return nil
		case job, ok := <-w.jobs:
			if !ok {
				w.log.Debug("Promotion channel closed")
				return nil
			}
			_, err := w.lifecycle.Advance(ctx, job.MessageID, job.Subject, domain.StatusDelivered)
			if err != nil && !errors.Is(err, errs.ErrUnknownMessage) {
				w.log.Warn("Eager delivered promotion failed",
					"message_id", job.MessageID.String(),
					"subject", int64(job.Subject),
					"error", err)
			}
		}
	}
}
