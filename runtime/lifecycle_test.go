package runtime

import (
	"context"
	"testing"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"
	errs "messenger-core/errors"
	"messenger-core/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type lifecycleFixture struct {
	lifecycle *Lifecycle
	messages  repositories.MessageRepository
	events    chan event.DomainEvent
}

func newLifecycleFixture(t *testing.T) lifecycleFixture {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := testLogger()
	store := repositories.NewStore(db, 5*time.Second)
	messages := repositories.NewMessageRepository(store, log, nil)
	statuses := repositories.NewStatusRepository(store, log)
	events := make(chan event.DomainEvent, 16)
	return lifecycleFixture{
		lifecycle: NewLifecycle(log, messages, statuses, events),
		messages:  messages,
		events:    events,
	}
}

func (f lifecycleFixture) seed(t *testing.T, chat domain.ChatID, sender domain.UserID, recipients ...domain.UserID) uuid.UUID {
	t.Helper()
	at := time.Now().UTC()
	msg := domain.Message{ID: uuid.New(), Chat: chat, Sender: sender, Content: "seed", CreatedAt: at}
	statuses := make([]domain.MessageStatus, 0, len(recipients))
	for _, r := range recipients {
		statuses = append(statuses, domain.MessageStatus{MessageID: msg.ID, Subject: r, Status: domain.StatusSent, UpdatedAt: at})
	}
	require.NoError(t, f.messages.PersistMessage(context.Background(), msg, statuses))
	return msg.ID
}

func (f lifecycleFixture) drainStatusChanged(t *testing.T) []event.StatusChanged {
	t.Helper()
	var out []event.StatusChanged
	for {
		select {
		case e := <-f.events:
			sc, ok := e.(event.StatusChanged)
			require.True(t, ok)
			out = append(out, sc)
		default:
			return out
		}
	}
}

func TestLifecycle_Advance_Notifies_Sender(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	alice := domain.UserID(10)
	bob := domain.UserID(11)
	msgID := f.seed(t, 1, alice, bob)

	// When bob's device acknowledges delivery
	moved, err := f.lifecycle.Advance(context.Background(), msgID, bob, domain.StatusDelivered)
	req.NoError(err)
	req.True(moved)

	// Then exactly one event lands on alice's personal topic
	changed := f.drainStatusChanged(t)
	req.Len(changed, 1)
	req.Equal(domain.UserTopic(alice), changed[0].Topic())
	req.Equal([]uuid.UUID{msgID}, changed[0].MessageIDs)
	req.Equal(domain.StatusDelivered, changed[0].NewStatus)
	req.Equal(bob, changed[0].Subject)
}

func TestLifecycle_Advance_Regression_Is_Silent_NoOp(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	bob := domain.UserID(11)
	msgID := f.seed(t, 1, 10, bob)

	// Given bob already read the message
	moved, err := f.lifecycle.Advance(context.Background(), msgID, bob, domain.StatusRead)
	req.NoError(err)
	req.True(moved)
	f.drainStatusChanged(t)

	// When a late delivered acknowledgement arrives
	moved, err = f.lifecycle.Advance(context.Background(), msgID, bob, domain.StatusDelivered)

	// Then nothing moved and nothing was announced
	req.NoError(err)
	req.False(moved)
	req.Empty(f.drainStatusChanged(t))
}

func TestLifecycle_Advance_Unknown_Message(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.Advance(context.Background(), uuid.New(), 11, domain.StatusRead)
	req.ErrorIs(err, errs.ErrUnknownMessage)
}

func TestLifecycle_Advance_Subject_Not_A_Recipient(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	msgID := f.seed(t, 1, 10, 11)

	// User 99 has no status row for this message
	_, err := f.lifecycle.Advance(context.Background(), msgID, 99, domain.StatusRead)
	req.ErrorIs(err, errs.ErrNotAMember)
}

func TestLifecycle_Advance_Invalid_Status(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.Advance(context.Background(), uuid.New(), 11, domain.Status(42))
	req.ErrorIs(err, errs.ErrInvalidStatus)
}

func TestLifecycle_AdvanceBatch_Mark_Chat_As_Read(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	chat := domain.ChatID(1)
	alice := domain.UserID(10)
	bob := domain.UserID(11)
	clara := domain.UserID(12)

	// Given two messages from alice, one from clara, one from bob himself
	fromAlice1 := f.seed(t, chat, alice, bob, clara)
	fromAlice2 := f.seed(t, chat, alice, bob, clara)
	fromClara := f.seed(t, chat, clara, alice, bob)
	f.seed(t, chat, bob, alice, clara)

	// When bob marks the whole chat as read
	result, err := f.lifecycle.AdvanceBatch(context.Background(), chat, bob, domain.StatusRead, nil)
	req.NoError(err)

	// Then every message bob received moved, his own was skipped
	req.ElementsMatch([]uuid.UUID{fromAlice1, fromAlice2, fromClara}, result.Moved)
	req.Empty(result.Failed)

	// And the moved ids collapse into one event per message sender
	changed := f.drainStatusChanged(t)
	req.Len(changed, 2)
	bySender := make(map[domain.UserID]event.StatusChanged, len(changed))
	for _, e := range changed {
		bySender[e.Sender] = e
	}
	req.ElementsMatch([]uuid.UUID{fromAlice1, fromAlice2}, bySender[alice].MessageIDs)
	req.Equal([]uuid.UUID{fromClara}, bySender[clara].MessageIDs)
	req.Equal(domain.StatusRead, bySender[alice].NewStatus)
	req.Equal(bob, bySender[alice].Subject)
}

func TestLifecycle_AdvanceBatch_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	chat := domain.ChatID(1)
	bob := domain.UserID(11)
	f.seed(t, chat, 10, bob)

	// Given the chat is already fully read
	_, err := f.lifecycle.AdvanceBatch(context.Background(), chat, bob, domain.StatusRead, nil)
	req.NoError(err)
	f.drainStatusChanged(t)

	// When bob marks it as read again
	result, err := f.lifecycle.AdvanceBatch(context.Background(), chat, bob, domain.StatusRead, nil)

	// Then nothing moves and no event is emitted
	req.NoError(err)
	req.Empty(result.Moved)
	req.Empty(result.Failed)
	req.Empty(f.drainStatusChanged(t))
}

func TestLifecycle_AdvanceBatch_Explicit_Ids_With_Unknown(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	chat := domain.ChatID(1)
	bob := domain.UserID(11)
	known := f.seed(t, chat, 10, bob)
	unknown := uuid.New()

	// When bob acknowledges an explicit list containing a foreign id
	result, err := f.lifecycle.AdvanceBatch(context.Background(), chat, bob, domain.StatusDelivered, []uuid.UUID{known, unknown})
	req.NoError(err)

	// Then the known id moved and the foreign one is a failed item
	req.Equal([]uuid.UUID{known}, result.Moved)
	req.Len(result.Failed, 1)
	req.Equal(unknown, result.Failed[0].MessageID)
	req.ErrorIs(result.Failed[0].Err, errs.ErrUnknownMessage)
}

func TestLifecycle_AdvanceBatch_Partial_Failure_Never_Aborts(t *testing.T) {
	req := require.New(t)
	f := newLifecycleFixture(t)
	chat := domain.ChatID(1)
	bob := domain.UserID(11)

	// Given one message bob received and one he was never a recipient of
	received := f.seed(t, chat, 10, bob)
	notForBob := f.seed(t, chat, 10, 12)

	// When bob marks the chat as read
	result, err := f.lifecycle.AdvanceBatch(context.Background(), chat, bob, domain.StatusRead, nil)
	req.NoError(err)

	// Then the tracked message moved despite the untracked one failing
	req.Equal([]uuid.UUID{received}, result.Moved)
	req.Len(result.Failed, 1)
	req.Equal(notForBob, result.Failed[0].MessageID)
	req.ErrorIs(result.Failed[0].Err, errs.ErrNotAMember)
}
