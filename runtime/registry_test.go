package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// recordingSink collects every event it consumes.
type recordingSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// stuckSink never accepts an event, it only waits for the context to expire.
type stuckSink struct{}

func (stuckSink) Consume(ctx context.Context, _ event.DomainEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

// reconnectingSink mimics a reconnect racing a publish: while its delivery is
// failing, the session has already re-joined the topic with a fresh sink.
type reconnectingSink struct {
	registry *Registry
	topic    domain.Topic
	session  domain.SessionID
	fresh    *recordingSink
}

func (s *reconnectingSink) Consume(context.Context, event.DomainEvent) error {
	s.registry.Join(s.topic, s.session, s.fresh)
	return context.Canceled
}

func testLogger() *slog.Logger {
	// Silencing logs for clean test output
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMessageCreated(chat domain.ChatID) event.MessageCreated {
	return event.MessageCreated{Message: domain.Message{ID: uuid.New(), Chat: chat, Sender: 10, Content: "ping"}}
}

func TestRegistry_Join_One_Topic_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)
	session := domain.SessionID(uuid.NewString())
	sink := &recordingSink{}

	// Given no session is joined
	req.False(registry.HasSessions(topic))

	// When a session joins the topic
	registry.Join(topic, session, sink)

	// Then publishes reach its sink
	req.True(registry.HasSessions(topic))
	registry.Publish(context.Background(), topic, newMessageCreated(1))
	req.Equal(1, sink.count())
}

func TestRegistry_Join_One_Topic_Multiple_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)
	sink1 := &recordingSink{}
	sink2 := &recordingSink{}

	// Given two devices of possibly the same user joined the topic
	registry.Join(topic, domain.SessionID(uuid.NewString()), sink1)
	registry.Join(topic, domain.SessionID(uuid.NewString()), sink2)

	// When an event is published
	registry.Publish(context.Background(), topic, newMessageCreated(1))

	// Then every session receives its own copy
	req.Equal(1, sink1.count())
	req.Equal(1, sink2.count())
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)
	session := domain.SessionID(uuid.NewString())
	stale := &recordingSink{}
	fresh := &recordingSink{}

	// Given a session joined twice, the second join carrying a new sink
	registry.Join(topic, session, stale)
	registry.Join(topic, session, fresh)

	// When an event is published
	registry.Publish(context.Background(), topic, newMessageCreated(1))

	// Then only the freshest sink receives it, and only once
	req.Equal(0, stale.count())
	req.Equal(1, fresh.count())
}

func TestRegistry_Leave(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)
	session := domain.SessionID(uuid.NewString())
	sink := &recordingSink{}

	registry.Join(topic, session, sink)

	// When the session leaves
	registry.Leave(topic, session)

	// Then the topic is empty and publishes are no-ops
	req.False(registry.HasSessions(topic))
	registry.Publish(context.Background(), topic, newMessageCreated(1))
	req.Equal(0, sink.count())

	// And leaving again is harmless
	registry.Leave(topic, session)
}

func TestRegistry_Leave_Unknown_Topic_Is_NoOp(t *testing.T) {
	registry := NewRegistry(testLogger(), time.Second)
	registry.Leave(domain.ChatTopic(404), domain.SessionID(uuid.NewString()))
}

func TestRegistry_SessionClosed_Sweeps_All_Topics(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	session := domain.SessionID(uuid.NewString())
	other := domain.SessionID(uuid.NewString())
	sink := &recordingSink{}
	otherSink := &recordingSink{}

	// Given one session joined to several topics, another to one of them
	registry.Join(domain.ChatTopic(1), session, sink)
	registry.Join(domain.ChatTopic(2), session, sink)
	registry.Join(domain.UserTopic(10), session, sink)
	registry.Join(domain.ChatTopic(1), other, otherSink)

	// When the connection closes
	registry.SessionClosed(session)

	// Then the session is gone from every topic
	req.False(registry.HasSessions(domain.ChatTopic(2)))
	req.False(registry.HasSessions(domain.UserTopic(10)))

	// And unrelated sessions keep receiving
	registry.Publish(context.Background(), domain.ChatTopic(1), newMessageCreated(1))
	req.Equal(0, sink.count())
	req.Equal(1, otherSink.count())
}

func TestRegistry_Publish_Keeps_Session_That_Rejoined_During_Delivery(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)
	session := domain.SessionID(uuid.NewString())
	fresh := &recordingSink{}

	// Given a session whose old sink re-joins with a fresh one before failing
	registry.Join(topic, session, &reconnectingSink{
		registry: registry,
		topic:    topic,
		session:  session,
		fresh:    fresh,
	})

	// When a publish fails against the old sink
	registry.Publish(context.Background(), topic, newMessageCreated(1))

	// Then the re-joined session stays and the fresh sink receives the next event
	req.True(registry.HasSessions(topic))
	registry.Publish(context.Background(), topic, newMessageCreated(1))
	req.Equal(1, fresh.count())
}

func TestRegistry_Concurrent_Join_Publish_And_Close(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), time.Second)
	topic := domain.ChatTopic(1)

	// Given several goroutines churning the same topic
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				session := domain.SessionID(uuid.NewString())
				registry.Join(topic, session, &recordingSink{})
				registry.Join(domain.UserTopic(domain.UserID(i)), session, &recordingSink{})
				registry.Publish(context.Background(), topic, newMessageCreated(1))
				registry.SessionClosed(session)
			}
		}()
	}

	// When they all finish
	wg.Wait()

	// Then every session was swept and the registry is consistent
	req.False(registry.HasSessions(topic))
}

func TestRegistry_Publish_Drops_Stuck_Session(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(testLogger(), 20*time.Millisecond)
	topic := domain.ChatTopic(1)
	healthy := &recordingSink{}

	// Given a healthy session and one whose sink never accepts
	registry.Join(topic, domain.SessionID(uuid.NewString()), healthy)
	registry.Join(topic, domain.SessionID(uuid.NewString()), stuckSink{})

	// When an event is published
	registry.Publish(context.Background(), topic, newMessageCreated(1))

	// Then the healthy session got the event and the stuck one was dropped
	req.Equal(1, healthy.count())
	registry.Publish(context.Background(), topic, newMessageCreated(1))
	req.Equal(2, healthy.count())
	req.True(registry.HasSessions(topic))
}
