package sink_test

import (
	"context"
	"testing"
	"time"

	"messenger-core/domain"
	"messenger-core/domain/event"
	"messenger-core/sink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionSink_Consume_And_Drain(t *testing.T) {
	req := require.New(t)
	s := sink.NewSessionSink(2)
	ctx := context.Background()

	first := event.MessageCreated{Message: domain.Message{ID: uuid.New(), Chat: 1, Sender: 10}}
	second := event.MessageCreated{Message: domain.Message{ID: uuid.New(), Chat: 1, Sender: 11}}

	req.NoError(s.Consume(ctx, first))
	req.NoError(s.Consume(ctx, second))

	// Events drain in consumption order
	req.Equal(first, <-s.Events())
	req.Equal(second, <-s.Events())
}

func TestSessionSink_Full_Buffer_Respects_Deadline(t *testing.T) {
	req := require.New(t)
	s := sink.NewSessionSink(1)

	e := event.MessageCreated{Message: domain.Message{ID: uuid.New(), Chat: 1, Sender: 10}}
	req.NoError(s.Consume(context.Background(), e))

	// Given the buffer is full and nobody drains it
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Then Consume reports the expired deadline so the registry can drop
	// the session
	err := s.Consume(ctx, e)
	req.ErrorIs(err, context.DeadlineExceeded)
}
