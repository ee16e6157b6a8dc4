// Package sink provides EventSink implementations handed to the registry.
package sink

import (
	"context"

	"messenger-core/domain/event"
)

// SessionSink buffers events for one live connection. Consume is called by
// the fan-out path under the registry's per-session timeout: if the buffer
// stays full past that deadline the context expires, Consume returns the
// error, and the registry drops the session. The transport write pump
// drains Events into the socket.
type SessionSink struct {
	events chan event.DomainEvent
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{events: make(chan event.DomainEvent, bufferSize)}
}

func (s *SessionSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SessionSink) Events() <-chan event.DomainEvent {
	return s.events
}
