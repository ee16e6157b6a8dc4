// Package runtime hosts the delivery engine, the status lifecycle and the
// membership registry. It orchestrates persistence and fan-out without
// owning any socket I/O, which stays with the transport gateway.
package runtime

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"messenger-core/contract"
	"messenger-core/domain"
	"messenger-core/domain/event"
	errs "messenger-core/errors"
)

const registryShards = 16

type sessionSet map[domain.SessionID]contract.EventSink

type topicSet map[domain.Topic]struct{}

// Registry is the most contended structure in the system: every send and
// every read receipt touches it. Topics are spread over fixed shards so
// joins and publishes on unrelated topics never serialize on one lock.
type Registry struct {
	log         *slog.Logger
	sinkTimeout time.Duration
	shards      [registryShards]*registryShard
}

type registryShard struct {
	mu sync.RWMutex
	// topic -> sessions joined to it
	topics map[domain.Topic]sessionSet
	// session -> topics of THIS shard it joined, for disconnect sweeps
	sessions map[domain.SessionID]topicSet
}

func NewRegistry(log *slog.Logger, sinkTimeout time.Duration) *Registry {
	r := &Registry{log: log, sinkTimeout: sinkTimeout}
	for i := range r.shards {
		r.shards[i] = &registryShard{
			topics:   make(map[domain.Topic]sessionSet),
			sessions: make(map[domain.SessionID]topicSet),
		}
	}
	return r
}

func (r *Registry) shard(topic domain.Topic) *registryShard {
	h := fnv.New32a()
	h.Write([]byte(topic))
	return r.shards[h.Sum32()%registryShards]
}

// Join subscribes a session to a topic. Joining twice is idempotent: the
// sink is simply replaced, so a reconnecting session always ends up with
// its freshest connection.
func (r *Registry) Join(topic domain.Topic, session domain.SessionID, sink contract.EventSink) {
	s := r.shard(topic)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[topic]; !ok {
		s.topics[topic] = make(sessionSet)
	}
	s.topics[topic][session] = sink

	if _, ok := s.sessions[session]; !ok {
		s.sessions[session] = make(topicSet)
	}
	s.sessions[session][topic] = struct{}{}
}

// Leave removes a session from a topic. Leaving a topic the session never
// joined is a no-op. Empty sets are removed entirely so long-running
// processes do not accumulate dead topics.
func (r *Registry) Leave(topic domain.Topic, session domain.SessionID) {
	s := r.shard(topic)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaveLocked(topic, session)
}

func (s *registryShard) leaveLocked(topic domain.Topic, session domain.SessionID) {
	if members, ok := s.topics[topic]; ok {
		delete(members, session)
		if len(members) == 0 {
			delete(s.topics, topic)
		}
	}
	if joined, ok := s.sessions[session]; ok {
		delete(joined, topic)
		if len(joined) == 0 {
			delete(s.sessions, session)
		}
	}
}

// SessionClosed removes the session from every topic it was joined to.
// Called by the transport gateway on disconnect; safe to run concurrently
// with in-flight publishes, which at worst deliver into a sink whose
// connection is already gone.
func (r *Registry) SessionClosed(session domain.SessionID) {
	for _, s := range r.shards {
		s.mu.Lock()
		for topic := range s.sessions[session] {
			if members, ok := s.topics[topic]; ok {
				delete(members, session)
				if len(members) == 0 {
					delete(s.topics, topic)
				}
			}
		}
		delete(s.sessions, session)
		s.mu.Unlock()
	}
}

// HasSessions reports whether at least one live session is joined to the
// topic. The delivery engine uses it to decide on eager delivered
// promotions.
func (r *Registry) HasSessions(topic domain.Topic) bool {
	s := r.shard(topic)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.topics[topic]) > 0
}

// Publish delivers the event to every session currently joined to the
// topic, best effort. The sink set is snapshotted under the read lock and
// delivery happens outside of it, so a slow consumer never blocks joins or
// publishes to other topics. A session that does not accept the event
// within the sink timeout is dropped from the topic.
func (r *Registry) Publish(ctx context.Context, topic domain.Topic, e event.DomainEvent) {
	s := r.shard(topic)

	s.mu.RLock()
	snapshot := make(map[domain.SessionID]contract.EventSink, len(s.topics[topic]))
	for id, sink := range s.topics[topic] {
		snapshot[id] = sink
	}
	s.mu.RUnlock()

	for id, sink := range snapshot {
		deliverCtx, cancel := context.WithTimeout(ctx, r.sinkTimeout)
		err := sink.Consume(deliverCtx, e)
		cancel()
		if err != nil {
			reason := errs.ErrSessionGone
			if errors.Is(err, context.DeadlineExceeded) {
				reason = errs.ErrPublishTimeout
			}
			r.log.Warn("Dropping session from topic, delivery failed",
				"session", string(id), "topic", string(topic), "reason", reason, "error", err)
			s.mu.Lock()
			// Drop only while the failed sink is still the registered one;
			// the session may have re-joined with a fresh connection since
			// the snapshot was taken.
			if current, ok := s.topics[topic][id]; ok && current == sink {
				s.leaveLocked(topic, id)
			}
			s.mu.Unlock()
		}
	}
}
