package workers

import (
	"context"
	"log/slog"

	"messenger-core/contract"
	"messenger-core/domain/event"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout drains the ordered event channel and hands each event to the
// registry for topic routing, plus any permanent sinks (projections, logs).
//
// Being a single consumer of one channel is what preserves the causal order
// guarantee: the publish for message N is initiated only after the publish
// for message N-1 to the same topic. Delivery itself stays best effort with
// no acknowledgement; EventFanout is not a message broker.
type EventFanout struct {
	log      *slog.Logger
	events   <-chan event.DomainEvent
	registry contract.IRegistry
	sinks    []contract.EventSink
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent,
	registry contract.IRegistry, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{log: log, events: events, registry: registry, sinks: sinks}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Event channel closed")
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Warn("Permanent sink rejected event", "error", err)
		}
	}
	w.registry.Publish(ctx, evt.Topic(), evt)
}
