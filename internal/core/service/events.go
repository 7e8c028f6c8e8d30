package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
)

const defaultEventTimeout = 2 * time.Second

type EventOpt func(*emitter)

// EventTimeoutOpt bounds the time spent publishing one client event.
func EventTimeoutOpt(d time.Duration) EventOpt {
	return func(e *emitter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// emitter publishes client events on behalf of a use case.
//
// Delivery is best effort. Events are sent detached from the caller's
// cancellation and never take longer than the timeout, so a slow broker
// cannot stall or fail the operation that produced them.
type emitter struct {
	events   port.EventsProducer
	clientID string
	timeout  time.Duration
}

func newEmitter(events port.EventsProducer, clientID string, opts ...EventOpt) emitter {
	e := emitter{
		events:   events,
		clientID: clientID,
		timeout:  defaultEventTimeout,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func (e emitter) send(
	ctx context.Context, op string, produce func(context.Context, port.EventsProducer) error,
) {
	if e.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	if err := produce(ctx, e.events); err != nil {
		slog.Warn("failed to send client event", "op", op, "err", err)
	}
}
