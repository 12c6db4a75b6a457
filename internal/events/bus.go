// Package events is the in-process fan-out of referral events.
//
// A Bus is created by the composition root and handed to producers and consumers.
// Consumers that subscribe on mount must unsubscribe on unmount: a subscription lives
// as long as the bus does.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

type Handler func(ctx context.Context, event domain.Event) error

// Subscription is the handle returned by Subscribe; it identifies the handler on Unsubscribe.
type Subscription struct {
	id      uint64
	kind    domain.EventKind
	name    string
	handler Handler
}

func (s *Subscription) Kind() domain.EventKind { return s.kind }

type Bus struct {
	mu     sync.RWMutex
	subs   map[domain.EventKind][]*Subscription
	nextID atomic.Uint64
	logger *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[domain.EventKind][]*Subscription),
		logger: logger,
	}
}

// Subscribe registers handler for kind. name is used in logs and error messages only.
func (b *Bus) Subscribe(kind domain.EventKind, name string, handler Handler) *Subscription {
	sub := &Subscription{
		id:      b.nextID.Add(1),
		kind:    kind,
		name:    name,
		handler: handler,
	}
	b.mu.Lock()
	b.subs[kind] = append(b.subs[kind], sub)
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes sub and reports whether it was registered.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[sub.kind]
	for i, s := range list {
		if s == sub {
			// copy so snapshots held by in-flight publishes stay intact
			next := make([]*Subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			b.subs[sub.kind] = next
			return true
		}
	}
	return false
}

// Len returns the number of handlers registered for kind.
func (b *Bus) Len(kind domain.EventKind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[kind])
}

// Publish calls every handler registered for the event kind, in registration order,
// before returning. A failing or panicking handler does not stop the others;
// all failures are joined into the returned error.
func (b *Bus) Publish(ctx context.Context, event domain.Event) error {
	b.mu.RLock()
	snapshot := b.subs[event.Kind]
	b.mu.RUnlock()

	var errs []error
	for _, sub := range snapshot {
		if err := b.invoke(ctx, sub, event); err != nil {
			b.logger.Warn("event handler failed",
				"kind", event.Kind,
				"handler", sub.name,
				"error", err.Error(),
			)
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}
	return errors.Join(errs...)
}

func (b *Bus) invoke(ctx context.Context, sub *Subscription, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return sub.handler(ctx, event)
}
