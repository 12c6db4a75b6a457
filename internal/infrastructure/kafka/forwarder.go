package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/events"
)

const (
	defaultQueueSize    = 256
	defaultDrainTimeout = 5 * time.Second
)

// EventForwarder mirrors bus events onto a Kafka topic. Handle only enqueues;
// a single goroutine owned by the forwarder does the writes.
type EventForwarder struct {
	pub          domain.PublisherPort
	maxRetries   int
	timeout      time.Duration
	drainTimeout time.Duration

	queue  chan domain.Message
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func NewEventForwarder(pub domain.PublisherPort) *EventForwarder {
	return newEventForwarder(pub, defaultQueueSize)
}

func newEventForwarder(pub domain.PublisherPort, queueSize int) *EventForwarder {
	ctx, cancel := context.WithCancel(context.Background())
	f := &EventForwarder{
		pub:          pub,
		maxRetries:   3,
		timeout:      30 * time.Second,
		drainTimeout: defaultDrainTimeout,
		queue:        make(chan domain.Message, queueSize),
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
	go f.run()
	return f
}

// Attach subscribes the forwarder to every event kind.
func (f *EventForwarder) Attach(bus *events.Bus) []*events.Subscription {
	subs := make([]*events.Subscription, 0, len(domain.EventKinds))
	for _, kind := range domain.EventKinds {
		subs = append(subs, bus.Subscribe(kind, "kafka", f.Handle))
	}
	return subs
}

// Handle queues the event and returns at once. A full queue drops the event.
func (f *EventForwarder) Handle(ctx context.Context, event domain.Event) error {
	payload := NewReferralEvent(event)
	v, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return fmt.Errorf("kafka forwarder closed, dropped %s", event.Kind)
	}
	select {
	case f.queue <- domain.Message{Key: []byte(payload.Key()), Value: v}:
		return nil
	default:
		return fmt.Errorf("kafka forward queue full, dropped %s", event.Kind)
	}
}

func (f *EventForwarder) run() {
	defer close(f.done)
	for msg := range f.queue {
		ctx, cancel := context.WithTimeout(f.ctx, f.timeout)
		if err := PublishWithRetry(ctx, f.pub, f.maxRetries, msg); err != nil {
			slog.Error("kafka forward failed", "key", string(msg.Key), "error", err.Error())
		}
		cancel()
	}
}

// Close stops accepting events and drains the queue. Writes still pending
// after the drain timeout are abandoned.
func (f *EventForwarder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.queue)
	f.mu.Unlock()

	timer := time.NewTimer(f.drainTimeout)
	defer timer.Stop()
	select {
	case <-f.done:
	case <-timer.C:
		slog.Warn("kafka forwarder drain timed out", "pending", len(f.queue))
		f.cancel()
		<-f.done
	}
	f.cancel()
	return nil
}
