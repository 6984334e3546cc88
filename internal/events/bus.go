// Package events delivers change notifications from the services to their
// observers. Every handler runs on the bus goroutine, one at a time.
package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/joshdurbin/imagefeed/internal/metrics"
)

// Topic names a notification channel
type Topic string

const (
	FeedChanged         Topic = "feed-changed"
	ProfileChanged      Topic = "profile-changed"
	ProfileImageChanged Topic = "profile-image-changed"
)

// Subscription is the handle returned by Subscribe
type Subscription struct {
	ID    uuid.UUID
	Topic Topic
}

type subscriber struct {
	id      uuid.UUID
	handler func(any)
}

// Bus owns the dispatcher goroutine
type Bus struct {
	mu          sync.Mutex
	subscribers map[Topic][]subscriber
	pending     []func()
	closed      bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewBus starts a dispatcher. m may be nil. Close must be called to stop it.
func NewBus(m *metrics.Metrics, logger zerolog.Logger) *Bus {
	b := &Bus{
		subscribers: make(map[Topic][]subscriber),
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		metrics:     m,
		logger:      logger.With().Str("component", "events").Logger(),
	}
	go b.run()
	return b
}

func (b *Bus) subscribe(topic Topic, handler func(any)) Subscription {
	sub := Subscription{ID: uuid.New(), Topic: topic}

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], subscriber{id: sub.ID, handler: handler})
	b.mu.Unlock()

	return sub
}

func (b *Bus) unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.Topic]
	for i, s := range subs {
		if s.id != sub.ID {
			continue
		}
		// Copy so snapshots taken by earlier publishes stay intact
		remaining := make([]subscriber, 0, len(subs)-1)
		remaining = append(remaining, subs[:i]...)
		remaining = append(remaining, subs[i+1:]...)
		b.subscribers[sub.Topic] = remaining
		return true
	}
	return false
}

// publish captures the current subscribers and queues the delivery
func (b *Bus) publish(topic Topic, payload any) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.observe(topic, "closed")
		return
	}

	subs := b.subscribers[topic]
	if len(subs) == 0 {
		b.mu.Unlock()
		b.observe(topic, "dropped")
		return
	}

	b.pending = append(b.pending, func() {
		for _, s := range subs {
			b.deliver(topic, s, payload)
		}
	})
	b.mu.Unlock()

	b.observe(topic, "delivered")
	b.signal()
}

// Sync blocks until every event published before the call has been handled
func (b *Bus) Sync(ctx context.Context) error {
	flushed := make(chan struct{})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.pending = append(b.pending, func() { close(flushed) })
	b.mu.Unlock()
	b.signal()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the dispatcher after draining queued deliveries
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.stop)
	<-b.done
}

func (b *Bus) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bus) run() {
	defer close(b.done)

	for {
		select {
		case <-b.wake:
			b.drain()
		case <-b.stop:
			b.drain()
			return
		}
	}
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		batch := b.pending
		b.pending = nil
		b.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, f := range batch {
			f()
		}
	}
}

func (b *Bus) deliver(topic Topic, s subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("topic", string(topic)).
				Str("subscription", s.id.String()).
				Msg("event handler panicked")
		}
	}()
	s.handler(payload)
}

func (b *Bus) observe(topic Topic, outcome string) {
	if b.metrics != nil {
		b.metrics.EventsPublished.WithLabelValues(string(topic), outcome).Inc()
	}
}
