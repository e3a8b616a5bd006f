package storage

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

// Broker fans changes out to prefix subscribers. Slow subscribers lose
// changes instead of blocking writers.
type Broker struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
	closed bool
}

type subscription struct {
	prefix string
	ch     chan Change
}

// NewBroker builds an empty broker.
func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{logger: logger, subs: map[int]*subscription{}}
}

// Subscribe registers a subscriber for keys under prefix. The channel closes
// when ctx is done or the broker closes.
func (b *Broker) Subscribe(ctx context.Context, prefix string) (<-chan Change, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	id := b.nextID
	b.nextID++
	sub := &subscription{prefix: prefix, ch: make(chan Change, subscriberBuffer)}
	b.subs[id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()
	return sub.ch, nil
}

func (b *Broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
}

// Publish delivers changes to every matching subscriber without blocking.
func (b *Broker) Publish(changes ...Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, change := range changes {
		for _, sub := range b.subs {
			if !strings.HasPrefix(change.Key, sub.prefix) {
				continue
			}
			select {
			case sub.ch <- change:
			default:
				b.logger.Warn("dropping change for slow subscriber",
					zap.String("key", change.Key),
					zap.String("prefix", sub.prefix),
					zap.Int64("seq", change.Seq),
				)
			}
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close closes every subscription. Later subscribes fail with ErrClosed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}
