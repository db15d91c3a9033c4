package realtime

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. It backs single-instance deployments
// without Redis and the test suite.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[int]*memorySubscription
	next int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]*memorySubscription)}
}

func (b *MemoryBus) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.collection != ev.Collection || !matches(sub.scope, ev.Scope) {
			continue
		}
		deliver(sub.events, ev)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, collection, scope string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &memorySubscription{
		bus:        b,
		id:         b.next,
		collection: collection,
		scope:      scope,
		events:     make(chan Event, 8),
	}
	b.subs[b.next] = sub
	b.next++
	return sub, nil
}

type memorySubscription struct {
	bus        *MemoryBus
	id         int
	collection string
	scope      string
	events     chan Event
	once       sync.Once
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.events)
	})
	return nil
}
