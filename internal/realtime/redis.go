package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus distributes change events over Redis pub/sub so that live
// views on every instance see writes from any instance. One channel per
// collection; the message payload is the changed scope.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func channelFor(collection string) string {
	return fmt.Sprintf("changes:%s", collection)
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	return b.rdb.Publish(ctx, channelFor(ev.Collection), ev.Scope).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, collection, scope string) (Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, channelFor(collection))

	// Wait for confirmation that the subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan Event, 8),
	}

	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			ev := Event{Collection: collection, Scope: msg.Payload}
			if !matches(scope, ev.Scope) {
				continue
			}
			deliver(sub.events, ev)
		}
	}()

	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Event
	once   sync.Once
	err    error
}

func (s *redisSubscription) Events() <-chan Event {
	return s.events
}

func (s *redisSubscription) Close() error {
	s.once.Do(func() {
		s.err = s.pubsub.Close()
	})
	return s.err
}
