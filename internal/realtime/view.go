package realtime

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Query selects a collection and an optional parent scope, e.g. the
// replies under one post or the notifications of one user. Ordering is
// owned by the fetch function.
type Query struct {
	Collection string
	Scope      string
}

// FetchFunc materializes the full ordered result of a query.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

const (
	resubscribeAttempts = 3
	resubscribeDelay    = 250 * time.Millisecond
)

// View is a live, in-memory projection of a store query. Every change
// event within scope triggers a full re-fetch; the latest snapshot is
// republished on Updates. A view whose change channel dropped and could
// not be re-established is flagged stale instead of failing its
// consumer.
type View[T any] struct {
	updates chan []T
	stale   atomic.Bool
	cancel  context.CancelFunc
	once    sync.Once
}

// Open subscribes to the query's change events and delivers the initial
// snapshot immediately. The returned unsubscribe func is idempotent and
// must be called when the consumer goes out of scope; not calling it
// leaks the live channel.
func Open[T any](ctx context.Context, bus Bus, q Query, fetch FetchFunc[T]) (*View[T], func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	sub, err := bus.Subscribe(ctx, q.Collection, q.Scope)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	snapshot, err := fetch(ctx)
	if err != nil {
		sub.Close()
		cancel()
		return nil, nil, err
	}

	v := &View[T]{
		updates: make(chan []T, 1),
		cancel:  cancel,
	}
	v.push(snapshot)

	go v.run(ctx, bus, q, sub, fetch)

	unsubscribe := func() {
		v.once.Do(v.cancel)
	}
	return v, unsubscribe, nil
}

// Updates delivers full ordered snapshots, latest wins. The channel is
// closed after unsubscribe.
func (v *View[T]) Updates() <-chan []T {
	return v.updates
}

// Stale reports that the change channel was lost and resubscription
// failed; the last snapshot may be outdated.
func (v *View[T]) Stale() bool {
	return v.stale.Load()
}

// push replaces any pending snapshot so publishers never block.
func (v *View[T]) push(snapshot []T) {
	for {
		select {
		case v.updates <- snapshot:
			return
		default:
			select {
			case <-v.updates:
			default:
			}
		}
	}
}

func (v *View[T]) run(ctx context.Context, bus Bus, q Query, sub Subscription, fetch FetchFunc[T]) {
	defer close(v.updates)
	defer func() { sub.Close() }()

	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				next, err := v.resubscribe(ctx, bus, q)
				if err != nil {
					v.stale.Store(true)
					return
				}
				sub.Close()
				sub = next
				events = sub.Events()
				// Catch up on whatever changed while the channel was down.
				if snapshot, err := fetch(ctx); err == nil {
					v.push(snapshot)
				}
				continue
			}

			snapshot, err := fetch(ctx)
			if err != nil {
				log.Printf("live view %s/%s: refetch failed: %v", q.Collection, q.Scope, err)
				continue
			}
			v.push(snapshot)
		}
	}
}

func (v *View[T]) resubscribe(ctx context.Context, bus Bus, q Query) (Subscription, error) {
	var lastErr error
	for attempt := 0; attempt < resubscribeAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(resubscribeDelay):
		}

		sub, err := bus.Subscribe(ctx, q.Collection, q.Scope)
		if err == nil {
			return sub, nil
		}
		lastErr = err
		log.Printf("live view %s/%s: resubscribe attempt %d failed: %v", q.Collection, q.Scope, attempt+1, err)
	}
	return nil, lastErr
}
