package realtime

import "context"

// Event identifies a changed scope within a collection. An empty Scope
// means the whole collection changed.
type Event struct {
	Collection string
	Scope      string
}

// Subscription is a push channel of change events. Close is idempotent.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Bus carries change events from writers to live views. The store itself
// does not push changes, so every mutation path publishes after a
// successful write.
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, collection, scope string) (Subscription, error)
}

// matches reports whether an event is relevant to a subscription scope.
// A subscription without scope sees every event in the collection; an
// event without scope invalidates every scope.
func matches(subScope, evScope string) bool {
	return subScope == "" || evScope == "" || subScope == evScope
}

// deliver hands an event to a subscription without ever blocking the
// publisher. When the buffer is full it drops a stale pending event to
// make room for the newest one: consumers re-fetch the full snapshot per
// event, so collapsing a backlog loses nothing, while dropping the
// newest could leave a view one refresh behind.
func deliver(events chan Event, ev Event) {
	for {
		select {
		case events <- ev:
			return
		default:
			select {
			case <-events:
			default:
			}
		}
	}
}
