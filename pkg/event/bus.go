// Package event provides a synchronous publish/subscribe bus.
//
// Delivery happens on the publisher's goroutine before Publish returns, in
// subscription order. Handlers may publish again (nested delivery is depth
// first) and may subscribe or unsubscribe while a delivery is in progress;
// changes to the subscriber set take effect for the next Publish.
package event

// Type names the kind of event being published.
type Type string

const (
	Added   Type = "added"
	Changed Type = "changed"
	Removed Type = "removed"
)

// Event is a published event with a typed payload.
type Event[T any] struct {
	Type    Type
	Payload T
}

// Handler receives events from a Bus.
type Handler[T any] func(Event[T])

type subscription[T any] struct {
	id int
	fn Handler[T]
}

// Bus is a synchronous event bus. The zero value is ready to use.
type Bus[T any] struct {
	subs   []subscription[T]
	nextID int
}

// Subscribe registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn Handler[T]) (unsubscribe func()) {
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription[T]{id: id, fn: fn})
	return func() {
		for i, s := range b.subs {
			if s.id == id {
				// copy so a delivery iterating the old slice is unaffected
				next := make([]subscription[T], 0, len(b.subs)-1)
				next = append(next, b.subs[:i]...)
				b.subs = append(next, b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers an event to every current subscriber.
func (b *Bus[T]) Publish(typ Type, payload T) {
	subs := b.subs
	ev := Event[T]{Type: typ, Payload: payload}
	for _, s := range subs {
		s.fn(ev)
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus[T]) SubscriberCount() int {
	return len(b.subs)
}
