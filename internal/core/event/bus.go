package event

import (
	"reflect"
	"sync"
)

// Bus fans events out to observers, keyed by the event's Go type. Publish is
// synchronous on the caller's goroutine; observers of one kind run in the
// order they subscribed. Subscribe and Publish belong to the scheduler
// goroutine. Post is the only goroutine-safe entry point: it queues an event
// until the scheduler calls Flush.
type Bus struct {
	handlers map[reflect.Type][]any

	mu      sync.Mutex // protects pending
	pending []func()
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[reflect.Type][]any),
	}
}

func kindOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Subscribe appends fn to the observers of events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := kindOf[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Publish delivers ev to every observer of T, once each, in subscription
// order.
func Publish[T any](b *Bus, ev T) {
	for _, h := range b.handlers[kindOf[T]()] {
		h.(func(T))(ev)
	}
}

// Count returns the number of observers of T.
func Count[T any](b *Bus) int {
	return len(b.handlers[kindOf[T]()])
}

// Post queues ev for delivery on the next Flush. Safe from any goroutine.
func Post[T any](b *Bus, ev T) {
	b.mu.Lock()
	b.pending = append(b.pending, func() { Publish(b, ev) })
	b.mu.Unlock()
}

// Flush publishes every queued event in post order. Events posted while
// flushing wait for the next call. Returns the number delivered.
func (b *Bus) Flush() int {
	b.mu.Lock()
	queued := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, deliver := range queued {
		deliver()
	}
	return len(queued)
}
