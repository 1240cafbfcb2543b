// Package observe implements published values and event streams with an
// explicit observer list. Observers run synchronously on the publishing
// goroutine; the monitor only publishes from the UI queue.
package observe

import "sync"

type observers[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	id := o.next
	o.subs = append(o.subs, subscription[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers[T]) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) notify(v T) {
	o.mu.Lock()
	subs := make([]subscription[T], len(o.subs))
	copy(subs, o.subs)
	o.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Observable is the read side of a Value.
type Observable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (cancel func())
}

// Value is a published field. Subscribers receive the current value on
// subscription and every subsequent Set.
type Value[T any] struct {
	mu  sync.RWMutex
	val T
	obs observers[T]
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{val: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val
}

// Set stores x and notifies every subscriber.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	v.val = x
	v.mu.Unlock()
	v.obs.notify(x)
}

// Subscribe registers fn and calls it with the current value.
// The returned function cancels the subscription.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	cancel = v.obs.add(fn)
	fn(v.Get())
	return cancel
}

// Stream is an event stream without a current value.
type Stream[T any] struct {
	obs observers[T]
}

// NewStream creates an empty stream.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// Emit delivers x to every subscriber.
func (s *Stream[T]) Emit(x T) {
	s.obs.notify(x)
}

// Subscribe registers fn for future events.
func (s *Stream[T]) Subscribe(fn func(T)) (cancel func()) {
	return s.obs.add(fn)
}

// Chan subscribes a buffered channel. Events are dropped while the channel is
// full. cancel unsubscribes; the channel is never closed.
func (s *Stream[T]) Chan(buffer int) (ch <-chan T, cancel func()) {
	c := make(chan T, buffer)
	cancel = s.Subscribe(func(v T) {
		select {
		case c <- v:
		default:
		}
	})
	return c, cancel
}

var _ Observable[int] = (*Value[int])(nil)
