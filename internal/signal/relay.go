// Package signal carries values from sensor and timer goroutines to the
// render loop. A Relay fans values out to subscriber channels; the render loop
// drains its channels once per frame, so view state is only ever touched from
// that one goroutine.
package signal

import "sync"

// Relay publishes values of type T to any number of subscribers.
type Relay[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
	replay bool
	last   *T
	closed bool
}

// NewRelay returns a relay that only delivers values published after a
// subscriber joins.
func NewRelay[T any]() *Relay[T] {
	return &Relay[T]{subs: make(map[int]chan T)}
}

// NewBehaviorRelay returns a relay that hands the most recent value to new
// subscribers before anything else.
func NewBehaviorRelay[T any]() *Relay[T] {
	r := NewRelay[T]()
	r.replay = true
	return r
}

// Subscribe registers a subscriber with a channel of the given buffer size
// (minimum 1). The returned func unsubscribes and closes the channel.
func (r *Relay[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	if r.replay && r.last != nil {
		ch <- *r.last
	}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if c, ok := r.subs[id]; ok {
				delete(r.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers v to every subscriber without blocking. When a
// subscriber's buffer is full its oldest pending value is dropped.
func (r *Relay[T]) Publish(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.replay {
		r.last = &v
	}
	for _, ch := range r.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Close closes every subscriber channel. Later publishes are ignored.
func (r *Relay[T]) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}

// Drain reads every value currently buffered in ch without blocking and
// passes it to fn. It reports false once ch is closed.
func Drain[T any](ch <-chan T, fn func(T)) bool {
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return false
			}
			fn(v)
		default:
			return true
		}
	}
}
