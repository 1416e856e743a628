package store

import (
	"slices"
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// subscriberList keeps callbacks in subscription order. Delivery works on a
// snapshot so callbacks may subscribe or unsubscribe while a pass is running.
type subscriberList[T any] struct {
	mu   sync.Mutex
	list []*subscriber[T]
}

func (s *subscriberList[T]) add(fn func(T)) *subscriber[T] {
	sub := &subscriber[T]{fn: fn}
	sub.active.Store(true)
	s.mu.Lock()
	s.list = append(s.list, sub)
	s.mu.Unlock()
	return sub
}

func (s *subscriberList[T]) remove(sub *subscriber[T]) {
	sub.active.Store(false)
	s.mu.Lock()
	s.list = slices.DeleteFunc(s.list, func(candidate *subscriber[T]) bool {
		return candidate == sub
	})
	s.mu.Unlock()
}

func (s *subscriberList[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

func (s *subscriberList[T]) deliver(value T) {
	s.mu.Lock()
	snapshot := slices.Clone(s.list)
	s.mu.Unlock()
	for _, sub := range snapshot {
		if sub.active.Load() {
			sub.fn(value)
		}
	}
}

// subscribe registers fn, replays current() once and returns an idempotent
// unsubscribe function.
func (s *subscriberList[T]) subscribe(fn func(T), current func() T) func() {
	if fn == nil {
		return func() {}
	}
	sub := s.add(fn)
	fn(current())
	var once sync.Once
	return func() {
		once.Do(func() { s.remove(sub) })
	}
}
