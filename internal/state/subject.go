// Package state holds the process-wide auth and cart stores. Each store owns
// its state, mutates it only through its own operations and notifies
// subscribers synchronously after every change.
package state

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subject is a minimal observable. Subscribers run in subscription order on
// the goroutine that called Notify, outside the subject's lock.
type Subject[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
	closed bool
}

// Subscribe registers fn and returns a func that removes it. Subscribing to
// a closed subject is a no-op.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Subject[T]) Notify(v T) {
	s.mu.Lock()
	subs := append([]subscriber[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subs)
}

// Close drops every subscriber and refuses new ones.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = nil
	s.closed = true
}
