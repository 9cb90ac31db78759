package session

import "sync"

// Store is a minimal subscribe/notify observable used for session and panel
// state changes. Callbacks run synchronously on the notifying goroutine.
type Store struct {
	mu   sync.Mutex
	next int
	subs map[int]func()
}

func NewStore() *Store {
	return &Store{
		subs: map[int]func(){},
	}
}

// Subscribe registers a callback and returns its cancel function.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) Notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
