package store

import "sync"

// Listener observes state changes.
type Listener interface {
	StateChanged(prev, next State, a Action)
}

// ListenerFunc adapts a function to [Listener].
type ListenerFunc func(prev, next State, a Action)

func (f ListenerFunc) StateChanged(prev, next State, a Action) { f(prev, next, a) }

// Store owns the application [State] and serializes every change through [Reduce].
//
// Listeners run after the state lock is released, one dispatch at a time and
// in dispatch order. A listener must not call Dispatch synchronously.
type Store struct {
	mu        sync.Mutex
	state     State
	seq       uint64
	listeners map[int]Listener
	nextID    int

	emit sync.Mutex
}

// New creates a store holding [Initial].
func New() *Store {
	return &Store{state: Initial(), listeners: make(map[int]Listener)}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// NextSeq issues the next sequence number.
func (s *Store) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Dispatch reduces a into the state and notifies listeners.
func (s *Store) Dispatch(a Action) {
	s.commit(func() Action { return a })
}

// Begin issues a sequence number for key and marks it loading in one step.
func (s *Store) Begin(key string) uint64 {
	var seq uint64
	s.commit(func() Action {
		s.seq++
		seq = s.seq
		return Pending{Key: key, Seq: seq}
	})
	return seq
}

// commit runs next under the state lock, reduces its action and notifies listeners.
func (s *Store) commit(next func() Action) {
	s.emit.Lock()
	defer s.emit.Unlock()

	s.mu.Lock()
	a := next()
	prev := s.state
	s.state = Reduce(prev, a)
	cur := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for id := range s.nextID {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l.StateChanged(prev, cur, a)
	}
}
