package catalog

import "sync"

// Store serializes dispatches for one session. Reads and dispatch results
// are deep copies, so callers never observe later transitions.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore(zoneCount int) *Store {
	return &Store{state: NewState(zoneCount)}
}

// Dispatch applies a and returns a copy of the resulting state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, a)
	return s.state.Clone()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// DispatchIf runs check against the current state and applies a only when
// check returns nil, both under the same lock. On refusal the state is left
// as it was and the check error is returned.
func (s *Store) DispatchIf(check func(State) error, a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := check(s.state); err != nil {
		return s.state.Clone(), err
	}
	s.state = Reduce(s.state, a)
	return s.state.Clone(), nil
}
