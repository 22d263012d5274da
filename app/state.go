package app

import "github.com/nolantait/flock/ecs"

// State is a typed state-machine resource. Systems queue transitions with
// Set; the transition applies at the top of the next frame and publishes a
// StateChanged[S] event, so enter/exit reactions are ordinary event readers.
type State[S comparable] struct {
	current S
	next    *S
}

// StateChanged is published once per applied transition.
type StateChanged[S comparable] struct {
	From S
	To   S
}

// Current returns the active state.
func (s *State[S]) Current() S {
	return s.current
}

// Is reports whether the active state equals the given one.
func (s *State[S]) Is(state S) bool {
	return s.current == state
}

// Set queues a transition. Setting the current state again is a no-op.
func (s *State[S]) Set(next S) {
	if next == s.current {
		s.next = nil
		return
	}
	s.next = &next
}

// Pending returns the queued transition target, if any.
func (s *State[S]) Pending() (S, bool) {
	if s.next == nil {
		var zero S
		return zero, false
	}
	return *s.next, true
}

// apply commits a queued transition and reports it.
func (s *State[S]) apply() (StateChanged[S], bool) {
	if s.next == nil {
		return StateChanged[S]{}, false
	}
	change := StateChanged[S]{From: s.current, To: *s.next}
	s.current = *s.next
	s.next = nil
	return change, true
}

// stateTransitionSystem applies queued transitions for one state type.
type stateTransitionSystem[S comparable] struct {
	State   ecs.Singleton[State[S]]
	Changes ecs.EventWriter[StateChanged[S]]
}

func (s *stateTransitionSystem[S]) Execute(frame *ecs.UpdateFrame) {
	if change, ok := s.State.Get().apply(); ok {
		s.Changes.Send(change)
	}
}

// AddState installs a State[S] resource starting at initial, together with
// its transition system and StateChanged[S] events.
func AddState[S comparable](app *App, initial S) {
	app.InsertResource(State[S]{current: initial})
	AddEvent[StateChanged[S]](app)
	app.AddSystemAt(ecs.StageFirst, &stateTransitionSystem[S]{})
}
