package nav

import (
	"slices"
	"strconv"
)

// ElementID identifies one pushed screen for as long as it stays on the
// stack. IDs are never reused within a stack's lifetime.
type ElementID int64

func (id ElementID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Element is a screen state together with its identity.
type Element[S any] struct {
	ID    ElementID
	State S
}

// Stack is an ordered navigation history. It is a value: every operation
// returns a new stack and leaves the receiver untouched.
type Stack[S any] struct {
	elems  []Element[S]
	nextID ElementID
}

// New returns a stack holding states, bottom first.
func New[S any](states ...S) Stack[S] {
	return Stack[S]{}.ReplaceRoot(states...)
}

// Len returns the number of screens on the stack.
func (s Stack[S]) Len() int {
	return len(s.elems)
}

// IsEmpty returns true if the stack has no screens.
func (s Stack[S]) IsEmpty() bool {
	return len(s.elems) == 0
}

// Elements returns a copy of the stack contents, bottom first.
func (s Stack[S]) Elements() []Element[S] {
	return slices.Clone(s.elems)
}

// States returns the screen states, bottom first.
func (s Stack[S]) States() []S {
	out := make([]S, len(s.elems))
	for i, e := range s.elems {
		out[i] = e.State
	}
	return out
}

// Top returns the visible screen.
func (s Stack[S]) Top() (Element[S], bool) {
	if len(s.elems) == 0 {
		return Element[S]{}, false
	}
	return s.elems[len(s.elems)-1], true
}

// At returns the element at position i, counted from the bottom.
func (s Stack[S]) At(i int) (Element[S], bool) {
	if i < 0 || i >= len(s.elems) {
		return Element[S]{}, false
	}
	return s.elems[i], true
}

// IndexOf returns the position of id, or -1.
func (s Stack[S]) IndexOf(id ElementID) int {
	return slices.IndexFunc(s.elems, func(e Element[S]) bool { return e.ID == id })
}

// Get returns the state stored under id.
func (s Stack[S]) Get(id ElementID) (S, bool) {
	if i := s.IndexOf(id); i >= 0 {
		return s.elems[i].State, true
	}
	var zero S
	return zero, false
}

// Set replaces the state stored under id. Unknown ids leave the stack as is.
func (s Stack[S]) Set(id ElementID, state S) Stack[S] {
	i := s.IndexOf(id)
	if i < 0 {
		return s
	}
	elems := slices.Clone(s.elems)
	elems[i].State = state
	s.elems = elems
	return s
}

// Push appends state as the new top.
func (s Stack[S]) Push(state S) Stack[S] {
	s.nextID++
	elems := make([]Element[S], len(s.elems), len(s.elems)+1)
	copy(elems, s.elems)
	s.elems = append(elems, Element[S]{ID: s.nextID, State: state})
	return s
}

// Pop removes the top screen. Popping an empty stack does nothing.
func (s Stack[S]) Pop() Stack[S] {
	if len(s.elems) == 0 {
		return s
	}
	s.elems = slices.Clone(s.elems[:len(s.elems)-1])
	return s
}

// PopTo truncates everything above the bottom-most screen matching match.
// It reports false, leaving the stack untouched, when nothing matches.
func (s Stack[S]) PopTo(match func(S) bool) (Stack[S], bool) {
	i := slices.IndexFunc(s.elems, func(e Element[S]) bool { return match(e.State) })
	if i < 0 {
		return s, false
	}
	s.elems = slices.Clone(s.elems[:i+1])
	return s, true
}

// PopOrPush returns to an existing screen of the same kind as state, or
// pushes state when there is none. Repeated navigation to one place never
// stacks duplicates.
func (s Stack[S]) PopOrPush(state S, sameKind func(a, b S) bool) Stack[S] {
	if next, ok := s.PopTo(func(existing S) bool { return sameKind(existing, state) }); ok {
		return next
	}
	return s.Push(state)
}

// ReplaceRoot discards the whole history and installs states, bottom first.
func (s Stack[S]) ReplaceRoot(states ...S) Stack[S] {
	elems := make([]Element[S], 0, len(states))
	for _, st := range states {
		s.nextID++
		elems = append(elems, Element[S]{ID: s.nextID, State: st})
	}
	s.elems = elems
	return s
}
