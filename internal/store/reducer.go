package store

// Reducer computes the next state and the effects to run for an action.
// Reducers must not perform I/O or touch anything beyond their arguments.
type Reducer[S, A any] func(state S, action A) (S, []Effect[A])

// Lens locates a child value inside a parent. Get reports false when the
// child is absent, for example an optional sheet that is not showing.
type Lens[P, C any] struct {
	Get func(P) (C, bool)
	Set func(P, C) P
}

// Case extracts a child action from a parent action and wraps it back.
type Case[P, C any] struct {
	Extract func(P) (C, bool)
	Embed   func(C) P
}

// Combine runs reducers in order against the same action, threading the
// state through each and collecting their effects.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	return func(state S, action A) (S, []Effect[A]) {
		var effects []Effect[A]
		for _, r := range reducers {
			var fx []Effect[A]
			state, fx = r(state, action)
			effects = append(effects, fx...)
		}
		return state, effects
	}
}

// Scope lifts a child reducer into its parent's state and action types.
// Actions that are not the child's case, and states where the lens finds no
// child, pass through untouched.
func Scope[PS, PA, CS, CA any](child Reducer[CS, CA], lens Lens[PS, CS], c Case[PA, CA]) Reducer[PS, PA] {
	return func(state PS, action PA) (PS, []Effect[PA]) {
		childAction, ok := c.Extract(action)
		if !ok {
			return state, nil
		}
		childState, ok := lens.Get(state)
		if !ok {
			return state, nil
		}
		childState, effects := child(childState, childAction)
		return lens.Set(state, childState), MapAll(effects, c.Embed)
	}
}
