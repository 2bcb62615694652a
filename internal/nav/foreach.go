package nav

import "octoterm/internal/store"

// Route addresses a child action to one stack element.
type Route[PA, CA any] struct {
	Extract func(PA) (ElementID, CA, bool)
	Embed   func(ElementID, CA) PA
}

// ForEach runs child against the single element an action is addressed to.
// An action for an element that has since left the stack is dropped without
// effects, which is what keeps late network results from reviving a popped
// screen. Child effect IDs are namespaced by element so that two instances
// of one screen never supersede each other's work.
func ForEach[PS, PA, CS, CA any](
	child store.Reducer[CS, CA],
	get func(PS) Stack[CS],
	set func(PS, Stack[CS]) PS,
	route Route[PA, CA],
) store.Reducer[PS, PA] {
	return func(state PS, action PA) (PS, []store.Effect[PA]) {
		id, childAction, ok := route.Extract(action)
		if !ok {
			return state, nil
		}
		stack := get(state)
		childState, ok := stack.Get(id)
		if !ok {
			return state, nil
		}

		childState, fx := child(childState, childAction)
		effects := make([]store.Effect[PA], 0, len(fx))
		for _, e := range fx {
			effects = append(effects, store.Map(e.Prefixed(id.String()), func(a CA) PA {
				return route.Embed(id, a)
			}))
		}
		return set(state, stack.Set(id, childState)), effects
	}
}
