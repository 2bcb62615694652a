package store

// Scoped is a child view of a parent store. It exposes only the child's
// state and actions and routes every send through the parent.
type Scoped[PS, PA, CS, CA any] struct {
	parent View[PS, PA]
	get    func(PS) (CS, bool)
	embed  func(CA) PA
}

// ScopeStore derives a child view from parent. get reports false when the
// child state is no longer present, for example after its screen was popped.
func ScopeStore[PS, PA, CS, CA any](parent View[PS, PA], get func(PS) (CS, bool), embed func(CA) PA) *Scoped[PS, PA, CS, CA] {
	return &Scoped[PS, PA, CS, CA]{parent: parent, get: get, embed: embed}
}

// State returns the child snapshot, or the zero value when absent.
func (s *Scoped[PS, PA, CS, CA]) State() CS {
	cs, _ := s.get(s.parent.State())
	return cs
}

// Lookup returns the child snapshot and whether it is present.
func (s *Scoped[PS, PA, CS, CA]) Lookup() (CS, bool) {
	return s.get(s.parent.State())
}

// Send wraps action and dispatches it on the parent.
func (s *Scoped[PS, PA, CS, CA]) Send(action CA) {
	s.parent.Send(s.embed(action))
}

// Subscribe notifies fn with child snapshots while the child is present.
func (s *Scoped[PS, PA, CS, CA]) Subscribe(fn func(CS)) func() {
	return s.parent.Subscribe(func(ps PS) {
		if cs, ok := s.get(ps); ok {
			fn(cs)
		}
	})
}
