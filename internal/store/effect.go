package store

import "context"

// EffectID names a logical slot of asynchronous work. At most one effect per
// ID is in flight; starting another under the same ID cancels the first.
type EffectID string

// Task is the body of a running effect. It reports results through send and
// should return once ctx is cancelled.
type Task[A any] func(ctx context.Context, send func(A))

// EffectKind distinguishes the three shapes an effect can take.
type EffectKind int

const (
	KindNone EffectKind = iota
	KindRun
	KindCancel
)

func (k EffectKind) String() string {
	switch k {
	case KindRun:
		return "run"
	case KindCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Effect is work requested by a reducer and performed by the store after the
// state transition has been applied.
type Effect[A any] struct {
	Kind EffectKind
	ID   EffectID
	task Task[A]
}

// None returns an effect that does nothing.
func None[A any]() Effect[A] {
	return Effect[A]{Kind: KindNone}
}

// Run returns an effect that executes task. An empty id leaves the task
// untracked: it cannot be superseded or cancelled by ID.
func Run[A any](id EffectID, task Task[A]) Effect[A] {
	return Effect[A]{Kind: KindRun, ID: id, task: task}
}

// Cancel returns an effect that cancels whatever is running under id.
func Cancel[A any](id EffectID) Effect[A] {
	return Effect[A]{Kind: KindCancel, ID: id}
}

// Send returns an untracked effect that feeds action back into the store.
func Send[A any](action A) Effect[A] {
	return Run("", func(_ context.Context, send func(A)) {
		send(action)
	})
}

// Result carries the outcome of a collaborator call into a follow-up action.
type Result[T any] struct {
	Value T
	Err   error
}

// Failed reports whether the call returned an error.
func (r Result[T]) Failed() bool {
	return r.Err != nil
}

// Failure returns the call's error. Actions embedding a Result satisfy
// apperr.Carrier through it.
func (r Result[T]) Failure() error {
	return r.Err
}

// Perform runs op under id and dispatches exactly one action built from its
// outcome. Errors become part of the action so the reducer decides what they
// mean. A superseded call dispatches nothing.
func Perform[A, T any](id EffectID, op func(ctx context.Context) (T, error), wrap func(Result[T]) A) Effect[A] {
	return Run(id, func(ctx context.Context, send func(A)) {
		value, err := op(ctx)
		if ctx.Err() != nil {
			return
		}
		send(wrap(Result[T]{Value: value, Err: err}))
	})
}

// Exec runs the effect's task on the calling goroutine. The store never calls
// this; it exists so reducers can be exercised without a store.
func (e Effect[A]) Exec(ctx context.Context, send func(A)) {
	if e.Kind == KindRun && e.task != nil {
		e.task(ctx, send)
	}
}

// Prefixed namespaces the effect ID, leaving untracked effects alone.
func (e Effect[A]) Prefixed(ns string) Effect[A] {
	if e.ID == "" || ns == "" {
		return e
	}
	e.ID = EffectID(ns + "/" + string(e.ID))
	return e
}

// Map converts the actions an effect emits into another action type.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	out := Effect[B]{Kind: e.Kind, ID: e.ID}
	if e.task != nil {
		task := e.task
		out.task = func(ctx context.Context, send func(B)) {
			task(ctx, func(a A) { send(f(a)) })
		}
	}
	return out
}

// MapAll applies Map to every effect.
func MapAll[A, B any](effects []Effect[A], f func(A) B) []Effect[B] {
	if len(effects) == 0 {
		return nil
	}
	out := make([]Effect[B], 0, len(effects))
	for _, e := range effects {
		out = append(out, Map(e, f))
	}
	return out
}
