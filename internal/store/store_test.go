package store

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	N   int
	Log []string
}

type inc struct{}

type fetch struct {
	id      EffectID
	tag     string
	release chan struct{}
}

type fetched struct{ tag string }

type stop struct{ id EffectID }

type explode struct{}

func counterReducer(s counter, action any) (counter, []Effect[any]) {
	switch a := action.(type) {
	case inc:
		s.N++
	case fetch:
		release, tag := a.release, a.tag
		// Ignores ctx on purpose: the late result must still be discarded.
		return s, []Effect[any]{Run[any](a.id, func(_ context.Context, send func(any)) {
			<-release
			send(fetched{tag: tag})
		})}
	case fetched:
		s.Log = append(slices.Clone(s.Log), a.tag)
	case stop:
		return s, []Effect[any]{Cancel[any](a.id)}
	case explode:
		return s, []Effect[any]{Run[any]("boom", func(context.Context, func(any)) {
			panic("kaboom")
		})}
	}
	return s, nil
}

func TestSendAppliesBeforeReturning(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	s.Send(inc{})
	s.Send(inc{})

	assert.Equal(t, 2, s.State().N)
}

func TestSubscribersSeeEverySnapshotInOrder(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	var seen []int
	unsubscribe := s.Subscribe(func(c counter) { seen = append(seen, c.N) })
	s.Send(inc{})
	s.Send(inc{})
	unsubscribe()
	s.Send(inc{})

	assert.Equal(t, []int{1, 2}, seen)
	assert.Equal(t, 3, s.State().N)
}

func TestNewerEffectSupersedesOlderWithSameID(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	releaseA, releaseB := make(chan struct{}), make(chan struct{})
	s.Send(fetch{id: "search", tag: "a", release: releaseA})
	s.Send(fetch{id: "search", tag: "b", release: releaseB})

	close(releaseB)
	require.Eventually(t, func() bool { return len(s.State().Log) == 1 }, time.Second, time.Millisecond)

	close(releaseA)
	s.Wait()

	assert.Equal(t, []string{"b"}, s.State().Log)
}

type finishes struct {
	nopObserver
	done chan EffectID
}

func (f finishes) EffectFinished(id EffectID) { f.done <- id }

// whileDraining runs fn once from inside the store's processing loop, then
// lets the loop continue with whatever fn queued.
func whileDraining(s *Store[counter, any], fn func()) {
	var once sync.Once
	unsubscribe := s.Subscribe(func(counter) { once.Do(fn) })
	defer unsubscribe()
	s.Send(inc{})
}

func TestNewerEffectDiscardsQueuedResultOfFinishedRun(t *testing.T) {
	obs := finishes{done: make(chan EffectID, 8)}
	s := New(counter{}, counterReducer, WithObserver(obs))
	defer s.Close()

	releaseA, releaseB := make(chan struct{}), make(chan struct{})
	s.Send(fetch{id: "search", tag: "a", release: releaseA})

	whileDraining(s, func() {
		s.Send(fetch{id: "search", tag: "b", release: releaseB})
		close(releaseA)
		// a has returned and its result sits in the queue behind b's fetch.
		require.Equal(t, EffectID("search"), <-obs.done)
	})

	close(releaseB)
	s.Wait()

	assert.Equal(t, []string{"b"}, s.State().Log)
}

func TestCancelDiscardsQueuedResultOfFinishedRun(t *testing.T) {
	obs := finishes{done: make(chan EffectID, 8)}
	s := New(counter{}, counterReducer, WithObserver(obs))
	defer s.Close()

	release := make(chan struct{})
	s.Send(fetch{id: "feed", tag: "late", release: release})

	whileDraining(s, func() {
		s.Send(stop{id: "feed"})
		close(release)
		require.Equal(t, EffectID("feed"), <-obs.done)
	})
	s.Wait()

	assert.Empty(t, s.State().Log)
	assert.Equal(t, 1, s.State().N)
}

func TestQueuedResultIsForgottenOnceApplied(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	release := make(chan struct{})
	s.Send(fetch{id: "feed", tag: "first", release: release})
	close(release)
	s.Wait()

	s.mu.Lock()
	assert.Empty(t, s.queued)
	assert.Empty(t, s.inflight)
	s.mu.Unlock()
	assert.Equal(t, []string{"first"}, s.State().Log)
}

func TestEffectsWithDifferentIDsRunIndependently(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	releaseA, releaseB := make(chan struct{}), make(chan struct{})
	s.Send(fetch{id: "one", tag: "a", release: releaseA})
	s.Send(fetch{id: "two", tag: "b", release: releaseB})
	close(releaseA)
	close(releaseB)
	s.Wait()

	assert.ElementsMatch(t, []string{"a", "b"}, s.State().Log)
}

func TestCancelDiscardsLateResult(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	release := make(chan struct{})
	s.Send(fetch{id: "feed", tag: "late", release: release})
	s.Send(stop{id: "feed"})
	close(release)
	s.Wait()

	assert.Empty(t, s.State().Log)
}

func TestConcurrentSendsAreSerialized(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Send(inc{})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return s.State().N == 200 }, time.Second, time.Millisecond)
}

func TestPanickingEffectIsContained(t *testing.T) {
	s := New(counter{}, counterReducer)
	defer s.Close()

	s.Send(explode{})
	s.Wait()
	s.Send(inc{})

	assert.Equal(t, 1, s.State().N)
}

func TestCloseStopsRunningEffects(t *testing.T) {
	s := New(counter{}, counterReducer)

	release := make(chan struct{})
	s.Send(fetch{id: "slow", tag: "x", release: release})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	s.Close()

	assert.Empty(t, s.State().Log)
}

type parent struct {
	Left  counter
	Right *counter
}

type leftAction struct{ inner any }
type rightAction struct{ inner any }

func TestScopeRoutesOnlyMatchingCases(t *testing.T) {
	left := Scope(counterReducer,
		Lens[parent, counter]{
			Get: func(p parent) (counter, bool) { return p.Left, true },
			Set: func(p parent, c counter) parent { p.Left = c; return p },
		},
		Case[any, any]{
			Extract: func(a any) (any, bool) {
				l, ok := a.(leftAction)
				return l.inner, ok
			},
			Embed: func(a any) any { return leftAction{inner: a} },
		})
	right := Scope(counterReducer,
		Lens[parent, counter]{
			Get: func(p parent) (counter, bool) {
				if p.Right == nil {
					return counter{}, false
				}
				return *p.Right, true
			},
			Set: func(p parent, c counter) parent { p.Right = &c; return p },
		},
		Case[any, any]{
			Extract: func(a any) (any, bool) {
				r, ok := a.(rightAction)
				return r.inner, ok
			},
			Embed: func(a any) any { return rightAction{inner: a} },
		})
	reducer := Combine(left, right)

	state, effects := reducer(parent{}, leftAction{inner: inc{}})
	assert.Equal(t, 1, state.Left.N)
	assert.Empty(t, effects)

	// Right is absent, so its actions are no-ops.
	next, effects := reducer(state, rightAction{inner: inc{}})
	assert.Equal(t, state, next)
	assert.Empty(t, effects)

	next, effects = reducer(state, "unrelated")
	assert.Equal(t, state, next)
	assert.Empty(t, effects)

	_, effects = reducer(state, leftAction{inner: stop{id: "x"}})
	require.Len(t, effects, 1)
	assert.Equal(t, KindCancel, effects[0].Kind)
	assert.Equal(t, EffectID("x"), effects[0].ID)
}

func TestScopedEffectsEmitParentActions(t *testing.T) {
	child := Reducer[counter, any](func(s counter, a any) (counter, []Effect[any]) {
		return s, []Effect[any]{Send[any](fetched{tag: "done"})}
	})
	reducer := Scope(child,
		Lens[parent, counter]{
			Get: func(p parent) (counter, bool) { return p.Left, true },
			Set: func(p parent, c counter) parent { p.Left = c; return p },
		},
		Case[any, any]{
			Extract: func(a any) (any, bool) { l, ok := a.(leftAction); return l.inner, ok },
			Embed:   func(a any) any { return leftAction{inner: a} },
		})

	_, effects := reducer(parent{}, leftAction{inner: inc{}})
	require.Len(t, effects, 1)

	var got []any
	effects[0].Exec(context.Background(), func(a any) { got = append(got, a) })
	assert.Equal(t, []any{leftAction{inner: fetched{tag: "done"}}}, got)
}

func TestScopedStoreSendsThroughParent(t *testing.T) {
	reducer := Scope(counterReducer,
		Lens[parent, counter]{
			Get: func(p parent) (counter, bool) { return p.Left, true },
			Set: func(p parent, c counter) parent { p.Left = c; return p },
		},
		Case[any, any]{
			Extract: func(a any) (any, bool) { l, ok := a.(leftAction); return l.inner, ok },
			Embed:   func(a any) any { return leftAction{inner: a} },
		})
	s := New(parent{}, reducer)
	defer s.Close()

	child := ScopeStore[parent, any, counter, any](s,
		func(p parent) (counter, bool) { return p.Left, true },
		func(a any) any { return leftAction{inner: a} })

	var seen []int
	child.Subscribe(func(c counter) { seen = append(seen, c.N) })
	child.Send(inc{})

	assert.Equal(t, 1, child.State().N)
	assert.Equal(t, 1, s.State().Left.N)
	assert.Equal(t, []int{1}, seen)
}

func TestPerformDeliversErrorsAsActions(t *testing.T) {
	boom := errors.New("boom")
	effect := Perform("load",
		func(context.Context) (int, error) { return 0, boom },
		func(r Result[int]) any { return r })

	var got []any
	effect.Exec(context.Background(), func(a any) { got = append(got, a) })

	require.Len(t, got, 1)
	result := got[0].(Result[int])
	assert.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, boom)
}

func TestPerformSkipsCancelledCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	effect := Perform("load",
		func(context.Context) (int, error) { cancel(); return 1, nil },
		func(r Result[int]) any { return r })

	called := false
	effect.Exec(ctx, func(any) { called = true })
	assert.False(t, called)
}

func TestPrefixedLeavesUntrackedEffectsAlone(t *testing.T) {
	assert.Equal(t, EffectID("7/search"), Run[any]("search", nil).Prefixed("7").ID)
	assert.Equal(t, EffectID(""), Send[any](inc{}).Prefixed("7").ID)
}
