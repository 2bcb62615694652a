package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// View is the surface the UI layer sees: snapshots, dispatch and change
// notifications. Both Store and Scoped implement it.
type View[S, A any] interface {
	State() S
	Send(action A)
	Subscribe(fn func(S)) (unsubscribe func())
}

// Observer receives store lifecycle events.
// Every started effect reports EffectFinished exactly once, including runs
// that were cancelled or superseded.
type Observer interface {
	ActionProcessed(action string, took time.Duration)
	EffectStarted(id EffectID)
	EffectCancelled(id EffectID)
	EffectFinished(id EffectID)
}

type nopObserver struct{}

func (nopObserver) ActionProcessed(string, time.Duration) {}
func (nopObserver) EffectStarted(EffectID)                {}
func (nopObserver) EffectCancelled(EffectID)              {}
func (nopObserver) EffectFinished(EffectID)               {}

// Option configures a Store.
type Option func(*options)

type options struct {
	log      logrus.FieldLogger
	observer Observer
	ctx      context.Context
}

// WithLogger sets the logger used for action and effect tracing.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithObserver attaches an observer, typically a metrics collector.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithContext sets the parent context of every effect.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// run is one executing effect. pending counts its results still waiting in
// the queue and is guarded by the store's mutex.
type run struct {
	id      EffectID
	token   string
	cancel  context.CancelFunc
	dropped *atomic.Bool
	pending int
}

func (r *run) drop() {
	r.dropped.Store(true)
	r.cancel()
}

type envelope[A any] struct {
	action A
	from   *run
}

func (e envelope[A]) stale() bool {
	return e.from != nil && e.from.dropped.Load()
}

// Store owns a state value and applies actions to it one at a time.
type Store[S, A any] struct {
	reducer  Reducer[S, A]
	log      logrus.FieldLogger
	observer Observer
	ctx      context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	state    S
	queue    []envelope[A]
	draining bool
	inflight map[EffectID]*run
	queued   map[EffectID]*run // finished runs with results still queued
	subs     map[uint64]func(S)
	nextSub  uint64
	closed   bool
}

// New creates a store holding initial and driven by reducer.
func New[S, A any](initial S, reducer Reducer[S, A], opts ...Option) *Store[S, A] {
	o := options{ctx: context.Background(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		o.log = l
	}
	ctx, stop := context.WithCancel(o.ctx)
	return &Store[S, A]{
		reducer:  reducer,
		log:      o.log,
		observer: o.observer,
		ctx:      ctx,
		stop:     stop,
		state:    initial,
		inflight: make(map[EffectID]*run),
		queued:   make(map[EffectID]*run),
		subs:     make(map[uint64]func(S)),
	}
}

// State returns the current snapshot.
func (s *Store[S, A]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Send applies action. When no other send is in progress the action, and
// anything enqueued while it runs, is fully processed before Send returns.
func (s *Store[S, A]) Send(action A) {
	s.enqueue(envelope[A]{action: action})
}

// Subscribe registers fn to receive every new snapshot in processing order.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Wait blocks until every running effect has returned.
func (s *Store[S, A]) Wait() {
	s.wg.Wait()
}

// Close cancels all running effects, waits for them and stops accepting
// their results.
func (s *Store[S, A]) Close() {
	s.mu.Lock()
	s.closed = true
	for id, r := range s.inflight {
		r.drop()
		delete(s.inflight, id)
	}
	for id, r := range s.queued {
		r.drop()
		delete(s.queued, id)
	}
	s.mu.Unlock()
	s.stop()
	s.wg.Wait()
}

func (s *Store[S, A]) enqueue(env envelope[A]) {
	s.mu.Lock()
	if env.stale() || (s.closed && env.from != nil) {
		s.mu.Unlock()
		if env.from != nil {
			s.log.WithFields(logrus.Fields{
				"effect_id": env.from.id,
				"run":       env.from.token,
			}).Debug("discarded result of cancelled effect")
		}
		return
	}
	s.queue = append(s.queue, env)
	if env.from != nil {
		env.from.pending++
	}
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.dequeuedLocked(next.from)
		if next.stale() {
			continue
		}

		start := time.Now()
		state, effects := s.reducer(s.state, next.action)
		s.state = state
		for _, e := range effects {
			s.startLocked(e)
		}
		subs := make([]func(S), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
		s.mu.Unlock()

		name := fmt.Sprintf("%T", next.action)
		took := time.Since(start)
		s.observer.ActionProcessed(name, took)
		s.log.WithFields(logrus.Fields{
			"action":  name,
			"effects": len(effects),
			"took":    took,
		}).Debug("action processed")

		for _, fn := range subs {
			fn(state)
		}
		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}

// startLocked must be called with s.mu held.
func (s *Store[S, A]) startLocked(e Effect[A]) {
	switch e.Kind {
	case KindCancel:
		s.discardQueuedLocked(e.ID)
		if r, ok := s.inflight[e.ID]; ok {
			r.drop()
			delete(s.inflight, e.ID)
			s.observer.EffectCancelled(e.ID)
			s.log.WithField("effect_id", e.ID).Debug("effect cancelled")
		}

	case KindRun:
		if e.task == nil || s.closed {
			return
		}
		if e.ID != "" {
			s.discardQueuedLocked(e.ID)
			if prev, ok := s.inflight[e.ID]; ok {
				prev.drop()
				s.observer.EffectCancelled(e.ID)
				s.log.WithFields(logrus.Fields{
					"effect_id": e.ID,
					"run":       prev.token,
				}).Debug("effect superseded")
			}
		}

		ctx, cancel := context.WithCancel(s.ctx)
		r := &run{
			id:      e.ID,
			token:   uuid.NewString(),
			cancel:  cancel,
			dropped: atomic.NewBool(false),
		}
		if e.ID != "" {
			s.inflight[e.ID] = r
		}

		s.observer.EffectStarted(e.ID)
		s.log.WithFields(logrus.Fields{
			"effect_id": e.ID,
			"run":       r.token,
		}).Debug("effect started")

		s.wg.Add(1)
		go s.execute(ctx, r, e.task)
	}
}

// discardQueuedLocked drops the results a finished run under id left in the
// queue. Must be called with s.mu held.
func (s *Store[S, A]) discardQueuedLocked(id EffectID) {
	r, ok := s.queued[id]
	if !ok {
		return
	}
	r.drop()
	delete(s.queued, id)
	s.log.WithFields(logrus.Fields{
		"effect_id": id,
		"run":       r.token,
	}).Debug("queued results superseded")
}

// dequeuedLocked must be called with s.mu held.
func (s *Store[S, A]) dequeuedLocked(r *run) {
	if r == nil {
		return
	}
	r.pending--
	if r.pending == 0 && s.queued[r.id] == r {
		delete(s.queued, r.id)
	}
}

func (s *Store[S, A]) execute(ctx context.Context, r *run, task Task[A]) {
	defer s.wg.Done()
	defer s.finish(r)
	defer func() {
		if p := recover(); p != nil {
			s.log.WithFields(logrus.Fields{
				"effect_id": r.id,
				"run":       r.token,
				"panic":     p,
			}).Error("effect panicked")
		}
	}()

	task(ctx, func(action A) {
		s.enqueue(envelope[A]{action: action, from: r})
	})
}

func (s *Store[S, A]) finish(r *run) {
	s.mu.Lock()
	if cur, ok := s.inflight[r.id]; ok && cur == r {
		delete(s.inflight, r.id)
		if r.pending > 0 {
			s.queued[r.id] = r
		}
	}
	s.mu.Unlock()

	// Release the context; results already queued are still delivered.
	r.cancel()
	s.observer.EffectFinished(r.id)
}
