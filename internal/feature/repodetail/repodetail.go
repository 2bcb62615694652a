// Package repodetail shows one repository with its README.
package repodetail

import (
	"context"

	"octoterm/internal/apperr"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"
)

const (
	RepositoryID store.EffectID = "repodetail.repository"
	ReadmeID     store.EffectID = "repodetail.readme"
	StarredID    store.EffectID = "repodetail.starred"
	WatchingID   store.EffectID = "repodetail.watching"
	StarID       store.EffectID = "repodetail.star"
	WatchID      store.EffectID = "repodetail.watch"
)

type API interface {
	GetRepository(ctx context.Context, fullName string) (model.Repository, error)
	GetReadme(ctx context.Context, fullName string) (string, error)
	IsStarred(ctx context.Context, fullName string) (bool, error)
	IsWatching(ctx context.Context, fullName string) (bool, error)
	SetStarred(ctx context.Context, fullName string, starred bool) error
	SetWatching(ctx context.Context, fullName string, watching bool) error
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

type State struct {
	Repository model.Repository
	// SignedIn enables the star and watch controls.
	SignedIn bool

	Readme        string
	ReadmeLoaded  bool
	ReadmeLoading bool

	IsLoading    bool
	IsStarred    bool
	IsWatching   bool
	StatusLoaded bool

	ErrorMessage string
	Notice       string
}

// NewState opens a repository already known from a list row; Appeared
// refreshes it.
func NewState(repo model.Repository, signedIn bool) State {
	return State{Repository: repo, SignedIn: signedIn}
}

type Action interface{ repoDetailAction() }

type (
	Appeared          struct{}
	Refresh           struct{}
	RepositoryLoaded  struct{ store.Result[model.Repository] }
	ReadmeLoaded      struct{ store.Result[string] }
	StarStatusLoaded  struct{ store.Result[bool] }
	WatchStatusLoaded struct{ store.Result[bool] }
	StarToggled       struct{}
	WatchToggled      struct{}
)

// StarUpdated reports the outcome of setting the star to Starred.
type StarUpdated struct {
	Starred bool
	Err     error
}

// WatchUpdated reports the outcome of setting the subscription to Watching.
type WatchUpdated struct {
	Watching bool
	Err      error
}

func (a StarUpdated) Failure() error  { return a.Err }
func (a WatchUpdated) Failure() error { return a.Err }

func (Appeared) repoDetailAction()          {}
func (Refresh) repoDetailAction()           {}
func (RepositoryLoaded) repoDetailAction()  {}
func (ReadmeLoaded) repoDetailAction()      {}
func (StarStatusLoaded) repoDetailAction()  {}
func (WatchStatusLoaded) repoDetailAction() {}
func (StarToggled) repoDetailAction()       {}
func (WatchToggled) repoDetailAction()      {}
func (StarUpdated) repoDetailAction()       {}
func (WatchUpdated) repoDetailAction()      {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	api := deps.API

	load := func(s State) (State, []store.Effect[Action]) {
		name := s.Repository.FullName
		s.IsLoading = true
		s.ReadmeLoading = true
		s.ErrorMessage = ""
		fx := []store.Effect[Action]{
			store.Perform(RepositoryID,
				func(ctx context.Context) (model.Repository, error) { return api.GetRepository(ctx, name) },
				func(r store.Result[model.Repository]) Action { return RepositoryLoaded{r} },
			),
			store.Perform(ReadmeID,
				func(ctx context.Context) (string, error) { return api.GetReadme(ctx, name) },
				func(r store.Result[string]) Action { return ReadmeLoaded{r} },
			),
		}
		if s.SignedIn {
			fx = append(fx,
				store.Perform(StarredID,
					func(ctx context.Context) (bool, error) { return api.IsStarred(ctx, name) },
					func(r store.Result[bool]) Action { return StarStatusLoaded{r} },
				),
				store.Perform(WatchingID,
					func(ctx context.Context) (bool, error) { return api.IsWatching(ctx, name) },
					func(r store.Result[bool]) Action { return WatchStatusLoaded{r} },
				),
			)
		}
		return s, fx
	}

	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Appeared:
			if s.IsLoading || s.ReadmeLoaded {
				return s, nil
			}
			return load(s)

		case Refresh:
			return load(s)

		case RepositoryLoaded:
			s.IsLoading = false
			if a.Err != nil {
				s.ErrorMessage = deps.Text.Describe(a.Err)
				return s, nil
			}
			s.Repository = a.Value

		case ReadmeLoaded:
			s.ReadmeLoading = false
			s.ReadmeLoaded = true
			switch {
			case a.Err == nil:
				s.Readme = a.Value
			case apperr.Is(a.Err, apperr.KindNotFound):
				// Plenty of repositories have no README.
				s.Readme = ""
			default:
				s.ErrorMessage = deps.Text.Describe(a.Err)
			}

		case StarStatusLoaded:
			if a.Err == nil {
				s.IsStarred = a.Value
				s.StatusLoaded = true
			}

		case WatchStatusLoaded:
			if a.Err == nil {
				s.IsWatching = a.Value
			}

		case StarToggled:
			if !s.SignedIn {
				return s, nil
			}
			want := !s.IsStarred
			s.IsStarred = want
			s.Repository.Stars += delta(want)
			s.Notice = ""
			name := s.Repository.FullName
			return s, []store.Effect[Action]{store.Run(StarID, func(ctx context.Context, send func(Action)) {
				err := api.SetStarred(ctx, name, want)
				if ctx.Err() == nil {
					send(StarUpdated{Starred: want, Err: err})
				}
			})}

		case StarUpdated:
			if a.Err == nil || s.IsStarred != a.Starred {
				return s, nil
			}
			s.IsStarred = !a.Starred
			s.Repository.Stars -= delta(a.Starred)
			s.Notice = deps.Text.Text(i18n.NoticeStarFailed) + " " + deps.Text.Describe(a.Err)

		case WatchToggled:
			if !s.SignedIn {
				return s, nil
			}
			want := !s.IsWatching
			s.IsWatching = want
			s.Repository.Watchers += delta(want)
			s.Notice = ""
			name := s.Repository.FullName
			return s, []store.Effect[Action]{store.Run(WatchID, func(ctx context.Context, send func(Action)) {
				err := api.SetWatching(ctx, name, want)
				if ctx.Err() == nil {
					send(WatchUpdated{Watching: want, Err: err})
				}
			})}

		case WatchUpdated:
			if a.Err == nil || s.IsWatching != a.Watching {
				return s, nil
			}
			s.IsWatching = !a.Watching
			s.Repository.Watchers -= delta(a.Watching)
			s.Notice = deps.Text.Text(i18n.NoticeWatchFailed) + " " + deps.Text.Describe(a.Err)
		}
		return s, nil
	}
}

func delta(on bool) int {
	if on {
		return 1
	}
	return -1
}
