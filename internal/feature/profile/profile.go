// Package profile shows the signed-in user.
package profile

import (
	"context"

	"octoterm/internal/apperr"
	"octoterm/internal/github"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"
)

const (
	UserID  store.EffectID = "profile.user"
	ReposID store.EffectID = "profile.repos"

	// TopRepositories is how many recently pushed repositories are shown.
	TopRepositories = 3
)

type API interface {
	GetCurrentUser(ctx context.Context) (model.User, error)
	ListCurrentUserRepositories(ctx context.Context, opts github.RepoListOptions) ([]model.Repository, error)
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

// Menu is offered below the profile card.
var Menu = []model.Destination{
	model.DestinationRepositories,
	model.DestinationStarred,
	model.DestinationSettings,
}

type State struct {
	User         model.User
	HasUser      bool
	Repositories []model.Repository

	IsLoading       bool
	IsAuthenticated bool
	ErrorMessage    string

	ConfirmingSignOut bool
}

// NewState starts a profile for a session the app believes is valid.
func NewState() State {
	return State{IsAuthenticated: true}
}

type Action interface{ profileAction() }

type (
	Appeared           struct{}
	Refresh            struct{}
	UserLoaded         struct{ store.Result[model.User] }
	RepositoriesLoaded struct{ store.Result[[]model.Repository] }
	SignOutTapped      struct{}
	SignOutCancelled   struct{}
	SignOutConfirmed   struct{}
	MenuSelected       struct{ Destination model.Destination }
	RepositorySelected struct{ Repository model.Repository }
	SignInTapped       struct{}
)

func (Appeared) profileAction()           {}
func (Refresh) profileAction()            {}
func (UserLoaded) profileAction()         {}
func (RepositoriesLoaded) profileAction() {}
func (SignOutTapped) profileAction()      {}
func (SignOutCancelled) profileAction()   {}
func (SignOutConfirmed) profileAction()   {}
func (MenuSelected) profileAction()       {}
func (RepositorySelected) profileAction() {}
func (SignInTapped) profileAction()       {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	api := deps.API

	load := func(s State) (State, []store.Effect[Action]) {
		s.IsLoading = true
		s.ErrorMessage = ""
		return s, []store.Effect[Action]{
			store.Perform(UserID,
				api.GetCurrentUser,
				func(r store.Result[model.User]) Action { return UserLoaded{r} },
			),
			store.Perform(ReposID,
				func(ctx context.Context) ([]model.Repository, error) {
					return api.ListCurrentUserRepositories(ctx, github.RepoListOptions{
						Affiliation: "owner",
						Sort:        "pushed",
						Page:        1,
						PerPage:     TopRepositories,
					})
				},
				func(r store.Result[[]model.Repository]) Action { return RepositoriesLoaded{r} },
			),
		}
	}

	fail := func(s State, err error) State {
		s.ErrorMessage = deps.Text.Describe(err)
		if apperr.Is(err, apperr.KindAuth) {
			s.IsAuthenticated = false
		}
		return s
	}

	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Appeared:
			if s.HasUser || s.IsLoading {
				return s, nil
			}
			return load(s)

		case Refresh:
			return load(s)

		case UserLoaded:
			s.IsLoading = false
			if a.Err != nil {
				return fail(s, a.Err), nil
			}
			s.User = a.Value
			s.HasUser = true
			s.IsAuthenticated = true

		case RepositoriesLoaded:
			if a.Err != nil {
				return fail(s, a.Err), nil
			}
			s.Repositories = a.Value
			if len(s.Repositories) > TopRepositories {
				s.Repositories = s.Repositories[:TopRepositories]
			}

		case SignOutTapped:
			s.ConfirmingSignOut = true

		case SignOutCancelled:
			s.ConfirmingSignOut = false

		case SignOutConfirmed:
			// The app ends the session.
			s.ConfirmingSignOut = false
		}
		return s, nil
	}
}
