// Package notifdetail shows the issue or pull request behind a notification.
package notifdetail

import (
	"context"

	"octoterm/internal/apperr"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"
)

const LoadID store.EffectID = "notifdetail.subject"

type API interface {
	GetSubject(ctx context.Context, subjectURL string) (model.SubjectDetail, error)
}

type Deps struct {
	API  API
	Text *i18n.Catalog
}

type State struct {
	Notification model.Notification
	Detail       model.SubjectDetail
	Loaded       bool
	IsLoading    bool
	ErrorMessage string
	CanRetry     bool
}

func NewState(n model.Notification) State {
	return State{Notification: n}
}

// HasSubject reports whether there is anything to load. Releases and
// discussions arrive without a subject URL.
func (s State) HasSubject() bool {
	return s.Notification.SubjectURL != ""
}

type Action interface{ notifDetailAction() }

type (
	Appeared     struct{}
	Retry        struct{}
	DetailLoaded struct{ store.Result[model.SubjectDetail] }
)

// RepositorySelected asks the parent to open the notification's repository.
type RepositorySelected struct{ FullName string }

func (Appeared) notifDetailAction()           {}
func (Retry) notifDetailAction()              {}
func (DetailLoaded) notifDetailAction()       {}
func (RepositorySelected) notifDetailAction() {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	load := func(s State) (State, []store.Effect[Action]) {
		if !s.HasSubject() || s.IsLoading {
			return s, nil
		}
		s.IsLoading = true
		s.ErrorMessage = ""
		s.CanRetry = false
		api, url := deps.API, s.Notification.SubjectURL
		return s, []store.Effect[Action]{store.Perform(LoadID,
			func(ctx context.Context) (model.SubjectDetail, error) { return api.GetSubject(ctx, url) },
			func(r store.Result[model.SubjectDetail]) Action { return DetailLoaded{r} },
		)}
	}

	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Appeared:
			if s.Loaded {
				return s, nil
			}
			return load(s)

		case Retry:
			if !s.CanRetry {
				return s, nil
			}
			return load(s)

		case DetailLoaded:
			if !s.IsLoading {
				return s, nil
			}
			s.IsLoading = false
			if a.Err != nil {
				s.ErrorMessage = deps.Text.Describe(a.Err)
				s.CanRetry = apperr.Retryable(a.Err)
				return s, nil
			}
			s.Detail = a.Value
			s.Loaded = true
		}
		return s, nil
	}
}
