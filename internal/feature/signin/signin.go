// Package signin collects a personal access token.
package signin

import (
	"context"
	"strings"

	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"
)

const SubmitID store.EffectID = "signin.submit"

// Auth validates and stores a token.
type Auth interface {
	SignIn(ctx context.Context, token string) (model.User, error)
}

type Deps struct {
	Auth Auth
	Text *i18n.Catalog
}

type State struct {
	Token        string
	IsSubmitting bool
	ErrorMessage string
}

func NewState() State {
	return State{}
}

// CanSubmit reports whether Submitted would do anything.
func (s State) CanSubmit() bool {
	return !s.IsSubmitting && strings.TrimSpace(s.Token) != ""
}

type Action interface{ signInAction() }

type (
	TokenChanged struct{ Token string }
	Submitted    struct{}
)

// Completed carries the signed-in user. The parent closes the sheet on success.
type Completed struct{ store.Result[model.User] }

// Cancelled asks the parent to close the sheet.
type Cancelled struct{}

func (TokenChanged) signInAction() {}
func (Submitted) signInAction()    {}
func (Completed) signInAction()    {}
func (Cancelled) signInAction()    {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	auth := deps.Auth
	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case TokenChanged:
			s.Token = a.Token
			s.ErrorMessage = ""

		case Submitted:
			if !s.CanSubmit() {
				return s, nil
			}
			s.IsSubmitting = true
			s.ErrorMessage = ""
			token := strings.TrimSpace(s.Token)
			return s, []store.Effect[Action]{store.Perform(SubmitID,
				func(ctx context.Context) (model.User, error) { return auth.SignIn(ctx, token) },
				func(r store.Result[model.User]) Action { return Completed{r} },
			)}

		case Completed:
			s.IsSubmitting = false
			if a.Err != nil {
				s.ErrorMessage = deps.Text.Describe(a.Err)
				return s, nil
			}
			s.Token = ""

		case Cancelled:
			if s.IsSubmitting {
				s.IsSubmitting = false
				return s, []store.Effect[Action]{store.Cancel[Action](SubmitID)}
			}
		}
		return s, nil
	}
}
