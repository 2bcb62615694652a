// Package auth owns the signed-in session: the access token sent with API
// requests and the user it belongs to.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"octoterm/internal/apperr"
	"octoterm/internal/db"
	"octoterm/internal/github"
	"octoterm/internal/model"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// ErrNotSignedIn is returned when an operation needs a session and there is none.
var ErrNotSignedIn = errors.New("not signed in")

// CredentialStore persists the token between runs.
type CredentialStore interface {
	Save(ctx context.Context, c db.Credential) error
	Load(ctx context.Context) (db.Credential, error)
	Delete(ctx context.Context) error
}

// Validator resolves a token to the user that owns it.
type Validator func(ctx context.Context, token string) (model.User, error)

// GitHubValidator checks tokens by fetching the authenticated user.
func GitHubValidator(c *github.Client) Validator {
	return func(ctx context.Context, token string) (model.User, error) {
		return c.WithToken(token).GetCurrentUser(ctx)
	}
}

type session struct {
	token string
	user  model.User
}

// Provider is safe for concurrent use. Effects read the token from their own
// goroutines while the UI signs in and out.
type Provider struct {
	creds    CredentialStore
	validate Validator
	log      logrus.FieldLogger
	current  atomic.Pointer[session]
}

// NewProvider creates a signed-out provider.
func NewProvider(creds CredentialStore, validate Validator, log logrus.FieldLogger) *Provider {
	return &Provider{creds: creds, validate: validate, log: log}
}

// Restore signs in with the stored token, if any. A stored token the API
// rejects is deleted.
func (p *Provider) Restore(ctx context.Context) (model.User, error) {
	cred, err := p.creds.Load(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return model.User{}, ErrNotSignedIn
	}
	if err != nil {
		return model.User{}, err
	}

	user, err := p.validate(ctx, cred.Token)
	if apperr.Is(err, apperr.KindAuth) {
		p.log.WithField("login", cred.Login).Info("stored token rejected, clearing")
		if delErr := p.creds.Delete(ctx); delErr != nil {
			p.log.WithError(delErr).Warn("failed to clear rejected token")
		}
		return model.User{}, ErrNotSignedIn
	}
	if err != nil {
		return model.User{}, err
	}

	p.current.Store(&session{token: cred.Token, user: user})
	return user, nil
}

// SignIn validates token and, when accepted, stores it and starts a session.
func (p *Provider) SignIn(ctx context.Context, token string) (model.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.User{}, apperr.New(apperr.KindInvalidInput, "sign in", "token is required")
	}

	user, err := p.validate(ctx, token)
	if err != nil {
		return model.User{}, err
	}
	if err := p.creds.Save(ctx, db.Credential{Token: token, Login: user.Login}); err != nil {
		return model.User{}, fmt.Errorf("failed to persist token: %w", err)
	}

	p.current.Store(&session{token: token, user: user})
	p.log.WithField("login", user.Login).Info("signed in")
	return user, nil
}

// SignOut ends the session and forgets the stored token.
func (p *Provider) SignOut(ctx context.Context) error {
	prev := p.current.Swap(nil)
	if err := p.creds.Delete(ctx); err != nil {
		return err
	}
	if prev != nil {
		p.log.WithField("login", prev.user.Login).Info("signed out")
	}
	return nil
}

// Token implements github.TokenSource. It returns "" while signed out so
// public endpoints still work.
func (p *Provider) Token(context.Context) (string, error) {
	if s := p.current.Load(); s != nil {
		return s.token, nil
	}
	return "", nil
}

func (p *Provider) IsAuthenticated() bool {
	return p.current.Load() != nil
}

// CurrentUser returns the signed-in user, or ErrNotSignedIn.
func (p *Provider) CurrentUser() (model.User, error) {
	s := p.current.Load()
	if s == nil {
		return model.User{}, ErrNotSignedIn
	}
	return s.user, nil
}
