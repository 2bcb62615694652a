package signin

import (
	"context"
	"testing"

	"octoterm/internal/apperr"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	tokens []string
	err    error
}

func (f *fakeAuth) SignIn(_ context.Context, token string) (model.User, error) {
	f.tokens = append(f.tokens, token)
	if f.err != nil {
		return model.User{}, f.err
	}
	return model.User{Login: "mona"}, nil
}

func newReducer(t *testing.T, auth Auth) store.Reducer[State, Action] {
	t.Helper()
	text, err := i18n.New("en")
	require.NoError(t, err)
	return Reducer(Deps{Auth: auth, Text: text})
}

func runAll(r store.Reducer[State, Action], s State, fx []store.Effect[Action]) (State, []Action) {
	var sent []Action
	for _, e := range fx {
		e.Exec(context.Background(), func(a Action) {
			sent = append(sent, a)
			s, _ = r(s, a)
		})
	}
	return s, sent
}

func TestEmptyTokenCannotSubmit(t *testing.T) {
	r := newReducer(t, &fakeAuth{})
	s, _ := r(NewState(), TokenChanged{Token: "   "})
	next, fx := r(s, Submitted{})
	assert.Equal(t, s, next)
	assert.Empty(t, fx)
}

func TestSubmitSignsIn(t *testing.T) {
	auth := &fakeAuth{}
	r := newReducer(t, auth)

	s, _ := r(NewState(), TokenChanged{Token: " ghp_abc "})
	s, fx := r(s, Submitted{})
	assert.True(t, s.IsSubmitting)
	require.Len(t, fx, 1)

	_, again := r(s, Submitted{})
	assert.Empty(t, again)

	s, sent := runAll(r, s, fx)
	assert.False(t, s.IsSubmitting)
	assert.Empty(t, s.Token)
	assert.Equal(t, []string{"ghp_abc"}, auth.tokens)
	require.Len(t, sent, 1)
	assert.Equal(t, "mona", sent[0].(Completed).Value.Login)
}

func TestRejectedTokenShowsMessage(t *testing.T) {
	r := newReducer(t, &fakeAuth{err: apperr.New(apperr.KindAuth, "get_user", "Bad credentials")})

	s, _ := r(NewState(), TokenChanged{Token: "bad"})
	s, fx := r(s, Submitted{})
	s, _ = runAll(r, s, fx)

	assert.False(t, s.IsSubmitting)
	assert.Equal(t, "bad", s.Token)
	assert.Equal(t, "Your session is no longer valid. Please sign in again.", s.ErrorMessage)
}

func TestCancelStopsSubmission(t *testing.T) {
	r := newReducer(t, &fakeAuth{})

	s, _ := r(NewState(), TokenChanged{Token: "tok"})
	s, _ = r(s, Submitted{})
	s, fx := r(s, Cancelled{})
	assert.False(t, s.IsSubmitting)
	require.Len(t, fx, 1)
	assert.Equal(t, store.KindCancel, fx[0].Kind)
	assert.Equal(t, SubmitID, fx[0].ID)
}
