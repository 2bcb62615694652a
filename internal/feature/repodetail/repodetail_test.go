package repodetail

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

type fakeAPI struct {
	repo      model.Repository
	readme    string
	readmeErr error
	starred   bool
	setErr    error
	sets      []bool
}

func (f *fakeAPI) GetRepository(context.Context, string) (model.Repository, error) {
	return f.repo, nil
}

func (f *fakeAPI) GetReadme(context.Context, string) (string, error) {
	return f.readme, f.readmeErr
}

func (f *fakeAPI) IsStarred(context.Context, string) (bool, error) {
	return f.starred, nil
}

func (f *fakeAPI) IsWatching(context.Context, string) (bool, error) {
	return false, nil
}

func (f *fakeAPI) SetStarred(_ context.Context, _ string, starred bool) error {
	f.sets = append(f.sets, starred)
	return f.setErr
}

func (f *fakeAPI) SetWatching(context.Context, string, bool) error {
	return f.setErr
}

func newReducer(t *testing.T, api API) store.Reducer[State, Action] {
	t.Helper()
	text, err := i18n.New("en")
	require.NoError(t, err)
	return Reducer(Deps{API: api, Text: text})
}

func runAll(r store.Reducer[State, Action], s State, fx []store.Effect[Action]) State {
	for _, e := range fx {
		e.Exec(context.Background(), func(a Action) { s, _ = r(s, a) })
	}
	return s
}

var cat = model.Repository{FullName: "octo/cat", Stars: 10, Watchers: 2}

func TestAppearedLoadsEverything(t *testing.T) {
	api := &fakeAPI{repo: model.Repository{FullName: "octo/cat", Stars: 11, Description: "meow"}, readme: "# cat", starred: true}
	r := newReducer(t, api)

	s, fx := r(NewState(cat, true), Appeared{})
	require.Len(t, fx, 4)
	assert.Equal(t, []store.EffectID{RepositoryID, ReadmeID, StarredID, WatchingID},
		[]store.EffectID{fx[0].ID, fx[1].ID, fx[2].ID, fx[3].ID})

	s = runAll(r, s, fx)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "meow", s.Repository.Description)
	assert.Equal(t, "# cat", s.Readme)
	assert.True(t, s.IsStarred)
	assert.True(t, s.StatusLoaded)
}

func TestSignedOutSkipsStatusChecks(t *testing.T) {
	r := newReducer(t, &fakeAPI{repo: cat})

	s, fx := r(NewState(cat, false), Appeared{})
	assert.Len(t, fx, 2)

	_, fx = r(s, StarToggled{})
	assert.Empty(t, fx)
}

func TestMissingReadmeIsNotAnError(t *testing.T) {
	api := &fakeAPI{repo: cat, readmeErr: apperr.New(apperr.KindNotFound, "get_readme", "Not Found")}
	r := newReducer(t, api)

	s, fx := r(NewState(cat, false), Appeared{})
	s = runAll(r, s, fx)
	assert.True(t, s.ReadmeLoaded)
	assert.Empty(t, s.Readme)
	assert.Empty(t, s.ErrorMessage)
}

func TestStarToggleIsOptimistic(t *testing.T) {
	api := &fakeAPI{}
	r := newReducer(t, api)

	s, fx := r(NewState(cat, true), StarToggled{})
	assert.True(t, s.IsStarred)
	assert.Equal(t, 11, s.Repository.Stars)
	require.Len(t, fx, 1)
	assert.Equal(t, StarID, fx[0].ID)

	s = runAll(r, s, fx)
	assert.True(t, s.IsStarred)
	assert.Equal(t, 11, s.Repository.Stars)
	assert.Equal(t, []bool{true}, api.sets)
}

func TestStarToggleRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{setErr: apperr.New(apperr.KindNetwork, "star", "timeout")}
	r := newReducer(t, api)

	s, fx := r(NewState(cat, true), StarToggled{})
	s = runAll(r, s, fx)

	assert.False(t, s.IsStarred)
	assert.Equal(t, 10, s.Repository.Stars)
	assert.Contains(t, s.Notice, "Could not update star.")
}

func TestLateStarFailureForSupersededToggleIsIgnored(t *testing.T) {
	r := newReducer(t, &fakeAPI{})

	s, _ := r(NewState(cat, true), StarToggled{})
	s, _ = r(s, StarToggled{})
	assert.False(t, s.IsStarred)

	// The first request's failure arrives after the user already undid it.
	s, _ = r(s, StarUpdated{Starred: true, Err: apperr.New(apperr.KindNetwork, "star", "timeout")})
	assert.False(t, s.IsStarred)
	assert.Equal(t, 10, s.Repository.Stars)
	assert.Empty(t, s.Notice)
}

func TestWatchToggleRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{setErr: apperr.New(apperr.KindAuth, "watch", "Requires authentication")}
	r := newReducer(t, api)

	s, fx := r(NewState(cat, true), WatchToggled{})
	assert.Equal(t, 3, s.Repository.Watchers)
	s = runAll(r, s, fx)

	assert.False(t, s.IsWatching)
	assert.Equal(t, 2, s.Repository.Watchers)
	assert.Contains(t, s.Notice, "Could not update watch status.")
}
