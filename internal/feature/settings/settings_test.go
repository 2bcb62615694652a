package settings

import (
	"context"
	"errors"
	"testing"

	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	saved   model.Settings
	saves   int
	saveErr error
	loadErr error
}

func (m *memStore) Load(context.Context) (model.Settings, error) {
	return m.saved, m.loadErr
}

func (m *memStore) Save(_ context.Context, s model.Settings) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = s
	return nil
}

func newReducer(t *testing.T, st Store) store.Reducer[State, Action] {
	t.Helper()
	text, err := i18n.New("en")
	require.NoError(t, err)
	return Reducer(Deps{Store: st, Text: text})
}

func runAll(r store.Reducer[State, Action], s State, fx []store.Effect[Action]) State {
	for _, e := range fx {
		e.Exec(context.Background(), func(a Action) { s, _ = r(s, a) })
	}
	return s
}

func TestAppearedLoadsSavedSettings(t *testing.T) {
	saved := model.DefaultSettings()
	saved.Appearance = model.AppearanceDark
	r := newReducer(t, &memStore{saved: saved})

	s, fx := r(NewState(), Appeared{})
	s = runAll(r, s, fx)
	assert.True(t, s.Loaded)
	assert.Equal(t, model.AppearanceDark, s.Settings.Appearance)

	_, fx = r(s, Appeared{})
	assert.Empty(t, fx)
}

func TestToggleSaves(t *testing.T) {
	st := &memStore{saved: model.DefaultSettings()}
	r := newReducer(t, st)

	s, fx := r(NewState(), NotificationsToggled{})
	assert.False(t, s.Settings.NotificationsEnabled)
	assert.True(t, s.IsSaving)
	require.Len(t, fx, 1)
	assert.Equal(t, SaveID, fx[0].ID)

	s = runAll(r, s, fx)
	assert.False(t, s.IsSaving)
	assert.False(t, st.saved.NotificationsEnabled)
	assert.Equal(t, s.Settings, s.Persisted)
	assert.Equal(t, "Settings saved.", s.Notice)
}

func TestSameValueDoesNotSave(t *testing.T) {
	r := newReducer(t, &memStore{})
	_, fx := r(NewState(), AppearanceSelected{Appearance: model.AppearanceAuto})
	assert.Empty(t, fx)
}

func TestFailedSaveRollsBack(t *testing.T) {
	st := &memStore{saveErr: errors.New("disk full")}
	r := newReducer(t, st)

	s, fx := r(NewState(), AppearanceSelected{Appearance: model.AppearanceLight})
	assert.Equal(t, model.AppearanceLight, s.Settings.Appearance)
	s = runAll(r, s, fx)

	assert.Equal(t, model.AppearanceAuto, s.Settings.Appearance)
	assert.Equal(t, "Something went wrong.", s.ErrorMessage)
}

func TestLanguageChangeAppliesOnRestart(t *testing.T) {
	r := newReducer(t, &memStore{})
	s, fx := r(NewState(), LanguageSelected{Language: "ko"})
	s = runAll(r, s, fx)
	assert.Equal(t, "ko", s.Persisted.Language)
	assert.Equal(t, "Language changes apply after restart.", s.Notice)
}

func TestOutdatedSaveResultIsIgnored(t *testing.T) {
	r := newReducer(t, &memStore{})

	s, _ := r(NewState(), CodeHighlightingToggled{})
	first := s.Settings
	s, _ = r(s, WebLinksToggled{})

	s, _ = r(s, Saved{Settings: first, Err: errors.New("late")})
	assert.True(t, s.IsSaving)
	assert.Empty(t, s.ErrorMessage)
	assert.False(t, s.Settings.WebLinksEnabled)
}

func TestLogoutConfirmation(t *testing.T) {
	r := newReducer(t, &memStore{})

	s, _ := r(NewState(), LogoutTapped{})
	assert.True(t, s.ConfirmingLogout)
	s, _ = r(s, LogoutCancelled{})
	assert.False(t, s.ConfirmingLogout)
	s, _ = r(s, LogoutTapped{})
	s, fx := r(s, LogoutConfirmed{})
	assert.False(t, s.ConfirmingLogout)
	assert.Empty(t, fx)
}
