package cmd

import (
	"io"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GITHUB_TOKEN", " env-token ")
	t.Setenv("OCTOTERM_POLL", "@every 5m")
	t.Setenv("OCTOTERM_RATE", "2")

	cfg, err := parse([]string{
		"-db", filepath.Join(dir, "test.db"),
		"-log", filepath.Join(dir, "test.log"),
		"-rate", "3",
		"-lang", "ko",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "@every 5m", cfg.PollSpec)
	assert.Equal(t, 3.0, cfg.Rate)
	assert.Equal(t, "ko", cfg.Language)
	assert.Equal(t, "https://api.github.com", cfg.APIURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	base := []string{"-db", filepath.Join(dir, "x.db"), "-log", filepath.Join(dir, "x.log")}

	tests := []struct {
		name string
		args []string
	}{
		{"poll", []string{"-poll", "every now and then"}},
		{"rate", []string{"-rate", "0"}},
		{"language", []string{"-lang", "not a tag!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(append(base, tt.args...), io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestOnboardingSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.False(t, s.Completed)

	want := OnboardingSettings{Completed: true, PollingEnabled: false, Language: "ko", capturedToken: "secret"}
	require.NoError(t, saveOnboardingSettings(dir, want))

	got, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.False(t, got.PollingEnabled)
	assert.Equal(t, "ko", got.Language)
	assert.Empty(t, got.capturedToken, "token must not be written to the yaml file")
}

func press(m onboardingModel, keys ...tea.KeyMsg) onboardingModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(onboardingModel)
	}
	return m
}

func TestOnboardingCapturesToken(t *testing.T) {
	m := newOnboardingModel("")
	m = press(m,
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")},
		tea.KeyMsg{Type: tea.KeyEnter},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ghp_abc")},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, stepDone, m.step)
	assert.False(t, m.settings.PollingEnabled)
	assert.Equal(t, "ko", m.settings.Language)
	assert.Equal(t, "ghp_abc", m.settings.capturedToken)
}

func TestOnboardingSkipsTokenWhenConfigured(t *testing.T) {
	m := newOnboardingModel("from-env")
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, stepDone, m.step)
	assert.True(t, m.settings.PollingEnabled)
	assert.Empty(t, m.settings.capturedToken)
}
