// Package settings edits persisted preferences.
package settings

import (
	"context"

	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/store"
)

const (
	LoadID store.EffectID = "settings.load"
	SaveID store.EffectID = "settings.save"
)

// Languages offered in the language picker.
var Languages = []string{"en", "ko"}

// Store persists settings.
type Store interface {
	Load(ctx context.Context) (model.Settings, error)
	Save(ctx context.Context, s model.Settings) error
}

type Deps struct {
	Store Store
	Text  *i18n.Catalog
}

type State struct {
	Settings model.Settings
	// Persisted is the last value known to be on disk; failed saves roll back to it.
	Persisted model.Settings
	Loaded    bool
	IsSaving  bool

	ConfirmingLogout bool

	ErrorMessage string
	Notice       string
}

func NewState() State {
	d := model.DefaultSettings()
	return State{Settings: d, Persisted: d}
}

type Action interface{ settingsAction() }

type (
	Appeared                struct{}
	SettingsLoaded          struct{ store.Result[model.Settings] }
	AppearanceSelected      struct{ Appearance model.Appearance }
	LanguageSelected        struct{ Language string }
	NotificationsToggled    struct{}
	CodeHighlightingToggled struct{}
	WebLinksToggled         struct{}
	LogoutTapped            struct{}
	LogoutCancelled         struct{}
	LogoutConfirmed         struct{}
)

// Saved reports the outcome of persisting Settings.
type Saved struct {
	Settings model.Settings
	Err      error
}

func (a Saved) Failure() error { return a.Err }

func (Appeared) settingsAction()                {}
func (SettingsLoaded) settingsAction()          {}
func (AppearanceSelected) settingsAction()      {}
func (LanguageSelected) settingsAction()        {}
func (NotificationsToggled) settingsAction()    {}
func (CodeHighlightingToggled) settingsAction() {}
func (WebLinksToggled) settingsAction()         {}
func (LogoutTapped) settingsAction()            {}
func (LogoutCancelled) settingsAction()         {}
func (LogoutConfirmed) settingsAction()         {}
func (Saved) settingsAction()                   {}

func Reducer(deps Deps) store.Reducer[State, Action] {
	st := deps.Store

	save := func(s State, next model.Settings) (State, []store.Effect[Action]) {
		if next == s.Settings {
			return s, nil
		}
		s.Settings = next
		s.IsSaving = true
		s.ErrorMessage = ""
		s.Notice = ""
		return s, []store.Effect[Action]{store.Run(SaveID, func(ctx context.Context, send func(Action)) {
			err := st.Save(ctx, next)
			if ctx.Err() == nil {
				send(Saved{Settings: next, Err: err})
			}
		})}
	}

	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Appeared:
			if s.Loaded {
				return s, nil
			}
			return s, []store.Effect[Action]{store.Perform(LoadID,
				st.Load,
				func(r store.Result[model.Settings]) Action { return SettingsLoaded{r} },
			)}

		case SettingsLoaded:
			if a.Err != nil {
				s.ErrorMessage = deps.Text.Describe(a.Err)
				return s, nil
			}
			s.Loaded = true
			s.Settings = a.Value
			s.Persisted = a.Value

		case AppearanceSelected:
			next := s.Settings
			next.Appearance = a.Appearance
			return save(s, next)

		case LanguageSelected:
			next := s.Settings
			next.Language = a.Language
			return save(s, next)

		case NotificationsToggled:
			next := s.Settings
			next.NotificationsEnabled = !next.NotificationsEnabled
			return save(s, next)

		case CodeHighlightingToggled:
			next := s.Settings
			next.CodeHighlighting = !next.CodeHighlighting
			return save(s, next)

		case WebLinksToggled:
			next := s.Settings
			next.WebLinksEnabled = !next.WebLinksEnabled
			return save(s, next)

		case Saved:
			if a.Settings != s.Settings {
				// A newer edit is already being saved.
				return s, nil
			}
			s.IsSaving = false
			if a.Err != nil {
				s.Settings = s.Persisted
				s.ErrorMessage = deps.Text.Describe(a.Err)
				return s, nil
			}
			languageChanged := a.Settings.Language != s.Persisted.Language
			s.Persisted = a.Settings
			s.Notice = deps.Text.Text(i18n.NoticeSettingsSaved)
			if languageChanged {
				s.Notice = deps.Text.Text(i18n.NoticeLanguageLater)
			}

		case LogoutTapped:
			s.ConfirmingLogout = true

		case LogoutCancelled:
			s.ConfirmingLogout = false

		case LogoutConfirmed:
			// The app ends the session.
			s.ConfirmingLogout = false
		}
		return s, nil
	}
}
