package app

import (
	"octoterm/internal/apperr"
	"octoterm/internal/feature/explore"
	"octoterm/internal/feature/home"
	"octoterm/internal/feature/notifdetail"
	"octoterm/internal/feature/notifications"
	"octoterm/internal/feature/profile"
	"octoterm/internal/feature/repodetail"
	"octoterm/internal/feature/repolist"
	"octoterm/internal/feature/settings"
	"octoterm/internal/feature/signin"
	"octoterm/internal/store"
)

type family int

const (
	familyHome family = iota
	familyExplore
	familyNotifications
	familyNotifDetail
	familyProfile
	familySettings
	familyRepoList
	familyRepoDetail
	familySignIn
)

// Screen is the state of one navigable destination. The set of screens is
// closed; each variant wraps its feature's State.
type Screen interface {
	// Kind identifies "the same place" for PopOrPush.
	Kind() string
	family() family
	// appear is the action sent when the screen becomes visible, or nil.
	appear() ScreenAction
}

// ScreenAction is an action for one screen variant.
type ScreenAction interface {
	family() family
}

type (
	HomeScreen          struct{ State home.State }
	ExploreScreen       struct{ State explore.State }
	NotificationsScreen struct{ State notifications.State }
	NotifDetailScreen   struct{ State notifdetail.State }
	ProfileScreen       struct{ State profile.State }
	SettingsScreen      struct{ State settings.State }
	RepoListScreen      struct{ State repolist.State }
	RepoDetailScreen    struct{ State repodetail.State }
	SignInScreen        struct{ State signin.State }
)

func (HomeScreen) Kind() string          { return "home" }
func (ExploreScreen) Kind() string       { return "explore" }
func (NotificationsScreen) Kind() string { return "notifications" }
func (NotifDetailScreen) Kind() string   { return "notifdetail" }
func (ProfileScreen) Kind() string       { return "profile" }
func (SettingsScreen) Kind() string      { return "settings" }
func (RepoDetailScreen) Kind() string    { return "repodetail" }
func (SignInScreen) Kind() string        { return "signin" }

// Owned and starred lists are different places.
func (s RepoListScreen) Kind() string { return "repolist/" + string(s.State.Filter().Source) }

func (HomeScreen) family() family          { return familyHome }
func (ExploreScreen) family() family       { return familyExplore }
func (NotificationsScreen) family() family { return familyNotifications }
func (NotifDetailScreen) family() family   { return familyNotifDetail }
func (ProfileScreen) family() family       { return familyProfile }
func (SettingsScreen) family() family      { return familySettings }
func (RepoListScreen) family() family      { return familyRepoList }
func (RepoDetailScreen) family() family    { return familyRepoDetail }
func (SignInScreen) family() family        { return familySignIn }

func (HomeScreen) appear() ScreenAction    { return nil }
func (SignInScreen) appear() ScreenAction  { return nil }
func (ExploreScreen) appear() ScreenAction { return ExploreAction{explore.Appeared{}} }
func (NotificationsScreen) appear() ScreenAction {
	return NotificationsAction{notifications.Appeared{}}
}
func (NotifDetailScreen) appear() ScreenAction { return NotifDetailAction{notifdetail.Appeared{}} }
func (ProfileScreen) appear() ScreenAction     { return ProfileAction{profile.Appeared{}} }
func (SettingsScreen) appear() ScreenAction    { return SettingsAction{settings.Appeared{}} }
func (RepoListScreen) appear() ScreenAction    { return RepoListAction{repolist.Appeared{}} }
func (RepoDetailScreen) appear() ScreenAction  { return RepoDetailAction{repodetail.Appeared{}} }

// requiresSession reports whether the screen only makes sense signed in.
func requiresSession(s Screen) bool {
	switch s.family() {
	case familyNotifications, familyNotifDetail, familyProfile, familyRepoList:
		return true
	}
	return false
}

func sameKind(a, b Screen) bool {
	return a.Kind() == b.Kind()
}

type (
	HomeAction          struct{ Action home.Action }
	ExploreAction       struct{ Action explore.Action }
	NotificationsAction struct{ Action notifications.Action }
	NotifDetailAction   struct{ Action notifdetail.Action }
	ProfileAction       struct{ Action profile.Action }
	SettingsAction      struct{ Action settings.Action }
	RepoListAction      struct{ Action repolist.Action }
	RepoDetailAction    struct{ Action repodetail.Action }
	SignInAction        struct{ Action signin.Action }
)

func (HomeAction) family() family          { return familyHome }
func (ExploreAction) family() family       { return familyExplore }
func (NotificationsAction) family() family { return familyNotifications }
func (NotifDetailAction) family() family   { return familyNotifDetail }
func (ProfileAction) family() family       { return familyProfile }
func (SettingsAction) family() family      { return familySettings }
func (RepoListAction) family() family      { return familyRepoList }
func (RepoDetailAction) family() family    { return familyRepoDetail }
func (SignInAction) family() family        { return familySignIn }

// failure returns the collaborator error an action carries, if any.
func failure(a ScreenAction) error {
	switch a := a.(type) {
	case ExploreAction:
		return apperr.FailureOf(a.Action)
	case NotificationsAction:
		return apperr.FailureOf(a.Action)
	case NotifDetailAction:
		return apperr.FailureOf(a.Action)
	case ProfileAction:
		return apperr.FailureOf(a.Action)
	case SettingsAction:
		return apperr.FailureOf(a.Action)
	case RepoListAction:
		return apperr.FailureOf(a.Action)
	case RepoDetailAction:
		return apperr.FailureOf(a.Action)
	}
	return nil
}

// lens views a Screen as one variant's state.
func lens[W Screen, CS any](unwrap func(W) CS, wrap func(CS) W) store.Lens[Screen, CS] {
	return store.Lens[Screen, CS]{
		Get: func(s Screen) (CS, bool) {
			w, ok := s.(W)
			if !ok {
				var zero CS
				return zero, false
			}
			return unwrap(w), true
		},
		Set: func(_ Screen, c CS) Screen { return wrap(c) },
	}
}

// match views a ScreenAction as one variant's action.
func match[W ScreenAction, CA any](unwrap func(W) CA, wrap func(CA) W) store.Case[ScreenAction, CA] {
	return store.Case[ScreenAction, CA]{
		Extract: func(a ScreenAction) (CA, bool) {
			w, ok := a.(W)
			if !ok {
				var zero CA
				return zero, false
			}
			return unwrap(w), true
		},
		Embed: func(c CA) ScreenAction { return wrap(c) },
	}
}

// screenReducer dispatches a screen action to the reducer of its variant. An
// action for a different variant than the screen it reaches is a no-op.
func screenReducer(env Env) store.Reducer[Screen, ScreenAction] {
	return store.Combine(
		store.Scope(home.Reducer(),
			lens(func(s HomeScreen) home.State { return s.State }, func(s home.State) HomeScreen { return HomeScreen{s} }),
			match(func(a HomeAction) home.Action { return a.Action }, func(a home.Action) HomeAction { return HomeAction{a} }),
		),
		store.Scope(explore.Reducer(explore.Deps{API: env.API, Text: env.Text}),
			lens(func(s ExploreScreen) explore.State { return s.State }, func(s explore.State) ExploreScreen { return ExploreScreen{s} }),
			match(func(a ExploreAction) explore.Action { return a.Action }, func(a explore.Action) ExploreAction { return ExploreAction{a} }),
		),
		store.Scope(notifications.Reducer(notifications.Deps{API: env.API, Text: env.Text}),
			lens(func(s NotificationsScreen) notifications.State { return s.State }, func(s notifications.State) NotificationsScreen { return NotificationsScreen{s} }),
			match(func(a NotificationsAction) notifications.Action { return a.Action }, func(a notifications.Action) NotificationsAction { return NotificationsAction{a} }),
		),
		store.Scope(notifdetail.Reducer(notifdetail.Deps{API: env.API, Text: env.Text}),
			lens(func(s NotifDetailScreen) notifdetail.State { return s.State }, func(s notifdetail.State) NotifDetailScreen { return NotifDetailScreen{s} }),
			match(func(a NotifDetailAction) notifdetail.Action { return a.Action }, func(a notifdetail.Action) NotifDetailAction { return NotifDetailAction{a} }),
		),
		store.Scope(profile.Reducer(profile.Deps{API: env.API, Text: env.Text}),
			lens(func(s ProfileScreen) profile.State { return s.State }, func(s profile.State) ProfileScreen { return ProfileScreen{s} }),
			match(func(a ProfileAction) profile.Action { return a.Action }, func(a profile.Action) ProfileAction { return ProfileAction{a} }),
		),
		store.Scope(settings.Reducer(settings.Deps{Store: env.Settings, Text: env.Text}),
			lens(func(s SettingsScreen) settings.State { return s.State }, func(s settings.State) SettingsScreen { return SettingsScreen{s} }),
			match(func(a SettingsAction) settings.Action { return a.Action }, func(a settings.Action) SettingsAction { return SettingsAction{a} }),
		),
		store.Scope(repolist.Reducer(repolist.Deps{API: env.API, Text: env.Text}),
			lens(func(s RepoListScreen) repolist.State { return s.State }, func(s repolist.State) RepoListScreen { return RepoListScreen{s} }),
			match(func(a RepoListAction) repolist.Action { return a.Action }, func(a repolist.Action) RepoListAction { return RepoListAction{a} }),
		),
		store.Scope(repodetail.Reducer(repodetail.Deps{API: env.API, Text: env.Text}),
			lens(func(s RepoDetailScreen) repodetail.State { return s.State }, func(s repodetail.State) RepoDetailScreen { return RepoDetailScreen{s} }),
			match(func(a RepoDetailAction) repodetail.Action { return a.Action }, func(a repodetail.Action) RepoDetailAction { return RepoDetailAction{a} }),
		),
		store.Scope(signin.Reducer(signin.Deps{Auth: env.Auth, Text: env.Text}),
			lens(func(s SignInScreen) signin.State { return s.State }, func(s signin.State) SignInScreen { return SignInScreen{s} }),
			match(func(a SignInAction) signin.Action { return a.Action }, func(a signin.Action) SignInAction { return SignInAction{a} }),
		),
	)
}
