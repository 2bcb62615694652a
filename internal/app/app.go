// Package app is the root of the state tree: tabs, the navigation stack, the
// sign-in sheet, and the session.
package app

import (
	"context"
	"errors"

	"octoterm/internal/apperr"
	"octoterm/internal/auth"
	"octoterm/internal/feature/explore"
	"octoterm/internal/feature/home"
	"octoterm/internal/feature/notifdetail"
	"octoterm/internal/feature/notifications"
	"octoterm/internal/feature/profile"
	"octoterm/internal/feature/repodetail"
	"octoterm/internal/feature/repolist"
	"octoterm/internal/feature/settings"
	"octoterm/internal/feature/signin"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/nav"
	"octoterm/internal/store"
)

const (
	RestoreID store.EffectID = "app.restore"
	SignOutID store.EffectID = "app.signout"
	ExpireID  store.EffectID = "app.expire"

	// presentedNS prefixes effects of the presented sheet.
	presentedNS = "presented"
)

// Tab is a top-level section. Selecting one replaces the whole stack.
type Tab int

const (
	TabHome Tab = iota
	TabNotifications
	TabExplore
	TabProfile
)

var Tabs = []Tab{TabHome, TabNotifications, TabExplore, TabProfile}

func (t Tab) String() string {
	switch t {
	case TabNotifications:
		return "Notifications"
	case TabExplore:
		return "Explore"
	case TabProfile:
		return "Profile"
	default:
		return "Home"
	}
}

func (t Tab) root() Screen {
	switch t {
	case TabNotifications:
		return NotificationsScreen{notifications.NewState()}
	case TabExplore:
		return ExploreScreen{explore.NewState()}
	case TabProfile:
		return ProfileScreen{profile.NewState()}
	default:
		return HomeScreen{home.NewState()}
	}
}

// API is everything the screens ask of GitHub.
type API interface {
	explore.API
	notifications.API
	notifdetail.API
	profile.API
	repolist.API
	repodetail.API
}

// Auth owns the session.
type Auth interface {
	signin.Auth
	Restore(ctx context.Context) (model.User, error)
	SignOut(ctx context.Context) error
}

type Env struct {
	API      API
	Auth     Auth
	Settings settings.Store
	Text     *i18n.Catalog
}

type Session struct {
	Authenticated bool
	User          model.User
}

type State struct {
	Path        nav.Stack[Screen]
	Presented   Screen // nil when nothing is presented
	SelectedTab Tab
	Session     Session
	Notice      string
}

func NewState() State {
	return State{Path: nav.New[Screen]()}
}

// Top returns the visible screen of the stack.
func (s State) Top() (nav.Element[Screen], bool) {
	return s.Path.Top()
}

type Action interface{ appAction() }

type (
	Started             struct{}
	TabSelected         struct{ Tab Tab }
	GoToHome            struct{}
	Back                struct{}
	Dismiss             struct{}
	NotificationsPolled struct{}
)

// SessionRestored carries the outcome of restoring a stored token.
type SessionRestored struct{ store.Result[model.User] }

// PathAction is addressed to one element of the stack by its ElementID.
type PathAction struct {
	ID     nav.ElementID
	Action ScreenAction
}

// PresentedAction is addressed to the presented sheet.
type PresentedAction struct{ Action ScreenAction }

type SignedOut struct{ Err error }

// SessionExpired reports that a rejected token was cleared from storage.
type SessionExpired struct{ Err error }

func (Started) appAction()             {}
func (TabSelected) appAction()         {}
func (GoToHome) appAction()            {}
func (Back) appAction()                {}
func (Dismiss) appAction()             {}
func (NotificationsPolled) appAction() {}
func (SessionRestored) appAction()     {}
func (PathAction) appAction()          {}
func (PresentedAction) appAction()     {}
func (SignedOut) appAction()           {}
func (SessionExpired) appAction()      {}

// Reducer is the root reducer. The root handles navigation intents first; the
// addressed stack element and the presented sheet then see the same action.
func Reducer(env Env) store.Reducer[State, Action] {
	screens := screenReducer(env)
	return store.Combine(
		root(env),
		nav.ForEach(screens,
			func(s State) nav.Stack[Screen] { return s.Path },
			func(s State, p nav.Stack[Screen]) State { s.Path = p; return s },
			nav.Route[Action, ScreenAction]{
				Extract: func(a Action) (nav.ElementID, ScreenAction, bool) {
					p, ok := a.(PathAction)
					return p.ID, p.Action, ok
				},
				Embed: func(id nav.ElementID, a ScreenAction) Action { return PathAction{ID: id, Action: a} },
			},
		),
		presented(screens),
	)
}

func presented(screens store.Reducer[Screen, ScreenAction]) store.Reducer[State, Action] {
	scoped := store.Scope(screens,
		store.Lens[State, Screen]{
			Get: func(s State) (Screen, bool) { return s.Presented, s.Presented != nil },
			Set: func(s State, sc Screen) State { s.Presented = sc; return s },
		},
		store.Case[Action, ScreenAction]{
			Extract: func(a Action) (ScreenAction, bool) {
				p, ok := a.(PresentedAction)
				return p.Action, ok
			},
			Embed: func(a ScreenAction) Action { return PresentedAction{a} },
		},
	)
	return func(s State, a Action) (State, []store.Effect[Action]) {
		s, fx := scoped(s, a)
		for i := range fx {
			fx[i] = fx[i].Prefixed(presentedNS)
		}
		return s, fx
	}
}

func root(env Env) store.Reducer[State, Action] {
	return func(s State, action Action) (State, []store.Effect[Action]) {
		switch a := action.(type) {
		case Started:
			return s, []store.Effect[Action]{store.Perform(RestoreID, env.Auth.Restore,
				func(r store.Result[model.User]) Action { return SessionRestored{r} },
			)}

		case SessionRestored:
			if a.Err != nil {
				if !errors.Is(a.Err, auth.ErrNotSignedIn) {
					s.Notice = env.Text.Describe(a.Err)
				}
				return s, nil
			}
			return s.signedIn(a.Value)

		case TabSelected:
			s.SelectedTab = a.Tab
			s.Path = s.Path.ReplaceRoot(a.Tab.root())
			s.Notice = ""
			return s.settle()

		case GoToHome:
			s.Path = s.Path.PopOrPush(HomeScreen{home.NewState()}, sameKind)
			return s.settle()

		case Back:
			s.Path = s.Path.Pop()

		case Dismiss:
			return s.dismiss()

		case NotificationsPolled:
			if !s.Session.Authenticated {
				return s, nil
			}
			var fx []store.Effect[Action]
			for _, el := range s.Path.Elements() {
				if el.State.family() == familyNotifications {
					fx = append(fx, store.Send[Action](PathAction{ID: el.ID, Action: NotificationsAction{notifications.Polled{}}}))
				}
			}
			return s, fx

		case PathAction:
			sc, ok := s.Path.Get(a.ID)
			if !ok || sc.family() != a.Action.family() {
				return s, nil
			}
			if err := failure(a.Action); apperr.Is(err, apperr.KindAuth) && s.Session.Authenticated {
				return s.expire(env)
			}
			return s.intercept(env, a.Action)

		case PresentedAction:
			if s.Presented == nil || s.Presented.family() != a.Action.family() {
				return s, nil
			}
			if sa, ok := a.Action.(SignInAction); ok {
				switch sa := sa.Action.(type) {
				case signin.Completed:
					if sa.Err == nil {
						return s.signedIn(sa.Value)
					}
				case signin.Cancelled:
					return s.dismiss()
				}
			}

		case SignedOut:
			if a.Err != nil {
				s.Notice = env.Text.Describe(a.Err)
				return s, nil
			}
			// The emptied stack keeps its ID counter so late results for
			// screens from the old session match nothing.
			fresh := NewState()
			fresh.Path = s.Path.ReplaceRoot()
			return fresh, []store.Effect[Action]{store.Send[Action](TabSelected{Tab: TabHome})}

		case SessionExpired:
			if a.Err != nil {
				s.Notice = env.Text.Describe(a.Err)
			}
		}
		return s, nil
	}
}

// intercept handles the delegate actions a screen raises for its parent.
func (s State) intercept(env Env, action ScreenAction) (State, []store.Effect[Action]) {
	switch a := action.(type) {
	case HomeAction:
		if sel, ok := a.Action.(home.ItemSelected); ok {
			return s.navigate(sel.Destination)
		}
	case ExploreAction:
		if sel, ok := a.Action.(explore.RepositorySelected); ok {
			return s.openRepository(sel.Repository)
		}
	case RepoListAction:
		if sel, ok := a.Action.(repolist.RepositorySelected); ok {
			return s.openRepository(sel.Repository)
		}
	case NotificationsAction:
		if sel, ok := a.Action.(notifications.NotificationSelected); ok {
			return s.push(NotifDetailScreen{notifdetail.NewState(sel.Notification)})
		}
	case NotifDetailAction:
		if sel, ok := a.Action.(notifdetail.RepositorySelected); ok {
			return s.openRepository(model.Repository{FullName: sel.FullName})
		}
	case ProfileAction:
		switch sel := a.Action.(type) {
		case profile.MenuSelected:
			return s.navigate(sel.Destination)
		case profile.RepositorySelected:
			return s.openRepository(sel.Repository)
		case profile.SignInTapped:
			return s.presentSignIn(), nil
		case profile.SignOutConfirmed:
			return s, signOut(env)
		}
	case SettingsAction:
		if _, ok := a.Action.(settings.LogoutConfirmed); ok {
			return s, signOut(env)
		}
	}
	return s, nil
}

func (s State) navigate(d model.Destination) (State, []store.Effect[Action]) {
	var target Screen
	switch d {
	case model.DestinationRepositories:
		target = RepoListScreen{repolist.NewState(repolist.SourceOwned)}
	case model.DestinationStarred:
		target = RepoListScreen{repolist.NewState(repolist.SourceStarred)}
	case model.DestinationNotifications:
		target = NotificationsScreen{notifications.NewState()}
	case model.DestinationExplore:
		target = ExploreScreen{explore.NewState()}
	case model.DestinationSettings:
		target = SettingsScreen{settings.NewState()}
	default:
		return s, nil
	}
	s.Path = s.Path.PopOrPush(target, sameKind)
	return s.settle()
}

func (s State) openRepository(repo model.Repository) (State, []store.Effect[Action]) {
	return s.push(RepoDetailScreen{repodetail.NewState(repo, s.Session.Authenticated)})
}

func (s State) push(sc Screen) (State, []store.Effect[Action]) {
	s.Path = s.Path.Push(sc)
	return s.settle()
}

// settle runs after the top of the stack changes: the new top is told it
// appeared, or the sign-in sheet is presented if it needs a session.
func (s State) settle() (State, []store.Effect[Action]) {
	top, ok := s.Path.Top()
	if !ok {
		return s, nil
	}
	if requiresSession(top.State) && !s.Session.Authenticated {
		return s.presentSignIn(), nil
	}
	return s, appear(top)
}

func appear(el nav.Element[Screen]) []store.Effect[Action] {
	a := el.State.appear()
	if a == nil {
		return nil
	}
	return []store.Effect[Action]{store.Send[Action](PathAction{ID: el.ID, Action: a})}
}

func (s State) presentSignIn() State {
	if _, ok := s.Presented.(SignInScreen); !ok {
		s.Presented = SignInScreen{signin.NewState()}
	}
	return s
}

func (s State) dismiss() (State, []store.Effect[Action]) {
	sheet, ok := s.Presented.(SignInScreen)
	s.Presented = nil
	if ok && sheet.State.IsSubmitting {
		return s, []store.Effect[Action]{store.Cancel[Action](store.EffectID(presentedNS + "/" + string(signin.SubmitID)))}
	}
	return s, nil
}

// signedIn records the session, closes the sign-in sheet, and reloads the top
// screen. Screens that failed for want of a session retry when they appear.
func (s State) signedIn(user model.User) (State, []store.Effect[Action]) {
	s.Session = Session{Authenticated: true, User: user}
	if _, ok := s.Presented.(SignInScreen); ok {
		s.Presented = nil
	}
	top, ok := s.Path.Top()
	if !ok {
		return s, nil
	}
	switch sc := top.State.(type) {
	case ProfileScreen:
		sc.State.IsAuthenticated = true
		s.Path = s.Path.Set(top.ID, sc)
	case RepoDetailScreen:
		sc.State.SignedIn = true
		s.Path = s.Path.Set(top.ID, sc)
		return s, []store.Effect[Action]{store.Send[Action](PathAction{ID: top.ID, Action: RepoDetailAction{repodetail.Refresh{}}})}
	}
	return s.settle()
}

// expire drops a session the API rejected and asks for a new token.
func (s State) expire(env Env) (State, []store.Effect[Action]) {
	s.Session = Session{}
	s.Notice = env.Text.Text(i18n.NoticeSignInRequired)
	s = s.presentSignIn()
	return s, []store.Effect[Action]{store.Run(ExpireID, func(ctx context.Context, send func(Action)) {
		send(SessionExpired{Err: env.Auth.SignOut(ctx)})
	})}
}

func signOut(env Env) []store.Effect[Action] {
	return []store.Effect[Action]{store.Run(SignOutID, func(ctx context.Context, send func(Action)) {
		send(SignedOut{Err: env.Auth.SignOut(ctx)})
	})}
}
