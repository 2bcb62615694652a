package ui

import (
	"slices"

	"octoterm/internal/app"
	"octoterm/internal/feature/explore"
	"octoterm/internal/feature/home"
	"octoterm/internal/feature/notifdetail"
	"octoterm/internal/feature/notifications"
	"octoterm/internal/feature/profile"
	"octoterm/internal/feature/repodetail"
	"octoterm/internal/feature/repolist"
	"octoterm/internal/feature/settings"
	"octoterm/internal/feature/signin"
	"octoterm/internal/model"
	"octoterm/internal/nav"
	"octoterm/internal/paging"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type scopedView interface {
	Send(app.ScreenAction)
}

func (m Model) handleInsertMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.formKeys.Cancel):
		if m.target == editToken {
			m.sheet().Send(app.SignInAction{Action: signin.Cancelled{}})
		}
		m.endEdit()
		return m, nil

	case key.Matches(msg, m.formKeys.Submit):
		switch m.target {
		case editQuery:
			m.screen(m.editID).Send(app.ExploreAction{Action: explore.Search{Action: paging.Submit{}}})
			m.cursors[m.editID] = 0
		case editToken:
			// The sheet stays open until the root reports the outcome.
			m.sheet().Send(app.SignInAction{Action: signin.Submitted{}})
			return m, nil
		}
		m.endEdit()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.sendText(value)
	}
	return m, cmd
}

func (m Model) sendText(value string) {
	switch m.target {
	case editQuery:
		m.screen(m.editID).Send(app.ExploreAction{Action: explore.Search{Action: paging.QueryChanged{Query: value}}})
	case editNotificationSearch:
		m.screen(m.editID).Send(app.NotificationsAction{Action: notifications.SearchTextChanged{Text: value}})
	case editRepositorySearch:
		m.screen(m.editID).Send(app.RepoListAction{Action: repolist.SearchTextChanged{Text: value}})
	case editToken:
		m.sheet().Send(app.SignInAction{Action: signin.TokenChanged{Token: value}})
	}
}

func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			return m.handleJumpToTop()
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Tab1):
		return m.selectTab(app.TabHome)
	case key.Matches(msg, m.keys.Tab2):
		return m.selectTab(app.TabNotifications)
	case key.Matches(msg, m.keys.Tab3):
		return m.selectTab(app.TabExplore)
	case key.Matches(msg, m.keys.Tab4):
		return m.selectTab(app.TabProfile)
	case key.Matches(msg, m.keys.NextTab):
		return m.selectTab(app.Tabs[(int(m.state.SelectedTab)+1)%len(app.Tabs)])
	case key.Matches(msg, m.keys.Home):
		m.store.Send(app.GoToHome{})
		return m, nil
	}

	el, ok := m.state.Top()
	if !ok {
		return m, nil
	}
	view := m.screen(el.ID)

	var handled bool
	var cmd tea.Cmd
	switch sc := el.State.(type) {
	case app.HomeScreen:
		handled = m.handleHome(view, sc.State, msg)
	case app.ExploreScreen:
		handled, cmd = m.handleExplore(view, el.ID, sc.State, msg)
	case app.NotificationsScreen:
		handled, cmd = m.handleNotifications(view, el.ID, sc.State, msg)
	case app.NotifDetailScreen:
		handled = m.handleNotifDetail(view, el.ID, sc.State, msg)
	case app.ProfileScreen:
		handled = m.handleProfile(view, el.ID, sc.State, msg)
	case app.SettingsScreen:
		handled = m.handleSettings(view, el.ID, sc.State, msg)
	case app.RepoListScreen:
		handled, cmd = m.handleRepoList(view, el.ID, sc.State, msg)
	case app.RepoDetailScreen:
		handled = m.handleRepoDetail(view, el.ID, sc.State, msg)
	}
	if handled {
		return m, cmd
	}

	if key.Matches(msg, m.keys.Back) && m.state.Path.Len() > 1 {
		m.store.Send(app.Back{})
	}
	return m, nil
}

func (m Model) selectTab(tab app.Tab) (tea.Model, tea.Cmd) {
	m.store.Send(app.TabSelected{Tab: tab})
	return m, nil
}

func (m Model) handleJumpToTop() (tea.Model, tea.Cmd) {
	el, ok := m.state.Top()
	if !ok {
		return m, nil
	}
	if sc, ok := el.State.(app.HomeScreen); ok {
		m.screen(el.ID).Send(app.HomeAction{Action: home.CursorMoved{Delta: -sc.State.Cursor}})
		return m, nil
	}
	m.cursors[el.ID] = 0
	m.scrolls[el.ID] = 0
	return m, nil
}

// moveCursor applies list navigation keys to the cursor of element id. It
// reports whether a key was consumed and whether the cursor reached the last
// row, which is where the next page is requested.
func (m Model) moveCursor(id nav.ElementID, count int, msg tea.KeyMsg) (handled, atEnd bool) {
	cursor := m.cursors[id]
	half := max(m.height/4, 1)
	switch {
	case key.Matches(msg, m.keys.Up):
		cursor--
	case key.Matches(msg, m.keys.Down):
		cursor++
	case key.Matches(msg, m.keys.HalfPageDown):
		cursor += half
	case key.Matches(msg, m.keys.HalfPageUp):
		cursor -= half
	case key.Matches(msg, m.keys.Bottom):
		cursor = count - 1
	default:
		return false, false
	}
	cursor = max(min(cursor, count-1), 0)
	m.cursors[id] = cursor
	return true, count > 0 && cursor == count-1
}

// scroll applies scrolling keys to the viewport offset of element id.
func (m Model) scroll(id nav.ElementID, msg tea.KeyMsg) bool {
	offset := m.scrolls[id]
	half := max(m.height/2, 1)
	switch {
	case key.Matches(msg, m.keys.Up):
		offset--
	case key.Matches(msg, m.keys.Down):
		offset++
	case key.Matches(msg, m.keys.HalfPageDown):
		offset += half
	case key.Matches(msg, m.keys.HalfPageUp):
		offset -= half
	default:
		return false
	}
	m.scrolls[id] = max(offset, 0)
	return true
}

// selected returns the row under the cursor of element id.
func selected[T any](m Model, id nav.ElementID, rows []T) (T, bool) {
	c := m.cursors[id]
	if c < 0 || c >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[c], true
}

func next[T comparable](values []T, current T) T {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func (m Model) handleHome(view scopedView, s home.State, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Up):
		view.Send(app.HomeAction{Action: home.CursorMoved{Delta: -1}})
	case key.Matches(msg, m.keys.Down):
		view.Send(app.HomeAction{Action: home.CursorMoved{Delta: 1}})
	case key.Matches(msg, m.keys.Bottom):
		view.Send(app.HomeAction{Action: home.CursorMoved{Delta: len(s.Menu)}})
	case key.Matches(msg, m.keys.Select):
		if item, ok := s.Selected(); ok {
			view.Send(app.HomeAction{Action: home.ItemSelected{Destination: item.Destination}})
		}
	default:
		return false
	}
	return true
}

func (m Model) handleExplore(view scopedView, id nav.ElementID, s explore.State, msg tea.KeyMsg) (bool, tea.Cmd) {
	send := func(a explore.Action) { view.Send(app.ExploreAction{Action: a}) }
	rows := s.Repositories()

	switch {
	case key.Matches(msg, m.keys.Search):
		return true, beginEditCmd(editQuery, id, s.Search.Query)
	case key.Matches(msg, m.keys.Filter):
		send(explore.CategorySelected{Category: next(explore.Categories, s.Category)})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Clear):
		send(explore.ClearSearch{})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Refresh):
		if s.ShowingResults() {
			send(explore.Search{Action: paging.Refresh{}})
		}
	case key.Matches(msg, m.keys.Select):
		if repo, ok := selected(m, id, rows); ok {
			send(explore.RepositorySelected{Repository: repo})
		}
	default:
		handled, atEnd := m.moveCursor(id, len(rows), msg)
		if atEnd && s.ShowingResults() && s.Search.HasMore {
			send(explore.Search{Action: paging.LoadMore{}})
		}
		return handled, nil
	}
	return true, nil
}

func (m Model) handleNotifications(view scopedView, id nav.ElementID, s notifications.State, msg tea.KeyMsg) (bool, tea.Cmd) {
	send := func(a notifications.Action) { view.Send(app.NotificationsAction{Action: a}) }
	rows := s.Visible()

	switch {
	case key.Matches(msg, m.keys.Search):
		return true, beginEditCmd(editNotificationSearch, id, s.SearchText)
	case key.Matches(msg, m.keys.Filter):
		send(notifications.FilterSelected{Filter: next(notifications.Filters, s.Filter())})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Source):
		repos := append([]string{""}, s.Repositories()...)
		send(notifications.RepositoryFilterChanged{Repository: next(repos, s.Repository)})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Clear):
		send(notifications.RepositoryFilterChanged{})
		send(notifications.SearchTextChanged{})
	case key.Matches(msg, m.keys.MarkRead):
		if n, ok := selected(m, id, rows); ok {
			send(notifications.MarkAsRead{ThreadID: n.ID})
		}
	case key.Matches(msg, m.keys.MarkAllRead):
		send(notifications.MarkAllAsRead{})
	case key.Matches(msg, m.keys.Refresh):
		send(notifications.Feed{Action: paging.Refresh{}})
	case key.Matches(msg, m.keys.Select):
		if n, ok := selected(m, id, rows); ok {
			send(notifications.NotificationSelected{Notification: n})
		}
	default:
		handled, atEnd := m.moveCursor(id, len(rows), msg)
		if atEnd && s.Feed.HasMore {
			send(notifications.Feed{Action: paging.LoadMore{}})
		}
		return handled, nil
	}
	return true, nil
}

func (m Model) handleNotifDetail(view scopedView, id nav.ElementID, s notifdetail.State, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, m.keys.Select):
		view.Send(app.NotifDetailAction{Action: notifdetail.RepositorySelected{FullName: s.Notification.Repository}})
	case key.Matches(msg, m.keys.Refresh):
		view.Send(app.NotifDetailAction{Action: notifdetail.Retry{}})
	default:
		return m.scroll(id, msg)
	}
	return true
}

// profileRow is either a menu entry or a recent repository.
type profileRow struct {
	destination model.Destination
	repository  *model.Repository
}

func profileRows(s profile.State) []profileRow {
	var rows []profileRow
	for _, d := range profile.Menu {
		rows = append(rows, profileRow{destination: d})
	}
	for i := range s.Repositories {
		rows = append(rows, profileRow{repository: &s.Repositories[i]})
	}
	return rows
}

func (m Model) handleProfile(view scopedView, id nav.ElementID, s profile.State, msg tea.KeyMsg) bool {
	send := func(a profile.Action) { view.Send(app.ProfileAction{Action: a}) }

	if s.ConfirmingSignOut {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			send(profile.SignOutConfirmed{})
		case key.Matches(msg, m.keys.Deny):
			send(profile.SignOutCancelled{})
		}
		return true
	}

	rows := profileRows(s)
	switch {
	case key.Matches(msg, m.keys.SignIn):
		if !s.IsAuthenticated {
			send(profile.SignInTapped{})
		}
	case key.Matches(msg, m.keys.SignOut):
		if s.IsAuthenticated {
			send(profile.SignOutTapped{})
		}
	case key.Matches(msg, m.keys.Refresh):
		send(profile.Refresh{})
	case key.Matches(msg, m.keys.Select):
		row, ok := selected(m, id, rows)
		switch {
		case !ok:
		case row.repository != nil:
			send(profile.RepositorySelected{Repository: *row.repository})
		default:
			send(profile.MenuSelected{Destination: row.destination})
		}
	default:
		handled, _ := m.moveCursor(id, len(rows), msg)
		return handled
	}
	return true
}

// Settings rows, in display order.
const (
	settingAppearance = iota
	settingLanguage
	settingNotifications
	settingCodeHighlighting
	settingWebLinks
	settingLogout
	settingCount
)

var appearances = []model.Appearance{model.AppearanceAuto, model.AppearanceLight, model.AppearanceDark}

func (m Model) handleSettings(view scopedView, id nav.ElementID, s settings.State, msg tea.KeyMsg) bool {
	send := func(a settings.Action) { view.Send(app.SettingsAction{Action: a}) }

	if s.ConfirmingLogout {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			send(settings.LogoutConfirmed{})
		case key.Matches(msg, m.keys.Deny):
			send(settings.LogoutCancelled{})
		}
		return true
	}

	switch {
	case key.Matches(msg, m.keys.SignOut):
		send(settings.LogoutTapped{})
	case key.Matches(msg, m.keys.Select):
		switch m.cursors[id] {
		case settingAppearance:
			send(settings.AppearanceSelected{Appearance: next(appearances, s.Settings.Appearance)})
		case settingLanguage:
			send(settings.LanguageSelected{Language: next(settings.Languages, s.Settings.Language)})
		case settingNotifications:
			send(settings.NotificationsToggled{})
		case settingCodeHighlighting:
			send(settings.CodeHighlightingToggled{})
		case settingWebLinks:
			send(settings.WebLinksToggled{})
		case settingLogout:
			send(settings.LogoutTapped{})
		}
	default:
		handled, _ := m.moveCursor(id, settingCount, msg)
		return handled
	}
	return true
}

func (m Model) handleRepoList(view scopedView, id nav.ElementID, s repolist.State, msg tea.KeyMsg) (bool, tea.Cmd) {
	send := func(a repolist.Action) { view.Send(app.RepoListAction{Action: a}) }
	rows := s.Visible()
	filter := s.Filter()

	switch {
	case key.Matches(msg, m.keys.Search):
		return true, beginEditCmd(editRepositorySearch, id, s.SearchText)
	case key.Matches(msg, m.keys.Sort):
		send(repolist.SortSelected{Sort: next(repolist.Sorts, filter.Sort)})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Filter):
		source := repolist.SourceStarred
		if filter.Source == repolist.SourceStarred {
			source = repolist.SourceOwned
		}
		send(repolist.SourceSelected{Source: source})
		m.cursors[id] = 0
	case key.Matches(msg, m.keys.Source):
		if filter.Source == repolist.SourceOwned {
			send(repolist.AffiliationSelected{Affiliation: next(repolist.Affiliations, filter.Affiliation)})
			m.cursors[id] = 0
		}
	case key.Matches(msg, m.keys.Clear):
		send(repolist.SearchTextChanged{})
	case key.Matches(msg, m.keys.Refresh):
		send(repolist.Items{Action: paging.Refresh{}})
	case key.Matches(msg, m.keys.Select):
		if repo, ok := selected(m, id, rows); ok {
			send(repolist.RepositorySelected{Repository: repo})
		}
	default:
		handled, atEnd := m.moveCursor(id, len(rows), msg)
		if atEnd && s.Items.HasMore {
			send(repolist.Items{Action: paging.LoadMore{}})
		}
		return handled, nil
	}
	return true, nil
}

func (m Model) handleRepoDetail(view scopedView, id nav.ElementID, s repodetail.State, msg tea.KeyMsg) bool {
	send := func(a repodetail.Action) { view.Send(app.RepoDetailAction{Action: a}) }
	switch {
	case key.Matches(msg, m.keys.Star):
		if s.SignedIn {
			send(repodetail.StarToggled{})
		}
	case key.Matches(msg, m.keys.Watch):
		if s.SignedIn {
			send(repodetail.WatchToggled{})
		}
	case key.Matches(msg, m.keys.Refresh):
		send(repodetail.Refresh{})
	default:
		return m.scroll(id, msg)
	}
	return true
}

// editMsg switches the program into insert mode bound to target.
type editMsg struct {
	target editTarget
	id     nav.ElementID
	value  string
}

func beginEditCmd(target editTarget, id nav.ElementID, value string) tea.Cmd {
	return func() tea.Msg { return editMsg{target: target, id: id, value: value} }
}
