package ui

import (
	"fmt"
	"strings"

	"octoterm/internal/app"
	"octoterm/internal/feature/explore"
	"octoterm/internal/feature/home"
	"octoterm/internal/feature/notifdetail"
	"octoterm/internal/feature/notifications"
	"octoterm/internal/feature/profile"
	"octoterm/internal/feature/repodetail"
	"octoterm/internal/feature/repolist"
	"octoterm/internal/feature/settings"
	"octoterm/internal/model"
	"octoterm/internal/nav"
	"octoterm/internal/paging"
	"octoterm/internal/util"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// title names a screen in the breadcrumb.
func title(sc app.Screen) string {
	switch sc := sc.(type) {
	case app.HomeScreen:
		return "Home"
	case app.ExploreScreen:
		return "Explore"
	case app.NotificationsScreen:
		return "Notifications"
	case app.NotifDetailScreen:
		return util.TruncateString(sc.State.Notification.Title, 32)
	case app.ProfileScreen:
		return "Profile"
	case app.SettingsScreen:
		return "Settings"
	case app.RepoListScreen:
		if sc.State.Filter().Source == repolist.SourceStarred {
			return "Starred"
		}
		return "Repositories"
	case app.RepoDetailScreen:
		return sc.State.Repository.FullName
	case app.SignInScreen:
		return "Sign in"
	}
	return ""
}

// messages returns the error and notice a screen wants shown above it.
func messages(sc app.Screen) (errMsg, notice string) {
	switch sc := sc.(type) {
	case app.ExploreScreen:
		return sc.State.ErrorMessage, ""
	case app.NotificationsScreen:
		return sc.State.ErrorMessage, sc.State.Notice
	case app.NotifDetailScreen:
		return sc.State.ErrorMessage, ""
	case app.ProfileScreen:
		return sc.State.ErrorMessage, ""
	case app.SettingsScreen:
		return sc.State.ErrorMessage, sc.State.Notice
	case app.RepoListScreen:
		return sc.State.ErrorMessage, ""
	case app.RepoDetailScreen:
		return sc.State.ErrorMessage, sc.State.Notice
	}
	return "", ""
}

func (m Model) renderScreen(el nav.Element[app.Screen], width, height int) string {
	switch sc := el.State.(type) {
	case app.HomeScreen:
		return m.renderHome(sc.State, width, height)
	case app.ExploreScreen:
		return m.renderExplore(el.ID, sc.State, width, height)
	case app.NotificationsScreen:
		return m.renderNotifications(el.ID, sc.State, width, height)
	case app.NotifDetailScreen:
		return m.renderNotifDetail(el.ID, sc.State, width, height)
	case app.ProfileScreen:
		return m.renderProfile(el.ID, sc.State, width, height)
	case app.SettingsScreen:
		return m.renderSettings(el.ID, sc.State, width, height)
	case app.RepoListScreen:
		return m.renderRepoList(el.ID, sc.State, width, height)
	case app.RepoDetailScreen:
		return m.renderRepoDetail(el.ID, sc.State, width, height)
	}
	return ""
}

// renderList draws rows with the cursor row highlighted, scrolled so the
// cursor stays in view.
func renderList(rows []string, cursor, width, height int) string {
	if len(rows) == 0 || height <= 0 {
		return ""
	}
	cursor = max(min(cursor, len(rows)-1), 0)
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := min(start+height, len(rows))

	var lines []string
	for i := start; i < end; i++ {
		line := truncate.StringWithTail(rows[i], uint(max(width-2, 1)), "…")
		if i == cursor {
			lines = append(lines, SelectedRowStyle.Width(width).Render(line))
		} else {
			lines = append(lines, NormalRowStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// renderBody shows wrapped text in a viewport scrolled to offset.
func renderBody(text string, offset, width, height int) string {
	vp := viewport.New(width, max(height, 1))
	vp.SetContent(wordwrap.String(text, max(width-2, 10)))
	vp.SetYOffset(offset)
	return vp.View()
}

func renderField(label, value string) string {
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}

func (m Model) status(loading bool, empty string) string {
	if loading {
		return m.spinner.View() + " " + MutedStyle.Render("Loading...")
	}
	return EmptyStateStyle.Render(empty)
}

func repositoryRow(r model.Repository, width int) string {
	name := r.FullName
	if r.Private {
		name += " 🔒"
	}
	meta := fmt.Sprintf("★ %s  %s", util.FormatCount(r.Stars), util.FormatLanguage(r.Language))
	gap := max(width-lipgloss.Width(name)-lipgloss.Width(meta)-4, 1)
	line := name + strings.Repeat(" ", gap) + meta
	if r.Description != "" {
		line += "\n  " + MutedStyle.Render(util.TruncateString(r.Description, max(width-6, 10)))
	}
	return line
}

func repositoryRows(repos []model.Repository, width int) []string {
	rows := make([]string, len(repos))
	for i, r := range repos {
		rows[i] = repositoryRow(r, width)
	}
	return rows
}

// pageFooter shows paging progress below a list.
func (m Model) pageFooter(loadingMore, hasMore bool, shown, total int) string {
	switch {
	case loadingMore:
		return m.spinner.View() + " " + MutedStyle.Render("Loading more...")
	case total > 0:
		return StatusBarStyle.Render(fmt.Sprintf("%d of %d", shown, total))
	case hasMore:
		return StatusBarStyle.Render(fmt.Sprintf("%d loaded, more below", shown))
	default:
		return StatusBarStyle.Render(fmt.Sprintf("%d", shown))
	}
}

func (m Model) renderHome(s home.State, width, height int) string {
	var rows []string
	for _, item := range s.Menu {
		rows = append(rows, "  "+item.Title)
	}

	greeting := MutedStyle.Render("Not signed in")
	if m.state.Session.Authenticated {
		greeting = NormalRowStyle.Render("Signed in as ") + LabelStyle.Render(m.state.Session.User.Login)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		PanelStyle.Width(width-4).Render(greeting),
		renderList(rows, s.Cursor, width, height-4),
	)
}

func (m Model) renderExplore(id nav.ElementID, s explore.State, width, height int) string {
	query := s.Search.Query
	if m.target == editQuery && m.editID == id {
		query = m.input.View()
	} else if query == "" {
		query = MutedStyle.Render("press / to search")
	}
	header := renderField("Search", query) + "   " + renderField("Language", string(s.Category))

	label := "Popular"
	loading := s.PopularLoading
	if s.ShowingResults() {
		label = "Results"
		loading = s.Search.IsLoading
	}
	repos := s.Repositories()
	listHeight := (height - 4) / 2

	var body string
	if len(repos) == 0 {
		body = m.status(loading, "No repositories")
	} else {
		body = renderList(repositoryRows(repos, width), m.cursors[id], width, listHeight)
	}

	parts := []string{header, LabelStyle.Render(label), body}
	if s.ShowingResults() && len(repos) > 0 {
		parts = append(parts, m.pageFooter(s.Search.IsLoadingMore, s.Search.HasMore, len(repos), s.Search.TotalCount))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderNotifications(id nav.ElementID, s notifications.State, width, height int) string {
	search := s.SearchText
	if m.target == editNotificationSearch && m.editID == id {
		search = m.input.View()
	}
	repo := s.Repository
	if repo == "" {
		repo = "all"
	}
	header := strings.Join([]string{
		renderField("Filter", string(s.Filter())),
		renderField("Repository", repo),
		renderField("Search", search),
	}, "   ")
	summary := UnreadStyle.Render(m.text.Unread(s.UnreadCount()))

	items := s.Visible()
	if len(items) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, summary,
			m.status(s.Feed.IsLoading || s.Feed.Phase() == paging.Idle, "No notifications"))
	}

	now := m.now()
	rows := make([]string, len(items))
	for i, n := range items {
		marker := "  "
		if n.Unread {
			marker = UnreadStyle.Render("● ")
		}
		rows[i] = fmt.Sprintf("%s%s  %s\n    %s",
			marker,
			n.Title,
			MutedStyle.Render(util.FormatDateHuman(n.UpdatedAt, now)),
			MutedStyle.Render(n.Repository+" · "+n.SubjectType+" · "+string(n.Reason)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		summary,
		renderList(rows, m.cursors[id], width, (height-4)/2),
		m.pageFooter(s.Feed.IsLoadingMore, s.Feed.HasMore, len(items), s.Feed.TotalCount),
	)
}

func (m Model) renderNotifDetail(id nav.ElementID, s notifdetail.State, width, height int) string {
	n := s.Notification
	fields := []string{
		TitleStyle.Render(n.Title),
		renderField("Repository", n.Repository),
		renderField("Type", n.SubjectType),
		renderField("Reason", string(n.Reason)),
		renderField("Updated", util.FormatDateHuman(n.UpdatedAt, m.now())),
	}

	switch {
	case !s.HasSubject():
		fields = append(fields, MutedStyle.Render("No further details for this notification."))
	case s.IsLoading:
		fields = append(fields, m.status(true, ""))
	case s.Loaded:
		d := s.Detail
		stateStyle := OpenStateStyle
		if d.State != "open" {
			stateStyle = ClosedStateStyle
		}
		fields = append(fields,
			stateStyle.Render(strings.ToUpper(d.State))+"  "+
				MutedStyle.Render(fmt.Sprintf("#%d by %s · %d comments", d.Number, d.Author, d.Comments)),
		)
		head := strings.Join(fields, "\n")
		return lipgloss.JoinVertical(lipgloss.Left, head,
			renderBody(d.Body, m.scrolls[id], width, height-lipgloss.Height(head)-1))
	}
	return strings.Join(fields, "\n")
}

func (m Model) renderProfile(id nav.ElementID, s profile.State, width, height int) string {
	if !s.IsAuthenticated {
		return EmptyStateStyle.Render("Not signed in. Press i to sign in with a personal access token.")
	}
	if s.ConfirmingSignOut {
		return PanelStyle.Render("Sign out of GitHub? " + HelpKeyStyle.Render("y") + "/" + HelpKeyStyle.Render("n"))
	}

	var card string
	if s.HasUser {
		u := s.User
		lines := []string{LabelStyle.Render(u.Login)}
		if u.Name != "" {
			lines[0] += " " + MutedStyle.Render(u.Name)
		}
		if u.Bio != "" {
			lines = append(lines, wordwrap.String(u.Bio, max(width-10, 10)))
		}
		lines = append(lines, MutedStyle.Render(fmt.Sprintf("%s followers · %s following · %s repositories",
			util.FormatCount(u.Followers), util.FormatCount(u.Following), util.FormatCount(u.PublicRepos))))
		card = PanelStyle.Width(width - 4).Render(strings.Join(lines, "\n"))
	} else {
		card = m.status(s.IsLoading, "")
	}

	var rows []string
	for _, row := range profileRows(s) {
		if row.repository != nil {
			rows = append(rows, repositoryRow(*row.repository, width))
		} else {
			rows = append(rows, "  "+destinationTitle(row.destination))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, card,
		renderList(rows, m.cursors[id], width, height-lipgloss.Height(card)))
}

func destinationTitle(d model.Destination) string {
	for _, item := range home.DefaultMenu {
		if item.Destination == d {
			return item.Title
		}
	}
	return d.String()
}

func (m Model) renderSettings(id nav.ElementID, s settings.State, width, height int) string {
	if s.ConfirmingLogout {
		return PanelStyle.Render("Log out and remove the saved token? " + HelpKeyStyle.Render("y") + "/" + HelpKeyStyle.Render("n"))
	}
	v := s.Settings
	rows := []string{
		fmt.Sprintf("  %-20s %s", "Appearance", v.Appearance),
		fmt.Sprintf("  %-20s %s", "Language", v.Language),
		fmt.Sprintf("  %-20s %s", "Notifications", util.FormatBool(v.NotificationsEnabled)),
		fmt.Sprintf("  %-20s %s", "Code highlighting", util.FormatBool(v.CodeHighlighting)),
		fmt.Sprintf("  %-20s %s", "Open links in browser", util.FormatBool(v.WebLinksEnabled)),
		"  " + ErrorStyle.UnsetPadding().Render("Log out"),
	}
	list := renderList(rows, m.cursors[id], width, height-1)
	if s.IsSaving {
		list += "\n" + m.spinner.View() + " " + MutedStyle.Render("Saving...")
	}
	return list
}

func (m Model) renderRepoList(id nav.ElementID, s repolist.State, width, height int) string {
	f := s.Filter()
	search := s.SearchText
	if m.target == editRepositorySearch && m.editID == id {
		search = m.input.View()
	}
	header := []string{renderField("Sort", f.Sort)}
	if f.Source == repolist.SourceOwned {
		header = append(header, renderField("Affiliation", f.Affiliation))
	}
	header = append(header, renderField("Search", search))

	repos := s.Visible()
	if len(repos) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, strings.Join(header, "   "),
			m.status(s.Items.IsLoading || s.Items.Phase() == paging.Idle, "No repositories"))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(header, "   "),
		renderList(repositoryRows(repos, width), m.cursors[id], width, (height-3)/2),
		m.pageFooter(s.Items.IsLoadingMore, s.Items.HasMore, len(repos), s.Items.TotalCount),
	)
}

func (m Model) renderRepoDetail(id nav.ElementID, s repodetail.State, width, height int) string {
	r := s.Repository
	name := TitleStyle.Render(r.FullName)
	if r.Archived {
		name += " " + MutedStyle.Render("archived")
	}

	fields := []string{name}
	if r.Description != "" {
		fields = append(fields, wordwrap.String(r.Description, max(width-4, 10)))
	}
	fields = append(fields, strings.Join([]string{
		StarStyle.Render("★ " + util.FormatCount(r.Stars)),
		MutedStyle.Render("forks " + util.FormatCount(r.Forks)),
		MutedStyle.Render("issues " + util.FormatCount(r.OpenIssues)),
		MutedStyle.Render(util.FormatLanguage(r.Language)),
		MutedStyle.Render("updated " + util.FormatDateHuman(r.UpdatedAt, m.now())),
	}, "  "))

	if s.SignedIn && s.StatusLoaded {
		star, watch := "☆ Star", "Watch"
		if s.IsStarred {
			star = StarStyle.Render("★ Starred")
		}
		if s.IsWatching {
			watch = SuccessStyle.UnsetPadding().Render("Watching")
		}
		fields = append(fields, star+"   "+watch)
	}
	head := strings.Join(fields, "\n")

	var body string
	switch {
	case s.ReadmeLoading || (s.IsLoading && !s.ReadmeLoaded):
		body = m.status(true, "")
	case s.ReadmeLoaded && s.Readme == "":
		body = EmptyStateStyle.Render("No README")
	default:
		body = renderBody(s.Readme, m.scrolls[id], width, height-lipgloss.Height(head)-1)
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}

func (m Model) renderSignIn(sheet app.SignInScreen) string {
	s := sheet.State
	lines := []string{
		TitleStyle.Render("Sign in to GitHub"),
		"Paste a personal access token with the repo, notifications",
		"and read:user scopes.",
		"",
		InputStyle.Render(m.input.View()),
	}
	switch {
	case s.IsSubmitting:
		lines = append(lines, m.spinner.View()+" "+MutedStyle.Render("Checking token..."))
	case s.ErrorMessage != "":
		lines = append(lines, ErrorStyle.UnsetPadding().Render(s.ErrorMessage))
	}
	lines = append(lines, "", HelpKeyStyle.Render("enter")+" "+HelpDescStyle.Render("sign in")+"  "+
		HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("cancel"))
	return ActivePanelStyle.Render(strings.Join(lines, "\n"))
}
