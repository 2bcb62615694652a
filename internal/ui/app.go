package ui

import (
	"strconv"
	"strings"
	"time"

	"octoterm/internal/app"
	"octoterm/internal/i18n"
	"octoterm/internal/model"
	"octoterm/internal/nav"
	"octoterm/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stateMsg delivers a store snapshot to the program.
type stateMsg struct{ state app.State }

// editTarget is what the text input is bound to in insert mode.
type editTarget int

const (
	editNone editTarget = iota
	editQuery
	editNotificationSearch
	editRepositorySearch
	editToken
)

// Model is the root Bubble Tea model. Domain state lives in the store; the
// model only keeps what is purely visual: cursors, scroll offsets, and the
// text being typed.
type Model struct {
	store   store.View[app.State, app.Action]
	text    *i18n.Catalog
	updates chan app.State

	state  app.State
	mode   model.Mode
	target editTarget
	editID nav.ElementID
	gState GState

	width  int
	height int

	showingHelp bool

	cursors map[nav.ElementID]int
	scrolls map[nav.ElementID]int

	input    textinput.Model
	spinner  spinner.Model
	keys     KeyMap
	formKeys FormKeyMap
	now      func() time.Time
}

// New creates the root model and subscribes it to st.
func New(st store.View[app.State, app.Action], text *i18n.Catalog) Model {
	updates := make(chan app.State, 1)
	st.Subscribe(func(s app.State) {
		// Only the latest snapshot matters.
		select {
		case <-updates:
		default:
		}
		updates <- s
	})

	input := textinput.New()
	input.Prompt = "› "
	input.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		store:    st,
		text:     text,
		updates:  updates,
		state:    st.State(),
		mode:     model.ModeNav,
		gState:   GStateIdle,
		cursors:  map[nav.ElementID]int{},
		scrolls:  map[nav.ElementID]int{},
		input:    input,
		spinner:  sp,
		keys:     DefaultKeyMap(),
		formKeys: DefaultFormKeyMap(),
		now:      time.Now,
	}
}

func waitForState(updates <-chan app.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg{<-updates}
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForState(m.updates))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		m.state = msg.state
		cmd := m.syncSheet()
		return m, tea.Batch(cmd, waitForState(m.updates))

	case editMsg:
		cmd := m.beginEdit(msg.target, msg.id, msg.value)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeInsert {
			return m.handleInsertMode(msg)
		}

		if msg.String() == "?" {
			m.showingHelp = !m.showingHelp
			return m, nil
		}
		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}
		return m.handleNavMode(msg)
	}
	return m, nil
}

// syncSheet binds the text input to the sign-in sheet while it is presented.
func (m *Model) syncSheet() tea.Cmd {
	_, presented := m.state.Presented.(app.SignInScreen)
	switch {
	case presented && m.target != editToken:
		m.input.EchoMode = textinput.EchoPassword
		m.input.EchoCharacter = '•'
		m.input.Placeholder = "ghp_..."
		return m.beginEdit(editToken, 0, "")
	case !presented && m.target == editToken:
		m.endEdit()
	}
	return nil
}

func (m *Model) beginEdit(target editTarget, id nav.ElementID, value string) tea.Cmd {
	m.mode = model.ModeInsert
	m.target = target
	m.editID = id
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endEdit() {
	m.mode = model.ModeNav
	m.target = editNone
	m.input.Blur()
	m.input.EchoMode = textinput.EchoNormal
	m.input.Placeholder = ""
}

// screen returns a handle on one stack element. Sends to an element that has
// since been popped are dropped by the root reducer.
func (m Model) screen(id nav.ElementID) *store.Scoped[app.State, app.Action, app.Screen, app.ScreenAction] {
	return store.ScopeStore(m.store,
		func(s app.State) (app.Screen, bool) { return s.Path.Get(id) },
		func(a app.ScreenAction) app.Action { return app.PathAction{ID: id, Action: a} },
	)
}

// sheet returns a handle on the presented screen.
func (m Model) sheet() *store.Scoped[app.State, app.Action, app.Screen, app.ScreenAction] {
	return store.ScopeStore(m.store,
		func(s app.State) (app.Screen, bool) { return s.Presented, s.Presented != nil },
		func(a app.ScreenAction) app.Action { return app.PresentedAction{Action: a} },
	)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	el, hasTop := m.state.Top()
	kind := ""
	if hasTop {
		kind = el.State.Kind()
	}

	header := renderHeader(m.breadcrumb(), m.width)
	tabs := renderTabs(m.state.SelectedTab, m.width)
	footer := RenderHelp(kind, m.mode, m.width)

	var banners []string
	if m.state.Notice != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.state.Notice))
	}
	if hasTop {
		errMsg, notice := messages(el.State)
		if errMsg != "" {
			banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+errMsg))
		}
		if notice != "" {
			banners = append(banners, SuccessStyle.Width(m.width).Render(notice))
		}
	}

	used := lipgloss.Height(header) + lipgloss.Height(tabs) + lipgloss.Height(footer)
	for _, b := range banners {
		used += lipgloss.Height(b)
	}
	contentHeight := max(m.height-used, 1)

	var content string
	if sheet, ok := m.state.Presented.(app.SignInScreen); ok {
		content = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			m.renderSignIn(sheet))
	} else if hasTop {
		content = m.renderScreen(el, m.width, contentHeight)
	}

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header, tabs}
	parts = append(parts, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) breadcrumb() []string {
	var parts []string
	for _, sc := range m.state.Path.States() {
		parts = append(parts, title(sc))
	}
	return parts
}

func renderHeader(breadcrumbParts []string, width int) string {
	var rendered []string
	for i, part := range breadcrumbParts {
		if i == len(breadcrumbParts)-1 {
			rendered = append(rendered, BreadcrumbActiveStyle.Render(part))
		} else {
			rendered = append(rendered, BreadcrumbStyle.Render(part))
		}
	}

	sep := BreadcrumbStyle.Render(" › ")
	line := HeaderStyle.Render("octoterm")
	if len(rendered) > 0 {
		line += " " + strings.Join(rendered, sep)
	}
	return lipgloss.NewStyle().Width(width).Render(line)
}

func renderTabs(selected app.Tab, width int) string {
	var tabStrings []string
	for i, tab := range app.Tabs {
		tabStyle := lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorMuted)

		if tab == selected {
			tabStyle = tabStyle.
				Foreground(ColorText).
				Bold(true).
				Underline(true)
		}
		tabStrings = append(tabStrings, tabStyle.Render(strconv.Itoa(i+1)+" "+tab.String()))
	}

	return lipgloss.NewStyle().
		Width(width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorSurface).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabStrings...))
}
