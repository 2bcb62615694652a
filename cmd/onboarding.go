package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"octoterm/internal/feature/settings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

type OnboardingSettings struct {
	Completed      bool   `yaml:"completed"`
	PollingEnabled bool   `yaml:"polling_enabled"`
	Language       string `yaml:"language"`

	// capturedToken is handed to the auth provider, never written to disk here.
	capturedToken string
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.yaml")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var s OnboardingSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return OnboardingSettings{}, fmt.Errorf("failed to parse %s: %w", onboardingPath(configDir), err)
	}
	return s, nil
}

func saveOnboardingSettings(configDir string, s OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0600)
}

func shouldRunOnboarding(s OnboardingSettings) bool {
	if s.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepPolling onboardingStep = iota
	stepLanguage
	stepToken
	stepDone
)

type onboardingModel struct {
	step          onboardingStep
	polling       bool
	language      int
	existingToken string
	tokenInput    textinput.Model
	settings      OnboardingSettings
	status        string
	width         int
	height        int
}

var (
	obColorMuted  = lipgloss.Color("#7D8590")
	obColorText   = lipgloss.Color("#E6EDF3")
	obColorAccent = lipgloss.Color("#58A6FF")
	obColorDanger = lipgloss.Color("#F85149")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obOptionStyle = lipgloss.NewStyle().
			Foreground(obColorText)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Bold(true)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

var languageNames = map[string]string{"en": "English", "ko": "한국어"}

func newOnboardingModel(existingToken string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "ghp_..."
	in.CharLimit = 256
	in.Prompt = "token> "
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Focus()

	return onboardingModel{
		step:          stepPolling,
		polling:       true,
		existingToken: strings.TrimSpace(existingToken),
		tokenInput:    in,
		settings: OnboardingSettings{
			Completed:      true,
			PollingEnabled: true,
			Language:       settings.Languages[0],
		},
	}
}

func (m onboardingModel) Init() tea.Cmd { return nil }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.status = "Setup canceled. Defaults saved."
			m.step = stepDone
			return m, tea.Quit
		}
		switch m.step {
		case stepPolling:
			switch msg.String() {
			case "y", "Y":
				m.polling = true
				return m.nextStep()
			case "n", "N":
				m.polling = false
				return m.nextStep()
			case "up", "k", "left", "h":
				m.polling = true
			case "down", "j", "right", "l":
				m.polling = false
			case "enter":
				return m.nextStep()
			case "q":
				m.status = "Setup canceled. Defaults saved."
				m.step = stepDone
				return m, tea.Quit
			}
			return m, nil
		case stepLanguage:
			n := len(settings.Languages)
			switch msg.String() {
			case "up", "k", "left", "h":
				m.language = (m.language + n - 1) % n
			case "down", "j", "right", "l":
				m.language = (m.language + 1) % n
			case "enter":
				return m.nextStep()
			case "q":
				m.status = "Setup canceled. Defaults saved."
				m.step = stepDone
				return m, tea.Quit
			}
			return m, nil
		case stepToken:
			switch msg.String() {
			case "enter":
				token := strings.TrimSpace(m.tokenInput.Value())
				if token == "" {
					m.status = "No token entered. Sign in later from the Profile tab."
				} else {
					m.settings.capturedToken = token
					m.status = "Token saved. It is checked when octoterm starts."
				}
				m.step = stepDone
				return m, tea.Quit
			case "esc":
				m.status = "Skipped sign-in. Sign in later from the Profile tab."
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.tokenInput, cmd = m.tokenInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) nextStep() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepPolling:
		m.settings.PollingEnabled = m.polling
		m.step = stepLanguage
		return m, nil
	case stepLanguage:
		m.settings.Language = settings.Languages[m.language]
		if m.existingToken != "" {
			m.status = "Using GITHUB_TOKEN from environment/flags."
			m.step = stepDone
			return m, tea.Quit
		}
		m.step = stepToken
		return m, nil
	}
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)
	content := m.renderContent(width, max(height-6, 8))
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("octoterm") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	names := []string{"Notifications", "Language", "GitHub Token"}
	tabs := []string{"  "}
	for i, name := range names {
		if onboardingStep(i) == m.step {
			tabs = append(tabs, obTabActive.Render(name))
		} else {
			tabs = append(tabs, obTabInactive.Render(name))
		}
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, tabs...))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepPolling:
		return obFooterStyle.Width(width).Render("↑↓/jk to navigate  y/n enter to confirm  q cancel")
	case stepLanguage:
		return obFooterStyle.Width(width).Render("↑↓/jk to choose  enter to confirm  q cancel")
	case stepToken:
		return obFooterStyle.Width(width).Render("enter save  esc skip")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func option(selected bool, label string) string {
	if selected {
		return "  " + obOptionSelected.Render("→ "+label)
	}
	return "    " + obOptionStyle.Render(label)
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepPolling:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Check for new notifications in the background?"),
			"",
			option(m.polling, "Poll notifications every few minutes"),
			option(!m.polling, "Only refresh when I ask"),
			"",
			obMutedStyle.Render("You can change this later in ~/.octoterm/onboarding.yaml"),
		)
	case stepLanguage:
		lines := []string{obLabelStyle.Render("Interface language"), ""}
		for i, lang := range settings.Languages {
			lines = append(lines, option(i == m.language, languageNames[lang]))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	case stepToken:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.tokenInput.View())
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Sign in with a personal access token:"),
			"",
			obMutedStyle.Render("1) https://github.com/settings/tokens"),
			obMutedStyle.Render("2) Generate a token with repo, notifications and read:user"),
			obMutedStyle.Render("3) Paste it below"),
			"",
			obLabelStyle.Render("GitHub Token"),
			input,
			"",
			obMutedStyle.Render("Press Enter to save, Esc to browse signed out."),
		)
	default:
		msg := obMutedStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "canceled") {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string, existingToken string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(existingToken), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
