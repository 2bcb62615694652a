package ui

import (
	"strings"

	"octoterm/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders the context-sensitive help footer for a screen kind.
func RenderHelp(kind string, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderFormHelp(width)
	}

	var keys []string
	switch {
	case kind == "home":
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("enter", "open"),
			helpKey("1-4", "tabs"),
		}
	case kind == "explore":
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("/", "search"),
			helpKey("f", "language"),
			helpKey("x", "clear"),
			helpKey("enter", "open"),
		}
	case kind == "notifications":
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("f", "filter"),
			helpKey("a", "repository"),
			helpKey("/", "search"),
			helpKey("m/M", "read/all read"),
			helpKey("r", "refresh"),
			helpKey("enter", "open"),
		}
	case kind == "notifdetail":
		keys = []string{
			helpKey("j/k", "scroll"),
			helpKey("enter", "repository"),
			helpKey("r", "retry"),
			helpKey("h/esc", "back"),
		}
	case kind == "profile":
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("enter", "open"),
			helpKey("i", "sign in"),
			helpKey("L", "sign out"),
			helpKey("r", "refresh"),
		}
	case kind == "settings":
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("enter", "change"),
			helpKey("L", "log out"),
			helpKey("h/esc", "back"),
		}
	case strings.HasPrefix(kind, "repolist/"):
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("/", "search"),
			helpKey("o", "sort"),
			helpKey("f", "owned/starred"),
			helpKey("a", "affiliation"),
			helpKey("enter", "open"),
		}
	case kind == "repodetail":
		keys = []string{
			helpKey("j/k", "scroll"),
			helpKey("s", "star"),
			helpKey("w", "watch"),
			helpKey("r", "refresh"),
			helpKey("h/esc", "back"),
		}
	default:
		keys = []string{
			helpKey("j/k", "navigate"),
			helpKey("h/l", "back/select"),
			helpKey("q", "quit"),
		}
	}
	keys = append(keys, helpKey("?", "help"))
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("enter", "submit"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"h / ← / b / esc", "Go back"},
			{"l / → / enter", "Open / select"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"1-4 / tab", "Switch tab"},
			{"H", "Back to home"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Lists"),
		helpSection([]helpItem{
			{"/", "Search"},
			{"f", "Cycle filter"},
			{"o", "Cycle sort"},
			{"a", "Cycle repository or affiliation"},
			{"x", "Clear search"},
			{"r", "Refresh"},
		}),
		titleSection("Notifications"),
		helpSection([]helpItem{
			{"m", "Mark as read"},
			{"M", "Mark all as read"},
		}),
		titleSection("Repository"),
		helpSection([]helpItem{
			{"s", "Star / unstar"},
			{"w", "Watch / unwatch"},
		}),
		titleSection("Account"),
		helpSection([]helpItem{
			{"i", "Sign in with a token"},
			{"L", "Sign out"},
			{"y / n", "Confirm / cancel"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
