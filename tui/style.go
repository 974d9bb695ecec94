package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleSpinner = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleBody = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeading = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	styleReward = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleTip = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Italic(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindBody lineKind = iota
	kindHeading
	kindReward
	kindTip
	kindSystem
	kindError
	kindTrace
)

var kindStyles = map[lineKind]lipgloss.Style{
	kindBody:    styleBody,
	kindHeading: styleHeading,
	kindReward:  styleReward,
	kindTip:     styleTip,
	kindSystem:  styleSystem,
	kindError:   styleError,
	kindTrace:   styleTrace,
}

func (k lineKind) render(line string) string {
	if st, ok := kindStyles[k]; ok {
		return st.Render(line)
	}
	return styleBody.Render(line)
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.HasPrefix(line, "+") && strings.Contains(line, " XP"),
		strings.HasPrefix(line, "Unlocked: "):
		return kindReward
	case strings.HasPrefix(line, "Tip:"):
		return kindTip
	case strings.HasPrefix(line, "No quest matches"),
		strings.HasPrefix(line, "Which "),
		strings.HasPrefix(line, "I don't know how"):
		return kindError
	case isHeading(line):
		return kindHeading
	default:
		return kindBody
	}
}

// isHeading reports whether line is a short unindented section label
// like "Available:" or "Recent activity:".
func isHeading(line string) bool {
	if line == "" || strings.HasPrefix(line, " ") || !strings.HasSuffix(line, ":") {
		return false
	}
	return len(strings.Fields(line)) <= 3
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
