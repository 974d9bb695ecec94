package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// campus, the tracked quest, the XP bar, and completion.
func (m Model) renderStatusBar() string {
	s := m.engine.ProgressSummary()

	left := " " + m.engine.Catalog().Campus.Title
	if q, ok := m.engine.TrackedQuest(); ok {
		candidate := fmt.Sprintf("%s | Tracking: %s", left, q.Title)
		if lipgloss.Width(candidate)+40 < m.width {
			left = candidate
		} else {
			left += " | Tracking: " + q.ID
		}
	}

	counts := fmt.Sprintf(" %d/%d XP | %d/%d done ", s.XP, s.XPCap, s.CompletedCount, s.TotalCount)
	right := counts
	// Show the bar only when it fits.
	if bar := m.xpBar.ViewAs(float64(s.XPBarPercent) / 100); lipgloss.Width(left)+lipgloss.Width(bar)+lipgloss.Width(counts)+2 < m.width {
		right = bar + counts
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	line := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(line)
}
