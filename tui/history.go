// Package tui provides a Bubble Tea quest board for the QuestRouX engine.
package tui

import (
	"slices"
	"strings"
)

// History keeps recently submitted command lines for Up/Down recall.
// Repeat shortcuts are not recorded, and resubmitting a line moves it to
// the newest position instead of storing it twice.
type History struct {
	lines  []string
	limit  int
	pos    int    // len(lines) while not recalling
	draft  string // what was typed before recall started
	recall bool
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	if limit < 1 {
		limit = 1
	}
	return &History{limit: limit}
}

// Push records a submitted line and ends any recall in progress.
func (h *History) Push(line string) {
	defer h.ResetCursor()

	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "", "again", "g":
		return
	}
	if i := slices.Index(h.lines, line); i >= 0 {
		h.lines = slices.Delete(h.lines, i, i+1)
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = slices.Delete(h.lines, 0, over)
	}
}

// Prev steps to an older line. draft is the current input; it is kept so
// that stepping back past the newest line restores it. Returns false when
// there is nothing to recall.
func (h *History) Prev(draft string) (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if !h.recall {
		h.recall = true
		h.draft = draft
		h.pos = len(h.lines)
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps to a newer line. Past the newest line it returns the saved
// draft and ends recall. Returns false when not recalling.
func (h *History) Next() (string, bool) {
	if !h.recall {
		return "", false
	}
	h.pos++
	if h.pos >= len(h.lines) {
		draft := h.draft
		h.ResetCursor()
		return draft, true
	}
	return h.lines[h.pos], true
}

// ResetCursor ends recall and forgets the draft.
func (h *History) ResetCursor() {
	h.recall = false
	h.draft = ""
	h.pos = len(h.lines)
}

// Len returns the number of recorded lines.
func (h *History) Len() int {
	return len(h.lines)
}
