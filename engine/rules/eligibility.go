package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// Status computes a quest's status. Completion is sticky: a completed quest
// stays Completed even if its prerequisites would no longer hold.
func Status(q types.Quest, p types.Progress) types.Status {
	if state.IsCompleted(p, q.ID) {
		return types.StatusCompleted
	}
	if IsLocked(q, p) {
		return types.StatusLocked
	}
	return types.StatusAvailable
}

// IsLocked reports whether any prerequisite is unmet, ignoring completion.
func IsLocked(q types.Quest, p types.Progress) bool {
	return !EvalAllConditions(Conditions(q), p)
}

// Partition recomputes every quest's status and groups the catalog.
func Partition(cat *state.Catalog, p types.Progress) types.QuestList {
	list := types.QuestList{
		Available: []types.Quest{},
		Completed: []types.Quest{},
		Locked:    []types.Quest{},
	}
	for _, q := range cat.Quests {
		switch Status(q, p) {
		case types.StatusCompleted:
			list.Completed = append(list.Completed, q)
		case types.StatusLocked:
			list.Locked = append(list.Locked, q)
		default:
			list.Available = append(list.Available, q)
		}
	}
	return list
}

// Requirements describes a quest's prerequisites for a locked card:
// "Requires at least N XP." and "Complete: <titles> first.". Required
// quests are listed whether or not they are done, matching the static
// card text.
func Requirements(cat *state.Catalog, q types.Quest) []string {
	var lines []string
	if q.Requires.MinXP > 0 {
		lines = append(lines, fmt.Sprintf("Requires at least %d XP.", q.Requires.MinXP))
	}
	if len(q.Requires.RequiredQuests) > 0 {
		titles := make([]string, 0, len(q.Requires.RequiredQuests))
		for _, id := range q.Requires.RequiredQuests {
			titles = append(titles, cat.Title(id))
		}
		lines = append(lines, fmt.Sprintf("Complete: %s first.", strings.Join(titles, ", ")))
	}
	return lines
}

// Unmet returns only the failing conditions for q.
func Unmet(q types.Quest, p types.Progress) []types.Condition {
	var out []types.Condition
	for _, c := range Conditions(q) {
		if !EvalCondition(c, p) {
			out = append(out, c)
		}
	}
	return out
}
