// Package rules implements quest eligibility: the prerequisite conditions a
// quest derives from its catalog entry and the status they produce.
package rules

import (
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// Conditions expands a quest's prerequisites into individual checks:
// the XP floor first (when non-zero), then each required quest in order.
func Conditions(q types.Quest) []types.Condition {
	var conds []types.Condition
	if q.Requires.MinXP > 0 {
		conds = append(conds, types.Condition{Type: "min_xp", MinXP: q.Requires.MinXP})
	}
	for _, id := range q.Requires.RequiredQuests {
		conds = append(conds, types.Condition{Type: "quest_completed", QuestID: id})
	}
	return conds
}

// EvalCondition evaluates a single condition against progress.
func EvalCondition(c types.Condition, p types.Progress) bool {
	switch c.Type {
	case "min_xp":
		return p.XP >= c.MinXP
	case "quest_completed":
		return state.IsCompleted(p, c.QuestID)
	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, p types.Progress) bool {
	for _, c := range conditions {
		if !EvalCondition(c, p) {
			return false
		}
	}
	return true
}
