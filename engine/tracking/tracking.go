// Package tracking keeps at most one quest pinned.
package tracking

import (
	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/engine/rules"
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// Toggle pins questID, or unpins it when it is already tracked. Pinning
// replaces any previously tracked quest. The returned bool reports whether
// the quest is tracked afterwards.
func Toggle(cat *state.Catalog, p types.Progress, questID string) (types.Progress, bool, error) {
	q, ok := cat.Quest(questID)
	if !ok {
		return p, false, questerr.New(questerr.UnknownQuest, questID, "Quest not found.")
	}
	if st := rules.Status(q, p); st != types.StatusAvailable {
		return p, false, questerr.New(questerr.NotTrackable, questID,
			"You can only track available quests ("+q.Title+" is "+string(st)+").")
	}
	next := state.Clone(p)
	if next.Tracked == questID {
		next.Tracked = ""
		return next, false, nil
	}
	next.Tracked = questID
	return next, true, nil
}

// Tracked returns the tracked quest, if any. A stale reference to a
// completed or unknown quest reads as nothing tracked.
func Tracked(cat *state.Catalog, p types.Progress) (types.Quest, bool) {
	if p.Tracked == "" {
		return types.Quest{}, false
	}
	q, ok := cat.Quest(p.Tracked)
	if !ok || state.IsCompleted(p, q.ID) {
		return types.Quest{}, false
	}
	return q, true
}
