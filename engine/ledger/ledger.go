// Package ledger is the only place completions mutate progress.
// Commit is a pure function: it takes a progress value and returns the
// updated copy along with the events it emitted.
package ledger

import (
	"fmt"
	"strings"

	"github.com/nathoo/questroux/engine/activity"
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// DefaultRecent is how many activity lines the summary shows.
const DefaultRecent = 6

// MilestoneBadge is the badge label for final quests.
const MilestoneBadge = "Yearbook Milestone"

// Options tune a commit.
type Options struct {
	ActivityCapacity int
}

// Commit applies a completion to p. A quest that is already completed is
// left untouched apart from the tracking check.
func Commit(cat *state.Catalog, p types.Progress, c types.Completion, opts Options) (types.Progress, []types.Event) {
	var events []types.Event
	next := state.Clone(p)
	id := c.Event.QuestID
	title := cat.Title(id)

	if !state.IsCompleted(next, id) {
		log := activity.Restore(next.ActivityLog, opts.ActivityCapacity)

		if c.Journal != nil {
			next.Journal = append(next.Journal, *c.Journal)
			log.Push("Added journal entry for: " + title)
			events = append(events, types.Event{
				Type: "journal_added",
				Data: map[string]any{"quest": id, "entry": c.Journal.ID},
			})
		}
		if c.Memory != nil {
			next.Memories = append(next.Memories, *c.Memory)
			line := "Captured a memory for: " + title
			if c.Memory.IsYearbook {
				line += " (Yearbook entry)"
			}
			log.Push(line)
			events = append(events, types.Event{
				Type: "memory_added",
				Data: map[string]any{"quest": id, "entry": c.Memory.ID, "yearbook": c.Memory.IsYearbook},
			})
		}

		reward := c.Event.RewardXP
		if reward < 0 {
			reward = 0
		}
		next.Completed = append(next.Completed, id)
		next.XP += reward
		log.Push(fmt.Sprintf("Completed quest: %s (+%d XP)", title, reward))
		next.ActivityLog = log.Entries()
		events = append(events, types.Event{
			Type: "quest_completed",
			Data: map[string]any{"quest": id, "xp": reward},
		})
	}

	next, cleared := ClearTracking(next, id)
	if cleared {
		events = append(events, types.Event{
			Type: "tracking_cleared",
			Data: map[string]any{"quest": id},
		})
	}
	return next, events
}

// ClearTracking drops the tracked quest if it is questID.
func ClearTracking(p types.Progress, questID string) (types.Progress, bool) {
	if !state.IsTracked(p, questID) {
		return p, false
	}
	p.Tracked = ""
	return p, true
}

// Summarize derives the progress view. recent <= 0 uses DefaultRecent.
func Summarize(cat *state.Catalog, p types.Progress, recent int) types.Summary {
	if recent <= 0 {
		recent = DefaultRecent
	}
	xpCap := cat.Campus.XPCap
	if xpCap <= 0 {
		xpCap = state.DefaultXPCap
	}
	done := 0
	for _, q := range cat.Quests {
		if state.IsCompleted(p, q.ID) {
			done++
		}
	}
	return types.Summary{
		XP:                p.XP,
		XPCap:             xpCap,
		XPBarPercent:      min(100, percent(p.XP, xpCap)),
		CompletedCount:    done,
		TotalCount:        cat.Len(),
		CompletionPercent: percent(done, cat.Len()),
		Badges:            Badges(cat, p),
		RecentActivity:    activity.Restore(p.ActivityLog, len(p.ActivityLog)).Recent(recent),
	}
}

// Badges returns one badge per completed quest in catalog order.
func Badges(cat *state.Catalog, p types.Progress) []types.Badge {
	badges := []types.Badge{}
	for _, q := range cat.Quests {
		if !state.IsCompleted(p, q.ID) {
			continue
		}
		badges = append(badges, BadgeFor(q))
	}
	return badges
}

// BadgeFor derives the badge a completed quest earns.
func BadgeFor(q types.Quest) types.Badge {
	if q.Type == types.QuestFinal {
		return types.Badge{QuestID: q.ID, Label: MilestoneBadge, Milestone: true}
	}
	lead := q.Title
	if fields := strings.Fields(q.Title); len(fields) > 0 {
		lead = fields[0]
	}
	return types.Badge{QuestID: q.ID, Label: lead + " Badge"}
}

// percent rounds 100*n/d half up. Zero when d is zero.
func percent(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (200*n + d) / (2 * d)
}
