// Package events derives follow-up events from a committed change.
// Handlers run in a single pass over the emitted events; the events they
// produce are not dispatched again.
package events

import (
	"github.com/nathoo/questroux/engine/rules"
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// Change is the progress before and after a commit.
type Change struct {
	Catalog *state.Catalog
	Before  types.Progress
	After   types.Progress
}

// Handler reacts to one event type.
type Handler struct {
	EventType string
	Handle    func(ev types.Event, ch Change) []types.Event
}

// Default is the handler set the engine runs after every completion.
var Default = []Handler{
	{EventType: "quest_completed", Handle: unlocked},
	{EventType: "quest_completed", Handle: xpCapReached},
	{EventType: "memory_added", Handle: yearbookMilestone},
}

// Dispatch runs the matching handlers for each event and returns what
// they produced, in event order then handler order.
func Dispatch(evs []types.Event, ch Change, handlers []Handler) []types.Event {
	var out []types.Event
	for _, ev := range evs {
		for _, h := range handlers {
			if h.EventType != ev.Type || h.Handle == nil {
				continue
			}
			out = append(out, h.Handle(ev, ch)...)
		}
	}
	return out
}

// unlocked reports every quest that was Locked before the change and is
// Available after it.
func unlocked(_ types.Event, ch Change) []types.Event {
	var out []types.Event
	for _, q := range ch.Catalog.Quests {
		if rules.Status(q, ch.Before) != types.StatusLocked {
			continue
		}
		if rules.Status(q, ch.After) == types.StatusAvailable {
			out = append(out, types.Event{
				Type: "quest_unlocked",
				Data: map[string]any{"quest": q.ID},
			})
		}
	}
	return out
}

func xpCapReached(_ types.Event, ch Change) []types.Event {
	xpCap := ch.Catalog.Campus.XPCap
	if xpCap <= 0 || ch.Before.XP >= xpCap || ch.After.XP < xpCap {
		return nil
	}
	return []types.Event{{
		Type: "xp_cap_reached",
		Data: map[string]any{"xp": ch.After.XP, "cap": xpCap},
	}}
}

func yearbookMilestone(ev types.Event, _ Change) []types.Event {
	if yb, _ := ev.Data["yearbook"].(bool); !yb {
		return nil
	}
	return []types.Event{{
		Type: "yearbook_milestone",
		Data: map[string]any{"quest": ev.Data["quest"]},
	}}
}

// Unlocked returns the quest ids named by quest_unlocked events.
func Unlocked(evs []types.Event) []string {
	var ids []string
	for _, ev := range evs {
		if ev.Type != "quest_unlocked" {
			continue
		}
		if id, ok := ev.Data["quest"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
