package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/engine/rules"
	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
	"github.com/sahilm/fuzzy"
)

// SampleFriends are shown after the user's own friend requests.
var SampleFriends = []string{"Alex (Level 2 Explorer)", "Priya (New to campus)"}

// recommendFinalXP is the XP at which the helper starts pointing at the
// final quest.
const recommendFinalXP = 120

var typeLabels = map[types.QuestType]string{
	types.QuestLocation: "Location quest",
	types.QuestJournal:  "Journal quest",
	types.QuestPhoto:    "Photo quest",
	types.QuestFinal:    "Final yearbook quest",
}

var typeHints = map[types.QuestType]string{
	types.QuestLocation: "Tip: In a full version, this quest would use real GPS and QR codes posted at the location.",
	types.QuestJournal:  "Tip: Journaling helps you process new experiences and remember important information.",
	types.QuestPhoto:    "Tip: Capturing spaces you like can help you feel more at home on campus.",
	types.QuestFinal:    "Tip: The yearbook quest marks a milestone moment in your journey.",
}

var typeIcons = map[types.QuestType]string{
	types.QuestLocation: "📍",
	types.QuestJournal:  "📝",
	types.QuestPhoto:    "📸",
	types.QuestFinal:    "⭐",
}

var typeReasons = map[types.QuestType]string{
	types.QuestLocation: "This is a location quest to help you explore the campus physically.",
	types.QuestJournal:  "This is a journal quest to help you reflect on your experience.",
	types.QuestPhoto:    "This is a photo quest to capture a memorable spot.",
	types.QuestFinal:    "This is a final yearbook quest to mark a milestone in your journey.",
}

// TypeLabel returns the display label for a quest type.
func TypeLabel(t types.QuestType) string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

// TypeIcon returns the map icon for a quest type.
func TypeIcon(t types.QuestType) string {
	if i, ok := typeIcons[t]; ok {
		return i
	}
	return "⭐"
}

// OpenQuest returns a detail snapshot with the actions allowed right now.
func (e *Engine) OpenQuest(questID string) (types.QuestDetail, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, ok := e.cat.Quest(questID)
	if !ok {
		return types.QuestDetail{}, unknownQuest(questID)
	}
	d := types.QuestDetail{
		Quest:       q,
		Status:      rules.Status(q, e.progress),
		Tracked:     state.IsTracked(e.progress, q.ID),
		TypeLabel:   TypeLabel(q.Type),
		Hint:        typeHints[q.Type],
		LockReasons: rules.Requirements(e.cat, q),
		Actions:     []types.Action{},
	}
	switch d.Status {
	case types.StatusLocked:
		d.Missing = e.missingLocked(q)
		d.Message = "This quest is locked. Complete the prerequisites first."
		return d, nil
	case types.StatusCompleted:
		d.Message = "This quest is already completed."
		return d, nil
	}

	switch q.Type {
	case types.QuestLocation:
		d.Actions = append(d.Actions, types.ActionScan, types.ActionCode)
	case types.QuestJournal:
		d.Actions = append(d.Actions, types.ActionJournal)
	case types.QuestPhoto:
		d.Actions = append(d.Actions, types.ActionPhoto)
	case types.QuestFinal:
		d.Actions = append(d.Actions, types.ActionFinal)
	}
	if d.Tracked {
		d.Actions = append(d.Actions, types.ActionUntrack)
	} else {
		d.Actions = append(d.Actions, types.ActionTrack)
	}
	return d, nil
}

// missingLocked describes the prerequisites q still lacks. Callers hold e.mu.
func (e *Engine) missingLocked(q types.Quest) []string {
	var out, titles []string
	for _, c := range rules.Unmet(q, e.progress) {
		switch c.Type {
		case "min_xp":
			out = append(out, fmt.Sprintf("You need %d more XP.", c.MinXP-e.progress.XP))
		case "quest_completed":
			titles = append(titles, e.cat.Title(c.QuestID))
		}
	}
	if len(titles) > 0 {
		out = append(out, "Still to complete: "+strings.Join(titles, ", ")+".")
	}
	return out
}

// MapLocations lists the distinct quest locations in catalog order.
func (e *Engine) MapLocations() []types.MapLocation {
	e.mu.Lock()
	defer e.mu.Unlock()

	trackedAt := ""
	if q, ok := e.cat.Quest(e.progress.Tracked); ok {
		trackedAt = q.Location
	}
	locs := []types.MapLocation{}
	index := map[string]int{}
	for _, q := range e.cat.Quests {
		i, seen := index[q.Location]
		if !seen {
			i = len(locs)
			index[q.Location] = i
			locs = append(locs, types.MapLocation{
				Name:     q.Location,
				QuestIDs: []string{},
				Icons:    []string{},
				Tracked:  trackedAt != "" && trackedAt == q.Location,
			})
		}
		loc := &locs[i]
		loc.QuestIDs = append(loc.QuestIDs, q.ID)
		loc.Icons = append(loc.Icons, TypeIcon(q.Type))
		if state.IsCompleted(e.progress, q.ID) {
			loc.Visited = true
		}
	}
	return locs
}

// QuestsAt returns the quests at a location. Matching ignores case.
func (e *Engine) QuestsAt(location string) []types.Quest {
	out := []types.Quest{}
	for _, q := range e.cat.Quests {
		if strings.EqualFold(q.Location, strings.TrimSpace(location)) {
			out = append(out, q)
		}
	}
	return out
}

// CurrentPosition samples the locator. It never fails: problems are
// reported in the returned text.
func (e *Engine) CurrentPosition(ctx context.Context) types.PositionReport {
	if e.locator == nil {
		return types.PositionReport{Text: "GPS not supported on this device."}
	}
	pos, err := e.locator.CurrentPosition(ctx)
	if err != nil {
		e.logger.Warn("position unavailable", "err", err)
		return types.PositionReport{Text: "Could not read GPS: " + err.Error()}
	}
	return types.PositionReport{
		Position: pos,
		OK:       true,
		Text:     fmt.Sprintf("Your location: %.5f, %.5f", pos.Lat, pos.Lon),
	}
}

// JournalFeed returns journal entries newest first.
func (e *Engine) JournalFeed() []types.JournalItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]types.JournalItem, 0, len(e.progress.Journal))
	for _, j := range e.progress.Journal {
		items = append(items, types.JournalItem{Entry: j, QuestTitle: e.titleOr(j.QuestID, "Unknown quest")})
	}
	slices.SortStableFunc(items, func(a, b types.JournalItem) int {
		return b.Entry.CreatedAt.Compare(a.Entry.CreatedAt)
	})
	return items
}

// MemoryAlbum returns memories newest first.
func (e *Engine) MemoryAlbum() []types.MemoryItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]types.MemoryItem, 0, len(e.progress.Memories))
	for _, m := range e.progress.Memories {
		items = append(items, types.MemoryItem{Entry: m, QuestTitle: e.titleOr(m.QuestID, "Quest memory")})
	}
	slices.SortStableFunc(items, func(a, b types.MemoryItem) int {
		return b.Entry.CreatedAt.Compare(a.Entry.CreatedAt)
	})
	return items
}

// Friends returns recorded friend requests, newest first.
func (e *Engine) Friends() []types.Friend {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := slices.Clone(e.progress.Friends)
	slices.SortStableFunc(out, func(a, b types.Friend) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		out = []types.Friend{}
	}
	return out
}

// AddFriend records a friend request and persists it.
func (e *Engine) AddFriend(ctx context.Context, name string) (types.Friend, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Friend{}, e.reject(questerr.New(questerr.MissingInput, "", "Please enter a name."))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := types.Friend{ID: "f_" + e.newID(), Name: name, CreatedAt: e.now()}
	next := state.Clone(e.progress)
	next.Friends = append(next.Friends, f)
	e.progress = next
	e.logger.Info("friend added", "id", f.ID)
	e.notify(fmt.Sprintf("Friend request sent to %s 🎉", name))

	if err := e.persistLocked(ctx); err != nil {
		return f, err
	}
	return f, nil
}

// Recommend picks the next quest to suggest. ok is false when nothing is
// available.
func (e *Engine) Recommend() (types.Recommendation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	available := rules.Partition(e.cat, e.progress).Available
	if len(available) == 0 {
		return types.Recommendation{}, false
	}
	done := map[types.QuestType]int{}
	for _, q := range e.cat.Quests {
		if state.IsCompleted(e.progress, q.ID) {
			done[q.Type]++
		}
	}

	pick := available[0]
	loc := done[types.QuestLocation]
	if loc > done[types.QuestJournal] && loc > done[types.QuestPhoto] {
		if i := slices.IndexFunc(available, func(q types.Quest) bool {
			return q.Type == types.QuestJournal || q.Type == types.QuestPhoto
		}); i >= 0 {
			pick = available[i]
		}
	} else if e.progress.XP >= recommendFinalXP {
		if i := slices.IndexFunc(available, func(q types.Quest) bool {
			return q.Type == types.QuestFinal
		}); i >= 0 {
			pick = available[i]
		}
	}
	return types.Recommendation{Quest: pick, Reason: typeReasons[pick.Type]}, true
}

// searchSource adapts the catalog to fuzzy.Source.
type searchSource []types.Quest

func (s searchSource) Len() int { return len(s) }

func (s searchSource) String(i int) string {
	return strings.ToLower(s[i].Title + " " + s[i].Location)
}

// Search fuzzy-matches query against quest titles and locations, best
// match first.
func (e *Engine) Search(query string) []types.SearchHit {
	query = strings.ToLower(strings.TrimSpace(query))
	hits := []types.SearchHit{}
	if query == "" {
		return hits
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	src := searchSource(e.cat.Quests)
	for _, m := range fuzzy.FindFrom(query, src) {
		q := src[m.Index]
		hits = append(hits, types.SearchHit{Quest: q, Status: rules.Status(q, e.progress), Score: m.Score})
	}
	return hits
}

func (e *Engine) titleOr(questID, fallback string) string {
	if q, ok := e.cat.Quest(questID); ok {
		return q.Title
	}
	return fallback
}
