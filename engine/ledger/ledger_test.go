package ledger

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

func testCatalog() *state.Catalog {
	return state.NewCatalog(types.CampusDef{Title: "Test Campus", XPCap: 200}, []types.Quest{
		{ID: "q1", Title: "📚 Find the Library", Type: types.QuestLocation, Reward: 40, Code: "LIB123"},
		{ID: "q2", Title: "Book a Study Room", Type: types.QuestLocation, Reward: 40, Code: "STUDY456"},
		{ID: "q3", Title: "Meet Your Advisor", Type: types.QuestJournal, Reward: 60},
		{ID: "q6", Title: "Yearbook Entry", Type: types.QuestFinal, Reward: 80},
	})
}

func completionFor(id string, xp int) types.Completion {
	return types.Completion{Event: types.CompletionEvent{QuestID: id, RewardXP: xp}}
}

func TestCommit_AddsXPAndLogs(t *testing.T) {
	cat := testCatalog()
	p, events := Commit(cat, state.NewProgress(), completionFor("q1", 40), Options{})

	if p.XP != 40 {
		t.Errorf("xp = %d, want 40", p.XP)
	}
	if !slices.Equal(p.Completed, []string{"q1"}) {
		t.Errorf("completed = %v", p.Completed)
	}
	want := "Completed quest: 📚 Find the Library (+40 XP)"
	if len(p.ActivityLog) != 1 || p.ActivityLog[0] != want {
		t.Errorf("activity = %v, want [%q]", p.ActivityLog, want)
	}
	if len(events) != 1 || events[0].Type != "quest_completed" {
		t.Errorf("events = %+v", events)
	}
}

func TestCommit_DoesNotMutateInput(t *testing.T) {
	cat := testCatalog()
	before := state.NewProgress()
	Commit(cat, before, completionFor("q1", 40), Options{})
	if before.XP != 0 || len(before.Completed) != 0 || len(before.ActivityLog) != 0 {
		t.Errorf("input progress changed: %+v", before)
	}
}

func TestCommit_Idempotent(t *testing.T) {
	cat := testCatalog()
	c := completionFor("q3", 60)
	c.Journal = &types.JournalEntry{ID: "j_1", QuestID: "q3", Text: "hi", CreatedAt: time.Now()}

	once, _ := Commit(cat, state.NewProgress(), c, Options{})
	twice, events := Commit(cat, once, c, Options{})

	if twice.XP != once.XP {
		t.Errorf("xp changed on recommit: %d -> %d", once.XP, twice.XP)
	}
	if !slices.Equal(twice.Completed, once.Completed) {
		t.Errorf("completed changed on recommit: %v -> %v", once.Completed, twice.Completed)
	}
	if len(twice.Journal) != 1 {
		t.Errorf("journal entries = %d, want 1", len(twice.Journal))
	}
	if len(twice.ActivityLog) != len(once.ActivityLog) {
		t.Errorf("activity grew on recommit")
	}
	if len(events) != 0 {
		t.Errorf("expected no events on recommit, got %+v", events)
	}
}

func TestCommit_ClearsTracking(t *testing.T) {
	cat := testCatalog()
	p := state.NewProgress()
	p.Tracked = "q2"

	next, events := Commit(cat, p, completionFor("q2", 40), Options{})
	if next.Tracked != "" {
		t.Errorf("tracked = %q, want none", next.Tracked)
	}
	if events[len(events)-1].Type != "tracking_cleared" {
		t.Errorf("last event = %s", events[len(events)-1].Type)
	}
}

func TestCommit_ClearsTrackingOnIdempotentPath(t *testing.T) {
	cat := testCatalog()
	p := state.NewProgress()
	p.Completed = []string{"q2"}
	p.XP = 40
	p.Tracked = "q2"

	next, _ := Commit(cat, p, completionFor("q2", 40), Options{})
	if next.Tracked != "" {
		t.Errorf("tracked = %q, want none", next.Tracked)
	}
	if next.XP != 40 {
		t.Errorf("xp = %d, want unchanged 40", next.XP)
	}
}

func TestCommit_KeepsOtherTrackedQuest(t *testing.T) {
	cat := testCatalog()
	p := state.NewProgress()
	p.Tracked = "q2"
	next, _ := Commit(cat, p, completionFor("q1", 40), Options{})
	if next.Tracked != "q2" {
		t.Errorf("tracked = %q, want q2", next.Tracked)
	}
}

func TestCommit_MemoryLines(t *testing.T) {
	cat := testCatalog()
	c := completionFor("q6", 80)
	c.Memory = &types.MemoryEntry{ID: "m_1", QuestID: "q6", Caption: "me", IsYearbook: true}

	p, events := Commit(cat, state.NewProgress(), c, Options{})
	want := []string{
		"Captured a memory for: Yearbook Entry (Yearbook entry)",
		"Completed quest: Yearbook Entry (+80 XP)",
	}
	if !slices.Equal(p.ActivityLog, want) {
		t.Errorf("activity = %v, want %v", p.ActivityLog, want)
	}
	if len(p.Memories) != 1 || !p.Memories[0].IsYearbook {
		t.Errorf("memories = %+v", p.Memories)
	}
	if events[0].Type != "memory_added" {
		t.Errorf("first event = %s", events[0].Type)
	}
}

func TestCommit_ActivityBounded(t *testing.T) {
	cat := testCatalog()
	p := state.NewProgress()
	for i := 0; i < 10; i++ {
		p.ActivityLog = append(p.ActivityLog, fmt.Sprintf("old %d", i))
	}
	next, _ := Commit(cat, p, completionFor("q1", 40), Options{ActivityCapacity: 5})
	if len(next.ActivityLog) != 5 {
		t.Fatalf("activity len = %d, want 5", len(next.ActivityLog))
	}
	if next.ActivityLog[0] != "old 6" {
		t.Errorf("oldest = %q, want old 6", next.ActivityLog[0])
	}
}

func TestSummarize(t *testing.T) {
	cat := testCatalog()
	p := state.NewProgress()
	for _, c := range []types.Completion{completionFor("q1", 40), completionFor("q6", 80)} {
		p, _ = Commit(cat, p, c, Options{})
	}

	s := Summarize(cat, p, 0)
	if s.XP != 120 || s.XPCap != 200 {
		t.Errorf("xp = %d/%d", s.XP, s.XPCap)
	}
	if s.XPBarPercent != 60 {
		t.Errorf("xp bar = %d, want 60", s.XPBarPercent)
	}
	if s.CompletionPercent != 50 {
		t.Errorf("completion = %d, want 50", s.CompletionPercent)
	}
	if s.CompletedCount != 2 || s.TotalCount != 4 {
		t.Errorf("counts = %d/%d", s.CompletedCount, s.TotalCount)
	}
	if len(s.Badges) != 2 || s.Badges[0].Label != "📚 Badge" || s.Badges[1].Label != MilestoneBadge {
		t.Errorf("badges = %+v", s.Badges)
	}
	if !s.Badges[1].Milestone {
		t.Error("final badge should be a milestone")
	}
	if s.RecentActivity[0] != "Completed quest: Yearbook Entry (+80 XP)" {
		t.Errorf("most recent = %q", s.RecentActivity[0])
	}
}

func TestSummarize_Rounding(t *testing.T) {
	quests := []types.Quest{}
	for i := 0; i < 3; i++ {
		quests = append(quests, types.Quest{ID: fmt.Sprintf("q%d", i), Title: "Q", Type: types.QuestJournal, Reward: 1})
	}
	cat := state.NewCatalog(types.CampusDef{}, quests)

	tests := []struct {
		done []string
		xp   int
		pct  int
		bar  int
	}{
		{nil, 0, 0, 0},
		{[]string{"q0"}, 1, 33, 1},
		{[]string{"q0", "q1"}, 199, 67, 100},
		{[]string{"q0", "q1", "q2"}, 500, 100, 100},
	}
	for _, tt := range tests {
		p := state.NewProgress()
		p.Completed = append(p.Completed, tt.done...)
		p.XP = tt.xp
		s := Summarize(cat, p, 0)
		if s.CompletionPercent != tt.pct {
			t.Errorf("%v: completion = %d, want %d", tt.done, s.CompletionPercent, tt.pct)
		}
		if s.XPBarPercent != tt.bar {
			t.Errorf("xp %d: bar = %d, want %d", tt.xp, s.XPBarPercent, tt.bar)
		}
	}
}

func TestSummarize_EmptyCatalog(t *testing.T) {
	s := Summarize(state.NewCatalog(types.CampusDef{}, nil), state.NewProgress(), 0)
	if s.CompletionPercent != 0 || s.TotalCount != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s.Badges == nil || s.RecentActivity == nil {
		t.Error("views should be empty, not nil")
	}
}

func TestSummarize_RecentLimit(t *testing.T) {
	p := state.NewProgress()
	for i := 0; i < 9; i++ {
		p.ActivityLog = append(p.ActivityLog, fmt.Sprintf("e%d", i))
	}
	got := Summarize(testCatalog(), p, 0).RecentActivity
	want := []string{"e8", "e7", "e6", "e5", "e4", "e3"}
	if !slices.Equal(got, want) {
		t.Errorf("recent = %v, want %v", got, want)
	}
}
