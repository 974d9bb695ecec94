package save

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

func TestRoundTrip(t *testing.T) {
	at := time.Date(2025, 9, 1, 12, 30, 0, 0, time.UTC)
	p := state.NewProgress()
	p.XP = 100
	p.Completed = []string{"q1", "q3"}
	p.Tracked = "q2"
	p.Journal = []types.JournalEntry{{ID: "j_1", QuestID: "q3", Text: "Good talk.", CreatedAt: at}}
	p.Memories = []types.MemoryEntry{{ID: "m_1", QuestID: "q6", Caption: "Me", ImageRef: "data:image/png;base64,AA==",
		CreatedAt: at, IsYearbook: true, YearbookText: "Hello"}}
	p.Friends = []types.Friend{{ID: "f_1", Name: "Sam", CreatedAt: at}}
	p.ActivityLog = []string{"Completed quest: Find the Library (+40 XP)"}

	data, err := Save(p)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.XP != 100 || got.Tracked != "q2" {
		t.Errorf("xp=%d tracked=%q", got.XP, got.Tracked)
	}
	if len(got.Completed) != 2 || got.Completed[1] != "q3" {
		t.Errorf("completed = %v", got.Completed)
	}
	if len(got.Journal) != 1 || !got.Journal[0].CreatedAt.Equal(at) {
		t.Errorf("journal = %+v", got.Journal)
	}
	if len(got.Memories) != 1 || got.Memories[0].ImageRef != p.Memories[0].ImageRef || !got.Memories[0].IsYearbook {
		t.Errorf("memories = %+v", got.Memories)
	}
	if len(got.Friends) != 1 || got.Friends[0].Name != "Sam" {
		t.Errorf("friends = %+v", got.Friends)
	}
	if len(got.ActivityLog) != 1 {
		t.Errorf("activity = %v", got.ActivityLog)
	}
}

func TestSave_Keys(t *testing.T) {
	data, err := Save(state.NewProgress())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"version", "xp", "completedQuests", "trackedQuestId", "journals", "memories", "friends", "activityLog"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if raw["trackedQuestId"] != nil {
		t.Errorf("trackedQuestId = %v, want null", raw["trackedQuestId"])
	}
	if raw["version"] != float64(Version) {
		t.Errorf("version = %v", raw["version"])
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	// Legacy snapshot: no version, most fields missing.
	p, err := Decode([]byte(`{"xp": 40, "completedQuests": ["q1"]}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p.XP != 40 || len(p.Completed) != 1 {
		t.Errorf("progress = %+v", p)
	}
	if p.Journal == nil || p.Memories == nil || p.Friends == nil || p.ActivityLog == nil {
		t.Error("missing lists should default to empty, not nil")
	}
	if p.Tracked != "" {
		t.Errorf("tracked = %q", p.Tracked)
	}
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	if _, err := Decode([]byte(`{"xp": 1, "theme": "dark"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_RejectsNewerVersion(t *testing.T) {
	_, err := Load([]byte(`{"version": 2}`))
	if err == nil || !strings.Contains(err.Error(), "newer") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load([]byte(`{not json`)); err == nil {
		t.Fatal("expected error")
	}
}

func TestToProgress_Repairs(t *testing.T) {
	tracked := "q1"
	sd := &SaveData{
		XP:              -5,
		CompletedQuests: []string{"q1", "q1", "", "q2"},
		TrackedQuestID:  &tracked,
	}
	p := ToProgress(sd)
	if p.XP != 0 {
		t.Errorf("xp = %d, want 0", p.XP)
	}
	if len(p.Completed) != 2 {
		t.Errorf("completed = %v, want deduplicated", p.Completed)
	}
	if p.Tracked != "" {
		t.Errorf("tracked = %q, completed quest should not stay tracked", p.Tracked)
	}
}
