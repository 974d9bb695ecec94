// Package types defines the shared data structures for the QuestRouX engine.
// This package contains only type definitions, no logic.
package types

import "time"

// QuestType selects the completion protocol for a quest.
type QuestType string

const (
	QuestLocation QuestType = "location"
	QuestJournal  QuestType = "journal"
	QuestPhoto    QuestType = "photo"
	QuestFinal    QuestType = "final"
)

// Status is the computed eligibility of a quest.
type Status string

const (
	StatusLocked    Status = "Locked"
	StatusAvailable Status = "Available"
	StatusCompleted Status = "Completed"
)

// Prerequisites gate a quest behind an XP floor and earlier completions.
type Prerequisites struct {
	MinXP          int
	RequiredQuests []string
}

// Quest is an immutable catalog entry.
type Quest struct {
	ID          string
	Title       string
	Description string
	Location    string
	Type        QuestType
	Reward      int
	Code        string // location quests only
	Requires    Prerequisites
}

// CampusDef holds catalog metadata from Lua.
type CampusDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
	XPCap   int
}

// Condition is a single prerequisite check derived from a quest.
type Condition struct {
	Type    string // "min_xp", "quest_completed"
	MinXP   int
	QuestID string
}

// JournalEntry is a free-text reflection attached to a journal quest.
type JournalEntry struct {
	ID        string
	QuestID   string
	Text      string
	CreatedAt time.Time
}

// MemoryEntry is a captioned photo attached to a photo or final quest.
type MemoryEntry struct {
	ID           string
	QuestID      string
	Caption      string
	ImageRef     string
	CreatedAt    time.Time
	IsYearbook   bool
	YearbookText string
}

// Friend is a locally recorded friend request.
type Friend struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Progress is the complete mutable player state.
type Progress struct {
	XP          int
	Completed   []string // completion order, no duplicates
	Tracked     string   // empty when nothing is tracked
	Journal     []JournalEntry
	Memories    []MemoryEntry
	Friends     []Friend
	ActivityLog []string // oldest first
}

// CompletionEvent is emitted once per successful completion protocol.
type CompletionEvent struct {
	QuestID  string
	RewardXP int
}

// Completion is everything a validated submission asks the ledger to commit.
type Completion struct {
	Event   CompletionEvent
	Journal *JournalEntry
	Memory  *MemoryEntry
}

// Event is emitted after the ledger or tracker changes progress.
type Event struct {
	Type string
	Data map[string]any
}

// QuestList partitions the catalog by status, each in catalog order.
type QuestList struct {
	Available []Quest
	Completed []Quest
	Locked    []Quest
}

// Badge is a derived token for one completed quest.
type Badge struct {
	QuestID   string
	Label     string
	Milestone bool
}

// Summary is the derived progress view.
type Summary struct {
	XP                int
	XPCap             int
	XPBarPercent      int
	CompletedCount    int
	TotalCount        int
	CompletionPercent int
	Badges            []Badge
	RecentActivity    []string // most recent first
}

// Position is a sampled device location.
type Position struct {
	Lat float64
	Lon float64
}

// Action is something the user may do from a quest detail view.
type Action string

const (
	ActionScan    Action = "scan"
	ActionCode    Action = "code"
	ActionJournal Action = "journal"
	ActionPhoto   Action = "photo"
	ActionFinal   Action = "final"
	ActionTrack   Action = "track"
	ActionUntrack Action = "untrack"
)

// QuestDetail is a snapshot of one quest for display.
type QuestDetail struct {
	Quest       Quest
	Status      Status
	Tracked     bool
	TypeLabel   string
	Hint        string
	LockReasons []string
	Missing     []string // what is still unmet, for locked quests
	Actions     []Action
	Message     string // set for locked and completed quests
}

// MapLocation groups the quests found at one campus location.
type MapLocation struct {
	Name     string
	QuestIDs []string
	Icons    []string
	Visited  bool // any quest here is completed
	Tracked  bool // the tracked quest is here
}

// JournalItem is a journal entry joined with its quest title.
type JournalItem struct {
	Entry      JournalEntry
	QuestTitle string
}

// MemoryItem is a memory joined with its quest title.
type MemoryItem struct {
	Entry      MemoryEntry
	QuestTitle string
}

// Recommendation is the helper's suggested next quest.
type Recommendation struct {
	Quest  Quest
	Reason string
}

// SearchHit is a fuzzy match against the catalog.
type SearchHit struct {
	Quest  Quest
	Status Status
	Score  int
}

// PositionReport is the outcome of a best-effort position sample.
type PositionReport struct {
	Position Position
	OK       bool
	Text     string
}

// Command is a parsed player command.
type Command struct {
	Verb  string
	Quest string // quest reference, lower-cased
	Text  string // remaining input, original case
}

// Result is the rendered outcome of one command.
type Result struct {
	Output []string
	Events []Event
	Err    error
}
