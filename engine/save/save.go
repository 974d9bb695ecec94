// Package save implements JSON serialization and deserialization of progress.
package save

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/nathoo/questroux/engine/state"
	"github.com/nathoo/questroux/types"
)

// Version is the snapshot schema written by Save. Snapshots without a
// version field are read as version 0 and merged like any other.
const Version = 1

// SaveData is the JSON-serializable snapshot format.
type SaveData struct {
	Version         int           `json:"version"`
	XP              int           `json:"xp"`
	CompletedQuests []string      `json:"completedQuests"`
	TrackedQuestID  *string       `json:"trackedQuestId"`
	Journals        []JournalData `json:"journals"`
	Memories        []MemoryData  `json:"memories"`
	Friends         []FriendData  `json:"friends"`
	ActivityLog     []string      `json:"activityLog"`
}

// JournalData is a persisted journal entry.
type JournalData struct {
	ID        string    `json:"id"`
	QuestID   string    `json:"questId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// MemoryData is a persisted memory. ImageData holds the storable image
// reference, usually a data URI.
type MemoryData struct {
	ID           string    `json:"id"`
	QuestID      string    `json:"questId"`
	Caption      string    `json:"caption"`
	ImageData    string    `json:"imageData"`
	CreatedAt    time.Time `json:"createdAt"`
	IsYearbook   bool      `json:"isYearbook"`
	YearbookText string    `json:"yearbookText"`
}

// FriendData is a persisted friend request.
type FriendData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Save serializes progress to JSON bytes.
func Save(p types.Progress) ([]byte, error) {
	data := SaveData{
		Version:         Version,
		XP:              p.XP,
		CompletedQuests: nonNil(p.Completed),
		Journals:        make([]JournalData, 0, len(p.Journal)),
		Memories:        make([]MemoryData, 0, len(p.Memories)),
		Friends:         make([]FriendData, 0, len(p.Friends)),
		ActivityLog:     nonNil(p.ActivityLog),
	}
	if p.Tracked != "" {
		tracked := p.Tracked
		data.TrackedQuestID = &tracked
	}
	for _, j := range p.Journal {
		data.Journals = append(data.Journals, JournalData(j))
	}
	for _, m := range p.Memories {
		data.Memories = append(data.Memories, MemoryData{
			ID:           m.ID,
			QuestID:      m.QuestID,
			Caption:      m.Caption,
			ImageData:    m.ImageRef,
			CreatedAt:    m.CreatedAt,
			IsYearbook:   m.IsYearbook,
			YearbookText: m.YearbookText,
		})
	}
	for _, f := range p.Friends {
		data.Friends = append(data.Friends, FriendData(f))
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData. Missing fields keep their
// defaults.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if sd.Version > Version {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", sd.Version, Version)
	}
	// Ensure slices are never nil after load.
	sd.CompletedQuests = nonNil(sd.CompletedQuests)
	sd.ActivityLog = nonNil(sd.ActivityLog)
	sd.Journals = nonNil(sd.Journals)
	sd.Memories = nonNil(sd.Memories)
	sd.Friends = nonNil(sd.Friends)
	return &sd, nil
}

// ToProgress converts loaded data to a progress value, repairing anything
// that would break a progress invariant: negative XP, duplicate
// completions, and a tracked quest that is already completed.
func ToProgress(sd *SaveData) types.Progress {
	p := state.NewProgress()
	p.XP = max(sd.XP, 0)
	for _, id := range sd.CompletedQuests {
		if id != "" && !slices.Contains(p.Completed, id) {
			p.Completed = append(p.Completed, id)
		}
	}
	if sd.TrackedQuestID != nil && !slices.Contains(p.Completed, *sd.TrackedQuestID) {
		p.Tracked = *sd.TrackedQuestID
	}
	for _, j := range sd.Journals {
		p.Journal = append(p.Journal, types.JournalEntry(j))
	}
	for _, m := range sd.Memories {
		p.Memories = append(p.Memories, types.MemoryEntry{
			ID:           m.ID,
			QuestID:      m.QuestID,
			Caption:      m.Caption,
			ImageRef:     m.ImageData,
			CreatedAt:    m.CreatedAt,
			IsYearbook:   m.IsYearbook,
			YearbookText: m.YearbookText,
		})
	}
	for _, f := range sd.Friends {
		p.Friends = append(p.Friends, types.Friend(f))
	}
	p.ActivityLog = append(p.ActivityLog, sd.ActivityLog...)
	return p
}

// Decode is Load followed by ToProgress.
func Decode(data []byte) (types.Progress, error) {
	sd, err := Load(data)
	if err != nil {
		return types.Progress{}, err
	}
	return ToProgress(sd), nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
