// Package state manages the quest catalog and the mutable progress record.
// Progress values are copied on write so callers can thread them through
// pure functions and swap the result in place.
package state

import (
	"slices"

	"github.com/nathoo/questroux/types"
)

// DefaultXPCap is the XP bar ceiling used when a catalog does not set one.
const DefaultXPCap = 200

// Catalog holds the immutable quest definitions loaded from Lua.
type Catalog struct {
	Campus types.CampusDef
	Quests []types.Quest // catalog order
	index  map[string]int
}

// NewCatalog indexes quests by ID. Quests keep the given order.
func NewCatalog(campus types.CampusDef, quests []types.Quest) *Catalog {
	if campus.XPCap <= 0 {
		campus.XPCap = DefaultXPCap
	}
	c := &Catalog{
		Campus: campus,
		Quests: slices.Clone(quests),
		index:  make(map[string]int, len(quests)),
	}
	for i, q := range c.Quests {
		c.index[q.ID] = i
	}
	return c
}

// Quest returns the quest with the given ID.
func (c *Catalog) Quest(id string) (types.Quest, bool) {
	i, ok := c.index[id]
	if !ok {
		return types.Quest{}, false
	}
	return c.Quests[i], true
}

// Len returns the number of quests in the catalog.
func (c *Catalog) Len() int {
	return len(c.Quests)
}

// Title returns the quest title, or the ID when the quest is unknown.
func (c *Catalog) Title(id string) string {
	if q, ok := c.Quest(id); ok {
		return q.Title
	}
	return id
}

// NewProgress creates an empty progress record.
func NewProgress() types.Progress {
	return types.Progress{
		Completed:   []string{},
		Journal:     []types.JournalEntry{},
		Memories:    []types.MemoryEntry{},
		Friends:     []types.Friend{},
		ActivityLog: []string{},
	}
}

// IsCompleted returns true if the quest has been completed.
func IsCompleted(p types.Progress, questID string) bool {
	return slices.Contains(p.Completed, questID)
}

// IsTracked returns true if the quest is the tracked quest.
func IsTracked(p types.Progress, questID string) bool {
	return p.Tracked != "" && p.Tracked == questID
}

// Clone returns a deep copy of p. Entries are values, so copying the
// slices is enough.
func Clone(p types.Progress) types.Progress {
	return types.Progress{
		XP:          p.XP,
		Completed:   cloneOrEmpty(p.Completed),
		Tracked:     p.Tracked,
		Journal:     cloneOrEmpty(p.Journal),
		Memories:    cloneOrEmpty(p.Memories),
		Friends:     cloneOrEmpty(p.Friends),
		ActivityLog: cloneOrEmpty(p.ActivityLog),
	}
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
