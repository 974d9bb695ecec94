package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/questroux/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known quest types.
var validQuestTypes = map[types.QuestType]bool{
	types.QuestLocation: true,
	types.QuestJournal:  true,
	types.QuestPhoto:    true,
	types.QuestFinal:    true,
}

// validate checks the compiled quests for referential integrity and
// consistency. Warnings are returned even when validation succeeds.
func validate(campus types.CampusDef, quests []types.Quest) ([]string, error) {
	ve := &ValidationError{}

	// Campus title required.
	if campus.Title == "" {
		ve.Errors = append(ve.Errors, "Campus.title is required")
	}
	if campus.XPCap < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("Campus.xp_cap must not be negative, got %d", campus.XPCap))
	}
	if len(quests) == 0 {
		ve.Errors = append(ve.Errors, "at least one Quest is required")
	}

	// Unique IDs.
	byID := make(map[string]types.Quest, len(quests))
	for _, q := range quests {
		if q.ID == "" {
			ve.Errors = append(ve.Errors, "quest ID must not be empty")
			continue
		}
		if _, dup := byID[q.ID]; dup {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate quest ID %q", q.ID))
			continue
		}
		byID[q.ID] = q
	}

	totalReward := 0
	for _, q := range quests {
		validateQuest(q, byID, ve)
		if q.Reward > 0 {
			totalReward += q.Reward
		}
	}

	// An XP floor above everything the catalog can award is never met.
	for _, q := range quests {
		if q.Requires.MinXP > totalReward {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"quest %q requires %d XP but the catalog awards at most %d", q.ID, q.Requires.MinXP, totalReward))
		}
	}

	if cycle := findCycle(quests, byID); cycle != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"prerequisite cycle: %s", strings.Join(cycle, " -> ")))
	}

	if len(ve.Errors) > 0 {
		return ve.Warnings, ve
	}
	return ve.Warnings, nil
}

func validateQuest(q types.Quest, byID map[string]types.Quest, ve *ValidationError) {
	if q.Title == "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has no title", q.ID))
	}
	if !validQuestTypes[q.Type] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has unknown type %q", q.ID, q.Type))
	}
	if q.Reward <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q reward must be positive, got %d", q.ID, q.Reward))
	}
	if q.Type == types.QuestLocation && q.Code == "" {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"location quest %q has no code; it can only be completed by scanning", q.ID))
	}
	if q.Code != "" && q.Type != types.QuestLocation {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q has a code but is a %s quest", q.ID, q.Type))
	}
	if q.Requires.MinXP < 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q MinXP must not be negative", q.ID))
	}
	for _, req := range q.Requires.RequiredQuests {
		if req == q.ID {
			ve.Errors = append(ve.Errors, fmt.Sprintf("quest %q requires itself", q.ID))
			continue
		}
		if _, ok := byID[req]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"quest %q requires undefined quest %q", q.ID, req))
		}
	}
}

// findCycle returns the first prerequisite cycle found by depth-first
// search, as a path that starts and ends on the same quest.
func findCycle(quests []types.Quest, byID map[string]types.Quest) []string {
	const (
		unvisited = iota
		visiting
		done
	)
	mark := make(map[string]int, len(byID))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		mark[id] = visiting
		stack = append(stack, id)
		for _, req := range byID[id].Requires.RequiredQuests {
			if req == id {
				continue // reported separately
			}
			if _, ok := byID[req]; !ok {
				continue
			}
			switch mark[req] {
			case visiting:
				for i, s := range stack {
					if s == req {
						cycle := append([]string{}, stack[i:]...)
						return append(cycle, req)
					}
				}
			case unvisited:
				if c := visit(req); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		mark[id] = done
		return nil
	}

	for _, q := range quests {
		if mark[q.ID] == unvisited {
			if c := visit(q.ID); c != nil {
				return c
			}
		}
	}
	return nil
}
