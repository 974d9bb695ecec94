// Package resolve maps quest references typed by the user to quest IDs.
package resolve

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/nathoo/questroux/engine/state"
)

// AmbiguityError indicates multiple quests matched a reference.
type AmbiguityError struct {
	Ref        string
	Candidates []string
}

func (e *AmbiguityError) Error() string {
	names := strings.Join(e.Candidates, ", ")
	return fmt.Sprintf("which %s? (%s)", e.Ref, names)
}

// NotFoundError indicates no quest matched a reference.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no quest matches %q", e.Ref)
}

// Resolve maps a reference to a quest ID. It tries, in order: the exact
// ID, the ID ignoring case, the full title or location, and finally a
// single word of the title.
func Resolve(cat *state.Catalog, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &NotFoundError{Ref: ref}
	}

	// 1. Exact quest ID match.
	if _, ok := cat.Quest(ref); ok {
		return ref, nil
	}

	refLower := strings.ToLower(ref)

	// 2. Quest ID, case-insensitive.
	for _, q := range cat.Quests {
		if strings.ToLower(q.ID) == refLower {
			return q.ID, nil
		}
	}

	// 3. Whole title or location.
	var matches []string
	for _, q := range cat.Quests {
		if normalize(q.Title) == refLower || strings.ToLower(q.Location) == refLower {
			matches = append(matches, q.ID)
		}
	}
	if len(matches) > 0 {
		return pick(ref, matches)
	}

	// 4. Word-based partial match: "library" matches "📚 Find the Library".
	for _, q := range cat.Quests {
		if slices.Contains(strings.Fields(normalize(q.Title)), refLower) {
			matches = append(matches, q.ID)
		}
	}
	return pick(ref, matches)
}

func pick(ref string, matches []string) (string, error) {
	switch len(matches) {
	case 0:
		return "", &NotFoundError{Ref: ref}
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguityError{Ref: ref, Candidates: matches}
	}
}

// normalize lower-cases a title and strips any leading emoji or
// punctuation.
func normalize(title string) string {
	title = strings.TrimLeftFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(strings.TrimSpace(title))
}
