// Package parser converts command strings into Command structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/questroux/types"
)

var verbAliases = map[string]string{
	// Quest board
	"ls":      "quests",
	"list":    "quests",
	"board":   "quests",
	"q":       "quests",
	"show":    "open",
	"view":    "open",
	"detail":  "open",
	"info":    "open",
	"pin":     "track",
	"untrack": "track",
	"unpin":   "track",

	// Completion
	"enter":    "code",
	"submit":   "code",
	"qr":       "scan",
	"write":    "journal",
	"reflect":  "journal",
	"snap":     "photo",
	"pic":      "photo",
	"picture":  "photo",
	"yearbook": "final",
	"capstone": "final",

	// Views
	"stats":    "progress",
	"status":   "progress",
	"xp":       "progress",
	"badges":   "progress",
	"rewards":  "progress",
	"gps":      "where",
	"locate":   "where",
	"memories": "album",
	"photos":   "album",
	"social":   "friends",
	"add":      "friend",
	"search":   "find",
	"suggest":  "hint",
	"tip":      "hint",
	"helper":   "hint",
}

// questVerbs take a quest reference as their first argument.
var questVerbs = map[string]bool{
	"open":    true,
	"track":   true,
	"code":    true,
	"scan":    true,
	"journal": true,
	"photo":   true,
	"final":   true,
}

// Parse converts a raw command string into a Command. The verb and
// quest reference are lower-cased; free text keeps its case.
func Parse(input string) types.Command {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Command{}
	}

	head, rest := cut(input)
	verb := strings.ToLower(head)

	// Handle multi-word verb phrases before general parsing.
	verb, rest = expandMultiWordVerbs(verb, rest)

	// Apply verb aliases.
	if alias, ok := verbAliases[verb]; ok {
		verb = alias
	}

	cmd := types.Command{Verb: verb}
	if questVerbs[verb] {
		ref, text := cut(rest)
		cmd.Quest = strings.ToLower(ref)
		cmd.Text = text
		return cmd
	}
	cmd.Text = rest
	return cmd
}

// expandMultiWordVerbs handles "add friend", "look for", "where am i" etc.
func expandMultiWordVerbs(verb, rest string) (string, string) {
	next, after := cut(rest)
	next = strings.ToLower(next)

	switch verb {
	case "add", "send":
		if next == "friend" {
			return "friend", after
		}
	case "look":
		if next == "for" {
			return "find", after
		}
		if next == "at" {
			return "open", after
		}
	case "where":
		if strings.EqualFold(rest, "am i") {
			return "where", ""
		}
	case "scan", "enter", "type":
		if next == "code" {
			if verb == "scan" {
				return "scan", after
			}
			return "code", after
		}
	case "what":
		if strings.EqualFold(rest, "next") || strings.EqualFold(rest, "now") {
			return "hint", ""
		}
	}
	return verb, rest
}

// SplitPipe splits "a | b" into its trimmed halves. The second half is
// empty when there is no pipe.
func SplitPipe(s string) (before, after string) {
	before, after, _ = strings.Cut(s, "|")
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

// cut splits off the first whitespace-delimited word.
func cut(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
