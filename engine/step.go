package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nathoo/questroux/engine/parser"
	"github.com/nathoo/questroux/engine/protocol"
	"github.com/nathoo/questroux/engine/resolve"
	"github.com/nathoo/questroux/types"
)

// Help lists the commands Step understands.
var Help = []string{
	"quests (ls)                       List quests by status",
	"open <quest>                      Show a quest and what you can do",
	"track <quest>                     Track or stop tracking a quest",
	"code <quest> <code>               Enter the code posted at the location",
	"scan <quest>                      Scan the QR code at the location",
	"journal <quest> <text>            Complete a journal quest",
	"journal                           Read your journal",
	"photo <quest> <file> [caption]    Complete a photo quest",
	"final <quest> <file> [caption] | <reflection>",
	"progress (xp)                     XP, badges, and recent activity",
	"map                               Quest locations",
	"where [location]                  Your position, or quests at a location",
	"album                             Your memories",
	"friends / add friend <name>       Friend requests",
	"find <words>                      Search quests",
	"hint (what next)                  Suggest a quest",
}

// Step parses and runs one command. Messages for the user about the
// outcome go to the notifier; Output carries the rendered view.
func (e *Engine) Step(ctx context.Context, input string) types.Result {
	var result types.Result

	cmd := parser.Parse(input)
	if cmd.Verb == "" {
		result.Output = append(result.Output, "What do you want to do? Type help for commands.")
		return result
	}

	switch cmd.Verb {
	case "help":
		result.Output = append(result.Output, Help...)
	case "quests":
		result.Output = e.renderQuestList()
	case "open":
		cmd.Quest = wholeRef(cmd)
		e.withQuest(&result, cmd, "open", func(id string) {
			d, err := e.OpenQuest(id)
			if err != nil {
				result.Err = err
				return
			}
			result.Output = renderDetail(d)
		})
	case "track":
		cmd.Quest = wholeRef(cmd)
		e.withQuest(&result, cmd, "track", func(id string) {
			tr, err := e.ToggleTrack(ctx, id)
			result.Err = err
			if err == nil && tr.Tracked {
				result.Output = append(result.Output, "Tracking: "+tr.Quest.Title)
			}
		})
	case "code":
		e.withQuest(&result, cmd, "code", func(id string) {
			e.complete(ctx, &result, id, protocol.Code{Value: cmd.Text})
		})
	case "scan":
		e.withQuest(&result, cmd, "scan", func(id string) {
			e.complete(ctx, &result, id, protocol.Scan{})
		})
	case "journal":
		if cmd.Quest == "" {
			result.Output = e.renderJournal()
			return result
		}
		e.withQuest(&result, cmd, "journal", func(id string) {
			e.complete(ctx, &result, id, protocol.JournalText{Text: cmd.Text})
		})
	case "photo":
		e.withQuest(&result, cmd, "photo", func(id string) {
			file, caption := splitFile(cmd.Text)
			e.complete(ctx, &result, id, protocol.Photo{Caption: caption, Image: image(file)})
		})
	case "final":
		e.withQuest(&result, cmd, "final", func(id string) {
			head, reflection := parser.SplitPipe(cmd.Text)
			file, caption := splitFile(head)
			e.complete(ctx, &result, id, protocol.Yearbook{Caption: caption, Image: image(file), Reflection: reflection})
		})
	case "progress":
		result.Output = e.renderProgress()
	case "map":
		result.Output = e.renderMap()
	case "where":
		if cmd.Text == "" {
			result.Output = append(result.Output, e.CurrentPosition(ctx).Text)
			return result
		}
		qs := e.QuestsAt(cmd.Text)
		if len(qs) == 0 {
			result.Output = append(result.Output, fmt.Sprintf("No quests at %q.", cmd.Text))
			return result
		}
		for _, q := range qs {
			result.Output = append(result.Output, e.questLine(q))
		}
	case "album":
		result.Output = e.renderAlbum()
	case "friends":
		result.Output = e.renderFriends()
	case "friend":
		_, result.Err = e.AddFriend(ctx, cmd.Text)
	case "find":
		hits := e.Search(cmd.Text)
		if len(hits) == 0 {
			result.Output = append(result.Output, "No matching quests.")
			return result
		}
		for _, h := range hits {
			result.Output = append(result.Output, fmt.Sprintf("  %-4s %s · %s", h.Quest.ID, h.Quest.Title, h.Status))
		}
	case "hint":
		rec, ok := e.Recommend()
		if !ok {
			result.Output = append(result.Output,
				"You've completed all available quests! Nice work. You could revise your journal entries or show your memories to a friend.")
			return result
		}
		result.Output = append(result.Output,
			"Based on what you've completed so far, I recommend:",
			fmt.Sprintf("  %s (%s)", rec.Quest.Title, rec.Quest.ID),
			rec.Reason)
	default:
		result.Output = append(result.Output, fmt.Sprintf("I don't know how to %q. Type help for commands.", cmd.Verb))
	}
	return result
}

// withQuest resolves the quest reference in cmd and runs fn with its ID.
// For open, a reference that matches nothing falls back to the best search
// hit. Other verbs change progress, so they only suggest it.
func (e *Engine) withQuest(result *types.Result, cmd types.Command, verb string, fn func(id string)) {
	if cmd.Quest == "" {
		result.Output = append(result.Output, fmt.Sprintf("Which quest? Try: %s <quest>", verb))
		return
	}
	id, err := resolve.Resolve(e.cat, cmd.Quest)
	var nf *resolve.NotFoundError
	var suggest *types.Quest
	if errors.As(err, &nf) {
		if hits := e.Search(cmd.Quest); len(hits) > 0 {
			if verb == "open" {
				id, err = hits[0].Quest.ID, nil
			} else {
				suggest = &hits[0].Quest
			}
		}
	}
	if err != nil {
		result.Err = err
		result.Output = append(result.Output, capitalize(err.Error())+".")
		if suggest != nil {
			result.Output = append(result.Output, fmt.Sprintf("Did you mean %s? Try: %s %s", suggest.Title, verb, suggest.ID))
		}
		return
	}
	fn(id)
}

func (e *Engine) complete(ctx context.Context, result *types.Result, id string, ev protocol.Evidence) {
	res, err := e.SubmitCompletion(ctx, id, ev)
	result.Err = err
	result.Events = res.Events
	if res.Committed {
		result.Output = append(result.Output, fmt.Sprintf("+%d XP (total %d XP)", res.RewardXP, res.XP))
		for _, id := range res.Unlocked {
			result.Output = append(result.Output, "Unlocked: "+e.cat.Title(id))
		}
	}
}

func (e *Engine) renderQuestList() []string {
	list := e.ListQuests()
	var out []string
	section := func(name string, qs []types.Quest, reasons bool) {
		if len(qs) == 0 {
			return
		}
		out = append(out, name+":")
		for _, q := range qs {
			out = append(out, e.questLine(q))
			if reasons {
				if lines := e.lockReasons(q); lines != "" {
					out = append(out, "       "+lines)
				}
			}
		}
	}
	section("Available", list.Available, false)
	section("Completed", list.Completed, false)
	section("Locked", list.Locked, true)
	if len(out) == 0 {
		out = append(out, "No quests.")
	}
	return out
}

func (e *Engine) questLine(q types.Quest) string {
	line := fmt.Sprintf("  %-4s %s %s · %s · %d XP", q.ID, TypeIcon(q.Type), q.Title, q.Location, q.Reward)
	if tq, ok := e.TrackedQuest(); ok && tq.ID == q.ID {
		line += " [tracked]"
	}
	return line
}

func (e *Engine) lockReasons(q types.Quest) string {
	d, err := e.OpenQuest(q.ID)
	if err != nil {
		return ""
	}
	return strings.Join(d.LockReasons, " ")
}

func renderDetail(d types.QuestDetail) []string {
	q := d.Quest
	out := []string{
		q.Title,
		fmt.Sprintf("%s · %s · Reward: %d XP · %s", d.TypeLabel, q.Location, q.Reward, d.Status),
	}
	if q.Description != "" {
		out = append(out, q.Description)
	}
	if d.Status == types.StatusLocked {
		out = append(out, d.LockReasons...)
		out = append(out, d.Missing...)
	}
	if d.Hint != "" {
		out = append(out, d.Hint)
	}
	if d.Message != "" {
		out = append(out, d.Message)
	}
	if len(d.Actions) > 0 {
		acts := make([]string, len(d.Actions))
		for i, a := range d.Actions {
			acts[i] = string(a)
		}
		out = append(out, "Actions: "+strings.Join(acts, ", "))
	}
	return out
}

func (e *Engine) renderProgress() []string {
	s := e.ProgressSummary()
	out := []string{
		fmt.Sprintf("XP: %d / %d %s %d%%", s.XP, s.XPCap, Bar(s.XPBarPercent, 20), s.XPBarPercent),
		fmt.Sprintf("Quests: %d of %d completed (%d%%)", s.CompletedCount, s.TotalCount, s.CompletionPercent),
	}
	if q, ok := e.TrackedQuest(); ok {
		out = append(out, "Tracking: "+q.Title)
	}
	if len(s.Badges) == 0 {
		out = append(out, "Badges: none yet. Complete quests to earn badges!")
	} else {
		labels := make([]string, len(s.Badges))
		for i, b := range s.Badges {
			labels[i] = b.Label
		}
		out = append(out, "Badges: "+strings.Join(labels, ", "))
	}
	if len(s.RecentActivity) > 0 {
		out = append(out, "Recent activity:")
		for _, line := range s.RecentActivity {
			out = append(out, "  - "+line)
		}
	}
	return out
}

// Bar renders a text progress bar of the given width.
func Bar(percent, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func (e *Engine) renderMap() []string {
	var out []string
	for _, loc := range e.MapLocations() {
		line := fmt.Sprintf("  %s %s (%s)", strings.Join(loc.Icons, ""), loc.Name, strings.Join(loc.QuestIDs, ", "))
		if loc.Visited {
			line += " ✓"
		}
		if loc.Tracked {
			line += " [tracked]"
		}
		out = append(out, line)
	}
	return out
}

func (e *Engine) renderJournal() []string {
	items := e.JournalFeed()
	if len(items) == 0 {
		return []string{"No journal entries yet."}
	}
	var out []string
	for _, it := range items {
		out = append(out,
			fmt.Sprintf("%s · %s", it.QuestTitle, it.Entry.CreatedAt.Format("Jan 2, 2006 3:04 PM")),
			"  "+it.Entry.Text)
	}
	return out
}

func (e *Engine) renderAlbum() []string {
	items := e.MemoryAlbum()
	if len(items) == 0 {
		return []string{"No memories yet. Complete photo quests to fill your album."}
	}
	var out []string
	for _, it := range items {
		line := fmt.Sprintf("%s · %s", it.Entry.Caption, it.QuestTitle)
		if it.Entry.IsYearbook {
			line += " · Yearbook"
		}
		out = append(out, line)
		if it.Entry.YearbookText != "" {
			out = append(out, "  "+it.Entry.YearbookText)
		}
	}
	return out
}

func (e *Engine) renderFriends() []string {
	var out []string
	friends := e.Friends()
	if len(friends) == 0 {
		out = append(out, "No friend requests sent yet. Try adding someone!")
	}
	for _, f := range friends {
		out = append(out, fmt.Sprintf("  %s (request sent)", f.Name))
	}
	for _, name := range SampleFriends {
		out = append(out, "  "+name)
	}
	return out
}

// wholeRef joins the quest reference with any trailing words, for verbs
// that take nothing after the quest.
func wholeRef(cmd types.Command) string {
	if cmd.Text == "" {
		return cmd.Quest
	}
	return cmd.Quest + " " + strings.ToLower(cmd.Text)
}

// splitFile splits "<file> [caption]" at the first space.
func splitFile(s string) (file, caption string) {
	file, caption, _ = strings.Cut(strings.TrimSpace(s), " ")
	return file, strings.TrimSpace(caption)
}

func image(file string) *protocol.Image {
	if file == "" {
		return nil
	}
	return protocol.FileImage(file)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
