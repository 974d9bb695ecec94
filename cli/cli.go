// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the QuestRouX engine.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/questroux/engine"
	"github.com/nathoo/questroux/engine/questerr"
	"github.com/nathoo/questroux/notify"
	"github.com/nathoo/questroux/types"
)

// CLI handles terminal interaction with the student.
type CLI struct {
	Engine    *engine.Engine
	Toasts    *notify.Buffer // engine notifications, printed after each command
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI wired to the given engine. toasts must be the
// buffer the engine notifies into.
func New(eng *engine.Engine, toasts *notify.Buffer) *CLI {
	return &CLI{
		Engine: eng,
		Toasts: toasts,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
}

// Run starts the command loop. It shows the intro and the quest board,
// then loops: prompt → input → dispatch → output.
func (c *CLI) Run(ctx context.Context) {
	campus := c.Engine.Catalog().Campus
	if campus.Title != "" {
		c.printLine(campus.Title)
	}
	if campus.Intro != "" {
		c.printLine(campus.Intro)
		c.printLine("")
	}

	c.printResult(c.Engine.Step(ctx, "quests"))

	scanner := bufio.NewScanner(c.In)
	for {
		if ctx.Err() != nil {
			return
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(ctx, input) {
				return // /quit
			}
			continue
		}

		// "again" / "g" repeats the last command.
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printLine("Nothing to repeat.")
				continue
			}
			input = c.lastCmd
		} else {
			c.lastCmd = input
		}

		result := c.Engine.Step(ctx, input)
		c.printResult(result)

		if c.Trace {
			c.printTrace(result)
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should end.
func (c *CLI) handleMeta(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		if err := c.Engine.Save(ctx); err != nil {
			c.printSystem(fmt.Sprintf("Save failed: %v", err))
		} else {
			c.printSystem("Progress saved.")
		}
		c.printToasts()

	case "/load":
		if err := c.Engine.Load(ctx); err != nil {
			c.printSystem(fmt.Sprintf("Load failed: %v", err))
			return false
		}
		p := c.Engine.Progress()
		c.printSystem(fmt.Sprintf("Progress loaded (%d XP, %d quests completed).", p.XP, len(p.Completed)))

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState(ctx)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save   Save progress now",
		"  /load   Reload saved progress",
		"  /quit   Exit",
		"  /help   Show this help",
		"  /state  Debug: dump current progress",
		"  /trace  Toggle debug trace output",
		"",
		"Quest commands:",
	}
	for _, line := range help {
		c.printLine(line)
	}
	for _, line := range engine.Help {
		c.printLine("  " + line)
	}
	c.printLine("  again (g)                         Repeat your last command")
}

func (c *CLI) cmdState(ctx context.Context) {
	p := c.Engine.Progress()
	c.printSystem(fmt.Sprintf("XP: %d", p.XP))
	c.printSystem(fmt.Sprintf("Completed: %v", p.Completed))
	if p.Tracked != "" {
		c.printSystem(fmt.Sprintf("Tracked: %s", p.Tracked))
	}
	c.printSystem(fmt.Sprintf("Journal: %d, Memories: %d, Friends: %d, Activity: %d",
		len(p.Journal), len(p.Memories), len(p.Friends), len(p.ActivityLog)))
	c.printSystem(lastSavedLine(ctx, c.Engine))
}

func lastSavedLine(ctx context.Context, eng *engine.Engine) string {
	ts, ok := eng.LastSaved(ctx)
	if !ok {
		return "Last saved: never"
	}
	return "Last saved: " + ts.Local().Format("2006-01-02 15:04:05")
}

func (c *CLI) printTrace(result types.Result) {
	if len(result.Events) > 0 {
		c.printSystem(fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			c.printSystem(fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	if result.Err != nil {
		var qe *questerr.Error
		if errors.As(result.Err, &qe) {
			c.printSystem(fmt.Sprintf("[trace] Error: %s %s", qe.Kind, qe.QuestID))
		} else {
			c.printSystem(fmt.Sprintf("[trace] Error: %v", result.Err))
		}
	}
}

func (c *CLI) printResult(result types.Result) {
	for _, line := range result.Output {
		c.printLine(line)
	}
	c.printToasts()
}

func (c *CLI) printToasts() {
	if c.Toasts == nil {
		return
	}
	for _, msg := range c.Toasts.Drain() {
		c.printSystem(msg)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
