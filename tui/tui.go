package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/questroux/engine"
	"github.com/nathoo/questroux/notify"
	"github.com/nathoo/questroux/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed input
	isSystem bool // true for system messages and toasts
}

// Model is the Bubble Tea model for the QuestRouX quest board.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	toasts *notify.Buffer

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	xpBar    progress.Model
	history  *History

	rawLines []rawLine // accumulated output lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	busy     bool // a command is running; input is held
	quitting bool
	lastCmd  string
}

// outputMsg carries output into the Update loop.
type outputMsg struct {
	input    string   // echoed input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// stepDoneMsg carries the result of an engine command run off the
// Update loop. Scans and photo ingestion may block.
type stepDoneMsg struct {
	input  string
	result types.Result
}

// New creates a TUI model wired to the given engine. toasts must be the
// buffer the engine notifies into.
func New(ctx context.Context, eng *engine.Engine, toasts *notify.Buffer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleSpinner))

	bar := progress.New(progress.WithSolidFill("34"), progress.WithWidth(16), progress.WithoutPercentage())

	return Model{
		ctx:     ctx,
		engine:  eng,
		toasts:  toasts,
		input:   ti,
		spinner: sp,
		xpBar:   bar,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(ctx context.Context, eng *engine.Engine, toasts *notify.Buffer) error {
	m := New(ctx, eng, toasts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces intro text and the board.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string

		campus := m.engine.Catalog().Campus
		header := campus.Title
		if campus.Version != "" {
			header += " v" + campus.Version
		}
		if campus.Author != "" {
			header += " by " + campus.Author
		}
		lines = append(lines, header, "")

		if campus.Intro != "" {
			lines = append(lines, campus.Intro, "")
		}

		result := m.engine.Step(m.ctx, "quests")
		lines = append(lines, result.Output...)

		return outputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, command output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if m.busy {
				return m, nil
			}
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(m.input.Value()); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
		m = m.appendToasts()

	case stepDoneMsg:
		m.busy = false
		output := msg.result.Output
		if m.trace {
			output = append(output, formatTrace(msg.result)...)
		}
		m = m.appendOutput(outputMsg{input: msg.input, lines: output})
		m = m.appendToasts()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		return m, spCmd
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)

	// Handle "again" / "g".
	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if m.lastCmd == "" {
			m = m.appendOutput(outputMsg{
				input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
			})
			return m, nil
		}
		input = m.lastCmd
	} else {
		m.lastCmd = input
	}

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		m = m.appendToasts()
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Quest command.
	m.busy = true
	return m, tea.Batch(m.runStep(input), m.spinner.Tick)
}

func (m Model) runStep(input string) tea.Cmd {
	ctx, eng := m.ctx, m.engine
	return func() tea.Msg {
		return stepDoneMsg{input: input, result: eng.Step(ctx, input)}
	}
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between commands.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// appendToasts moves pending engine notifications into the scrollback.
func (m Model) appendToasts() Model {
	if m.toasts == nil {
		return m
	}
	msgs := m.toasts.Drain()
	if len(msgs) == 0 {
		return m
	}
	// Toasts belong to the command just shown; drop its separator.
	if n := len(m.rawLines); n > 0 && m.rawLines[n-1].text == "" {
		m.rawLines = m.rawLines[:n-1]
	}
	return m.appendOutput(outputMsg{lines: msgs, isSystem: true})
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, rl.kind.render(wrapped))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to width display cells at word boundaries.
// Continuation lines repeat the leading indent so nested lines stay
// aligned under their parent.
func wordWrap(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	indent := text[:len(text)-len(strings.TrimLeft(text, " "))]
	if len(indent) >= width {
		indent = ""
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range strings.Fields(text) {
		w := lipgloss.Width(word)
		if curWidth > len(indent) && curWidth+1+w > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth == 0 {
			cur.WriteString(indent)
			curWidth = len(indent)
		} else {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += w
	}
	lines = append(lines, cur.String())
	return strings.Join(lines, "\n")
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	in := m.input.View()
	if m.busy {
		in = m.spinner.View() + " Working..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + in
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		if err := m.engine.Save(m.ctx); err != nil {
			return []string{fmt.Sprintf("Save failed: %v", err)}, false
		}
		return []string{"Progress saved."}, false

	case "/load":
		if err := m.engine.Load(m.ctx); err != nil {
			return []string{fmt.Sprintf("Load failed: %v", err)}, false
		}
		p := m.engine.Progress()
		return []string{fmt.Sprintf("Progress loaded (%d XP, %d quests completed).", p.XP, len(p.Completed))}, false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	out := []string{
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
	for _, line := range engine.Help {
		out = append(out, "  "+line)
	}
	return append(out,
		"  again (g)                         Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	)
}

func (m *Model) cmdState() []string {
	p := m.engine.Progress()
	output := []string{
		fmt.Sprintf("XP: %d", p.XP),
		fmt.Sprintf("Completed: %v", p.Completed),
	}
	if p.Tracked != "" {
		output = append(output, fmt.Sprintf("Tracked: %s", p.Tracked))
	}
	output = append(output, fmt.Sprintf("Journal: %d, Memories: %d, Friends: %d, Activity: %d",
		len(p.Journal), len(p.Memories), len(p.Friends), len(p.ActivityLog)))
	if ts, ok := m.engine.LastSaved(m.ctx); ok {
		return append(output, "Last saved: "+ts.Local().Format("2006-01-02 15:04:05"))
	}
	return append(output, "Last saved: never")
}

func formatTrace(result types.Result) []string {
	var lines []string
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	if result.Err != nil {
		lines = append(lines, fmt.Sprintf("[trace] Error: %v", result.Err))
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
