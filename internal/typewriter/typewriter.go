// Package typewriter reveals a fixed list of status lines one character at
// a time, pausing between lines, as a Bubble Tea component.
//
// The sequencer is a small state machine:
//
//	Idle → Typing(i) → Settling(i) → Typing(i+1) → … → Done
//
// with Skipped reachable from any state. Timers are tea.Tick commands tagged
// with a generation counter; bumping the counter cancels every in-flight
// timer at once, so at most one timer is ever live.
package typewriter

import (
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultCharDelay = 40 * time.Millisecond
	DefaultStepDelay = 600 * time.Millisecond
)

// State is the sequencer phase.
type State int

const (
	Idle State = iota
	Typing
	Settling
	Done
	Skipped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case Settling:
		return "settling"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

type tickKind int

const (
	charTick tickKind = iota
	settleTick
)

// TickMsg advances a sequencer. It is only honored by the instance and
// generation that scheduled it.
type TickMsg struct {
	ID   int
	tag  int
	kind tickKind
}

// StatusLine is a read-only snapshot of one line.
type StatusLine struct {
	FullText      string
	DisplayedText string
	Completed     bool
}

type line struct {
	full      []rune
	shown     int
	completed bool
}

func (l line) snapshot() StatusLine {
	return StatusLine{
		FullText:      string(l.full),
		DisplayedText: string(l.full[:l.shown]),
		Completed:     l.completed,
	}
}

// Styles controls how View renders lines.
type Styles struct {
	Dot    lipgloss.Style
	Text   lipgloss.Style
	Cursor lipgloss.Style
	Check  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Dot:    lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		Text:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Cursor: lipgloss.NewStyle().Foreground(lipgloss.Color("#34d399")),
		Check:  lipgloss.NewStyle().Foreground(lipgloss.Color("#34d399")),
	}
}

// Option configures a Model at construction.
type Option func(*Model)

func WithCharDelay(d time.Duration) Option { return func(m *Model) { m.charDelay = d } }

func WithStepDelay(d time.Duration) Option { return func(m *Model) { m.stepDelay = d } }

// WithInitialDelay sets the pause before the first character. It defaults
// to the character delay.
func WithInitialDelay(d time.Duration) Option { return func(m *Model) { m.initialDelay = d } }

func WithReducedMotion(on bool) Option { return func(m *Model) { m.reducedMotion = on } }

func WithStyles(s Styles) Option { return func(m *Model) { m.Styles = s } }

// Model is a typewriter sequencer. The zero value is not usable; call New.
type Model struct {
	Styles Styles

	id            int
	tag           int
	lines         []line
	index         int
	state         State
	stopped       bool
	reducedMotion bool

	charDelay    time.Duration
	stepDelay    time.Duration
	initialDelay time.Duration
}

// New mounts a sequencer over lines. Nothing is shown until Start.
func New(lines []string, opts ...Option) Model {
	m := Model{
		Styles:       DefaultStyles(),
		id:           nextID(),
		charDelay:    DefaultCharDelay,
		stepDelay:    DefaultStepDelay,
		initialDelay: -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.initialDelay < 0 {
		m.initialDelay = m.charDelay
	}
	m.lines = make([]line, len(lines))
	for i, s := range lines {
		m.lines[i] = line{full: []rune(s)}
	}
	return m
}

func (m Model) ID() int { return m.id }

func (m Model) State() State { return m.state }

// Index is the line currently being typed.
func (m Model) Index() int { return m.index }

// Finished reports whether the sequencer reached a terminal state.
func (m Model) Finished() bool { return m.state == Done || m.state == Skipped }

func (m Model) ReducedMotion() bool { return m.reducedMotion }

func (m Model) Lines() []StatusLine {
	out := make([]StatusLine, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.snapshot()
	}
	return out
}

// Start begins sequencing. Calls after the first are ignored.
func (m Model) Start() (Model, tea.Cmd) {
	if m.state != Idle || m.stopped {
		return m, nil
	}
	if len(m.lines) == 0 {
		m.state = Done
		return m, nil
	}
	if m.reducedMotion {
		m.completeAll()
		m.state = Done
		return m, nil
	}
	m.index = 0
	return m, m.beginLine(m.initialDelay)
}

// Skip completes every line immediately. No timer-driven change happens
// afterwards.
func (m Model) Skip() Model {
	if m.state == Skipped {
		return m
	}
	m.tag++
	m.completeAll()
	m.state = Skipped
	return m
}

// Stop cancels any pending timer. Call it when the component unmounts.
func (m Model) Stop() Model {
	m.tag++
	m.stopped = true
	return m
}

// SetReducedMotion applies the preference immediately: switching it on
// mid-sequence completes every line.
func (m Model) SetReducedMotion(on bool) Model {
	m.reducedMotion = on
	if on && (m.state == Typing || m.state == Settling) {
		m.tag++
		m.completeAll()
		m.state = Done
	}
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.ID != m.id || tick.tag != m.tag || m.stopped {
		return m, nil
	}
	switch {
	case tick.kind == charTick && m.state == Typing:
		return m, m.advanceCharacter()
	case tick.kind == settleTick && m.state == Settling:
		return m, m.advanceLine()
	}
	return m, nil
}

func (m *Model) schedule(kind tickKind, d time.Duration) tea.Cmd {
	m.tag++
	id, tag := m.id, m.tag
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag, kind: kind}
	})
}

// beginLine starts typing the current line. Empty lines complete at once.
func (m *Model) beginLine(delay time.Duration) tea.Cmd {
	cur := &m.lines[m.index]
	if len(cur.full) == 0 {
		return m.finishLine()
	}
	m.state = Typing
	return m.schedule(charTick, delay)
}

func (m *Model) advanceCharacter() tea.Cmd {
	cur := &m.lines[m.index]
	if cur.shown < len(cur.full) {
		cur.shown++
	}
	if cur.shown == len(cur.full) {
		return m.finishLine()
	}
	return m.schedule(charTick, m.charDelay)
}

// finishLine marks the current line complete. The last line ends the
// sequence directly; others settle for stepDelay first.
func (m *Model) finishLine() tea.Cmd {
	m.lines[m.index].completed = true
	if m.index == len(m.lines)-1 {
		m.tag++
		m.state = Done
		return nil
	}
	m.state = Settling
	return m.schedule(settleTick, m.stepDelay)
}

func (m *Model) advanceLine() tea.Cmd {
	if m.index >= len(m.lines)-1 {
		m.state = Done
		return nil
	}
	m.index++
	return m.beginLine(m.charDelay)
}

func (m *Model) completeAll() {
	for i := range m.lines {
		m.lines[i].shown = len(m.lines[i].full)
		m.lines[i].completed = true
	}
}

// View renders every line that has started: a dot, the revealed text, a
// cursor on the line being typed and a check mark once complete.
func (m Model) View() string {
	var rows []string
	for i, l := range m.lines {
		if l.shown == 0 && !l.completed {
			if !(i == m.index && m.state == Typing) {
				continue
			}
		}
		var b strings.Builder
		b.WriteString(m.Styles.Dot.Render("●"))
		b.WriteString(" ")
		b.WriteString(m.Styles.Text.Render(string(l.full[:l.shown])))
		if !l.completed && i == m.index && m.state == Typing {
			b.WriteString(m.Styles.Cursor.Render("▍"))
		}
		if l.completed {
			b.WriteString(" ")
			b.WriteString(m.Styles.Check.Render("✔"))
		}
		rows = append(rows, b.String())
	}
	return strings.Join(rows, "\n")
}
