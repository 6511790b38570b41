package particles

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jakebf/folio/internal/canvas"
)

const DefaultFPS = 30

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

// FrameMsg requests the next animation frame of a Model.
type FrameMsg struct {
	ID  int
	tag int
}

// Model runs a Field inside a Bubble Tea program and draws it onto a
// terminal grid. Terminal cells are mapped to pixels with the grid's cell
// size so the field's pixel-based tuning carries over.
type Model struct {
	field   *Field
	grid    *canvas.Grid
	id      int
	tag     int
	fps     int
	running bool
}

// NewModel wraps field. cellW and cellH give the pixel size of one
// terminal cell.
func NewModel(field *Field, cellW, cellH float64, fps int) Model {
	if fps <= 0 {
		fps = DefaultFPS
	}
	g := canvas.NewGrid(0, 0, cellW, cellH)
	g.SetBackground(field.Palette().Background)
	return Model{field: field, grid: g, id: nextID(), fps: fps}
}

func (m Model) ID() int { return m.id }

func (m Model) Field() *Field { return m.field }

func (m Model) Running() bool { return m.running }

// SetSize resizes the grid to cols x rows cells and regenerates the field.
func (m Model) SetSize(cols, rows int) Model {
	if c, r := m.grid.Size(); c == cols && r == rows && m.field.particles != nil {
		return m
	}
	m.grid.Resize(cols, rows)
	w, h := m.grid.PixelSize()
	m.field.Resize(w, h)
	return m
}

// PointerCell moves the pointer to the center of a cell.
func (m Model) PointerCell(col, row int) Model {
	p := m.grid.CellCenter(col, row)
	m.field.PointerMove(p.X, p.Y)
	return m
}

func (m Model) SetPalette(p Palette) Model {
	m.field.SetPalette(p)
	m.grid.SetBackground(p.Background)
	return m
}

func (m Model) SetReducedMotion(on bool) Model {
	m.field.SetReducedMotion(on)
	return m
}

// Start schedules the first frame. It does nothing if already running.
func (m Model) Start() (Model, tea.Cmd) {
	if m.running {
		return m, nil
	}
	m.running = true
	return m, m.frame()
}

// Stop cancels the pending frame. Frames already in flight are dropped.
func (m Model) Stop() Model {
	m.running = false
	m.tag++
	return m
}

func (m *Model) frame() tea.Cmd {
	m.tag++
	id, tag := m.id, m.tag
	return tea.Tick(time.Second/time.Duration(m.fps), func(time.Time) tea.Msg {
		return FrameMsg{ID: id, tag: tag}
	})
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.ID != m.id || msg.tag != m.tag || !m.running {
			return m, nil
		}
		m.field.Tick(m.grid)
		return m, m.frame()
	}
	return m, nil
}

func (m Model) View() string {
	return m.grid.String()
}
