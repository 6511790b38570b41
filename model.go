package main

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/jakebf/folio/internal/analytics"
	"github.com/jakebf/folio/internal/particles"
	"github.com/jakebf/folio/internal/typewriter"
)

// ─── Key Map ─────────────────────────────────────────────────────────────────

type keyMap struct {
	NextPage     key.Binding
	PrevPage     key.Binding
	GotoPage     key.Binding // 1-3 (display-only binding)
	Skip         key.Binding
	Theme        key.Binding
	Motion       key.Binding
	Navigate     key.Binding
	Open         key.Binding
	Back         key.Binding
	Filter       key.Binding
	PrevCategory key.Binding
	NextCategory key.Binding
	Copy         key.Binding
	ScrollDown   key.Binding
	ScrollUp     key.Binding
	Help         key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextPage:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next page")),
		PrevPage:     key.NewBinding(key.WithKeys("shift+tab")),
		GotoPage:     key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "go to page")),
		Skip:         key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "skip intro")),
		Theme:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		Motion:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "reduce motion")),
		Navigate:     key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "navigate / scroll")),
		Open:         key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "read case study")),
		Back:         key.NewBinding(key.WithKeys("esc", "h", "left"), key.WithHelp("esc", "back to list")),
		Filter:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		PrevCategory: key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "cycle category")),
		NextCategory: key.NewBinding(key.WithKeys("]")),
		Copy:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link / email")),
		ScrollDown:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "page down")),
		ScrollUp:     key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "page up")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.Theme, k.Motion, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Pages / app
		{k.NextPage, k.GotoPage, k.Skip, k.Theme, k.Motion, k.Help, k.Quit},
		// Work and about
		{k.Navigate, k.Open, k.Back, k.Filter, k.PrevCategory, k.Copy, k.ScrollDown, k.ScrollUp},
	}
}

// shortHelp puts the current page's main keys in front of the global ones.
func (m model) shortHelp() []key.Binding {
	var keys []key.Binding
	switch m.page {
	case heroPage:
		keys = []key.Binding{m.keys.Skip}
	case workPage:
		keys = []key.Binding{m.keys.Open, m.keys.PrevCategory, m.keys.Filter, m.keys.Copy}
	case aboutPage:
		keys = []key.Binding{m.keys.Navigate, m.keys.Copy}
	}
	return append(keys, m.keys.ShortHelp()...)
}

// ─── Model ───────────────────────────────────────────────────────────────────

const statusTimeout = 3 * time.Second

// headerHeight is the tab bar above every page.
const headerHeight = 1

type page int

const (
	heroPage page = iota
	workPage
	aboutPage
)

var pageNames = []string{"Home", "Work", "About"}

func (p page) String() string { return pageNames[p] }

// heroState holds the two widgets while the hero page is mounted. Leaving
// the page stops both; coming back builds fresh ones.
type heroState struct {
	mounted   bool
	seq       typewriter.Model
	field     particles.Model
	completed bool // sequence_completed already reported
}

type statusBarState struct {
	text    string
	id      int
	spinner spinner.Model
}

type model struct {
	// Layout
	page     page
	list     list.Model
	viewport viewport.Model
	about    viewport.Model
	keys     keyMap
	help     help.Model
	focused  pane
	width    int
	height   int
	ready    bool // true after first WindowSizeMsg

	// Rendering
	previewCache map[string]string // slug → glamour-rendered markdown
	previewWidth int               // cached width for invalidation on resize
	aboutWidth   int
	glamourStyle string // "dark" or "light"
	dark         bool

	// Content
	studies  []caseStudy
	aboutMD  string
	category string // "" shows every category
	copied   map[string]bool

	// Environment
	cfg     config
	cfgPath string
	tracker analytics.Tracker
	watcher *fsnotify.Watcher

	prevIndex int // tracks cursor changes to trigger preview updates

	hero   heroState
	status statusBarState
}

func newModel(cfg config, cfgPath string, content contentLoadedMsg, tracker analytics.Tracker, watcher *fsnotify.Watcher) model {
	if tracker == nil {
		tracker = analytics.Discard
	}
	copied := make(map[string]bool)
	l := list.New(caseStudiesToItems(content.studies), caseStudyDelegate{copied: copied}, 0, 0)
	l.Title = "Work"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().Padding(0, 0, 0, 0)
	l.Styles.TitleBar = lipgloss.NewStyle().Padding(0, 1, 1, 2)
	l.KeyMap.Quit.SetKeys("q") // don't quit on esc
	l.FilterInput.Prompt = "Search: "

	h := help.New()
	h.ShortSeparator = " | "
	h.Styles.ShortKey = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(colorDim)
	h.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(colorDim)
	h.Styles.FullKey = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Width(10)
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(colorFull)
	h.Styles.FullSeparator = lipgloss.NewStyle()

	s := spinner.New()
	s.Spinner = spinner.Pulse
	s.Style = lipgloss.NewStyle().Foreground(colorAccent)

	dark := cfg.darkTheme()
	style := "dark"
	if !dark {
		style = "light"
	}

	return model{
		page:         heroPage,
		list:         l,
		viewport:     viewport.New(0, 0),
		about:        viewport.New(0, 0),
		keys:         newKeyMap(),
		help:         h,
		focused:      listPane,
		prevIndex:    -1,
		previewCache: make(map[string]string),
		glamourStyle: style,
		dark:         dark,
		studies:      content.studies,
		aboutMD:      content.about,
		copied:       copied,
		cfg:          cfg,
		cfgPath:      cfgPath,
		tracker:      tracker,
		watcher:      watcher,
		status:       statusBarState{spinner: s},
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("folio")}
	if m.watcher != nil {
		cmds = append(cmds, watchFiles(m.watcher, m.cfgPath))
	}
	return tea.Batch(cmds...)
}

func (m model) track(name string, props map[string]string) tea.Cmd {
	return trackCmd(m.tracker, name, props)
}

// setStatus shows a transient message in the status bar with a spinner animation.
// If duration > 0, the message auto-clears after that time.
func (m *model) setStatus(text string, duration time.Duration) tea.Cmd {
	m.status.id++
	m.status.text = text
	id := m.status.id
	var cmds []tea.Cmd
	cmds = append(cmds, m.status.spinner.Tick)
	if duration > 0 {
		cmds = append(cmds, tea.Tick(duration, func(time.Time) tea.Msg {
			return statusClearMsg{id: id}
		}))
	}
	return tea.Batch(cmds...)
}

func (m *model) clearStatus() {
	m.status.text = ""
}

// ─── Hero ────────────────────────────────────────────────────────────────────

// heroBoxHeight is the sequencer box: one row per line plus borders.
func heroBoxHeight() int { return len(heroLines) + 2 }

// fieldSize is the particle field's size in cells: full width, everything
// between the header and the sequencer box.
func (m model) fieldSize() (cols, rows int) {
	rows = m.height - headerHeight - heroBoxHeight() - 1 // -1 for hint bar
	return max(m.width, 0), max(rows, 0)
}

func (m *model) mountHero() tea.Cmd {
	if m.hero.mounted {
		return nil
	}
	seq := typewriter.New(heroLines, m.cfg.typewriterOptions()...)
	seq, seqCmd := seq.Start()

	field := particles.NewField(m.cfg.Particles, nil)
	fm := particles.NewModel(field, m.cfg.Canvas.CellWidth, m.cfg.Canvas.CellHeight, m.cfg.Motion.FPS)
	fm = fm.SetPalette(m.cfg.palette(m.dark))
	fm = fm.SetReducedMotion(m.cfg.Motion.Reduced)
	cols, rows := m.fieldSize()
	fm = fm.SetSize(cols, rows)
	fm, frameCmd := fm.Start()

	m.hero = heroState{mounted: true, seq: seq, field: fm}
	cmds := []tea.Cmd{seqCmd, frameCmd, m.track(analytics.HeroMounted, map[string]string{
		"reduced_motion": strconv.FormatBool(m.cfg.Motion.Reduced),
		"particles":      strconv.Itoa(len(field.Particles())),
	})}
	cmds = append(cmds, m.checkSequence())
	return tea.Batch(cmds...)
}

// unmountHero cancels every pending timer and frame of the hero widgets.
func (m *model) unmountHero() {
	if !m.hero.mounted {
		return
	}
	m.hero.seq = m.hero.seq.Stop()
	m.hero.field = m.hero.field.Stop()
	m.hero.mounted = false
}

// checkSequence reports completion once per mount.
func (m *model) checkSequence() tea.Cmd {
	if m.hero.completed || m.hero.seq.State() != typewriter.Done {
		return nil
	}
	m.hero.completed = true
	return m.track(analytics.SequenceCompleted, nil)
}

func (m *model) skipSequence() tea.Cmd {
	if !m.hero.mounted || m.hero.seq.Finished() {
		return nil
	}
	idx := m.hero.seq.Index()
	m.hero.seq = m.hero.seq.Skip()
	return m.track(analytics.SequenceSkipped, map[string]string{"line": strconv.Itoa(idx)})
}

func (m *model) resizeField() tea.Cmd {
	if !m.hero.mounted {
		return nil
	}
	cols, rows := m.fieldSize()
	before := len(m.hero.field.Field().Particles())
	w, h := m.hero.field.Field().Size()
	m.hero.field = m.hero.field.SetSize(cols, rows)
	if w2, h2 := m.hero.field.Field().Size(); w2 == w && h2 == h {
		return nil
	}
	return m.track(analytics.FieldResized, map[string]string{
		"cols":      strconv.Itoa(cols),
		"rows":      strconv.Itoa(rows),
		"particles": fmt.Sprintf("%d→%d", before, len(m.hero.field.Field().Particles())),
	})
}

// ─── Pages ───────────────────────────────────────────────────────────────────

func (m *model) setPage(p page) tea.Cmd {
	if p == m.page {
		return nil
	}
	var cmds []tea.Cmd
	if m.page == heroPage {
		m.unmountHero()
	}
	m.page = p
	m.help.ShowAll = false
	switch p {
	case heroPage:
		cmds = append(cmds, m.mountHero())
	case workPage:
		m.restoreTitle()
		cmds = append(cmds, m.renderWindow())
	case aboutPage:
		cmds = append(cmds, m.renderAboutIfNeeded())
	}
	cmds = append(cmds, m.track(analytics.PageViewed, map[string]string{"page": p.String()}))
	return tea.Batch(cmds...)
}

func (m *model) cyclePage(delta int) tea.Cmd {
	n := len(pageNames)
	return m.setPage(page(((int(m.page)+delta)%n + n) % n))
}

// ─── Theme and Motion ────────────────────────────────────────────────────────

func (m *model) applyTheme(dark bool) tea.Cmd {
	if dark == m.dark {
		return nil
	}
	m.dark = dark
	m.glamourStyle = "dark"
	if !dark {
		m.glamourStyle = "light"
	}
	if m.hero.mounted {
		m.hero.field = m.hero.field.SetPalette(m.cfg.palette(dark))
	}
	m.previewCache = make(map[string]string)
	m.aboutWidth = 0
	var cmds []tea.Cmd
	switch m.page {
	case workPage:
		cmds = append(cmds, m.renderWindow())
	case aboutPage:
		cmds = append(cmds, m.renderAboutIfNeeded())
	}
	return tea.Batch(cmds...)
}

func (m *model) toggleTheme() tea.Cmd {
	dark := !m.dark
	m.cfg.Theme = themeLight
	if dark {
		m.cfg.Theme = themeDark
	}
	return tea.Batch(
		m.applyTheme(dark),
		persistConfig(m.cfgPath, m.cfg),
		m.track(analytics.ThemeChanged, map[string]string{"theme": m.cfg.Theme}),
	)
}

func (m *model) applyReducedMotion(on bool) tea.Cmd {
	m.cfg.Motion.Reduced = on
	if !m.hero.mounted {
		return nil
	}
	m.hero.seq = m.hero.seq.SetReducedMotion(on)
	m.hero.field = m.hero.field.SetReducedMotion(on)
	return m.checkSequence()
}

func (m *model) toggleMotion() tea.Cmd {
	on := !m.cfg.Motion.Reduced
	label := "Motion on"
	if on {
		label = "Reduced motion"
	}
	return tea.Batch(
		m.applyReducedMotion(on),
		persistConfig(m.cfgPath, m.cfg),
		m.setStatus(label, statusTimeout),
		m.track(analytics.MotionChanged, map[string]string{"reduced": strconv.FormatBool(on)}),
	)
}

// applyConfig takes a reloaded config. Theme, motion and particle tuning
// apply immediately; canvas cell size, FPS and typewriter delays apply the
// next time the hero page mounts.
func (m *model) applyConfig(cfg config) tea.Cmd {
	old := m.cfg
	m.cfg = cfg
	var cmds []tea.Cmd
	cmds = append(cmds, m.applyTheme(cfg.darkTheme()))
	if cfg.Tokens != old.Tokens && m.hero.mounted {
		m.hero.field = m.hero.field.SetPalette(cfg.palette(m.dark))
	}
	if cfg.Motion.Reduced != old.Motion.Reduced {
		m.cfg.Motion.Reduced = old.Motion.Reduced
		cmds = append(cmds, m.applyReducedMotion(cfg.Motion.Reduced))
	}
	if cfg.Particles != old.Particles && m.hero.mounted {
		f := m.hero.field.Field()
		f.SetConfig(cfg.Particles)
		f.Resize(f.Size())
	}
	if cfg.ContentDir != old.ContentDir || cfg.Contact != old.Contact {
		if m.watcher != nil && cfg.ContentDir != "" {
			for _, p := range watchPaths("", cfg.ContentDir) {
				if err := m.watcher.Add(p); err != nil {
					log.Printf("could not watch %s: %v", p, err)
				}
			}
		}
		cmds = append(cmds, reloadContent(cfg.ContentDir, cfg.Contact.Email))
	}
	cmds = append(cmds, m.setStatus("Config reloaded", statusTimeout))
	return tea.Batch(cmds...)
}

// ─── Work ────────────────────────────────────────────────────────────────────

func (m model) visibleStudies() []caseStudy {
	return filterCaseStudies(m.studies, m.category)
}

func (m *model) restoreTitle() {
	brand := lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	ghost := lipgloss.NewStyle().Foreground(colorDim)

	left := brand.Render("Work")
	if m.category != "" {
		left += " " + categoryColor(m.category).Render(m.category)
	} else {
		left += " " + ghost.Render(categoryLabel(""))
	}
	if m.list.IsFiltered() {
		if filterText := m.list.FilterValue(); filterText != "" {
			left += " " + dateStyle.Render("/"+filterText)
		}
	}
	hint := ghost.Render("[/] category")

	maxW := m.list.Width() - 3 // TitleBar padding: left (2) + right (1)
	avail := maxW - lipgloss.Width(left) - lipgloss.Width(hint)
	if avail > 0 {
		m.list.Title = left + fmt.Sprintf("%*s", avail, "") + hint
	} else {
		m.list.Title = left
	}
}

func (m model) selected() (caseStudy, bool) {
	c, ok := m.list.SelectedItem().(caseStudy)
	return c, ok
}

func (m *model) setCategory(category string) {
	m.category = category
	m.list.SetItems(caseStudiesToItems(m.visibleStudies()))
	m.list.ResetSelected()
	m.prevIndex = -1
	m.restoreTitle()
}

// selectSlug moves the cursor to slug, or clamps the current index.
func (m *model) selectSlug(slug string) {
	for i, item := range m.list.Items() {
		if c, ok := item.(caseStudy); ok && c.slug == slug {
			m.list.Select(i)
			return
		}
	}
	if idx := m.list.Index(); idx >= len(m.list.Items()) && len(m.list.Items()) > 0 {
		m.list.Select(len(m.list.Items()) - 1)
	}
}

func (m model) previewW() int {
	return m.width - (m.width * 40 / 100) - 2
}

// renderWindow renders the selected case study plus a few neighbors (±2) if
// not cached, so they are warm by the time the user navigates to them.
func (m model) renderWindow() tea.Cmd {
	items := m.list.Items()
	idx := m.list.Index()
	if len(items) == 0 || !m.ready {
		return nil
	}
	var cmds []tea.Cmd
	for i := idx - 2; i <= idx+2; i++ {
		if i < 0 || i >= len(items) {
			continue
		}
		c, ok := items[i].(caseStudy)
		if !ok {
			continue
		}
		if _, cached := m.previewCache[c.slug]; cached {
			continue
		}
		cmds = append(cmds, renderCaseStudy(c, m.glamourStyle, m.previewW()))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// syncPreview swaps the preview after a cursor move and reports the open.
func (m *model) syncPreview() tea.Cmd {
	if m.list.Index() == m.prevIndex {
		return nil
	}
	m.prevIndex = m.list.Index()
	c, ok := m.selected()
	if !ok {
		m.viewport.SetContent("")
		return nil
	}
	if content, ok := m.previewCache[c.slug]; ok {
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
	}
	return tea.Batch(m.renderWindow(), m.track(analytics.CaseStudyOpened, map[string]string{"slug": c.slug}))
}

// primaryLink picks the link to copy for a case study: "live" if present,
// otherwise the first by name.
func primaryLink(c caseStudy) string {
	if l, ok := c.meta.Links["live"]; ok {
		return l
	}
	names := make([]string, 0, len(c.meta.Links))
	for k := range c.meta.Links {
		names = append(names, k)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return c.meta.Links[names[0]]
}

// ─── About ───────────────────────────────────────────────────────────────────

func (m model) aboutW() int { return m.width - 2 }

func (m model) renderAboutIfNeeded() tea.Cmd {
	if !m.ready || m.aboutWidth == m.aboutW() {
		return nil
	}
	return renderAbout(m.aboutMD, m.glamourStyle, m.aboutW())
}

// ─── Key Handling ─────────────────────────────────────────────────────────────

// handleKeyMsg processes keyboard input, returning handled=true for keys that
// should short-circuit Update and handled=false for keys that should fall
// through to the list for default navigation/search.
func (m model) handleKeyMsg(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit, true
	}

	// Help modal: swallow everything except ?, esc, q
	if m.help.ShowAll {
		switch {
		case key.Matches(msg, m.keys.Help) || msg.String() == "esc":
			m.help.ShowAll = false
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit, true
		}
		return m, nil, true
	}

	// While typing a search query every key belongs to the list.
	if m.page == workPage && m.list.SettingFilter() {
		return m, nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true
		return m, nil, true
	case key.Matches(msg, m.keys.NextPage):
		return m, m.cyclePage(1), true
	case key.Matches(msg, m.keys.PrevPage):
		return m, m.cyclePage(-1), true
	case key.Matches(msg, m.keys.GotoPage):
		n, _ := strconv.Atoi(msg.String())
		return m, m.setPage(page(n - 1)), true
	case key.Matches(msg, m.keys.Theme):
		return m, m.toggleTheme(), true
	case key.Matches(msg, m.keys.Motion):
		return m, m.toggleMotion(), true
	}

	switch m.page {
	case heroPage:
		if key.Matches(msg, m.keys.Skip) {
			return m, m.skipSequence(), true
		}
		return m, nil, true
	case aboutPage:
		return m.handleAboutKey(msg)
	}
	return m.handleWorkKey(msg)
}

func (m model) handleAboutKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Copy):
		if m.cfg.Contact.Email == "" {
			return m, nil, true
		}
		return m, copyToClipboard(m.cfg.Contact.Email), true
	case key.Matches(msg, m.keys.ScrollDown):
		m.about.HalfViewDown()
	case key.Matches(msg, m.keys.ScrollUp):
		m.about.HalfViewUp()
	default:
		switch msg.String() {
		case "j", "down":
			m.about.LineDown(1)
		case "k", "up":
			m.about.LineUp(1)
		}
	}
	return m, nil, true
}

func (m model) handleWorkKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	// Space / B scroll the preview regardless of pane focus
	switch {
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil, true
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil, true
	case key.Matches(msg, m.keys.Copy):
		c, ok := m.selected()
		if !ok {
			return m, nil, true
		}
		link := primaryLink(c)
		if link == "" {
			return m, m.setStatus("No link for "+c.Title(), statusTimeout), true
		}
		return m, copyToClipboard(link), true
	}

	if m.focused == previewPane {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.focused = listPane
			return m, nil, true
		}
		switch msg.String() {
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "pgdown":
			m.viewport.HalfViewDown()
		case "u", "pgup":
			m.viewport.HalfViewUp()
		}
		return m, nil, true
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		if _, ok := m.selected(); ok {
			m.focused = previewPane
		}
		return m, nil, true
	case key.Matches(msg, m.keys.PrevCategory):
		m.setCategory(cycleCategory(m.category, -1))
		return m, m.syncPreview(), true
	case key.Matches(msg, m.keys.NextCategory):
		m.setCategory(cycleCategory(m.category, 1))
		return m, m.syncPreview(), true
	case msg.String() == "esc" && !m.list.IsFiltered() && m.category != "":
		m.setCategory("")
		return m, m.syncPreview(), true
	}
	return m, nil, false
}

// ─── Update ──────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case typewriter.TickMsg:
		if !m.hero.mounted {
			return m, nil
		}
		var cmd tea.Cmd
		m.hero.seq, cmd = m.hero.seq.Update(msg)
		return m, tea.Batch(cmd, m.checkSequence())

	case particles.FrameMsg:
		if !m.hero.mounted {
			return m, nil
		}
		var cmd tea.Cmd
		m.hero.field, cmd = m.hero.field.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		mod, cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return mod, cmd
		}
		m = mod

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		first := !m.ready
		m.ready = true

		listW := m.width * 40 / 100
		innerListW := max(listW-2, 10)
		innerPreviewW := max(m.previewW(), 10)
		innerH := max(m.height-headerHeight-3, 5) // -2 for borders, -1 for hint bar

		m.list.SetSize(innerListW, innerH)
		m.viewport.Width = innerPreviewW
		m.viewport.Height = innerH - 1
		m.about.Width = max(m.aboutW(), 10)
		m.about.Height = innerH
		m.restoreTitle()

		if m.previewWidth != innerPreviewW {
			m.previewWidth = innerPreviewW
			m.previewCache = make(map[string]string)
			m.prevIndex = -1
		}

		if first && m.page == heroPage {
			cmds = append(cmds, m.mountHero(), m.track(analytics.PageViewed, map[string]string{"page": heroPage.String()}))
		} else {
			cmds = append(cmds, m.resizeField())
		}
		switch m.page {
		case workPage:
			cmds = append(cmds, m.syncPreview(), m.renderWindow())
		case aboutPage:
			cmds = append(cmds, m.renderAboutIfNeeded())
		}
		return m, tea.Batch(cmds...)

	case previewMsg:
		if msg.width != m.previewW() {
			return m, nil // stale render from before a resize
		}
		m.previewCache[msg.slug] = msg.content
		if c, ok := m.selected(); ok && c.slug == msg.slug {
			m.viewport.SetContent(msg.content)
			m.viewport.GotoTop()
		}
		return m, nil

	case aboutRenderedMsg:
		if msg.width != m.aboutW() {
			return m, nil
		}
		m.aboutWidth = msg.width
		m.about.SetContent(msg.content)
		return m, nil

	case contentLoadedMsg:
		slug := ""
		if c, ok := m.selected(); ok {
			slug = c.slug
		}
		m.studies = msg.studies
		m.aboutMD = msg.about
		m.aboutWidth = 0
		m.previewCache = make(map[string]string)
		m.list.SetItems(caseStudiesToItems(m.visibleStudies()))
		m.selectSlug(slug)
		m.prevIndex = -1
		m.restoreTitle()
		switch m.page {
		case workPage:
			cmds = append(cmds, m.syncPreview(), m.renderWindow())
		case aboutPage:
			cmds = append(cmds, m.renderAboutIfNeeded())
		}
		return m, tea.Batch(cmds...)

	case contentChangedMsg:
		cmds = append(cmds,
			reloadContent(m.cfg.ContentDir, m.cfg.Contact.Email),
			m.setStatus("Content updated", statusTimeout),
		)
		if m.watcher != nil {
			cmds = append(cmds, watchFiles(m.watcher, m.cfgPath))
		}
		return m, tea.Batch(cmds...)

	case configChangedMsg:
		if msg.err != nil {
			log.Printf("config reload: %v", msg.err)
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Error: %v", msg.err), statusTimeout))
		} else {
			cmds = append(cmds, m.applyConfig(msg.cfg))
		}
		if m.watcher != nil {
			cmds = append(cmds, watchFiles(m.watcher, m.cfgPath))
		}
		return m, tea.Batch(cmds...)

	case copiedMsg:
		if msg.text == m.cfg.Contact.Email {
			cmds = append(cmds, m.track(analytics.EmailCopied, nil))
		}
		if c, ok := m.selected(); ok && m.page == workPage {
			clear(m.copied)
			m.copied[c.slug] = true
			slug := c.slug
			cmds = append(cmds, tea.Tick(statusTimeout, func(time.Time) tea.Msg {
				return copiedClearMsg{slug: slug}
			}))
		}
		cmds = append(cmds, m.setStatus("Copied "+msg.text, statusTimeout))
		return m, tea.Batch(cmds...)

	case copiedClearMsg:
		delete(m.copied, msg.slug)
		return m, nil

	case spinner.TickMsg:
		if m.status.text != "" {
			var cmd tea.Cmd
			m.status.spinner, cmd = m.status.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case statusClearMsg:
		if msg.id == m.status.id {
			m.clearStatus()
		}
		return m, nil

	case errMsg:
		log.Printf("error: %v", msg.err)
		return m, m.setStatus(fmt.Sprintf("Error: %v", msg.err), statusTimeout)
	}

	if m.page != workPage {
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.restoreTitle()

	// On cursor change, swap the preview to the newly selected case study.
	cmds = append(cmds, m.syncPreview())
	return m, tea.Batch(cmds...)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch m.page {
	case heroPage:
		if !m.hero.mounted {
			return m, nil
		}
		m.hero.field = m.hero.field.PointerCell(msg.X, msg.Y-headerHeight)
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m, m.skipSequence()
		}
		return m, nil

	case workPage:
		listW := m.width * 40 / 100
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if msg.X < listW {
				m.list.CursorUp()
			} else {
				m.viewport.LineUp(3)
			}
		case tea.MouseButtonWheelDown:
			if msg.X < listW {
				m.list.CursorDown()
			} else {
				m.viewport.LineDown(3)
			}
		default:
			return m, nil
		}
		return m, m.syncPreview()

	case aboutPage:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.about.LineUp(3)
		case tea.MouseButtonWheelDown:
			m.about.LineDown(3)
		}
	}
	return m, nil
}
