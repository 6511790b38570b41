package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ─── Colors ──────────────────────────────────────────────────────────────────

var (
	colorBlack   = lipgloss.Color("0")
	colorAccent  = lipgloss.Color("5")  // magenta: brand, focused borders, keys
	colorDim     = lipgloss.Color("8")  // gray: secondary text, unfocused borders
	colorFull    = lipgloss.Color("7")  // white: full help descriptions
	colorGreen   = lipgloss.Color("10") // sequencer box, motion indicator
	colorYellow  = lipgloss.Color("11") // featured case studies
	colorMagenta = lipgloss.Color("13") // status bar messages
)

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	focusedBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent)
	unfocusedBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	sequencerBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorGreen).Padding(0, 1)
	paneTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	helpTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1)
	helpBoxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 3)
	statusTextStyle = lipgloss.NewStyle().Bold(true).Foreground(colorMagenta)
	tabStyle        = lipgloss.NewStyle().Bold(true)
	ghostStyle      = lipgloss.NewStyle().Foreground(colorDim)
	brandStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
)

func truncateForWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	limit := maxWidth - 1
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := lipgloss.Width(string(r))
		if width+rw > limit {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + "…"
}

// ─── View ────────────────────────────────────────────────────────────────────

// headerView is the tab bar: brand and pages on the left, theme and motion
// state on the right.
func (m model) headerView() string {
	left := " " + brandStyle.Render("folio") + "  "
	for i, name := range pageNames {
		if i > 0 {
			left += ghostStyle.Render(" · ")
		}
		label := ghostStyle.Render(string(rune('1'+i))+" ") + name
		if page(i) == m.page {
			left += tabStyle.Render(label)
		} else {
			left += ghostStyle.Render(label)
		}
	}

	theme := "light"
	if m.dark {
		theme = "dark"
	}
	motion := "motion"
	if m.cfg.Motion.Reduced {
		motion = "reduced motion"
	}
	right := ghostStyle.Render(theme+" · "+motion) + " "

	avail := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if avail <= 0 {
		return truncateForWidth(left, m.width)
	}
	return left + strings.Repeat(" ", avail) + right
}

func (m model) heroView() string {
	cols, rows := m.fieldSize()
	field := ""
	if m.hero.mounted {
		field = m.hero.field.View()
	}
	field = lipgloss.NewStyle().Width(cols).Height(rows).MaxHeight(rows).Render(field)

	boxW := min(64, max(m.width-2, 10))
	body := ""
	if m.hero.mounted {
		body = m.hero.seq.View()
	}
	box := sequencerBorder.Width(boxW - 2).Height(len(heroLines)).Render(body)
	box = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)

	if rows == 0 {
		return box
	}
	return field + "\n" + box
}

func (m model) workView() string {
	// 40/60 split: list pane gets 40% of terminal width, preview gets the rest.
	listW := m.width * 40 / 100
	previewW := m.width - listW

	innerH := m.height - headerHeight - 3 // -2 for borders, -1 for hint bar

	var leftStyle, rightStyle lipgloss.Style
	if m.focused == listPane {
		leftStyle = focusedBorder.Width(listW - 2).Height(innerH)
		rightStyle = unfocusedBorder.Width(previewW - 2).Height(innerH)
	} else {
		leftStyle = unfocusedBorder.Width(listW - 2).Height(innerH)
		rightStyle = focusedBorder.Width(previewW - 2).Height(innerH)
	}

	var leftContent string
	if len(m.list.Items()) == 0 && !m.list.SettingFilter() {
		msg := "No case studies yet"
		if m.category != "" {
			msg = "Nothing in " + m.category + "\n\n[/] change category  ·  esc show all"
		}
		hint := lipgloss.NewStyle().Foreground(colorDim).
			Width(listW - 4).Align(lipgloss.Center).
			Render(msg)
		leftContent = lipgloss.Place(listW-2, innerH, lipgloss.Center, lipgloss.Center, hint)
	} else {
		leftContent = m.list.View()
	}

	previewTitle := ""
	if c, ok := m.selected(); ok {
		previewTitle = paneTitleStyle.Render(c.slug)
	}
	rightContent := previewTitle + "\n" + m.viewport.View()

	return lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Render(leftContent),
		rightStyle.Render(rightContent),
	)
}

func (m model) aboutView() string {
	innerH := m.height - headerHeight - 3
	return unfocusedBorder.Width(m.width - 2).Height(innerH).Render(m.about.View())
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.page {
	case heroPage:
		body = m.heroView()
	case workPage:
		body = m.workView()
	case aboutPage:
		body = m.aboutView()
	}

	var statusBar string
	if m.status.text != "" {
		statusBar = " " + m.status.spinner.View() + " " + statusTextStyle.Render(truncateForWidth(m.status.text, m.width-4))
	} else {
		statusBar = " " + m.help.ShortHelpView(m.shortHelp())
	}
	base := m.headerView() + "\n" + body + "\n" + statusBar

	if m.help.ShowAll {
		content := helpTitleStyle.Render("Keybindings") + "\n" + m.help.FullHelpView(m.keys.FullHelp())

		// Keep the help modal comfortably narrow on wide terminals while still
		// fitting on small screens.
		modalMaxW := m.width - 4
		if modalMaxW > 76 {
			modalMaxW = 76
		}
		if modalMaxW < 20 {
			modalMaxW = 20
		}

		// helpBoxStyle uses 1-cell borders and 3-cell horizontal padding.
		contentMaxW := modalMaxW - 8
		if contentMaxW < 12 {
			contentMaxW = 12
		}

		content = lipgloss.NewStyle().MaxWidth(contentMaxW).Render(content)
		overlay := helpBoxStyle.MaxWidth(modalMaxW).Render(content)
		base = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, overlay,
			lipgloss.WithWhitespaceChars(" "),
			lipgloss.WithWhitespaceForeground(colorBlack),
		)
	}

	return base
}
