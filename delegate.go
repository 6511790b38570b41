package main

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ─── Custom Delegate ─────────────────────────────────────────────────────────

var (
	featuredStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	plainStyle    = lipgloss.NewStyle().Foreground(colorDim)
	dateStyle     = lipgloss.NewStyle().Foreground(colorDim)
	selectedBar   = lipgloss.NewStyle().Foreground(colorAccent).SetString("│ ")
	normalBar     = lipgloss.NewStyle().SetString("  ")
)

// categoryColors are 256-color palette values chosen for readable contrast
// on dark terminals. Avoids black, white, grays, and overly dim colors.
// Prime-length palette for better hash distribution.
var categoryColors = []string{
	"204", "209", "215", "179", "149", "114", "80", "75", "111",
	"147", "183", "176", "168", "131", "173", "137", "109", "73",
	"167", "143", "103", "69", "212",
}

// categoryColor returns a consistent lipgloss.Style for a category name,
// derived from FNV-1a hash for good distribution with short strings.
func categoryColor(name string) lipgloss.Style {
	h := fnv.New32a()
	h.Write([]byte(name))
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(categoryColors[h.Sum32()%uint32(len(categoryColors))]))
}

type caseStudyDelegate struct {
	copied map[string]bool // slugs with a "Copied!" inline indicator
}

func (d caseStudyDelegate) Height() int                             { return 1 }
func (d caseStudyDelegate) Spacing() int                            { return 0 }
func (d caseStudyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d caseStudyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(caseStudy)
	if !ok {
		return
	}

	bar := normalBar
	if index == m.Index() {
		bar = selectedBar
	}

	maxW := m.Width() - 3 // -2 for bar prefix, -1 for right padding
	if maxW < 10 {
		maxW = 10
	}

	badge := plainStyle.Render("·")
	if c.meta.Featured {
		badge = featuredStyle.Render("★")
	}
	badgeW := lipgloss.Width(badge)

	var year string
	if d.copied[c.slug] {
		year = lipgloss.NewStyle().Foreground(colorAccent).Render("Copied!")
	} else if c.meta.Year != 0 {
		year = dateStyle.Render(strconv.Itoa(c.meta.Year))
	}
	yearW := lipgloss.Width(year) + 1 // +1 for leading space

	avail := maxW - badgeW - yearW
	label := c.meta.Category
	labelW := lipgloss.Width(label) + 2 // leading + trailing space
	minTitle := 10
	if avail-labelW < minTitle {
		label = ""
		labelW = 1
	}

	title := c.Title()
	plainW := labelW + lipgloss.Width(title)
	if avail > 0 && plainW > avail {
		title = truncateForWidth(title, avail-labelW)
		plainW = labelW + lipgloss.Width(title)
	}
	pad := ""
	if avail > 0 && plainW < avail {
		pad = strings.Repeat(" ", avail-plainW)
	}

	var styledText string
	if label != "" {
		styledText = " " + categoryColor(label).Render(label) + " " + title + pad
	} else {
		styledText = " " + title + pad
	}

	fmt.Fprintf(w, "%s%s%s %s ", bar, badge, styledText, year)
}
