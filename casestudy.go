package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"gopkg.in/yaml.v3"
)

// ─── Types ───────────────────────────────────────────────────────────────────

type pane int

const (
	listPane pane = iota
	previewPane
)

// categories is the fixed set a case study can belong to, in filter order.
var categories = []string{"Web Apps", "WordPress", "Branding", "UI Components"}

type caseStudyMeta struct {
	Title       string            `yaml:"title"`
	Year        int               `yaml:"year"`
	Client      string            `yaml:"client"`
	Role        string            `yaml:"role"`
	Category    string            `yaml:"category"`
	Featured    bool              `yaml:"featured"`
	PublishedAt string            `yaml:"publishedAt"`
	Stack       []string          `yaml:"stack"`
	Goals       []string          `yaml:"goals"`
	KPIs        []string          `yaml:"kpis"`
	Problem     string            `yaml:"problem"`
	Approach    string            `yaml:"approach"`
	Solution    string            `yaml:"solution"`
	Impact      string            `yaml:"impact"`
	Gallery     []string          `yaml:"gallery"`
	Links       map[string]string `yaml:"links"`
}

type caseStudy struct {
	meta      caseStudyMeta
	slug      string    // file name without .md
	published time.Time // parsed PublishedAt
	body      string    // markdown after the frontmatter
}

// Title is the display title. The featured star is drawn by the delegate.
func (c caseStudy) Title() string { return c.meta.Title }

func (c caseStudy) FilterValue() string {
	return strings.Join([]string{c.meta.Title, c.meta.Client, c.meta.Category, strings.Join(c.meta.Stack, " ")}, " ")
}

// markdown renders the case study as a single markdown document for the
// preview pane.
func (c caseStudy) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.meta.Title)

	var meta []string
	if c.meta.Client != "" {
		meta = append(meta, "**Client:** "+c.meta.Client)
	}
	if c.meta.Role != "" {
		meta = append(meta, "**Role:** "+c.meta.Role)
	}
	if c.meta.Year != 0 {
		meta = append(meta, fmt.Sprintf("**Year:** %d", c.meta.Year))
	}
	if c.meta.Category != "" {
		meta = append(meta, "**Category:** "+c.meta.Category)
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")
	}
	if len(c.meta.Stack) > 0 {
		fmt.Fprintf(&b, "`%s`\n\n", strings.Join(c.meta.Stack, "` `"))
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
		b.WriteString("\n")
	}
	writeSection := func(title, text string) {
		if text == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, text)
	}

	writeList("Goals", c.meta.Goals)
	writeList("Results", c.meta.KPIs)
	writeSection("Problem", c.meta.Problem)
	writeSection("Approach", c.meta.Approach)
	writeSection("Solution", c.meta.Solution)
	writeSection("Impact", c.meta.Impact)

	if body := strings.TrimSpace(c.body); body != "" {
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	if len(c.meta.Links) > 0 {
		keys := make([]string, 0, len(c.meta.Links))
		for k := range c.meta.Links {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("## Links\n\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, c.meta.Links[k])
		}
	}
	return b.String()
}

// ─── Scanning ────────────────────────────────────────────────────────────────

// splitFrontmatter separates a leading --- delimited block from the body.
// ok is false when there is no complete frontmatter block.
func splitFrontmatter(content string) (front, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || lines[0] != "---" {
		return "", content, false
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", content, false
}

var errNoFrontmatter = errors.New("missing frontmatter")

// parseCaseStudy decodes one markdown file. The title is required and the
// category must be one of categories.
func parseCaseStudy(slug, content string) (caseStudy, error) {
	front, body, ok := splitFrontmatter(content)
	if !ok {
		return caseStudy{}, errNoFrontmatter
	}
	var meta caseStudyMeta
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		return caseStudy{}, fmt.Errorf("frontmatter: %w", err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return caseStudy{}, errors.New("frontmatter: title is required")
	}
	if !slices.Contains(categories, meta.Category) {
		return caseStudy{}, fmt.Errorf("frontmatter: unknown category %q", meta.Category)
	}
	c := caseStudy{meta: meta, slug: slug, body: body}
	if meta.PublishedAt != "" {
		t, err := time.Parse("2006-01-02", meta.PublishedAt)
		if err != nil {
			return caseStudy{}, fmt.Errorf("frontmatter: publishedAt: %w", err)
		}
		c.published = t
	}
	return c, nil
}

// scanCaseStudies reads every .md file at the top of fsys. Files that fail
// to parse are logged and skipped.
func scanCaseStudies(fsys fs.FS) ([]caseStudy, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var studies []caseStudy
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			log.Printf("skipping %s: %v", e.Name(), err)
			continue
		}
		c, err := parseCaseStudy(strings.TrimSuffix(e.Name(), ".md"), string(data))
		if err != nil {
			log.Printf("skipping %s: %v", e.Name(), err)
			continue
		}
		studies = append(studies, c)
	}
	sortCaseStudies(studies)
	return studies, nil
}

// sortCaseStudies orders featured work first, then newest first.
func sortCaseStudies(studies []caseStudy) {
	sort.SliceStable(studies, func(i, j int) bool {
		a, b := studies[i], studies[j]
		if a.meta.Featured != b.meta.Featured {
			return a.meta.Featured
		}
		if !a.published.Equal(b.published) {
			return a.published.After(b.published)
		}
		return a.meta.Title < b.meta.Title
	})
}

// filterCaseStudies keeps the studies in category. An empty category keeps
// everything.
func filterCaseStudies(studies []caseStudy, category string) []caseStudy {
	if category == "" {
		return studies
	}
	var out []caseStudy
	for _, c := range studies {
		if c.meta.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// cycleCategory steps through "" (all) and each category in order.
func cycleCategory(current string, delta int) string {
	options := append([]string{""}, categories...)
	idx := slices.Index(options, current)
	if idx < 0 {
		idx = 0
	}
	n := len(options)
	return options[((idx+delta)%n+n)%n]
}

func categoryLabel(category string) string {
	if category == "" {
		return "All Projects"
	}
	return category
}

func caseStudiesToItems(studies []caseStudy) []list.Item {
	items := make([]list.Item, len(studies))
	for i, c := range studies {
		items[i] = c
	}
	return items
}

// caseStudyDir is the case-study folder inside a content tree.
func caseStudyDir(root fs.FS) (fs.FS, error) {
	return fs.Sub(root, "case-studies")
}
