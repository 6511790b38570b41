package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/fsnotify/fsnotify"
	"github.com/jakebf/folio/internal/analytics"
)

// lastSelfWrite tracks when we last wrote the config file ourselves.
// The file watcher checks this to skip events caused by our own writes.
var lastSelfWrite atomic.Int64

// rendererPool caches glamour renderers keyed by "style:width".
// Each key maps to a sync.Pool so concurrent goroutines get their own instance.
var (
	rendererPoolMu sync.Mutex
	rendererPools  = make(map[string]*sync.Pool)
)

func getRenderer(style string, width int) (*glamour.TermRenderer, error) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool, ok := rendererPools[key]
	if !ok {
		pool = &sync.Pool{}
		rendererPools[key] = pool
	}
	rendererPoolMu.Unlock()

	if r, _ := pool.Get().(*glamour.TermRenderer); r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create renderer for %s: %w", key, err)
	}
	return r, nil
}

func putRenderer(style string, width int, r *glamour.TermRenderer) {
	key := fmt.Sprintf("%s:%d", style, width)
	rendererPoolMu.Lock()
	pool := rendererPools[key]
	rendererPoolMu.Unlock()
	if pool != nil {
		pool.Put(r)
	}
}

// ─── Commands ────────────────────────────────────────────────────────────────

func glamourRender(markdown, style string, width int) string {
	pw := width - 4
	if pw < 20 {
		pw = 80
	}
	r, err := getRenderer(style, pw)
	if err != nil {
		return markdown
	}
	rendered, err := r.Render(markdown)
	putRenderer(style, pw, r)
	if err != nil {
		return markdown
	}
	return rendered
}

func renderCaseStudy(c caseStudy, style string, width int) tea.Cmd {
	md := c.markdown()
	return func() tea.Msg {
		return previewMsg{slug: c.slug, width: width, content: glamourRender(md, style, width)}
	}
}

func renderAbout(markdown, style string, width int) tea.Cmd {
	return func() tea.Msg {
		return aboutRenderedMsg{width: width, content: glamourRender(markdown, style, width)}
	}
}

func reloadContent(dir, email string) tea.Cmd {
	return func() tea.Msg {
		msg, err := loadContent(dir, email)
		if err != nil {
			return errMsg{err}
		}
		return msg
	}
}

func persistConfig(path string, cfg config) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lastSelfWrite.Store(time.Now().UnixMilli())
		if err := saveConfig(path, cfg); err != nil {
			return errMsg{fmt.Errorf("saving config: %w", err)}
		}
		return nil
	}
}

// trackCmd records an event off the update loop. Failures are logged only;
// analytics never interrupts the UI.
func trackCmd(t analytics.Tracker, name string, props map[string]string) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := t.Track(ctx, name, props); err != nil {
			log.Printf("analytics: %s: %v", name, err)
		}
		return nil
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return errMsg{fmt.Errorf("copy failed: %w", err)}
		}
		return copiedMsg{text: text}
	}
}

// ─── Watcher ─────────────────────────────────────────────────────────────────

// watchFiles watches the content directories and the config file. It sends
// configChangedMsg when configFile changes and contentChangedMsg for any .md
// change, with a small debounce to coalesce rapid writes.
func watchFiles(watcher *fsnotify.Watcher, configFile string) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				configHit, contentHit := classifyEvent(ev.Name, configFile)
				if !configHit && !contentHit {
					continue
				}
				time.Sleep(100 * time.Millisecond)
			drain:
				for {
					select {
					case extra, ok := <-watcher.Events:
						if !ok {
							break drain
						}
						c, m := classifyEvent(extra.Name, configFile)
						configHit = configHit || c
						contentHit = contentHit || m
					default:
						break drain
					}
				}
				// Skip events caused by our own config writes
				if configHit && time.Since(time.UnixMilli(lastSelfWrite.Load())) < 500*time.Millisecond {
					configHit = false
				}
				switch {
				case configHit:
					cfg, err := loadConfig(configFile)
					return configChangedMsg{cfg: cfg, err: err}
				case contentHit:
					return contentChangedMsg{}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("watcher: %v", err)
			}
		}
	}
}

func classifyEvent(name, configFile string) (isConfig, isContent bool) {
	if configFile != "" && filepath.Clean(name) == filepath.Clean(configFile) {
		return true, false
	}
	return false, strings.HasSuffix(name, ".md")
}

// watchPaths lists the directories to watch: the config file's directory
// and, when content lives on disk, the content root and its case studies.
func watchPaths(configFile, contentDir string) []string {
	var paths []string
	if configFile != "" {
		paths = append(paths, filepath.Dir(configFile))
	}
	if contentDir != "" {
		paths = append(paths, contentDir, filepath.Join(contentDir, "case-studies"))
	}
	return paths
}
