package main

// ─── Messages ────────────────────────────────────────────────────────────────
//
// All messages are internal to the Update loop. Async tea.Cmd functions
// (in commands.go) produce these; Update handles them. Messages with an
// `id` field use generation counters to ignore stale timers.

// previewMsg delivers glamour-rendered markdown for the preview cache.
type previewMsg struct {
	slug    string
	width   int
	content string
}

// aboutRenderedMsg delivers the rendered about page.
type aboutRenderedMsg struct {
	width   int
	content string
}

// contentLoadedMsg replaces the case studies and about page after a rescan.
type contentLoadedMsg struct {
	studies []caseStudy
	about   string
}

// contentChangedMsg is sent by the content watcher after debounce.
type contentChangedMsg struct{}

// configChangedMsg carries a config file reloaded by the watcher. err is
// set when the new file could not be read; cfg is then left unused.
type configChangedMsg struct {
	cfg config
	err error
}

// copiedMsg reports a successful clipboard write.
type copiedMsg struct {
	text string
}

type copiedClearMsg struct {
	slug string
}

type statusClearMsg struct {
	id int
}

type errMsg struct {
	err error
}
