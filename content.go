package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

// ─── Content ─────────────────────────────────────────────────────────────────
//
// Case studies and the about page ship inside the binary. Setting
// content_dir points the app at an editable copy on disk instead, which is
// then watched for changes.

//go:embed content
var embeddedContent embed.FS

// heroLines are the boot messages the hero sequencer types out.
var heroLines = []string{
	"Booting intelligent systems…",
	"Loading AI workflows & tools…",
	"Portfolio model v2025 online.",
}

// contentFS returns the content root for dir, or the embedded tree when dir
// is empty.
func contentFS(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embeddedContent, "content")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir: %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// loadCaseStudies scans the case-studies folder of the content root.
func loadCaseStudies(root fs.FS) ([]caseStudy, error) {
	sub, err := caseStudyDir(root)
	if err != nil {
		return nil, err
	}
	studies, err := scanCaseStudies(sub)
	if err != nil {
		return nil, fmt.Errorf("scanning case studies: %w", err)
	}
	return studies, nil
}

// loadAbout returns the about page markdown with the contact line appended.
func loadAbout(root fs.FS, email string) (string, error) {
	data, err := fs.ReadFile(root, "about.md")
	if err != nil {
		return "", fmt.Errorf("reading about page: %w", err)
	}
	md := string(data)
	if email != "" {
		md += fmt.Sprintf("\n## Contact\n\n%s · press **y** to copy\n", email)
	}
	return md, nil
}

// loadContent reads both pages. It runs inside a tea.Cmd on reload.
func loadContent(dir, email string) (contentLoadedMsg, error) {
	root, err := contentFS(dir)
	if err != nil {
		return contentLoadedMsg{}, err
	}
	studies, err := loadCaseStudies(root)
	if err != nil {
		return contentLoadedMsg{}, err
	}
	about, err := loadAbout(root, email)
	if err != nil {
		return contentLoadedMsg{}, err
	}
	return contentLoadedMsg{studies: studies, about: about}, nil
}
