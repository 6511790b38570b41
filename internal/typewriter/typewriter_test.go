package typewriter

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var bootLines = []string{
	"Booting intelligent systems…",
	"Loading AI workflows & tools…",
	"Portfolio model v2025 online.",
}

// drive runs cmd synchronously and feeds the resulting messages back into
// m until no command is pending. observe is called after every update.
func drive(t *testing.T, m Model, cmd tea.Cmd, observe func(Model)) Model {
	t.Helper()
	for steps := 0; cmd != nil; steps++ {
		if steps > 10000 {
			t.Fatal("sequencer did not settle")
		}
		msg := cmd()
		m, cmd = m.Update(msg)
		if observe != nil {
			observe(m)
		}
	}
	return m
}

func fast(lines []string) Model {
	return New(lines, WithCharDelay(0), WithStepDelay(0))
}

func TestNewIsIdleAndEmpty(t *testing.T) {
	m := New(bootLines)
	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
	for i, l := range m.Lines() {
		if l.DisplayedText != "" || l.Completed {
			t.Errorf("line %d = %+v, want empty", i, l)
		}
	}
	if m.View() != "" {
		t.Errorf("View before start = %q, want empty", m.View())
	}
}

func TestRunsToCompletion(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	m = drive(t, m, cmd, nil)
	if m.State() != Done {
		t.Fatalf("state = %v, want done", m.State())
	}
	for i, l := range m.Lines() {
		if !l.Completed || l.DisplayedText != bootLines[i] {
			t.Errorf("line %d = %+v, want completed %q", i, l, bootLines[i])
		}
	}
}

func TestRevealInvariants(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	prev := m.Lines()
	drive(t, m, cmd, func(m Model) {
		lines := m.Lines()
		for i, l := range lines {
			if !strings.HasPrefix(l.FullText, l.DisplayedText) {
				t.Fatalf("line %d: %q is not a prefix of %q", i, l.DisplayedText, l.FullText)
			}
			if len([]rune(l.DisplayedText)) < len([]rune(prev[i].DisplayedText)) {
				t.Fatalf("line %d shrank from %q to %q", i, prev[i].DisplayedText, l.DisplayedText)
			}
			if l.Completed != (l.DisplayedText == l.FullText) {
				t.Fatalf("line %d completed=%v with %q/%q", i, l.Completed, l.DisplayedText, l.FullText)
			}
			if i > 0 && l.DisplayedText != "" && !lines[i-1].Completed {
				t.Fatalf("line %d started before line %d completed", i, i-1)
			}
		}
		prev = lines
	})
}

func TestOneCharacterPerTick(t *testing.T) {
	m, cmd := fast([]string{"héllo"}).Start()
	var seen []string
	drive(t, m, cmd, func(m Model) {
		seen = append(seen, m.Lines()[0].DisplayedText)
	})
	want := []string{"h", "hé", "hél", "héll", "héllo"}
	if strings.Join(seen, "|") != strings.Join(want, "|") {
		t.Errorf("reveal sequence = %q, want %q", seen, want)
	}
}

func TestStartIsNotReentrant(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	if cmd == nil {
		t.Fatal("Start returned no command")
	}
	m2, cmd2 := m.Start()
	if cmd2 != nil {
		t.Error("second Start scheduled a timer")
	}
	if m2.State() != m.State() {
		t.Errorf("second Start changed state to %v", m2.State())
	}
}

func TestEmptyLinesAreDoneImmediately(t *testing.T) {
	m, cmd := New(nil).Start()
	if cmd != nil {
		t.Error("empty sequencer scheduled a timer")
	}
	if m.State() != Done || !m.Finished() {
		t.Errorf("state = %v, want done", m.State())
	}
	if m.View() != "" {
		t.Errorf("View = %q, want empty", m.View())
	}
}

func TestEmptyStringLineCompletesWithoutTyping(t *testing.T) {
	m, cmd := fast([]string{"", "ok"}).Start()
	if !m.Lines()[0].Completed {
		t.Fatal("empty first line should complete on start")
	}
	m = drive(t, m, cmd, nil)
	if got := m.Lines()[1].DisplayedText; got != "ok" {
		t.Errorf("second line = %q, want ok", got)
	}
}

func TestReducedMotionRevealsEverythingAtStart(t *testing.T) {
	m, cmd := New(bootLines, WithReducedMotion(true)).Start()
	if cmd != nil {
		t.Error("reduced motion scheduled a timer")
	}
	if m.State() != Done {
		t.Errorf("state = %v, want done", m.State())
	}
	for i, l := range m.Lines() {
		if !l.Completed || l.DisplayedText != bootLines[i] {
			t.Errorf("line %d = %+v, want full text", i, l)
		}
	}
}

func TestReducedMotionToggleMidSequence(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	m, cmd = m.Update(cmd())
	if m.State() != Typing {
		t.Fatalf("state = %v, want typing", m.State())
	}
	m = m.SetReducedMotion(true)
	if m.State() != Done {
		t.Fatalf("state = %v, want done after toggle", m.State())
	}
	for i, l := range m.Lines() {
		if !l.Completed {
			t.Errorf("line %d not completed after toggle", i)
		}
	}
	// The timer scheduled before the toggle is stale.
	if _, next := m.Update(cmd()); next != nil {
		t.Error("stale tick scheduled more work")
	}
}

func TestSkipIsTerminalAndIdempotent(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	m, cmd = m.Update(cmd())
	m, _ = m.Update(cmd())

	once := m.Skip()
	twice := once.Skip()
	for _, s := range []Model{once, twice} {
		if s.State() != Skipped {
			t.Errorf("state = %v, want skipped", s.State())
		}
		for i, l := range s.Lines() {
			if !l.Completed || l.DisplayedText != bootLines[i] {
				t.Errorf("line %d = %+v after skip", i, l)
			}
		}
	}
	if once.View() != twice.View() {
		t.Error("second skip changed the rendered output")
	}

	// A tick that was in flight when skip happened does nothing.
	after, next := twice.Update(TickMsg{ID: m.id, tag: m.tag, kind: charTick})
	if next != nil || after.State() != Skipped {
		t.Errorf("tick after skip: state %v, cmd %v", after.State(), next != nil)
	}
}

func TestSkipBeforeStart(t *testing.T) {
	m := New(bootLines).Skip()
	m, cmd := m.Start()
	if cmd != nil {
		t.Error("Start after Skip scheduled a timer")
	}
	if m.State() != Skipped {
		t.Errorf("state = %v, want skipped", m.State())
	}
}

func TestStopCancelsPendingTimer(t *testing.T) {
	m, cmd := fast(bootLines).Start()
	m = m.Stop()
	after, next := m.Update(cmd())
	if next != nil {
		t.Error("tick after stop scheduled more work")
	}
	if got := after.Lines()[0].DisplayedText; got != "" {
		t.Errorf("line mutated after stop: %q", got)
	}
	if _, c := after.Start(); c != nil {
		t.Error("Start after Stop scheduled a timer")
	}
}

func TestIgnoresOtherInstances(t *testing.T) {
	a, cmdA := fast(bootLines).Start()
	b, _ := fast(bootLines).Start()
	msg := cmdA()
	b2, next := b.Update(msg)
	if next != nil || b2.Lines()[0].DisplayedText != "" {
		t.Error("sequencer consumed another instance's tick")
	}
	a, _ = a.Update(msg)
	if a.Lines()[0].DisplayedText == "" {
		t.Error("sequencer ignored its own tick")
	}
}

// Two lines, 10ms per character, 50ms between lines: both complete after
// roughly 10+50+20ms.
func TestScenarioTiming(t *testing.T) {
	start := time.Now()
	m, cmd := New([]string{"a", "bb"},
		WithCharDelay(10*time.Millisecond),
		WithStepDelay(50*time.Millisecond),
	).Start()

	var aDoneAt, bStartedAt time.Duration
	m = drive(t, m, cmd, func(m Model) {
		lines := m.Lines()
		if lines[0].Completed && aDoneAt == 0 {
			aDoneAt = time.Since(start)
		}
		if lines[1].DisplayedText != "" && bStartedAt == 0 {
			bStartedAt = time.Since(start)
		}
	})
	elapsed := time.Since(start)

	if gap := bStartedAt - aDoneAt; gap < 50*time.Millisecond {
		t.Errorf("second line started %v after the first completed, want >= 50ms", gap)
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("sequence finished in %v, want >= 80ms", elapsed)
	}
	got := m.Lines()
	if !got[0].Completed || got[0].DisplayedText != "a" || !got[1].Completed || got[1].DisplayedText != "bb" {
		t.Errorf("final lines = %+v", got)
	}
}

// Skipping 5ms in, before the first line finishes, completes both lines and
// nothing changes once the remaining delays have passed.
func TestScenarioSkipEarly(t *testing.T) {
	m, cmd := New([]string{"a", "bb"},
		WithCharDelay(10*time.Millisecond),
		WithStepDelay(50*time.Millisecond),
	).Start()

	time.Sleep(5 * time.Millisecond)
	m = m.Skip()
	want := m.Lines()
	for _, l := range want {
		if !l.Completed || l.DisplayedText != l.FullText {
			t.Fatalf("line %+v not complete right after skip", l)
		}
	}

	after, next := m.Update(cmd())
	if next != nil {
		t.Error("pending timer survived skip")
	}
	time.Sleep(70 * time.Millisecond)
	got := after.Lines()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d changed after skip: %+v -> %+v", i, want[i], got[i])
		}
	}
}

func TestViewMarkers(t *testing.T) {
	m, cmd := fast([]string{"ab", "cd"}).Start()
	m, cmd = m.Update(cmd()) // "a"
	v := m.View()
	if !strings.Contains(v, "a▍") {
		t.Errorf("typing view missing cursor: %q", v)
	}
	if strings.Contains(v, "✔") {
		t.Errorf("typing view has a check mark: %q", v)
	}
	if strings.Count(v, "\n") != 0 {
		t.Errorf("second line rendered before it started: %q", v)
	}

	m, _ = m.Update(cmd()) // "ab", settling
	v = m.View()
	if !strings.Contains(v, "ab ✔") {
		t.Errorf("completed line missing check: %q", v)
	}
	if strings.Contains(v, "▍") {
		t.Errorf("settling view still shows a cursor: %q", v)
	}
}
