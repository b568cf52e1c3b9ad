package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/vidmark/pkg/api"
	appsvc "tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/store"
	"tableflip.dev/vidmark/pkg/summary"
	"tableflip.dev/vidmark/pkg/tui/events"
)

func stripANSIString(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func testSummary() summary.VideoSummary {
	return summary.VideoSummary{
		BulletPoints: []summary.BulletPoint{
			{Timestamp: "00:10", Text: "Intro", Duration: 30, Confidence: 0.9},
			{Timestamp: "00:45", Text: "Middle", Duration: 30, Confidence: 0.8},
			{Timestamp: "01:20", Text: "End", Duration: 30, Confidence: 0.7},
		},
		MainThemes: []string{"demo"},
	}
}

func newTestService(t *testing.T) *appsvc.Service {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/videos/vid-1/bullet-points", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(api.Job{ID: "job-1", Status: api.JobCompleted, Progress: 100})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	p, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })

	if err := p.Put(&store.Session{
		VideoID:         "vid-1",
		Summary:         testSummary(),
		DurationSeconds: 300,
		Probed:          true,
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	svc := appsvc.New(p, api.NewClient(api.Config{BaseURL: server.URL}), editor.Config{})
	svc.PollInterval = time.Millisecond
	return svc
}

// drain pumps every queued bridge message through Update.
func drain(t *testing.T, m *Model) {
	t.Helper()
	for {
		select {
		case msg := <-m.events:
			m.Update(msg)
		default:
			return
		}
	}
}

func TestViewShowsSessionBullets(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	view, _ := m.View()
	plain := stripANSIString(view)
	for _, want := range []string{"vid-1", "Intro", "Middle", "End", "Timeline"} {
		if !strings.Contains(plain, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, plain)
		}
	}
}

func TestCommittedEditFlowsBackIntoViews(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	bullets := m.ed.Bullets()
	text := "Rewritten intro"
	if err := m.ed.Update(bullets[0].ID, editor.Patch{Text: &text}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	drain(t, m)

	view, _ := m.View()
	if !strings.Contains(stripANSIString(view), "Rewritten intro") {
		t.Fatal("expected the committed edit rendered in the list")
	}
}

func TestSaveClearsUnsavedState(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	bullets := m.ed.Bullets()
	text := "changed"
	if err := m.ed.Update(bullets[0].ID, editor.Patch{Text: &text}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	drain(t, m)
	if !m.ed.Unsaved() {
		t.Fatal("expected unsaved state after a commit")
	}

	cmd := m.save()
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	if !m.saving {
		t.Fatal("expected the save marked in flight")
	}

	msg := cmd()
	result, ok := msg.(events.SaveResultMsg)
	if !ok {
		t.Fatalf("expected a save result, got %T", msg)
	}
	if result.Err != nil {
		t.Fatalf("save: %v", result.Err)
	}
	m.Update(result)
	drain(t, m)

	if m.saving {
		t.Fatal("expected the in-flight flag cleared")
	}
	if m.ed.Unsaved() {
		t.Fatal("expected unsaved cleared after a successful save")
	}
}

func TestClickOnRenderedTrackGrabsMarker(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	// Locate the track in the rendered frame instead of trusting the
	// layout math; the mouse mapping must agree with what is on screen.
	view, _ := m.View()
	lines := strings.Split(stripANSIString(view), "\n")
	row, col := -1, -1
	for y, line := range lines {
		if !strings.Contains(line, "╏") {
			continue
		}
		row = y
		for x, r := range []rune(line) {
			if r == '◆' {
				col = x
				break
			}
		}
		break
	}
	if row < 0 || col < 0 {
		t.Fatalf("no track with markers in the rendered view:\n%s", strings.Join(lines, "\n"))
	}

	m.Update(tea.MouseClickMsg{X: col, Y: row})
	if !m.timeline.Grabbed() {
		t.Fatalf("click on the rendered track row (%d) did not grab a marker", row)
	}

	m.Update(tea.MouseReleaseMsg{X: col, Y: row})
	if m.timeline.Grabbed() {
		t.Fatal("expected the release to end the drag")
	}
}

func TestSaveKeyRoutesThroughRequest(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	bullets := m.ed.Bullets()
	text := "changed"
	if err := m.ed.Update(bullets[0].ID, editor.Patch{Text: &text}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	drain(t, m)

	_, cmd := m.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected a command from the save key")
	}
	req, ok := cmd().(events.SaveRequestMsg)
	if !ok {
		t.Fatalf("expected a save request, got %T", cmd())
	}

	_, cmd = m.Update(req)
	if !m.saving {
		t.Fatal("expected the save marked in flight")
	}
	msg := cmd()
	result, ok := msg.(events.SaveResultMsg)
	if !ok {
		t.Fatalf("expected a save result, got %T", msg)
	}
	if result.Err != nil {
		t.Fatalf("save: %v", result.Err)
	}
	m.Update(result)
	drain(t, m)
	if m.ed.Unsaved() {
		t.Fatal("expected unsaved cleared after the key-driven save")
	}
}

func TestOutsideRefreshSkippedWhileUnsaved(t *testing.T) {
	svc := newTestService(t)
	m, err := New(svc, "vid-1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	bullets := m.ed.Bullets()
	text := "local work"
	if err := m.ed.Update(bullets[0].ID, editor.Patch{Text: &text}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	drain(t, m)

	// An outside pull lands in the store, but local unsaved work wins.
	outside := testSummary()
	outside.BulletPoints[0].Text = "outside change"
	if err := svc.Persistence.Put(&store.Session{
		VideoID: "vid-1",
		Summary: outside,
		Probed:  true,
	}); err != nil {
		t.Fatalf("outside put: %v", err)
	}
	m.Update(events.SessionRefreshMsg{VideoID: "vid-1"})
	drain(t, m)

	if got := m.ed.Bullets()[0].Text; got != "local work" {
		t.Fatalf("refresh clobbered local work, got %q", got)
	}
}
