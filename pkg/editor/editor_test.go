package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/vidmark/pkg/summary"
)

type recorder struct {
	changes  []summary.VideoSummary
	previews [][]Bullet
	unsaved  []bool
}

func (r *recorder) attach(e *Editor) {
	e.OnChange = func(s summary.VideoSummary) { r.changes = append(r.changes, s) }
	e.OnPreview = func(b []Bullet) { r.previews = append(r.previews, b) }
	e.OnUnsaved = func(u bool) { r.unsaved = append(r.unsaved, u) }
}

type fakeRegen struct {
	calls  int
	err    error
	during func()
}

func (f *fakeRegen) UpdateBulletPoints(ctx context.Context, videoID string, sum summary.VideoSummary) error {
	f.calls++
	if f.during != nil {
		f.during()
	}
	return f.err
}

func points(ts ...string) []summary.BulletPoint {
	out := make([]summary.BulletPoint, len(ts))
	for i, t := range ts {
		out[i] = summary.BulletPoint{Timestamp: t, Text: "point " + t, Duration: 30, Confidence: 0.9}
	}
	return out
}

func load(e *Editor, ts ...string) {
	e.Load(summary.VideoSummary{BulletPoints: points(ts...), MainThemes: []string{"theme one"}})
}

func timestamps(bullets []Bullet) []string {
	out := make([]string, len(bullets))
	for i, b := range bullets {
		out[i] = b.Timestamp
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strptr(s string) *string { return &s }

func f64ptr(f float64) *float64 { return &f }

func TestLoadSortsAndAssignsIDs(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "01:30", "00:10", "00:45")

	got := e.Bullets()
	if want := []string{"00:10", "00:45", "01:30"}; !sameStrings(timestamps(got), want) {
		t.Fatalf("expected %v, got %v", want, timestamps(got))
	}
	seen := map[string]bool{}
	for _, b := range got {
		if b.ID == "" {
			t.Fatalf("bullet without id")
		}
		if seen[b.ID] {
			t.Fatalf("duplicate id %s", b.ID)
		}
		seen[b.ID] = true
	}
	if e.Unsaved() {
		t.Fatalf("load should reset the unsaved flag")
	}
}

func TestLoadReplacesWholeCollection(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50", "01:10")
	if err := e.Remove(e.Bullets()[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !e.Unsaved() {
		t.Fatalf("expected unsaved after remove")
	}

	load(e, "00:05", "00:25", "00:55")
	got := e.Bullets()
	if len(got) != 3 {
		t.Fatalf("expected full replacement, got %d bullets", len(got))
	}
	if e.Unsaved() {
		t.Fatalf("reload should reset the unsaved flag")
	}
}

func TestAddAppendsAfterLastEnd(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")

	b := e.Add()
	// 50s + 30s duration + 5s gap.
	if b.Timestamp != "01:25" {
		t.Fatalf("expected 01:25, got %s", b.Timestamp)
	}
	if b.Text != DefaultText {
		t.Fatalf("expected default text, got %q", b.Text)
	}
	if b.Duration != DefaultDuration {
		t.Fatalf("expected default duration, got %v", b.Duration)
	}
	if b.Confidence != DefaultConfidence {
		t.Fatalf("expected default confidence, got %v", b.Confidence)
	}
	if e.EditingID() != b.ID {
		t.Fatalf("expected new bullet in edit state")
	}
	if !e.Unsaved() {
		t.Fatalf("expected unsaved after add")
	}
}

func TestAddFromEmpty(t *testing.T) {
	e := New("vid-1", Config{})
	b := e.Add()
	if b.Timestamp != "00:00" {
		t.Fatalf("expected 00:00, got %s", b.Timestamp)
	}
}

func TestAddCapsAtVideoEnd(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	e.SetTotalDuration(60)

	b := e.Add()
	if b.Timestamp != "00:59" {
		t.Fatalf("expected cap just inside the video, got %s", b.Timestamp)
	}
}

func TestRemoveAtMinimumRejected(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	before := e.Bullets()

	err := e.Remove(before[1].ID)
	var mce *MinimumCountError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MinimumCountError, got %v", err)
	}
	if mce.Min != 3 || mce.Count != 3 {
		t.Fatalf("unexpected error detail: %+v", mce)
	}

	after := e.Bullets()
	if len(after) != len(before) {
		t.Fatalf("collection changed size on rejected remove")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("collection content changed on rejected remove")
		}
	}
}

func TestRemoveAboveMinimum(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50", "01:10")
	rec := &recorder{}
	rec.attach(e)

	if err := e.Remove(e.Bullets()[3].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := e.Len(); got != 3 {
		t.Fatalf("expected 3 bullets, got %d", got)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("expected one change notification, got %d", len(rec.changes))
	}
	if !e.Unsaved() {
		t.Fatalf("expected unsaved after remove")
	}
}

func TestRemoveUnknownID(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50", "01:10")
	if err := e.Remove("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitTimestampResorts(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30")
	a, b := e.Bullets()[0], e.Bullets()[1]

	if err := e.Update(a.ID, Patch{Timestamp: strptr("00:40")}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got := e.Bullets()
	if got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("expected order to flip, got %v then %v", got[0].Timestamp, got[1].Timestamp)
	}
}

func TestNonCommitIsolation(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	rec := &recorder{}
	rec.attach(e)
	a := e.Bullets()[0]

	for i := 0; i < 10; i++ {
		if err := e.Update(a.ID, Patch{Timestamp: strptr("09:59")}, false); err != nil {
			t.Fatalf("stage: %v", err)
		}
	}
	if len(rec.changes) != 0 {
		t.Fatalf("staging fired %d change notifications", len(rec.changes))
	}
	if got := e.Bullets()[0]; got.Timestamp != "00:10" {
		t.Fatalf("staging mutated the committed bullet: %s", got.Timestamp)
	}

	if err := e.Update(a.ID, Patch{}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("expected one change notification after commit, got %d", len(rec.changes))
	}
	got := e.Bullets()
	if got[len(got)-1].ID != a.ID || got[len(got)-1].Timestamp != "09:59" {
		t.Fatalf("expected staged timestamp committed and sorted last")
	}
}

func TestInvalidCommitKeepsEditing(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a := e.Bullets()[0]
	if err := e.StartEdit(a.ID); err != nil {
		t.Fatalf("start edit: %v", err)
	}

	err := e.Update(a.ID, Patch{Timestamp: strptr("7:00")}, true)
	if err == nil {
		t.Fatalf("expected format error")
	}
	if e.EditingID() != a.ID {
		t.Fatalf("invalid commit should keep the bullet in edit state")
	}
	if _, ok := e.Draft(a.ID); !ok {
		t.Fatalf("invalid commit should keep the draft")
	}
	if got := e.Bullets()[0].Timestamp; got != "00:10" {
		t.Fatalf("invalid commit mutated the bullet: %s", got)
	}

	if err := e.Update(a.ID, Patch{Timestamp: strptr("00:12")}, true); err != nil {
		t.Fatalf("valid commit after fix: %v", err)
	}
	if e.EditingID() != "" {
		t.Fatalf("successful commit should leave edit state")
	}
}

func TestCommitPastVideoEnd(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	e.SetTotalDuration(120)
	a := e.Bullets()[0]

	err := e.Update(a.ID, Patch{Timestamp: strptr("02:30")}, true)
	var dbe *DurationBoundsError
	if !errors.As(err, &dbe) {
		t.Fatalf("expected DurationBoundsError, got %v", err)
	}
	if dbe.Seconds != 150 {
		t.Fatalf("unexpected seconds: %d", dbe.Seconds)
	}
}

func TestCommitBoundInertWithoutDuration(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a := e.Bullets()[0]
	if err := e.Update(a.ID, Patch{Timestamp: strptr("90:00")}, true); err != nil {
		t.Fatalf("bound should be inert with unknown duration: %v", err)
	}
}

func TestCommitClampsDuration(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a := e.Bullets()[0]

	if err := e.Update(a.ID, Patch{Duration: f64ptr(99)}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := e.Bullets()[0].Duration; got != DefaultDurationMax {
		t.Fatalf("expected clamp to %v, got %v", DefaultDurationMax, got)
	}
	if err := e.Update(a.ID, Patch{Duration: f64ptr(2)}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := e.Bullets()[0].Duration; got != DefaultDurationMin {
		t.Fatalf("expected clamp to %v, got %v", DefaultDurationMin, got)
	}
}

func TestCommitTruncatesText(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a := e.Bullets()[0]

	long := strings.Repeat("x", summary.MaxTextLen+20)
	if err := e.Update(a.ID, Patch{Text: strptr(long)}, true); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := e.Bullets()[0].Text; len([]rune(got)) != summary.MaxTextLen {
		t.Fatalf("expected text capped at %d, got %d", summary.MaxTextLen, len([]rune(got)))
	}
}

func TestMoveUpSwapsTimestampsOnly(t *testing.T) {
	e := New("vid-1", Config{})
	e.Load(summary.VideoSummary{BulletPoints: []summary.BulletPoint{
		{Timestamp: "00:05", Text: "X", Duration: 30, Confidence: 0.9},
		{Timestamp: "00:20", Text: "Y", Duration: 30, Confidence: 0.9},
	}})
	a, b := e.Bullets()[0], e.Bullets()[1]

	if err := e.MoveUp(b.ID); err != nil {
		t.Fatalf("move up: %v", err)
	}
	got := e.Bullets()
	if got[0].ID != b.ID || got[0].Timestamp != "00:05" || got[0].Text != "Y" {
		t.Fatalf("expected Y first at 00:05, got %+v", got[0])
	}
	if got[1].ID != a.ID || got[1].Timestamp != "00:20" || got[1].Text != "X" {
		t.Fatalf("expected X second at 00:20, got %+v", got[1])
	}
}

func TestMoveAtBoundariesNoop(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30")
	rec := &recorder{}
	rec.attach(e)
	first, last := e.Bullets()[0], e.Bullets()[1]

	if err := e.MoveUp(first.ID); err != nil {
		t.Fatalf("move up at top: %v", err)
	}
	if err := e.MoveDown(last.ID); err != nil {
		t.Fatalf("move down at bottom: %v", err)
	}
	if len(rec.changes) != 0 {
		t.Fatalf("boundary no-ops fired %d notifications", len(rec.changes))
	}
	if got := timestamps(e.Bullets()); !sameStrings(got, []string{"00:10", "00:30"}) {
		t.Fatalf("boundary no-op changed order: %v", got)
	}
}

func TestDragCollisionPush(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:15")
	// 1 cell marker on a 15 cell track over 100s scales to a minimum gap
	// of exactly 8s.
	e.SetTotalDuration(100)
	e.SetTrackMetrics(1, 15)
	rec := &recorder{}
	rec.attach(e)
	second := e.Bullets()[1]

	got, err := e.DragReposition(second.ID, 11)
	if err != nil {
		t.Fatalf("drag: %v", err)
	}
	if got != 18 {
		t.Fatalf("expected push to 18, got %v", got)
	}
	if len(rec.changes) != 0 {
		t.Fatalf("mid-drag fired %d change notifications", len(rec.changes))
	}
	if len(rec.previews) == 0 {
		t.Fatalf("expected a preview notification")
	}
	preview := rec.previews[len(rec.previews)-1]
	if preview[1].Timestamp != "00:18" {
		t.Fatalf("expected staged 00:18 in preview, got %s", preview[1].Timestamp)
	}
	if got := timestamps(e.Bullets()); !sameStrings(got, []string{"00:10", "00:15"}) {
		t.Fatalf("mid-drag mutated committed collection: %v", got)
	}
	if !e.Unsaved() {
		t.Fatalf("drag should mark unsaved")
	}
}

func TestDragReleaseCommitsAndResorts(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:15")
	e.SetTotalDuration(100)
	e.SetTrackMetrics(1, 15)
	rec := &recorder{}
	rec.attach(e)
	first := e.Bullets()[0]

	// Drag the first bullet well past the second.
	if _, err := e.DragReposition(first.ID, 40); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if len(rec.changes) != 0 {
		t.Fatalf("mid-drag fired change notifications")
	}
	if err := e.ReleaseDrag(first.ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(rec.changes) != 1 {
		t.Fatalf("expected one change notification on release, got %d", len(rec.changes))
	}
	got := e.Bullets()
	if got[1].ID != first.ID || got[1].Timestamp != "00:40" {
		t.Fatalf("expected dragged bullet re-sorted to 00:40, got %+v", got)
	}
	if e.DraggingID() != "" {
		t.Fatalf("release should clear drag state")
	}
}

func TestReleaseWithoutDragNoop(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	rec := &recorder{}
	rec.attach(e)
	if err := e.ReleaseDrag(e.Bullets()[0].ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if len(rec.changes) != 0 {
		t.Fatalf("release without drag fired notifications")
	}
}

func TestSingleFocusEditing(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a, b := e.Bullets()[0], e.Bullets()[1]

	if err := e.StartEdit(a.ID); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	if err := e.Update(a.ID, Patch{Text: strptr("typed so far")}, false); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := e.StartEdit(b.ID); err != nil {
		t.Fatalf("start edit other: %v", err)
	}
	if e.EditingID() != b.ID {
		t.Fatalf("expected edit focus on second bullet")
	}
	if got := e.Bullets()[0].Text; got != "typed so far" {
		t.Fatalf("expected first bullet's valid draft committed, got %q", got)
	}
	if _, ok := e.Draft(a.ID); ok {
		t.Fatalf("expected first bullet's draft cleared")
	}
}

func TestImplicitFinalizeDropsInvalidDraft(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a, b := e.Bullets()[0], e.Bullets()[1]

	if err := e.StartEdit(a.ID); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	if err := e.Update(a.ID, Patch{Timestamp: strptr("bad")}, false); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := e.StartEdit(b.ID); err != nil {
		t.Fatalf("start edit other: %v", err)
	}
	if got := e.Bullets()[0].Timestamp; got != "00:10" {
		t.Fatalf("invalid draft should be dropped, bullet has %s", got)
	}
	if _, ok := e.Draft(a.ID); ok {
		t.Fatalf("expected invalid draft discarded")
	}
}

func TestCancelEdit(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	a := e.Bullets()[0]

	if err := e.StartEdit(a.ID); err != nil {
		t.Fatalf("start edit: %v", err)
	}
	if err := e.Update(a.ID, Patch{Text: strptr("discard me")}, false); err != nil {
		t.Fatalf("stage: %v", err)
	}
	e.CancelEdit(a.ID)
	if e.EditingID() != "" {
		t.Fatalf("cancel should leave edit state")
	}
	if got := e.Bullets()[0].Text; got == "discard me" {
		t.Fatalf("cancel committed the draft")
	}
}

func TestSortInvariantAcrossCommits(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50", "01:10")
	rec := &recorder{}
	rec.attach(e)

	edits := []string{"02:00", "00:01", "00:40", "05:30"}
	for i, ts := range edits {
		id := e.Bullets()[i%e.Len()].ID
		if err := e.Update(id, Patch{Timestamp: strptr(ts)}, true); err != nil {
			t.Fatalf("commit %q: %v", ts, err)
		}
	}
	for _, snap := range rec.changes {
		for i := 1; i < len(snap.BulletPoints); i++ {
			prev := Bullet{Timestamp: snap.BulletPoints[i-1].Timestamp}.Seconds()
			curr := Bullet{Timestamp: snap.BulletPoints[i].Timestamp}.Seconds()
			if prev > curr {
				t.Fatalf("snapshot out of order: %v", snap.BulletPoints)
			}
		}
	}
}

func TestNotificationOrder(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	rec := &recorder{}
	rec.attach(e)

	e.Add()
	if err := e.Remove(e.Bullets()[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(rec.changes) != 2 {
		t.Fatalf("expected 2 change notifications, got %d", len(rec.changes))
	}
	if got := len(rec.changes[0].BulletPoints); got != 4 {
		t.Fatalf("first snapshot should have 4 bullets, got %d", got)
	}
	if got := len(rec.changes[1].BulletPoints); got != 3 {
		t.Fatalf("second snapshot should have 3 bullets, got %d", got)
	}
}

func TestSaveBelowMinimum(t *testing.T) {
	e := New("vid-1", Config{})
	e.Load(summary.VideoSummary{BulletPoints: points("00:10", "00:30")})
	regen := &fakeRegen{}
	e.Regenerator = regen

	err := e.Save(context.Background())
	var ibe *InsufficientBulletsError
	if !errors.As(err, &ibe) {
		t.Fatalf("expected InsufficientBulletsError, got %v", err)
	}
	if regen.calls != 0 {
		t.Fatalf("collaborator should not be called under the minimum")
	}
}

func TestSaveSuccessClearsUnsaved(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	regen := &fakeRegen{}
	e.Regenerator = regen
	e.Add()
	if !e.Unsaved() {
		t.Fatalf("expected unsaved before save")
	}

	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if regen.calls != 1 {
		t.Fatalf("expected one collaborator call, got %d", regen.calls)
	}
	if e.Unsaved() {
		t.Fatalf("expected unsaved cleared after successful save")
	}
}

func TestSaveFailureKeepsUnsaved(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	regen := &fakeRegen{err: errors.New("server exploded")}
	e.Regenerator = regen
	e.Add()

	if err := e.Save(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
	if !e.Unsaved() {
		t.Fatalf("failed save must keep the unsaved flag")
	}
}

func TestSaveRacedByEditKeepsUnsaved(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	regen := &fakeRegen{}
	regen.during = func() {
		id := e.Bullets()[0].ID
		if err := e.Update(id, Patch{Text: strptr("changed mid-flight")}, true); err != nil {
			t.Errorf("mid-flight commit: %v", err)
		}
	}
	e.Regenerator = regen
	e.Add()

	if err := e.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !e.Unsaved() {
		t.Fatalf("a commit during the save must keep the unsaved flag")
	}
}

func TestSaveWithoutRegenerator(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	if err := e.Save(context.Background()); !errors.Is(err, ErrNoRegenerator) {
		t.Fatalf("expected ErrNoRegenerator, got %v", err)
	}
}

func TestWireStripsIdentity(t *testing.T) {
	e := New("vid-1", Config{})
	load(e, "00:10", "00:30", "00:50")
	wire := e.Wire()
	if len(wire.BulletPoints) != 3 {
		t.Fatalf("expected 3 wire bullets")
	}
	if len(wire.MainThemes) != 1 || wire.MainThemes[0] != "theme one" {
		t.Fatalf("expected themes preserved, got %v", wire.MainThemes)
	}
	if err := wire.Validate(); err != nil {
		t.Fatalf("wire snapshot should validate: %v", err)
	}
}
