// Package editor owns the authoritative bullet collection for one video.
// It is the only component allowed to mutate the collection: views render
// the snapshots it publishes and hand user intent back as operations.
// State lives locally, mutations emit notifications in call order, and
// consumers read consistent copies without reaching into editor internals.
package editor

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tableflip.dev/vidmark/pkg/spacing"
	"tableflip.dev/vidmark/pkg/summary"
	"tableflip.dev/vidmark/pkg/timecode"
)

// Defaults applied where Config leaves a value zero.
const (
	DefaultMinBullets  = 3
	DefaultDurationMin = 15.0
	DefaultDurationMax = 45.0
	DefaultDuration    = 30.0
	DefaultConfidence  = 0.7
	DefaultAppendGap   = 5.0
	DefaultText        = "New bullet point"
)

// Bullet is one annotation in the authoritative collection. The ID is
// editor-internal: assigned at load or add, stable for the bullet's
// lifetime, and stripped before anything reaches the wire.
type Bullet struct {
	ID         string
	Timestamp  string
	Text       string
	Duration   float64
	Confidence float64
}

// Point strips editor identity down to the wire shape.
func (b Bullet) Point() summary.BulletPoint {
	return summary.BulletPoint{
		Timestamp:  b.Timestamp,
		Text:       b.Text,
		Duration:   b.Duration,
		Confidence: b.Confidence,
	}
}

// Seconds parses the committed timestamp, zero on a malformed value.
func (b Bullet) Seconds() int {
	secs, err := timecode.Parse(b.Timestamp)
	if err != nil {
		return 0
	}
	return secs
}

// Patch stages partial field changes. Nil fields stay untouched.
// Confidence is upstream data and has no edit path.
type Patch struct {
	Timestamp *string
	Text      *string
	Duration  *float64
}

func (p Patch) merge(next Patch) Patch {
	if next.Timestamp != nil {
		p.Timestamp = next.Timestamp
	}
	if next.Text != nil {
		p.Text = next.Text
	}
	if next.Duration != nil {
		p.Duration = next.Duration
	}
	return p
}

// Config tunes the collection rules. Zero values fall back to defaults.
type Config struct {
	MinBullets        int
	DurationMin       float64
	DurationMax       float64
	DurationDefault   float64
	ConfidenceDefault float64
	AppendGap         float64
	SpacingSafety     float64
}

func (c Config) withDefaults() Config {
	if c.MinBullets <= 0 {
		c.MinBullets = DefaultMinBullets
	}
	if c.DurationMin <= 0 {
		c.DurationMin = DefaultDurationMin
	}
	if c.DurationMax <= 0 {
		c.DurationMax = DefaultDurationMax
	}
	if c.DurationDefault <= 0 {
		c.DurationDefault = DefaultDuration
	}
	if c.ConfidenceDefault <= 0 {
		c.ConfidenceDefault = DefaultConfidence
	}
	if c.AppendGap <= 0 {
		c.AppendGap = DefaultAppendGap
	}
	if c.SpacingSafety <= 0 {
		c.SpacingSafety = spacing.DefaultSafety
	}
	return c
}

// Regenerator is the external collaborator a save delegates to. It
// persists the committed summary and re-renders the overlay.
type Regenerator interface {
	UpdateBulletPoints(ctx context.Context, videoID string, sum summary.VideoSummary) error
}

// Editor holds the committed bullet collection plus the draft side-channel
// for in-progress edits. Committed mutations publish snapshots through the
// On* callbacks, synchronously and in operation order; staged edits and
// mid-drag positions never do. Assign the callbacks and Regenerator before
// first use.
type Editor struct {
	// Regenerator receives the committed set on Save.
	Regenerator Regenerator

	// OnChange receives a wire-shape snapshot after every committed
	// mutation.
	OnChange func(summary.VideoSummary)

	// OnPreview receives mid-drag snapshots, for the timeline only.
	OnPreview func([]Bullet)

	// OnUnsaved receives the unsaved-changes flag whenever it flips.
	OnUnsaved func(bool)

	mu sync.Mutex

	cfg     Config
	videoID string

	bullets []Bullet
	themes  []string
	total   float64

	drafts    map[string]Patch
	editingID string
	dragID    string

	markerWidth float64
	trackWidth  float64

	unsaved bool
	gen     uint64
}

// New creates an editor bound to one video.
func New(videoID string, cfg Config) *Editor {
	return &Editor{
		cfg:     cfg.withDefaults(),
		videoID: videoID,
		drafts:  make(map[string]Patch),
	}
}

// Load replaces the whole collection from an upstream summary: ids are
// assigned, bullets sorted by timestamp, themes stored, drafts dropped,
// and the unsaved flag reset. Safe to call again when a regenerated
// summary arrives.
func (e *Editor) Load(sum summary.VideoSummary) {
	e.mu.Lock()
	bullets := make([]Bullet, 0, len(sum.BulletPoints))
	for _, p := range sum.BulletPoints {
		bullets = append(bullets, Bullet{
			ID:         uuid.NewString(),
			Timestamp:  p.Timestamp,
			Text:       truncateText(p.Text),
			Duration:   e.clampDuration(p.Duration),
			Confidence: e.clampConfidence(p.Confidence),
		})
	}
	sortBullets(bullets)
	e.bullets = bullets
	e.themes = append([]string(nil), sum.MainThemes...)
	e.drafts = make(map[string]Patch)
	e.editingID = ""
	e.dragID = ""
	e.unsaved = false
	e.gen++
	notifs := []func(){e.changeNotifLocked(), e.unsavedNotifLocked()}
	e.mu.Unlock()
	fire(notifs)
}

// SetTotalDuration late-binds the probed video length. Zero keeps the
// upper timestamp bound inert.
func (e *Editor) SetTotalDuration(seconds float64) {
	e.mu.Lock()
	e.total = seconds
	e.mu.Unlock()
}

// SetTrackMetrics tells the editor how wide a marker renders relative to
// the timeline track, in whatever unit the view measures both. The
// minimum drag spacing derives from this.
func (e *Editor) SetTrackMetrics(markerWidth, trackWidth float64) {
	e.mu.Lock()
	e.markerWidth = markerWidth
	e.trackWidth = trackWidth
	e.mu.Unlock()
}

// Add appends a bullet after the end of the current last one, with
// default text, duration, and confidence, and puts it in edit state.
func (e *Editor) Add() Bullet {
	e.mu.Lock()
	notifs := e.finalizeEditingLocked()

	seconds := 0.0
	if n := len(e.bullets); n > 0 {
		last := e.bullets[n-1]
		seconds = float64(last.Seconds()) + last.Duration + e.cfg.AppendGap
	}
	rounded := e.boundSecondsLocked(int(math.Round(seconds)))

	b := Bullet{
		ID:         uuid.NewString(),
		Timestamp:  timecode.Format(rounded),
		Text:       DefaultText,
		Duration:   e.cfg.DurationDefault,
		Confidence: e.cfg.ConfidenceDefault,
	}
	e.bullets = append(e.bullets, b)
	sortBullets(e.bullets)
	e.editingID = b.ID
	e.gen++
	notifs = append(notifs, e.changeNotifLocked(), e.markUnsavedLocked())
	e.mu.Unlock()
	fire(notifs)
	return b
}

// Remove deletes the bullet unless that would leave fewer than the
// minimum, in which case the collection is untouched.
func (e *Editor) Remove(id string) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	if len(e.bullets)-1 < e.cfg.MinBullets {
		err := &MinimumCountError{Min: e.cfg.MinBullets, Count: len(e.bullets)}
		e.mu.Unlock()
		return err
	}
	e.bullets = append(e.bullets[:idx], e.bullets[idx+1:]...)
	delete(e.drafts, id)
	if e.editingID == id {
		e.editingID = ""
	}
	if e.dragID == id {
		e.dragID = ""
	}
	e.gen++
	notifs := []func(){e.changeNotifLocked(), e.markUnsavedLocked()}
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// StartEdit puts the bullet in edit state. Only one bullet edits at a
// time: a bullet already editing is finalized first (committed when its
// draft validates, dropped otherwise).
func (e *Editor) StartEdit(id string) error {
	e.mu.Lock()
	if e.indexLocked(id) < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	var notifs []func()
	if e.editingID != id {
		notifs = e.finalizeEditingLocked()
	}
	e.editingID = id
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// CancelEdit drops the bullet's draft and leaves edit state without
// touching the committed collection.
func (e *Editor) CancelEdit(id string) {
	e.mu.Lock()
	delete(e.drafts, id)
	if e.editingID == id {
		e.editingID = ""
	}
	e.mu.Unlock()
}

// Update applies a partial field change. With commit false the change is
// only staged: the committed collection keeps its order and no
// notification fires, so typing never reflows the views. With commit true
// the staged fields plus the patch are validated and merged; a timestamp
// change re-sorts immediately. An invalid commit returns the specific
// error and keeps the bullet in edit state with its draft intact.
func (e *Editor) Update(id string, patch Patch, commit bool) error {
	e.mu.Lock()
	if e.indexLocked(id) < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	if !commit {
		e.drafts[id] = e.drafts[id].merge(patch)
		e.mu.Unlock()
		return nil
	}
	staged := e.drafts[id].merge(patch)
	notifs, err := e.commitLocked(id, staged)
	if err != nil {
		e.drafts[id] = staged
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// MoveUp swaps the bullet's timestamp with its predecessor's, which swaps
// their display order while every other field stays with its id. No-op at
// the top.
func (e *Editor) MoveUp(id string) error {
	return e.swap(id, -1)
}

// MoveDown swaps the bullet's timestamp with its successor's. No-op at
// the bottom.
func (e *Editor) MoveDown(id string) error {
	return e.swap(id, 1)
}

func (e *Editor) swap(id string, dir int) error {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	other := idx + dir
	if other < 0 || other >= len(e.bullets) {
		e.mu.Unlock()
		return nil
	}
	e.bullets[idx].Timestamp, e.bullets[other].Timestamp = e.bullets[other].Timestamp, e.bullets[idx].Timestamp
	sortBullets(e.bullets)
	e.gen++
	notifs := []func(){e.changeNotifLocked(), e.markUnsavedLocked()}
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// DragReposition handles one step of an interactive drag: the candidate
// position is corrected for marker spacing, staged without re-sorting,
// and previewed to the timeline. The committed collection only changes on
// ReleaseDrag. Returns the corrected position in seconds.
func (e *Editor) DragReposition(id string, candidate float64) (float64, error) {
	e.mu.Lock()
	idx := e.indexLocked(id)
	if idx < 0 {
		e.mu.Unlock()
		return 0, ErrNotFound
	}

	others := make([]float64, 0, len(e.bullets)-1)
	for i := range e.bullets {
		if i == idx {
			continue
		}
		others = append(others, float64(e.bullets[i].Seconds()))
	}
	minGap := spacing.MinGap(e.markerWidth, e.trackWidth, e.total, e.cfg.SpacingSafety)
	corrected := spacing.Correct(candidate, others, minGap, e.total)

	staged := timecode.Format(e.boundSecondsLocked(int(math.Round(corrected))))
	draft := e.drafts[id]
	draft.Timestamp = &staged
	e.drafts[id] = draft
	e.dragID = id

	notifs := []func(){e.markUnsavedLocked(), e.previewNotifLocked()}
	e.mu.Unlock()
	fire(notifs)
	return corrected, nil
}

// ReleaseDrag ends a drag gesture. The staged position becomes committed,
// the collection re-sorts, and the change notification fires.
func (e *Editor) ReleaseDrag(id string) error {
	e.mu.Lock()
	if e.indexLocked(id) < 0 {
		e.mu.Unlock()
		return ErrNotFound
	}
	if e.dragID == id {
		e.dragID = ""
	}
	draft, ok := e.drafts[id]
	if !ok || draft.Timestamp == nil {
		e.mu.Unlock()
		return nil
	}
	notifs, err := e.commitLocked(id, draft)
	if err != nil {
		delete(e.drafts, id)
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// Save hands the committed set to the regenerator. It refuses to run
// under the minimum count. The unsaved flag clears only when the save
// succeeds and nothing was committed meanwhile, so a failed or raced save
// leaves the user's pending state marked.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if len(e.bullets) < e.cfg.MinBullets {
		err := &InsufficientBulletsError{Min: e.cfg.MinBullets, Count: len(e.bullets)}
		e.mu.Unlock()
		return err
	}
	if e.Regenerator == nil {
		e.mu.Unlock()
		return ErrNoRegenerator
	}
	gen := e.gen
	payload := e.wireLocked()
	videoID := e.videoID
	regen := e.Regenerator
	e.mu.Unlock()

	if err := regen.UpdateBulletPoints(ctx, videoID, payload); err != nil {
		return err
	}

	e.mu.Lock()
	var notifs []func()
	if e.gen == gen && e.unsaved {
		e.unsaved = false
		notifs = append(notifs, e.unsavedNotifLocked())
	}
	e.mu.Unlock()
	fire(notifs)
	return nil
}

// Bullets returns a copy of the committed collection in display order.
func (e *Editor) Bullets() []Bullet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneBullets(e.bullets)
}

// Wire returns the committed collection in wire shape, themes included.
func (e *Editor) Wire() summary.VideoSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wireLocked()
}

// Themes returns a copy of the stored themes.
func (e *Editor) Themes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.themes...)
}

// VideoID returns the video this editor is bound to.
func (e *Editor) VideoID() string {
	return e.videoID
}

// TotalDuration returns the probed video length, zero when unknown.
func (e *Editor) TotalDuration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.total
}

// Unsaved reports whether committed state has diverged from the last
// successful save.
func (e *Editor) Unsaved() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unsaved
}

// EditingID returns the id in edit state, empty when none.
func (e *Editor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

// DraggingID returns the id mid-drag, empty when none.
func (e *Editor) DraggingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dragID
}

// Draft returns the staged patch for the id, if any.
func (e *Editor) Draft(id string) (Patch, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.drafts[id]
	return p, ok
}

// MinBullets returns the configured collection floor.
func (e *Editor) MinBullets() int {
	return e.cfg.MinBullets
}

// Len returns the committed collection size.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.bullets)
}

// commitLocked validates and merges a staged patch into the committed
// bullet. On success the draft is dropped, edit state ends, and a
// timestamp change re-sorts the collection.
func (e *Editor) commitLocked(id string, staged Patch) ([]func(), error) {
	idx := e.indexLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	tsChanged := false
	next := e.bullets[idx]
	if staged.Timestamp != nil {
		secs, err := timecode.Parse(*staged.Timestamp)
		if err != nil {
			return nil, err
		}
		if !timecode.InBounds(secs, e.total) {
			return nil, &DurationBoundsError{Seconds: secs, Total: e.total}
		}
		tsChanged = next.Timestamp != *staged.Timestamp
		next.Timestamp = *staged.Timestamp
	}
	if staged.Text != nil {
		next.Text = truncateText(*staged.Text)
	}
	if staged.Duration != nil {
		next.Duration = e.clampDuration(*staged.Duration)
	}

	e.bullets[idx] = next
	delete(e.drafts, id)
	if e.editingID == id {
		e.editingID = ""
	}
	if tsChanged {
		sortBullets(e.bullets)
	}
	e.gen++
	return []func(){e.changeNotifLocked(), e.markUnsavedLocked()}, nil
}

// finalizeEditingLocked settles the currently editing bullet before focus
// moves elsewhere: a valid draft commits, an invalid one is dropped.
func (e *Editor) finalizeEditingLocked() []func() {
	id := e.editingID
	if id == "" {
		return nil
	}
	draft, ok := e.drafts[id]
	if !ok {
		e.editingID = ""
		return nil
	}
	notifs, err := e.commitLocked(id, draft)
	if err != nil {
		delete(e.drafts, id)
		e.editingID = ""
		return nil
	}
	return notifs
}

func (e *Editor) indexLocked(id string) int {
	for i := range e.bullets {
		if e.bullets[i].ID == id {
			return i
		}
	}
	return -1
}

// boundSecondsLocked keeps a computed timestamp inside the known video,
// leaving it alone while the duration is unknown.
func (e *Editor) boundSecondsLocked(seconds int) int {
	if seconds < 0 {
		return 0
	}
	if e.total > 0 && float64(seconds) >= e.total {
		capped := int(math.Ceil(e.total)) - 1
		if capped < 0 {
			capped = 0
		}
		return capped
	}
	return seconds
}

func (e *Editor) clampDuration(d float64) float64 {
	if d <= 0 {
		return e.cfg.DurationDefault
	}
	if d < e.cfg.DurationMin {
		return e.cfg.DurationMin
	}
	if d > e.cfg.DurationMax {
		return e.cfg.DurationMax
	}
	return d
}

func (e *Editor) clampConfidence(c float64) float64 {
	if c <= 0 {
		return e.cfg.ConfidenceDefault
	}
	if c > 1 {
		return 1
	}
	return c
}

func (e *Editor) wireLocked() summary.VideoSummary {
	points := make([]summary.BulletPoint, len(e.bullets))
	for i, b := range e.bullets {
		points[i] = b.Point()
	}
	return summary.VideoSummary{
		BulletPoints: points,
		MainThemes:   append([]string(nil), e.themes...),
	}
}

// changeNotifLocked captures the committed snapshot now so the callback
// fires with the state as of this operation, after the lock drops.
func (e *Editor) changeNotifLocked() func() {
	if e.OnChange == nil {
		return nil
	}
	cb := e.OnChange
	snap := e.wireLocked()
	return func() { cb(snap) }
}

// previewNotifLocked captures the collection with staged drag positions
// overlaid, for the timeline only.
func (e *Editor) previewNotifLocked() func() {
	if e.OnPreview == nil {
		return nil
	}
	cb := e.OnPreview
	snap := cloneBullets(e.bullets)
	for i := range snap {
		if draft, ok := e.drafts[snap[i].ID]; ok && draft.Timestamp != nil {
			snap[i].Timestamp = *draft.Timestamp
		}
	}
	return func() { cb(snap) }
}

func (e *Editor) markUnsavedLocked() func() {
	if e.unsaved {
		return nil
	}
	e.unsaved = true
	return e.unsavedNotifLocked()
}

func (e *Editor) unsavedNotifLocked() func() {
	if e.OnUnsaved == nil {
		return nil
	}
	cb := e.OnUnsaved
	val := e.unsaved
	return func() { cb(val) }
}

func fire(notifs []func()) {
	for _, n := range notifs {
		if n != nil {
			n()
		}
	}
}

func sortBullets(bullets []Bullet) {
	sort.SliceStable(bullets, func(i, j int) bool {
		return bullets[i].Seconds() < bullets[j].Seconds()
	})
}

func cloneBullets(list []Bullet) []Bullet {
	if len(list) == 0 {
		return nil
	}
	return append([]Bullet(nil), list...)
}

func truncateText(s string) string {
	runes := []rune(s)
	if len(runes) <= summary.MaxTextLen {
		return s
	}
	return string(runes[:summary.MaxTextLen])
}
