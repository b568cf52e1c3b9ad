// Package timeline renders the horizontal marker track and owns the
// drag gesture: grab a marker, nudge or drag it, release to commit.
package timeline

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/glyph"
	"tableflip.dev/vidmark/pkg/timecode"
	"tableflip.dev/vidmark/pkg/tui/events"
	"tableflip.dev/vidmark/pkg/tui/theme"
)

// virtualTail pads the scale past the last marker when the real video
// length has not been probed yet.
const virtualTail = 30.0

// Model is the timeline component state. Bullets render at positions
// proportional to their timestamp over the video length; during a drag
// the preview snapshot overrides the committed one.
type Model struct {
	ed *editor.Editor
	id events.ComponentID
	th theme.Theme

	focused bool
	width   int
	height  int
	// trackWidth is the cell count between the end caps.
	trackWidth int
	// originRow is the track line's absolute screen row, for mouse hits.
	originRow int

	bullets  []editor.Bullet
	preview  []editor.Bullet
	selected int
	// selID pins the selection across re-sorts.
	selID   string
	grabbed bool
	// grabPos is the last corrected drag position in seconds.
	grabPos float64
}

// NewModel builds a timeline bound to the editor.
func NewModel(ed *editor.Editor) *Model {
	m := &Model{
		ed: ed,
		id: events.ComponentID("timeline"),
		th: theme.Default(),
	}
	m.Refresh()
	return m
}

// ID returns the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Focus gives the component keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return events.FocusCmd(m.id)
}

// Blur releases keyboard focus. An in-flight grab is dropped.
func (m *Model) Blur() tea.Cmd {
	m.focused = false
	if m.grabbed {
		m.cancelGrab()
	}
	return events.BlurCmd(m.id)
}

// Focused reports keyboard focus.
func (m *Model) Focused() bool { return m.focused }

// SetSize fits the track to the pane and feeds the marker geometry back
// into the editor so drag spacing derives from what is on screen.
func (m *Model) SetSize(width, height int) {
	if width < 12 {
		width = 12
	}
	if height <= 0 {
		height = 1
	}
	m.width = width
	m.height = height
	m.trackWidth = width - 2
	m.ed.SetTrackMetrics(1, float64(m.trackWidth))
}

// SetOrigin records the track line's absolute screen row so mouse
// coordinates can be mapped onto it.
func (m *Model) SetOrigin(row int) {
	m.originRow = row
}

// Refresh reloads the committed snapshot and clears any preview. The
// selection follows its bullet id across the re-sort.
func (m *Model) Refresh() {
	m.bullets = m.ed.Bullets()
	m.preview = nil
	if m.selID != "" {
		m.selectByID(m.selID)
	}
	if m.selected >= len(m.bullets) {
		m.selected = len(m.bullets) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected < len(m.bullets) {
		m.selID = m.bullets[m.selected].ID
	}
}

// Grabbed reports whether a marker is mid-drag.
func (m *Model) Grabbed() bool { return m.grabbed }

// Selected returns the currently highlighted bullet.
func (m *Model) Selected() (editor.Bullet, bool) {
	if m.selected < 0 || m.selected >= len(m.bullets) {
		return editor.Bullet{}, false
	}
	return m.bullets[m.selected], true
}

// Update processes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.BulletsChangedMsg:
		m.Refresh()
	case events.PreviewMsg:
		m.preview = msg.Bullets
	case events.BulletHighlightMsg:
		if msg.Component != m.id {
			m.selectByID(msg.Bullet.ID)
		}
	case events.FocusMsg:
		if msg.Component == m.id {
			m.focused = true
		}
	case events.BlurMsg:
		if msg.Component == m.id {
			m.focused = false
		}
	case tea.KeyPressMsg:
		if m.focused {
			return m, m.handleKey(msg)
		}
	case tea.MouseClickMsg:
		return m, m.handleClick(msg.X, msg.Y)
	case tea.MouseMotionMsg:
		if m.grabbed {
			m.dragTo(m.colToSeconds(msg.X))
		}
	case tea.MouseReleaseMsg:
		if m.grabbed {
			return m, m.release()
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		if m.grabbed {
			m.nudge(-1)
			return nil
		}
		return m.moveSelection(-1)
	case "right", "l":
		if m.grabbed {
			m.nudge(1)
			return nil
		}
		return m.moveSelection(1)
	case "shift+left", "shift+h":
		if m.grabbed {
			m.nudge(-5)
		}
		return nil
	case "shift+right", "shift+l":
		if m.grabbed {
			m.nudge(5)
		}
		return nil
	case "enter", "g", " ":
		if m.grabbed {
			return m.release()
		}
		m.grab()
		return nil
	case "esc":
		if m.grabbed {
			m.cancelGrab()
		}
		return nil
	}
	return nil
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	if len(m.bullets) == 0 {
		return nil
	}
	next := m.selected + delta
	if next < 0 || next >= len(m.bullets) {
		return nil
	}
	m.selected = next
	m.selID = m.bullets[next].ID
	return events.BulletHighlightCmd(m.id, m.bullets[m.selected])
}

func (m *Model) selectByID(id string) {
	for i := range m.bullets {
		if m.bullets[i].ID == id {
			m.selected = i
			m.selID = id
			return
		}
	}
}

func (m *Model) grab() {
	b, ok := m.Selected()
	if !ok {
		return
	}
	m.grabbed = true
	m.grabPos = float64(b.Seconds())
}

// cancelGrab abandons the gesture: the staged position is dropped, so
// the later release has nothing to commit.
func (m *Model) cancelGrab() {
	if b, ok := m.Selected(); ok {
		m.ed.CancelEdit(b.ID)
		_ = m.ed.ReleaseDrag(b.ID)
	}
	m.grabbed = false
	m.preview = nil
}

func (m *Model) release() tea.Cmd {
	b, ok := m.Selected()
	m.grabbed = false
	if !ok {
		return nil
	}
	if err := m.ed.ReleaseDrag(b.ID); err != nil {
		return events.StatusCmd(m.id, events.LevelError, err.Error())
	}
	return nil
}

// nudge moves the grabbed marker by whole track cells.
func (m *Model) nudge(cells int) {
	m.dragTo(m.grabPos + float64(cells)*m.secondsPerCell())
}

func (m *Model) dragTo(candidate float64) {
	b, ok := m.Selected()
	if !ok {
		return
	}
	corrected, err := m.ed.DragReposition(b.ID, candidate)
	if err != nil {
		return
	}
	m.grabPos = corrected
}

// scale returns the seconds the full track spans. Before the duration
// probe completes, a virtual scale keeps markers spread instead of
// stacked at zero.
func (m *Model) scale() float64 {
	if total := m.ed.TotalDuration(); total > 0 {
		return total
	}
	last := 0.0
	for _, b := range m.visible() {
		if s := float64(b.Seconds()); s > last {
			last = s
		}
	}
	if last <= 0 {
		return 2 * virtualTail
	}
	return last + virtualTail
}

func (m *Model) secondsPerCell() float64 {
	if m.trackWidth <= 1 {
		return 1
	}
	return m.scale() / float64(m.trackWidth-1)
}

func (m *Model) colForSeconds(seconds float64) int {
	scale := m.scale()
	if scale <= 0 || m.trackWidth <= 1 {
		return 0
	}
	col := int(math.Round(seconds / scale * float64(m.trackWidth-1)))
	if col < 0 {
		col = 0
	}
	if col >= m.trackWidth {
		col = m.trackWidth - 1
	}
	return col
}

// colToSeconds maps an absolute screen column back onto the video.
func (m *Model) colToSeconds(x int) float64 {
	col := x - 1
	if col < 0 {
		col = 0
	}
	if col >= m.trackWidth {
		col = m.trackWidth - 1
	}
	if m.trackWidth <= 1 {
		return 0
	}
	return float64(col) / float64(m.trackWidth-1) * m.scale()
}

// handleClick selects the marker nearest the clicked cell and starts a
// drag on it. Clicks off the track row are ignored.
func (m *Model) handleClick(x, y int) tea.Cmd {
	if y != m.originRow || len(m.bullets) == 0 {
		return nil
	}
	col := x - 1
	best, bestDist := -1, m.trackWidth
	for i, b := range m.bullets {
		d := col - m.colForSeconds(float64(b.Seconds()))
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 || bestDist > 2 {
		return nil
	}
	m.selected = best
	m.selID = m.bullets[best].ID
	m.grab()
	return events.BulletHighlightCmd(m.id, m.bullets[m.selected])
}

// visible returns the snapshot to render: the drag preview while one is
// active, the committed collection otherwise.
func (m *Model) visible() []editor.Bullet {
	if len(m.preview) > 0 && m.grabbed {
		return m.preview
	}
	return m.bullets
}

// View renders the header, the track, and the selected marker's label.
func (m *Model) View() string {
	header := m.renderHeader()
	track := m.renderTrack()
	label := m.renderLabel()
	return strings.Join([]string{header, track, label}, "\n")
}

func (m *Model) renderHeader() string {
	title := m.th.List.Title.Render("Timeline")
	span := fmt.Sprintf("00:00 – %s", timecode.Format(int(m.scale())))
	if m.ed.TotalDuration() <= 0 {
		span += " (probing)"
	}
	return title + "  " + m.th.Timeline.Label.Render(span)
}

func (m *Model) renderTrack() string {
	if m.trackWidth <= 0 {
		return ""
	}
	cells := make([]string, m.trackWidth)
	for i := range cells {
		cells[i] = m.th.Timeline.Track.Render(glyph.Track)
	}

	grabbedID := ""
	if m.grabbed {
		if b, ok := m.Selected(); ok {
			grabbedID = b.ID
		}
	}
	selectedID := ""
	if b, ok := m.Selected(); ok {
		selectedID = b.ID
	}

	for _, b := range m.visible() {
		col := m.colForSeconds(float64(b.Seconds()))
		switch {
		case b.ID == grabbedID:
			cells[col] = m.th.Timeline.Grabbed.Render(glyph.Grabbed)
		case b.ID == selectedID && m.focused:
			cells[col] = m.th.Timeline.Selected.Render(glyph.Marker)
		default:
			cells[col] = m.th.Timeline.Marker.Render(glyph.Marker)
		}
	}

	capStyle := m.th.Timeline.Track
	return capStyle.Render(glyph.Cap) + strings.Join(cells, "") + capStyle.Render(glyph.Cap)
}

func (m *Model) renderLabel() string {
	b, ok := m.Selected()
	if !ok {
		return ""
	}
	ts := b.Timestamp
	if m.grabbed {
		ts = timecode.Format(int(math.Round(m.grabPos)))
	}
	line := fmt.Sprintf(" %s  %s", ts, b.Text)
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return m.th.Timeline.Label.Render(line)
}
