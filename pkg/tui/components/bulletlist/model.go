// Package bulletlist renders the bullet collection as editable rows.
// Moving the cursor, reordering, adding and removing work on committed
// state; Enter opens an inline edit whose keystrokes only stage drafts,
// so the list never reflows mid-edit.
package bulletlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/glyph"
	"tableflip.dev/vidmark/pkg/tui/events"
	"tableflip.dev/vidmark/pkg/tui/theme"
)

type focusField int

const (
	fieldTimestamp focusField = iota
	fieldText
	fieldDuration
)

const (
	timestampWidth = 5
	durationWidth  = 4
)

// Model is the bullet list state.
type Model struct {
	ed *editor.Editor
	id events.ComponentID
	th theme.Theme

	focused bool
	width   int
	height  int
	scroll  int

	bullets []editor.Bullet
	cursor  int
	// curID pins the cursor across re-sorts.
	curID string

	editing bool
	field   focusField
	tsInput textinput.Model
	txInput textinput.Model
	duInput textinput.Model

	errMsg string
}

// NewModel builds a list bound to the editor.
func NewModel(ed *editor.Editor) *Model {
	ts := textinput.New()
	ts.Prompt = ""
	ts.Placeholder = "MM:SS"
	ts.CharLimit = timestampWidth
	ts.SetWidth(timestampWidth)

	tx := textinput.New()
	tx.Prompt = ""
	tx.Placeholder = "Bullet text…"

	du := textinput.New()
	du.Prompt = ""
	du.Placeholder = "30"
	du.CharLimit = durationWidth
	du.SetWidth(durationWidth)

	m := &Model{
		ed:      ed,
		id:      events.ComponentID("bulletlist"),
		th:      theme.Default(),
		tsInput: ts,
		txInput: tx,
		duInput: du,
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
	cmds := []tea.Cmd{events.FocusCmd(m.id)}
	if cmd := m.updateInputFocus(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Blur releases keyboard focus. An open edit is finalized through the
// editor's own single-edit rule the next time one starts.
func (m *Model) Blur() tea.Cmd {
	m.focused = false
	m.updateInputFocus()
	return events.BlurCmd(m.id)
}

// Focused reports keyboard focus.
func (m *Model) Focused() bool { return m.focused }

// Editing reports whether an inline edit is open.
func (m *Model) Editing() bool { return m.editing }

// SetSize configures the pane dimensions.
func (m *Model) SetSize(width, height int) {
	if width < 20 {
		width = 20
	}
	if height <= 0 {
		height = 1
	}
	m.width = width
	m.height = height
	textWidth := width - timestampWidth - durationWidth - 10
	if textWidth < 10 {
		textWidth = 10
	}
	m.txInput.SetWidth(textWidth)
}

// Refresh reloads the committed snapshot, keeping the cursor on its
// bullet across the re-sort.
func (m *Model) Refresh() {
	m.bullets = m.ed.Bullets()
	if m.curID != "" {
		for i := range m.bullets {
			if m.bullets[i].ID == m.curID {
				m.cursor = i
				break
			}
		}
	}
	if m.cursor >= len(m.bullets) {
		m.cursor = len(m.bullets) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor < len(m.bullets) {
		m.curID = m.bullets[m.cursor].ID
	}
	m.ensureVisible()
}

// Current returns the bullet under the cursor.
func (m *Model) Current() (editor.Bullet, bool) {
	if m.cursor < 0 || m.cursor >= len(m.bullets) {
		return editor.Bullet{}, false
	}
	return m.bullets[m.cursor], true
}

// Update processes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case events.BulletsChangedMsg:
		m.Refresh()
	case events.BulletHighlightMsg:
		if msg.Component != m.id {
			m.moveCursorTo(msg.Bullet.ID)
		}
	case events.FocusMsg:
		if msg.Component == m.id {
			m.focused = true
			if cmd := m.updateInputFocus(); cmd != nil {
				return m, cmd
			}
		}
	case events.BlurMsg:
		if msg.Component == m.id {
			m.focused = false
			m.updateInputFocus()
		}
	case tea.KeyPressMsg:
		if m.focused {
			return m, m.handleKey(msg)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		return m.moveCursor(-1)
	case "down", "j":
		return m.moveCursor(1)
	case "shift+up", "K":
		if b, ok := m.Current(); ok {
			if err := m.ed.MoveUp(b.ID); err != nil {
				return events.StatusCmd(m.id, events.LevelError, err.Error())
			}
		}
	case "shift+down", "J":
		if b, ok := m.Current(); ok {
			if err := m.ed.MoveDown(b.ID); err != nil {
				return events.StatusCmd(m.id, events.LevelError, err.Error())
			}
		}
	case "enter", "e":
		if b, ok := m.Current(); ok {
			return m.beginEdit(b)
		}
	case "a":
		b := m.ed.Add()
		m.curID = b.ID
		m.Refresh()
		return m.beginEdit(b)
	case "d", "x":
		if b, ok := m.Current(); ok {
			if err := m.ed.Remove(b.ID); err != nil {
				return events.StatusCmd(m.id, events.LevelWarn, err.Error())
			}
		}
	}
	return nil
}

// handleEditKey routes keystrokes into the focused field. Every change
// is staged against the draft only; nothing commits until Enter.
func (m *Model) handleEditKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "tab":
		m.field = (m.field + 1) % 3
		return m.updateInputFocus()
	case "shift+tab":
		m.field = (m.field + 2) % 3
		return m.updateInputFocus()
	case "enter":
		return m.commitEdit()
	case "esc":
		m.cancelEdit()
		return nil
	}

	b, ok := m.Current()
	if !ok {
		return nil
	}

	var cmd tea.Cmd
	switch m.field {
	case fieldTimestamp:
		m.tsInput, cmd = m.tsInput.Update(msg)
		v := m.tsInput.Value()
		_ = m.ed.Update(b.ID, editor.Patch{Timestamp: &v}, false)
	case fieldText:
		m.txInput, cmd = m.txInput.Update(msg)
		v := m.txInput.Value()
		_ = m.ed.Update(b.ID, editor.Patch{Text: &v}, false)
	case fieldDuration:
		m.duInput, cmd = m.duInput.Update(msg)
		if d, err := strconv.ParseFloat(strings.TrimSpace(m.duInput.Value()), 64); err == nil {
			_ = m.ed.Update(b.ID, editor.Patch{Duration: &d}, false)
		}
	}
	return cmd
}

func (m *Model) beginEdit(b editor.Bullet) tea.Cmd {
	if err := m.ed.StartEdit(b.ID); err != nil {
		return events.StatusCmd(m.id, events.LevelError, err.Error())
	}
	m.editing = true
	m.field = fieldText
	m.errMsg = ""
	m.tsInput.SetValue(b.Timestamp)
	m.txInput.SetValue(b.Text)
	m.duInput.SetValue(strconv.FormatFloat(b.Duration, 'f', 0, 64))
	m.txInput.CursorEnd()
	return m.updateInputFocus()
}

// commitEdit validates and commits the staged draft. An invalid commit
// keeps the row in edit state with the error shown inline.
func (m *Model) commitEdit() tea.Cmd {
	b, ok := m.Current()
	if !ok {
		m.editing = false
		return nil
	}

	ts := m.tsInput.Value()
	tx := m.txInput.Value()
	patch := editor.Patch{Timestamp: &ts, Text: &tx}
	if d, err := strconv.ParseFloat(strings.TrimSpace(m.duInput.Value()), 64); err == nil {
		patch.Duration = &d
	}

	if err := m.ed.Update(b.ID, patch, true); err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.editing = false
	m.errMsg = ""
	m.updateInputFocus()
	return nil
}

func (m *Model) cancelEdit() {
	if b, ok := m.Current(); ok {
		m.ed.CancelEdit(b.ID)
	}
	m.editing = false
	m.errMsg = ""
	m.updateInputFocus()
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	if len(m.bullets) == 0 {
		return nil
	}
	next := m.cursor + delta
	if next < 0 || next >= len(m.bullets) {
		return nil
	}
	m.cursor = next
	m.curID = m.bullets[next].ID
	m.ensureVisible()
	return events.BulletHighlightCmd(m.id, m.bullets[m.cursor])
}

func (m *Model) moveCursorTo(id string) {
	for i := range m.bullets {
		if m.bullets[i].ID == id {
			m.cursor = i
			m.curID = id
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) updateInputFocus() tea.Cmd {
	m.tsInput.Blur()
	m.txInput.Blur()
	m.duInput.Blur()
	if !m.focused || !m.editing {
		return nil
	}
	switch m.field {
	case fieldTimestamp:
		return m.tsInput.Focus()
	case fieldDuration:
		return m.duInput.Focus()
	default:
		return m.txInput.Focus()
	}
}

// rowsVisible is the row budget after the title and hint lines.
func (m *Model) rowsVisible() int {
	rows := m.height - 2
	if m.editing && m.errMsg != "" {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) ensureVisible() {
	rows := m.rowsVisible()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+rows {
		m.scroll = m.cursor - rows + 1
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

// View renders the list. The cursor, when an edit is open, belongs to
// the focused inline input.
func (m *Model) View() (string, *tea.Cursor) {
	lines := []string{m.th.List.Title.Render(fmt.Sprintf("Bullets (%d)", len(m.bullets)))}

	var cursor *tea.Cursor
	rows := m.rowsVisible()
	end := m.scroll + rows
	if end > len(m.bullets) {
		end = len(m.bullets)
	}
	for i := m.scroll; i < end; i++ {
		if i == m.cursor && m.editing {
			row, c := m.renderEditRow()
			if c != nil {
				c.Position.Y += len(lines)
				cursor = c
			}
			lines = append(lines, row)
			if m.errMsg != "" {
				lines = append(lines, "    "+m.th.List.Error.Render(m.errMsg))
			}
			continue
		}
		lines = append(lines, m.renderRow(i))
	}

	// Pad to the allotted height so the panes below render at fixed
	// rows; the timeline's mouse mapping depends on it.
	for len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.th.List.Hint.Render(m.hintLine()))
	return strings.Join(lines, "\n"), cursor
}

func (m *Model) renderRow(i int) string {
	b := m.bullets[i]
	marker := glyph.BandFor(b.Confidence).String()

	indicator := "  "
	rowStyle := m.th.List.Row
	if i == m.cursor && m.focused {
		indicator = m.th.List.Selected.Render("➤ ")
		rowStyle = m.th.List.Selected
	}

	text := b.Text
	maxText := m.width - timestampWidth - durationWidth - 10
	if maxText > 0 {
		text = truncate.StringWithTail(text, uint(maxText), "…")
	}

	return indicator + marker + " " +
		m.th.List.Timestamp.Render(b.Timestamp) + " " +
		m.th.List.Duration.Render(fmt.Sprintf("%3.0fs", b.Duration)) + " " +
		rowStyle.Render(text)
}

// renderEditRow draws the inline inputs and reports the active input's
// cursor, offset to the row's coordinates.
func (m *Model) renderEditRow() (string, *tea.Cursor) {
	marker := glyph.Marker
	if b, ok := m.Current(); ok {
		marker = glyph.BandFor(b.Confidence).String()
	}
	prefix := m.th.List.Selected.Render("➤ ") + marker
	tsView := m.tsInput.View()
	duView := m.duInput.View()

	segments := []string{prefix, tsView, duView + "s", m.txInput.View()}
	row := strings.Join(segments, " ")

	var active *textinput.Model
	offset := lipgloss.Width(prefix) + 1
	switch m.field {
	case fieldTimestamp:
		active = &m.tsInput
	case fieldDuration:
		active = &m.duInput
		offset += lipgloss.Width(tsView) + 1
	default:
		active = &m.txInput
		offset += lipgloss.Width(tsView) + 1 + lipgloss.Width(duView) + 2
	}

	var cursor *tea.Cursor
	if c := active.Cursor(); c != nil {
		clone := *c
		clone.Position.X += offset
		cursor = &clone
	}
	return row, cursor
}

func (m *Model) hintLine() string {
	if m.editing {
		return "enter commit · esc cancel · tab next field"
	}
	return "enter edit · a add · d delete · shift+↑/↓ reorder"
}
