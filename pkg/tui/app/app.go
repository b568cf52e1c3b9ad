// Package app composes the bullet list, the timeline, and the status
// bar into the interactive editing surface for one video. The editor's
// callbacks are bridged into the Bubble Tea loop through a channel, so
// every committed change, drag preview, and save flows through typed
// messages like any other input.
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/vidmark/pkg/api"
	appsvc "tableflip.dev/vidmark/pkg/app"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/store"
	"tableflip.dev/vidmark/pkg/summary"
	"tableflip.dev/vidmark/pkg/tui/components/bulletlist"
	"tableflip.dev/vidmark/pkg/tui/components/statusbar"
	"tableflip.dev/vidmark/pkg/tui/components/timeline"
	"tableflip.dev/vidmark/pkg/tui/events"
	"tableflip.dev/vidmark/pkg/tui/theme"
)

type focusPane int

const (
	focusList focusPane = iota
	focusTimeline
)

const (
	// timelineHeight covers the track header, the track, and the label.
	timelineHeight = 3
	statusHeight   = 1
	headerHeight   = 1

	probeInterval = 2 * time.Second
)

type probeTickMsg struct{}

// Model is the root TUI state for one editing session.
type Model struct {
	service *appsvc.Service
	ed      *editor.Editor
	videoID string
	th      theme.Theme

	list     *bulletlist.Model
	timeline *timeline.Model
	status   *statusbar.Model

	// events carries editor callbacks and store watch notifications
	// into the update loop.
	events chan tea.Msg

	width  int
	height int
	focus  focusPane

	saving    bool
	quitArmed bool
}

// New builds the root model, wiring the editor's callbacks into the
// message channel on top of the persistence hooks the service installed.
func New(service *appsvc.Service, videoID string) (*Model, error) {
	ed, err := service.Editor(videoID)
	if err != nil {
		return nil, err
	}

	m := &Model{
		service: service,
		ed:      ed,
		videoID: videoID,
		th:      theme.Default(),
		events:  make(chan tea.Msg, 64),
		focus:   focusList,
	}

	prevChange := ed.OnChange
	ed.OnChange = func(sum summary.VideoSummary) {
		if prevChange != nil {
			prevChange(sum)
		}
		m.push(events.BulletsChangedMsg{Summary: sum, Bullets: ed.Bullets()})
	}
	ed.OnPreview = func(bullets []editor.Bullet) {
		m.push(events.PreviewMsg{Bullets: bullets})
	}
	prevUnsaved := ed.OnUnsaved
	ed.OnUnsaved = func(unsaved bool) {
		if prevUnsaved != nil {
			prevUnsaved(unsaved)
		}
		m.push(events.UnsavedMsg{Unsaved: unsaved})
	}
	service.OnJob = func(j api.Job) {
		m.push(events.JobProgressMsg{Job: j})
	}

	m.list = bulletlist.NewModel(ed)
	m.timeline = timeline.NewModel(ed)
	m.status = statusbar.NewModel()
	m.status.SetMode("list")
	return m, nil
}

// Run launches the Bubble Tea program for the video, watching the store
// for outside changes until the program exits.
func Run(ctx context.Context, service *appsvc.Service, videoID string) error {
	m, err := New(service, videoID)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if ch, err := service.Watch(watchCtx); err == nil {
		go func() {
			for evt := range ch {
				if evt.Type == store.EventSessionChanged && evt.VideoID == videoID {
					m.push(events.SessionRefreshMsg{VideoID: evt.VideoID})
				}
			}
		}()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

// push hands a message to the update loop without ever blocking an
// editor callback. A full queue drops the message; views resync from
// the next snapshot.
func (m *Model) push(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

func probeTick() tea.Cmd {
	return tea.Tick(probeInterval, func(time.Time) tea.Msg {
		return probeTickMsg{}
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForEvent(), m.list.Focus()}
	if m.ed.TotalDuration() <= 0 {
		cmds = append(cmds, probeTick())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		_, cmd := m.timeline.Update(msg)
		return m, cmd

	case probeTickMsg:
		return m, m.probe()

	case events.DurationProbedMsg:
		m.ed.SetTotalDuration(msg.Seconds)
		m.timeline.Refresh()
		cmds = append(cmds, events.StatusCmd("app", events.LevelInfo, "video duration probed"))

	case events.SaveRequestMsg:
		return m, m.save()

	case events.SaveResultMsg:
		m.saving = false
		m.status.SetSaving(false)
		if msg.Err != nil {
			cmds = append(cmds, events.StatusCmd("app", events.LevelError, msg.Err.Error()))
		} else {
			cmds = append(cmds, events.StatusCmd("app", events.LevelInfo, "saved"))
		}

	case events.SessionRefreshMsg:
		m.maybeReload()
		cmds = append(cmds, m.waitForEvent())

	case events.BulletsChangedMsg, events.PreviewMsg, events.UnsavedMsg, events.JobProgressMsg:
		cmds = append(cmds, m.waitForEvent())
	}

	if _, cmd := m.list.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if _, cmd := m.timeline.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if _, cmd := m.status.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// handleGlobalKey handles app-level chrome: quitting, pane switching,
// and save. Everything else belongs to the focused component.
func (m *Model) handleGlobalKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	editing := m.list.Editing() || m.timeline.Grabbed()

	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		if editing {
			return nil, false
		}
		if m.ed.Unsaved() && !m.quitArmed {
			m.quitArmed = true
			return events.StatusCmd("app", events.LevelWarn,
				"unsaved changes, press q again to quit or ctrl+s to save"), true
		}
		return tea.Quit, true
	case "tab":
		if m.list.Editing() {
			return nil, false
		}
		return m.toggleFocus(), true
	case "ctrl+s":
		return events.SaveRequestCmd("app"), true
	case "s":
		if editing {
			return nil, false
		}
		return events.SaveRequestCmd("app"), true
	}

	m.quitArmed = false
	return nil, false
}

func (m *Model) toggleFocus() tea.Cmd {
	var cmds []tea.Cmd
	if m.focus == focusList {
		m.focus = focusTimeline
		m.status.SetMode("timeline")
		cmds = append(cmds, m.list.Blur(), m.timeline.Focus())
	} else {
		m.focus = focusList
		m.status.SetMode("list")
		cmds = append(cmds, m.timeline.Blur(), m.list.Focus())
	}
	return tea.Batch(cmds...)
}

// save runs the push in the background. A second request while one is
// in flight only flashes a notice; the editor's own sequencing makes
// the newer save win regardless of arrival order.
func (m *Model) save() tea.Cmd {
	if m.saving {
		return events.StatusCmd("app", events.LevelWarn, "save already in flight")
	}
	m.saving = true
	m.status.SetSaving(true)
	m.status.ClearMessage()
	ed := m.ed
	return func() tea.Msg {
		return events.SaveResultMsg{Err: ed.Save(context.Background())}
	}
}

// probe re-checks the metadata endpoint until the duration arrives.
func (m *Model) probe() tea.Cmd {
	service, videoID := m.service, m.videoID
	return func() tea.Msg {
		sess, err := service.RefreshMeta(context.Background(), videoID)
		if err != nil || !sess.Probed {
			return probeTick()()
		}
		return events.DurationProbedMsg{Seconds: sess.DurationSeconds}
	}
}

// maybeReload picks up an outside session change, but never underneath
// the user: local edits, drags, and unsaved work always win.
func (m *Model) maybeReload() {
	if m.ed.Unsaved() || m.list.Editing() || m.timeline.Grabbed() {
		return
	}
	sess, err := m.service.Session(m.videoID)
	if err != nil {
		return
	}
	if sess.Probed {
		m.ed.SetTotalDuration(sess.DurationSeconds)
	}
	m.ed.Load(sess.Summary)
}

func (m *Model) layout() {
	listHeight := m.height - headerHeight - timelineHeight - statusHeight - 2
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width, listHeight)
	m.timeline.SetSize(m.width, timelineHeight)
	// The track is the middle line of the timeline block.
	m.timeline.SetOrigin(headerHeight + listHeight + 2)
	m.status.SetWidth(m.width)
}

// View implements tea.Model.
func (m *Model) View() (string, *tea.Cursor) {
	header := m.th.Header.Title.Render("vidmark · "+m.videoID) + "  " +
		m.th.Header.Themes.Render(themeLine(m.ed.Themes()))

	listView, cursor := m.list.View()
	if cursor != nil {
		cursor.Position.Y += headerHeight
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		listView,
		"",
		m.timeline.View(),
		m.status.View(),
	)
	return body, cursor
}

func themeLine(themes []string) string {
	if len(themes) == 0 {
		return ""
	}
	out := themes[0]
	for _, t := range themes[1:] {
		out += ", " + t
	}
	return out
}
