// Package events defines the typed messages the editor components
// exchange through the Bubble Tea update loop.
package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/summary"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// BulletsChangedMsg carries a fresh committed snapshot after any
// completed mutation. Views replace their render state with it, never
// merge.
type BulletsChangedMsg struct {
	Component ComponentID
	Summary   summary.VideoSummary
	Bullets   []editor.Bullet
}

// Describe renders the change in a human-friendly format for logs.
func (m BulletsChangedMsg) Describe() string {
	return fmt.Sprintf(`component:%q bullets:%d`, m.Component, len(m.Bullets))
}

// PreviewMsg carries a mid-drag snapshot. Only the timeline consumes it;
// the list must not reflow during a drag.
type PreviewMsg struct {
	Bullets []editor.Bullet
}

// Describe renders the preview for logs.
func (m PreviewMsg) Describe() string {
	return fmt.Sprintf(`preview bullets:%d`, len(m.Bullets))
}

// UnsavedMsg announces the unsaved-changes flag flipping.
type UnsavedMsg struct {
	Unsaved bool
}

// Describe renders the flag for logs.
func (m UnsavedMsg) Describe() string {
	return fmt.Sprintf(`unsaved:%t`, m.Unsaved)
}

// BulletHighlightMsg fires when a component highlights a bullet, so the
// other views can track it.
type BulletHighlightMsg struct {
	Component ComponentID
	Bullet    editor.Bullet
}

// Describe renders the highlight for logs.
func (m BulletHighlightMsg) Describe() string {
	return fmt.Sprintf(`component:%q bullet:%q at:%q`, m.Component, m.Bullet.Text, m.Bullet.Timestamp)
}

// BulletHighlightCmd wraps BulletHighlightMsg in a tea.Cmd.
func BulletHighlightCmd(component ComponentID, bullet editor.Bullet) tea.Cmd {
	return func() tea.Msg {
		return BulletHighlightMsg{Component: component, Bullet: bullet}
	}
}

// SaveRequestMsg asks the root model to run a save.
type SaveRequestMsg struct {
	Component ComponentID
}

// Describe renders the request for logs.
func (m SaveRequestMsg) Describe() string {
	return fmt.Sprintf(`component:%q`, m.Component)
}

// SaveRequestCmd wraps SaveRequestMsg in a tea.Cmd.
func SaveRequestCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return SaveRequestMsg{Component: component}
	}
}

// SaveResultMsg reports a finished save attempt.
type SaveResultMsg struct {
	Err error
}

// Describe renders the result for logs.
func (m SaveResultMsg) Describe() string {
	if m.Err != nil {
		return fmt.Sprintf(`err:%q`, m.Err.Error())
	}
	return `ok`
}

// JobProgressMsg streams regenerate-job state while a save is in flight.
type JobProgressMsg struct {
	Job api.Job
}

// Describe renders the job state for logs.
func (m JobProgressMsg) Describe() string {
	return fmt.Sprintf(`job:%q status:%q progress:%d`, m.Job.ID, m.Job.Status, m.Job.Progress)
}

// DurationProbedMsg late-binds the video length once the metadata probe
// completes.
type DurationProbedMsg struct {
	Seconds float64
}

// Describe renders the probe result for logs.
func (m DurationProbedMsg) Describe() string {
	return fmt.Sprintf(`duration:%.0fs`, m.Seconds)
}

// SessionRefreshMsg announces that the stored session changed outside
// this program (e.g. a pull in another terminal).
type SessionRefreshMsg struct {
	VideoID string
}

// Describe renders the refresh for logs.
func (m SessionRefreshMsg) Describe() string {
	return fmt.Sprintf(`video:%q`, m.VideoID)
}

// StatusLevel buckets status line messages.
type StatusLevel int

const (
	LevelInfo StatusLevel = iota
	LevelWarn
	LevelError
)

// StatusMsg asks the status bar to show a message.
type StatusMsg struct {
	Component ComponentID
	Level     StatusLevel
	Text      string
}

// Describe renders the status for logs.
func (m StatusMsg) Describe() string {
	return fmt.Sprintf(`component:%q level:%d text:%q`, m.Component, m.Level, m.Text)
}

// StatusCmd wraps StatusMsg in a tea.Cmd.
func StatusCmd(component ComponentID, level StatusLevel, text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Component: component, Level: level, Text: text}
	}
}

// FocusMsg indicates a component just gained focus.
type FocusMsg struct {
	Component ComponentID
}

// Describe renders the focus change for logs.
func (m FocusMsg) Describe() string {
	return fmt.Sprintf(`component:%q state:"focus"`, m.Component)
}

// BlurMsg indicates a component just lost focus.
type BlurMsg struct {
	Component ComponentID
}

// Describe renders the focus change for logs.
func (m BlurMsg) Describe() string {
	return fmt.Sprintf(`component:%q state:"blur"`, m.Component)
}

// FocusCmd wraps a FocusMsg in a tea.Cmd helper.
func FocusCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return FocusMsg{Component: component}
	}
}

// BlurCmd wraps a BlurMsg in a tea.Cmd helper.
func BlurCmd(component ComponentID) tea.Cmd {
	return func() tea.Msg {
		return BlurMsg{Component: component}
	}
}
