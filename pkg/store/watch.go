package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventSessionChanged indicates the session for the given video changed
	// (pulled, edited, or saved).
	EventSessionChanged EventType = iota

	// EventInvalidated signals that the video catalog itself changed (a
	// session appeared or was deleted) and callers should refresh their
	// full view.
	EventInvalidated
)

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type    EventType
	VideoID string
}

// Watch streams change events until ctx is cancelled, so an editor open in
// one terminal refreshes when a pull runs in another. Callers should drain
// the returned channel to avoid blocking the watcher. The channel is
// closed once ctx is done or the watcher encounters an unrecoverable
// error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}

	dir := filepath.Join(p.basePath, sessionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure sessions path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				p.log.WithError(err).Warn("store: watcher close")
			}
		})
	}

	for _, d := range []string{p.basePath, dir} {
		if err := watcher.Add(d); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", d, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready; a subsequent
				// refresh will pick up the changes. This keeps filesystem
				// storms from blocking the watcher goroutine.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Surface watcher errors as a full refresh to keep clients
				// in sync even if we cannot classify the change precisely.
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
				_ = err
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				videoID := p.videoForPath(evt.Name)
				if videoID == "" {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				if evt.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
				}
				throttle.Enqueue(Event{Type: EventSessionChanged, VideoID: videoID}, send)
			}
		}
	}()

	return events, nil
}

// videoForPath derives the video id from a session file path. Anything
// outside the sessions bucket (the index file, temp files) yields "".
func (p *persistence) videoForPath(path string) string {
	rel, err := filepath.Rel(filepath.Join(p.basePath, sessionsDir), path)
	if err != nil {
		return ""
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	if strings.Contains(rel, string(os.PathSeparator)) {
		return ""
	}
	if strings.HasSuffix(rel, ".tmp") || strings.HasPrefix(rel, ".") {
		return ""
	}
	return rel
}

// eventThrottle coalesces rapid change notifications so the UI can redraw
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.VideoID] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for eventType, videos := range pending {
		if len(videos) == 0 {
			send(Event{Type: eventType})
			continue
		}
		for videoID := range videos {
			send(Event{Type: eventType, VideoID: videoID})
		}
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
