// Package store keeps per-video editing sessions on disk so a pulled
// summary, the probed duration, and the unsaved working copy survive
// between CLI and TUI runs. A store is constructed with Open and released
// with Close; nothing here is a package-level singleton.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	"github.com/sirupsen/logrus"

	"tableflip.dev/vidmark/pkg/summary"
)

// ErrNotFound reports a video id with no stored session.
var ErrNotFound = errors.New("store: session not found")

// ErrClosed reports use after Close.
var ErrClosed = errors.New("store: closed")

// Session is the locally persisted editing state for one video.
type Session struct {
	VideoID         string               `json:"video_id"`
	Summary         summary.VideoSummary `json:"summary"`
	DurationSeconds float64              `json:"duration_seconds,omitempty"`
	Probed          bool                 `json:"probed,omitempty"`
	Unsaved         bool                 `json:"unsaved,omitempty"`
	PulledAt        time.Time            `json:"pulled_at,omitempty"`
	UpdatedAt       time.Time            `json:"updated_at,omitempty"`
}

// Persistence is the session persistence contract.
type Persistence interface {
	Get(videoID string) (*Session, error)
	Put(s *Session) error
	List(ctx context.Context) []*Session
	Delete(videoID string) error
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

const (
	sessionsDir     = "sessions"
	videosIndexFile = ".videos.json"
)

// Open creates a Persistence rooted at basePath, backed by diskv.
func Open(basePath string) (Persistence, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: base path required")
	}
	if err := os.MkdirAll(filepath.Join(basePath, sessionsDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &persistence{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
		}),
		basePath: basePath,
		log:      logrus.StandardLogger(),
	}, nil
}

type persistence struct {
	d        *diskv.Diskv
	basePath string
	log      *logrus.Logger

	mu     sync.Mutex
	closed bool
}

func (p *persistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *persistence) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *persistence) Get(videoID string) (*Session, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("store: video id required")
	}
	if !p.d.Has(videoID) {
		return nil, ErrNotFound
	}
	return p.read(videoID)
}

func (p *persistence) read(videoID string) (*Session, error) {
	val, err := p.d.Read(videoID)
	if err != nil {
		return nil, fmt.Errorf("store: read session %s: %w", videoID, err)
	}
	s := &Session{}
	if err := json.Unmarshal(val, s); err != nil {
		return nil, fmt.Errorf("store: decode session %s: %w", videoID, err)
	}
	if s.VideoID == "" {
		s.VideoID = videoID
	}
	return s, nil
}

func (p *persistence) Put(s *Session) error {
	if p.isClosed() {
		return ErrClosed
	}
	if s == nil || strings.TrimSpace(s.VideoID) == "" {
		return errors.New("store: session video id required")
	}
	s.UpdatedAt = time.Now()
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: encode session %s: %w", s.VideoID, err)
	}
	if err := p.d.Write(s.VideoID, data); err != nil {
		return fmt.Errorf("store: write session %s: %w", s.VideoID, err)
	}
	return p.indexSession(s)
}

func (p *persistence) List(ctx context.Context) []*Session {
	if p.isClosed() {
		return nil
	}
	all := make([]*Session, 0)
	for key := range p.d.Keys(ctx.Done()) {
		s, err := p.read(key)
		if err != nil {
			p.log.WithError(err).WithField("video", key).Warn("store: skipping unreadable session")
			continue
		}
		all = append(all, s)
	}
	sortSessions(all)
	return all
}

func (p *persistence) Delete(videoID string) error {
	if p.isClosed() {
		return ErrClosed
	}
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return errors.New("store: video id required")
	}
	if !p.d.Has(videoID) {
		return ErrNotFound
	}
	if err := p.d.Erase(videoID); err != nil {
		return fmt.Errorf("store: erase session %s: %w", videoID, err)
	}
	index, err := p.loadVideosIndex()
	if err != nil {
		return err
	}
	delete(index, videoID)
	return p.saveVideosIndex(index)
}

// indexSession records the session's metadata in the catalog file so the
// video list renders without reading every session body.
func (p *persistence) indexSession(s *Session) error {
	index, err := p.loadVideosIndex()
	if err != nil {
		return err
	}
	index[s.VideoID] = summary.VideoMeta{
		VideoID:         s.VideoID,
		DurationSeconds: s.DurationSeconds,
		Probed:          s.Probed,
	}
	return p.saveVideosIndex(index)
}

func (p *persistence) videosIndexPath() string {
	return filepath.Join(p.basePath, videosIndexFile)
}

func (p *persistence) loadVideosIndex() (map[string]summary.VideoMeta, error) {
	data, err := os.ReadFile(p.videosIndexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]summary.VideoMeta), nil
		}
		return nil, fmt.Errorf("store: load videos index: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]summary.VideoMeta), nil
	}
	var list []summary.VideoMeta
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("store: decode videos index: %w", err)
	}
	index := make(map[string]summary.VideoMeta, len(list))
	for _, meta := range list {
		if meta.VideoID == "" {
			continue
		}
		index[meta.VideoID] = meta
	}
	return index, nil
}

func (p *persistence) saveVideosIndex(idx map[string]summary.VideoMeta) error {
	list := make([]summary.VideoMeta, 0, len(idx))
	for _, meta := range idx {
		list = append(list, meta)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].VideoID < list[j].VideoID
	})
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("store: encode videos index: %w", err)
	}
	path := p.videosIndexPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: write videos index: %w", err)
	}
	return os.Rename(tmp, path)
}

func sortSessions(sessions []*Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		left := sessions[i]
		right := sessions[j]
		if left == nil || right == nil {
			return left != nil
		}
		lt := left.UpdatedAt
		rt := right.UpdatedAt
		switch {
		case lt.IsZero() && rt.IsZero():
			return left.VideoID < right.VideoID
		case lt.IsZero():
			return false
		case rt.IsZero():
			return true
		default:
			if lt.Equal(rt) {
				return left.VideoID < right.VideoID
			}
			return lt.After(rt)
		}
	})
}

// Session files all live in one bucket directory under the base path; the
// key is the video id itself, so nothing needs encoding.
func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{sessionsDir},
		FileName: key,
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
