// Package app wires config, the session store, and the API client into
// one service facade. CLI runners and the TUI consume the service; none
// of them touch raw dependencies.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/editor"
	"tableflip.dev/vidmark/pkg/store"
	"tableflip.dev/vidmark/pkg/summary"
)

// Service provides high-level operations over video editing sessions.
type Service struct {
	Persistence store.Persistence
	Client      *api.Client
	EditorCfg   editor.Config

	// PollInterval paces regenerate-job polling during save.
	PollInterval time.Duration

	// OnJob, when set, receives every job state observed while a save
	// awaits its regenerate job.
	OnJob func(api.Job)

	log *logrus.Logger
}

// New constructs the service facade.
func New(p store.Persistence, c *api.Client, cfg editor.Config) *Service {
	return &Service{
		Persistence:  p,
		Client:       c,
		EditorCfg:    cfg,
		PollInterval: time.Second,
		log:          logrus.StandardLogger(),
	}
}

// Pull fetches the summary and metadata probe for a video and stores them
// as a fresh session, replacing any local working copy.
func (s *Service) Pull(ctx context.Context, videoID string) (*store.Session, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	if s.Client == nil {
		return nil, errors.New("app: no client configured")
	}

	sum, err := s.Client.Summary(ctx, videoID)
	if err != nil {
		return nil, err
	}

	sess := &store.Session{
		VideoID:  videoID,
		Summary:  sum,
		PulledAt: time.Now(),
	}

	// The duration probe may still be running server-side; a session
	// without it is fine, the bound stays inert until RefreshMeta.
	meta, err := s.Client.Meta(ctx, videoID)
	if err != nil {
		s.log.WithError(err).WithField("video", videoID).Debug("app: metadata probe unavailable")
	} else if meta.Probed {
		sess.DurationSeconds = meta.DurationSeconds
		sess.Probed = true
	}

	if err := s.Persistence.Put(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Session returns the stored session for a video.
func (s *Service) Session(videoID string) (*store.Session, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	return s.Persistence.Get(videoID)
}

// Sessions lists every stored session, most recent first.
func (s *Service) Sessions(ctx context.Context) ([]*store.Session, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	return s.Persistence.List(ctx), nil
}

// RefreshMeta re-runs the metadata probe and, when it has completed
// server-side, late-binds the duration into the stored session.
func (s *Service) RefreshMeta(ctx context.Context, videoID string) (*store.Session, error) {
	sess, err := s.Session(videoID)
	if err != nil {
		return nil, err
	}
	meta, err := s.Client.Meta(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !meta.Probed {
		return sess, nil
	}
	sess.DurationSeconds = meta.DurationSeconds
	sess.Probed = true
	if err := s.Persistence.Put(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Watch subscribes to session change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errors.New("app: no persistence configured")
	}
	return s.Persistence.Watch(ctx)
}

// Editor builds an editor bound to the video's stored session. Committed
// changes persist back into the session as they happen, and Save pushes
// through the API client and awaits the regenerate job. Callers that need
// their own notifications wrap the editor's callbacks and call through.
func (s *Service) Editor(videoID string) (*editor.Editor, error) {
	sess, err := s.Session(videoID)
	if err != nil {
		return nil, err
	}

	ed := editor.New(videoID, s.EditorCfg)
	ed.Regenerator = &regenerator{service: s}
	ed.OnChange = func(sum summary.VideoSummary) {
		s.persistWorkingCopy(videoID, sum)
	}
	ed.OnUnsaved = func(unsaved bool) {
		s.persistUnsaved(videoID, unsaved)
	}
	ed.Load(sess.Summary)
	if sess.Probed {
		ed.SetTotalDuration(sess.DurationSeconds)
	}
	return ed, nil
}

func (s *Service) persistWorkingCopy(videoID string, sum summary.VideoSummary) {
	sess, err := s.Session(videoID)
	if err != nil {
		s.log.WithError(err).WithField("video", videoID).Warn("app: persist working copy")
		return
	}
	sess.Summary = sum
	if err := s.Persistence.Put(sess); err != nil {
		s.log.WithError(err).WithField("video", videoID).Warn("app: persist working copy")
	}
}

func (s *Service) persistUnsaved(videoID string, unsaved bool) {
	sess, err := s.Session(videoID)
	if err != nil {
		s.log.WithError(err).WithField("video", videoID).Warn("app: persist unsaved flag")
		return
	}
	if sess.Unsaved == unsaved {
		return
	}
	sess.Unsaved = unsaved
	if err := s.Persistence.Put(sess); err != nil {
		s.log.WithError(err).WithField("video", videoID).Warn("app: persist unsaved flag")
	}
}

// regenerator adapts the API client to the editor's save collaborator:
// push the committed set, then follow the regenerate job to a terminal
// status so a "saved" ack means the overlay actually re-rendered.
type regenerator struct {
	service *Service
}

func (r *regenerator) UpdateBulletPoints(ctx context.Context, videoID string, sum summary.VideoSummary) error {
	svc := r.service
	if svc.Client == nil {
		return errors.New("app: no client configured")
	}
	job, err := svc.Client.UpdateBulletPoints(ctx, videoID, sum)
	if err != nil {
		return err
	}
	if svc.OnJob != nil {
		svc.OnJob(job)
	}
	if job.Status.Terminal() {
		if job.Status == api.JobFailed {
			return &api.JobError{JobID: job.ID, Message: job.Error}
		}
		return nil
	}
	if _, err := svc.Client.AwaitJob(ctx, job.ID, svc.PollInterval, svc.OnJob); err != nil {
		return fmt.Errorf("awaiting regenerate job: %w", err)
	}
	return nil
}
