package stub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/vidmark/pkg/api"
	"tableflip.dev/vidmark/pkg/summary"
)

// ErrUnknownVideo reports a video id the store has never seen.
var ErrUnknownVideo = errors.New("stub: unknown video")

// ErrUnknownJob reports a job id the store has never seen.
var ErrUnknownJob = errors.New("stub: unknown job")

var errClosed = errors.New("stub: store closed")

type video struct {
	summary    summary.VideoSummary
	duration   float64
	registered time.Time
}

// Store is the stub's in-memory state: seeded videos, their summaries,
// and the regenerate jobs updates queue. It is constructed and injected
// into the server, with an explicit Open/Close lifecycle.
type Store struct {
	mu     sync.Mutex
	open   bool
	videos map[string]*video
	jobs   map[string]*api.Job
}

// NewStore builds an empty store. Call Open before use.
func NewStore() *Store {
	return &Store{}
}

// Open initializes the store and seeds the demo fixture.
func (s *Store) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	s.videos = make(map[string]*video)
	s.jobs = make(map[string]*api.Job)
	s.open = true
	s.seedLocked()
	return nil
}

// Close releases the store. Further calls fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.videos = nil
	s.jobs = nil
	return nil
}

func (s *Store) seedLocked() {
	s.videos["demo"] = &video{
		summary: summary.VideoSummary{
			BulletPoints: []summary.BulletPoint{
				{Timestamp: "00:12", Text: "Welcome and agenda", Duration: 30, Confidence: 0.92},
				{Timestamp: "01:05", Text: "Problem statement", Duration: 30, Confidence: 0.81},
				{Timestamp: "02:40", Text: "Live walkthrough", Duration: 35, Confidence: 0.66},
				{Timestamp: "04:15", Text: "Results and next steps", Duration: 25, Confidence: 0.74},
			},
			MainThemes: []string{"demo", "walkthrough"},
		},
		duration:   312,
		registered: time.Now(),
	}
}

// Summary returns the stored summary for a video.
func (s *Store) Summary(videoID string) (summary.VideoSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return summary.VideoSummary{}, errClosed
	}
	v, ok := s.videos[videoID]
	if !ok {
		return summary.VideoSummary{}, ErrUnknownVideo
	}
	return v.summary.Clone(), nil
}

// Meta reports the probe result for a video. The probe "completes" only
// once probeDelay has elapsed since the video was registered, which
// exercises clients' late duration binding.
func (s *Store) Meta(videoID string, probeDelay time.Duration) (summary.VideoMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return summary.VideoMeta{}, errClosed
	}
	v, ok := s.videos[videoID]
	if !ok {
		return summary.VideoMeta{}, ErrUnknownVideo
	}
	meta := summary.VideoMeta{VideoID: videoID}
	if time.Since(v.registered) >= probeDelay {
		meta.DurationSeconds = v.duration
		meta.Probed = true
	}
	return meta, nil
}

// Update replaces a video's summary and queues a regenerate job for it.
func (s *Store) Update(videoID string, sum summary.VideoSummary) (api.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return api.Job{}, errClosed
	}
	v, ok := s.videos[videoID]
	if !ok {
		return api.Job{}, ErrUnknownVideo
	}
	v.summary = sum.Clone()

	job := &api.Job{
		ID:      uuid.NewString(),
		VideoID: videoID,
		Status:  api.JobPending,
	}
	s.jobs[job.ID] = job
	return *job, nil
}

// Job returns the job's state and deterministically advances it: each
// poll moves progress forward until the job completes, so clients can
// exercise the full pending/processing/completed sequence without real
// rendering behind it.
func (s *Store) Job(jobID string) (api.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return api.Job{}, errClosed
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return api.Job{}, ErrUnknownJob
	}
	if !job.Status.Terminal() {
		job.Status = api.JobProcessing
		job.Progress += 34
		if job.Progress >= 100 {
			job.Progress = 100
			job.Status = api.JobCompleted
		}
	}
	return *job, nil
}

// Register adds a fresh video so tests can exercise probe timing.
func (s *Store) Register(videoID string, sum summary.VideoSummary, duration float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errClosed
	}
	if videoID == "" {
		return fmt.Errorf("stub: video id required")
	}
	s.videos[videoID] = &video{
		summary:    sum.Clone(),
		duration:   duration,
		registered: time.Now(),
	}
	return nil
}
