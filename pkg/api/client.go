// Package api is the HTTP client for the summarizer service: pulling
// summaries and video metadata, pushing edited bullet points, and polling
// the regenerate job those pushes kick off.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/vidmark/pkg/summary"
)

// Config holds configuration for the summarizer service client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client handles communication with the summarizer service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *logrus.Logger
}

// NewClient creates a summarizer service client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8089"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		log:        logrus.StandardLogger(),
	}
}

// SetLogger replaces the client's logger.
func (c *Client) SetLogger(log *logrus.Logger) {
	if log != nil {
		c.log = log
	}
}

// Summary fetches the bullet-point summary for a video. The response is
// validated before it is handed to anyone.
func (c *Client) Summary(ctx context.Context, videoID string) (summary.VideoSummary, error) {
	var sum summary.VideoSummary
	if videoID == "" {
		return sum, fmt.Errorf("api: video id cannot be empty")
	}
	endpoint := fmt.Sprintf("videos/%s/summary", videoID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &sum); err != nil {
		return sum, fmt.Errorf("fetching summary: %w", err)
	}
	if err := sum.Validate(); err != nil {
		return sum, fmt.Errorf("api: invalid summary payload: %w", err)
	}
	return sum, nil
}

// Meta fetches the metadata probe result for a video. Probed is false
// while the probe is still running; callers poll until it flips.
func (c *Client) Meta(ctx context.Context, videoID string) (summary.VideoMeta, error) {
	var meta summary.VideoMeta
	if videoID == "" {
		return meta, fmt.Errorf("api: video id cannot be empty")
	}
	endpoint := fmt.Sprintf("videos/%s/meta", videoID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &meta); err != nil {
		return meta, fmt.Errorf("fetching meta: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return meta, fmt.Errorf("api: invalid meta payload: %w", err)
	}
	return meta, nil
}

// UpdateBulletPoints pushes an edited summary to the service. The service
// accepts the set and answers with the regenerate job it queued.
func (c *Client) UpdateBulletPoints(ctx context.Context, videoID string, sum summary.VideoSummary) (Job, error) {
	var job Job
	if videoID == "" {
		return job, fmt.Errorf("api: video id cannot be empty")
	}
	if err := sum.Validate(); err != nil {
		return job, fmt.Errorf("api: refusing to send invalid summary: %w", err)
	}
	endpoint := fmt.Sprintf("videos/%s/bullet-points", videoID)
	if err := c.do(ctx, http.MethodPut, endpoint, &sum, &job); err != nil {
		return job, fmt.Errorf("updating bullet points: %w", err)
	}
	return job, nil
}

// Job fetches the current state of a regenerate job.
func (c *Client) Job(ctx context.Context, jobID string) (Job, error) {
	var job Job
	if jobID == "" {
		return job, fmt.Errorf("api: job id cannot be empty")
	}
	endpoint := fmt.Sprintf("jobs/%s", jobID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &job); err != nil {
		return job, fmt.Errorf("fetching job: %w", err)
	}
	return job, nil
}

// AwaitJob polls a regenerate job until it reaches a terminal status or the
// context ends. onProgress, if set, fires after every poll. A failed job
// comes back as an error carrying the server's message.
func (c *Client) AwaitJob(ctx context.Context, jobID string, every time.Duration, onProgress func(Job)) (Job, error) {
	if every <= 0 {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		job, err := c.Job(ctx, jobID)
		if err != nil {
			return job, err
		}
		if onProgress != nil {
			onProgress(job)
		}
		switch job.Status {
		case JobCompleted:
			return job, nil
		case JobFailed:
			return job, &JobError{JobID: job.ID, Message: job.Error}
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// do runs one request against the service. Non-2xx responses become a
// StatusError carrying the server's human-readable message.
func (c *Client) do(ctx context.Context, method, endpoint string, body, result interface{}) error {
	fullURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.WithFields(logrus.Fields{"method": method, "url": fullURL}).Debug("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "url": fullURL}).Debug("api error response")
		return statusError(resp)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	serr := &StatusError{StatusCode: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		serr.Message = body.Error
	}
	return serr
}
