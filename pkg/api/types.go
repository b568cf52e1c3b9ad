package api

import (
	"fmt"
	"net/http"
)

// JobStatus is the lifecycle state of a regenerate job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether the job has stopped moving.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is the server's view of an async regenerate run.
type Job struct {
	ID       string    `json:"id"`
	VideoID  string    `json:"video_id,omitempty"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
}

// StatusError is a non-2xx response from the service, keeping the server's
// human-readable message for the UI.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: server returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// JobError reports a regenerate job that reached failed status.
type JobError struct {
	JobID   string
	Message string
}

func (e *JobError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: job %s failed: %s", e.JobID, e.Message)
	}
	return fmt.Sprintf("api: job %s failed", e.JobID)
}
