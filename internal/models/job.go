package models

import (
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusReady      JobStatus = "ready"
	JobStatusError      JobStatus = "error"
)

// IsTerminal reports whether no further transition is expected.
// Unknown values are treated as still in flight.
func (s JobStatus) IsTerminal() bool {
	switch JobStatus(strings.ToLower(strings.TrimSpace(string(s)))) {
	case JobStatusReady, JobStatusError:
		return true
	default:
		return false
	}
}

// Job is the server-side record of one sync request.
type Job struct {
	ID          string
	EngineJobID string
	Status      JobStatus
	Filename    string
	SourcePath  string
	OutputPath  string
	PreviewURL  string

	// Payment gating
	Paid          bool
	PaidAt        *time.Time
	PayPalOrderID string

	// Diagnostics (never returned to the browser)
	Error string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Response converts the record into the public job snapshot.
// previewUrl is only exposed once the job is ready.
func (j *Job) Response() JobResponse {
	resp := JobResponse{
		ID:     j.ID,
		Status: string(j.Status),
	}
	if j.Status == JobStatusReady && j.PreviewURL != "" {
		resp.PreviewURL = j.PreviewURL
	}
	return resp
}
