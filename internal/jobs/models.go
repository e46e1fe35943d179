package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a merge job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// StopMessage is the progress message recorded when a user stops a job.
const StopMessage = "Stopped by user"

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusStopped,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ParseStatus normalizes raw into a known Status.
func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := statusSet[status]
	return status, ok
}

// IsTerminal reports whether a job in this status will never change again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// IsActive reports whether the job counts against its owner's
// concurrency budget.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusRunning
}

// Job is one background merge request over a directory pair.
type Job struct {
	ID              string
	OwnerID         string
	AudioDir        string
	VideoDir        string
	OutputDir       string
	Status          Status
	ProgressPercent int
	ProgressMessage string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time
}

// New returns a pending job with a fresh identifier.
func New(ownerID, audioDir, videoDir, outputDir string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		AudioDir:  audioDir,
		VideoDir:  videoDir,
		OutputDir: outputDir,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetProgress records an intermediate progress report.
func (j *Job) SetProgress(message string, percent int) {
	if percent > 100 {
		percent = 100
	}
	if percent < -1 {
		percent = -1
	}
	j.ProgressPercent = percent
	j.ProgressMessage = message
}

// MarkRunning transitions the job out of pending.
func (j *Job) MarkRunning() {
	j.Status = StatusRunning
}

// MarkCompleted records a successful finish.
func (j *Job) MarkCompleted(message string) {
	now := time.Now().UTC()
	j.Status = StatusCompleted
	j.ProgressPercent = 100
	j.ProgressMessage = message
	j.CompletedAt = &now
}

// MarkFailed records a terminal failure.
func (j *Job) MarkFailed(message string) {
	now := time.Now().UTC()
	j.Status = StatusFailed
	j.ProgressPercent = -1
	j.ProgressMessage = message
	j.ErrorMessage = message
	j.CompletedAt = &now
}

// MarkStopped records a user-requested stop. Percent drops to -1 so
// pollers reading only the percent classify the outcome as not-success.
func (j *Job) MarkStopped() {
	now := time.Now().UTC()
	j.Status = StatusStopped
	j.ProgressPercent = -1
	j.ProgressMessage = StopMessage
	j.CompletedAt = &now
}
