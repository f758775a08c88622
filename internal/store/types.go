package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a dataset or job does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateOutput is returned when a frame output already exists for
	// a (job, frame index) pair.
	ErrDuplicateOutput = errors.New("frame output already recorded")
)

// Status is a job lifecycle state. Legal transitions:
// pending -> processing -> completed | failed. Completed and failed are
// terminal.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transitions are permitted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Dataset is a named external frame collection, identified by a
// namespace/name external id. One dataset may have many jobs.
type Dataset struct {
	ID          uuid.UUID
	ExternalID  string
	Name        string
	Description string
	TotalFrames *int
	Metadata    map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Job is one attempt to process a dataset's frames end-to-end.
type Job struct {
	ID           uuid.UUID
	DatasetID    uuid.UUID
	Status       Status
	Progress     int
	CurrentStep  string
	ErrorMessage string
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobWithDataset is a job plus a denormalized dataset summary for the API.
type JobWithDataset struct {
	Job
	DatasetExternalID string
	DatasetName       string
}

// FrameOutput is the persisted result of processing one frame within one
// job. Immutable once written.
type FrameOutput struct {
	ID               uuid.UUID
	JobID            uuid.UUID
	FrameIndex       int
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio *float64
	Payload          []byte
	Metadata         map[string]any
	CreatedAt        time.Time
}

// NewFrameOutput is the insert payload for one frame output.
type NewFrameOutput struct {
	JobID            uuid.UUID
	FrameIndex       int
	OriginalSize     int64
	CompressedSize   int64
	CompressionRatio *float64
	Payload          []byte
	Metadata         map[string]any
}
