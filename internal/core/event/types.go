package event

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// Job lifecycle
	EventJobCreated   EventType = "job.created"
	EventJobStarted   EventType = "job.started"
	EventJobProgress  EventType = "job.progress"
	EventJobCompleted EventType = "job.completed"
	EventJobFailed    EventType = "job.failed"

	// Dataset
	EventDatasetSubmitted EventType = "dataset.submitted"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type JobEvent struct {
	JobID      uuid.UUID
	DatasetID  uuid.UUID
	ExternalID string
	Progress   int
	Step       string
	Frames     int
	Error      string
}

type DatasetEvent struct {
	DatasetID  uuid.UUID
	ExternalID string
}
