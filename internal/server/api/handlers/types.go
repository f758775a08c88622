package handlers

import (
	"time"

	"github.com/Exidekat/mechgen-ui/internal/core/result"
	"github.com/Exidekat/mechgen-ui/internal/store"
)

// Shared JSON bodies.

type DatasetBody struct {
	ID          string         `json:"id" doc:"Dataset ID"`
	ExternalID  string         `json:"external_id" doc:"External dataset id (namespace/name)"`
	Name        string         `json:"name" doc:"Display name"`
	Description string         `json:"description,omitempty" doc:"Description"`
	TotalFrames *int           `json:"total_frames" doc:"Frame count, null until first resolution"`
	Metadata    map[string]any `json:"metadata,omitempty" doc:"Provider metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func newDatasetBody(ds store.Dataset) DatasetBody {
	return DatasetBody{
		ID:          ds.ID.String(),
		ExternalID:  ds.ExternalID,
		Name:        ds.Name,
		Description: ds.Description,
		TotalFrames: ds.TotalFrames,
		Metadata:    ds.Metadata,
		CreatedAt:   ds.CreatedAt,
		UpdatedAt:   ds.UpdatedAt,
	}
}

type DatasetSummary struct {
	ExternalID string `json:"external_id" doc:"External dataset id"`
	Name       string `json:"name" doc:"Display name"`
}

type JobBody struct {
	ID           string         `json:"id" doc:"Job ID"`
	DatasetID    string         `json:"dataset_id" doc:"Owning dataset ID"`
	Dataset      DatasetSummary `json:"dataset" doc:"Dataset summary"`
	Status       string         `json:"status" enum:"pending,processing,completed,failed" doc:"Job status"`
	Progress     int            `json:"progress" minimum:"0" maximum:"100" doc:"Progress percentage"`
	CurrentStep  string         `json:"current_step" doc:"Human-readable step label, advisory only"`
	ErrorMessage string         `json:"error_message,omitempty" doc:"Set only when status is failed"`
	StartedAt    *time.Time     `json:"started_at" doc:"First transition into processing"`
	CompletedAt  *time.Time     `json:"completed_at" doc:"First transition into a terminal state"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func newJobBody(j store.JobWithDataset) JobBody {
	return JobBody{
		ID:        j.ID.String(),
		DatasetID: j.DatasetID.String(),
		Dataset: DatasetSummary{
			ExternalID: j.DatasetExternalID,
			Name:       j.DatasetName,
		},
		Status:       string(j.Status),
		Progress:     j.Progress,
		CurrentStep:  j.CurrentStep,
		ErrorMessage: j.ErrorMessage,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func newJobBodies(jobs []store.JobWithDataset) []JobBody {
	bodies := make([]JobBody, 0, len(jobs))
	for _, j := range jobs {
		bodies = append(bodies, newJobBody(j))
	}
	return bodies
}

type OutputBody struct {
	FrameIndex       int            `json:"frame_index" doc:"0-based frame index"`
	OriginalSize     int64          `json:"original_size" doc:"Original frame size in bytes"`
	CompressedSize   int64          `json:"compressed_size" doc:"Compressed size in bytes"`
	CompressionRatio *float64       `json:"compression_ratio" doc:"original/compressed, null when compressed size is zero"`
	PayloadSize      int            `json:"payload_size" doc:"Stored payload bytes, zero in stub mode"`
	Metadata         map[string]any `json:"metadata,omitempty" doc:"Compressor metadata"`
	CreatedAt        time.Time      `json:"created_at"`
}

type StatsBody struct {
	TotalFrames         int      `json:"total_frames" doc:"Number of frame outputs"`
	TotalOriginalSize   int64    `json:"total_original_size" doc:"Sum of original sizes"`
	TotalCompressedSize int64    `json:"total_compressed_size" doc:"Sum of compressed sizes"`
	AvgCompressionRatio *float64 `json:"avg_compression_ratio" doc:"Mean ratio over rows with a ratio, null when none"`
}

func newStatsBody(s result.Stats) StatsBody {
	return StatsBody{
		TotalFrames:         s.TotalFrames,
		TotalOriginalSize:   s.TotalOriginalSize,
		TotalCompressedSize: s.TotalCompressedSize,
		AvgCompressionRatio: s.AvgCompressionRatio,
	}
}
