// Package result aggregates a job's frame outputs into summary statistics
// for display and download.
package result

import (
	"context"

	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/google/uuid"
)

// OutputLister is the slice of the store the reader needs.
type OutputLister interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]store.FrameOutput, error)
}

// Stats summarizes a set of frame outputs. AvgCompressionRatio is computed
// only over rows where a ratio is present and is nil when no row has one.
type Stats struct {
	TotalFrames         int
	TotalOriginalSize   int64
	TotalCompressedSize int64
	AvgCompressionRatio *float64
}

type Reader struct {
	outputs OutputLister
}

func NewReader(outputs OutputLister) *Reader {
	return &Reader{outputs: outputs}
}

// Read returns a job's outputs ordered by frame index plus aggregate stats.
// A job with zero outputs yields an empty slice and zero stats — a valid
// state, distinct from the job's own success or failure.
func (r *Reader) Read(ctx context.Context, jobID uuid.UUID) ([]store.FrameOutput, Stats, error) {
	outputs, err := r.outputs.ListByJob(ctx, jobID)
	if err != nil {
		return nil, Stats{}, err
	}
	return outputs, Aggregate(outputs), nil
}

// Aggregate computes summary statistics over a set of frame outputs.
func Aggregate(outputs []store.FrameOutput) Stats {
	stats := Stats{TotalFrames: len(outputs)}

	var ratioSum float64
	var ratioCount int
	for _, out := range outputs {
		stats.TotalOriginalSize += out.OriginalSize
		stats.TotalCompressedSize += out.CompressedSize
		if out.CompressionRatio != nil {
			ratioSum += *out.CompressionRatio
			ratioCount++
		}
	}
	if ratioCount > 0 {
		avg := ratioSum / float64(ratioCount)
		stats.AvgCompressionRatio = &avg
	}
	return stats
}
