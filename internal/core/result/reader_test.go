package result

import (
	"context"
	"errors"
	"testing"

	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	outputs []store.FrameOutput
	err     error
}

func (l staticLister) ListByJob(ctx context.Context, jobID uuid.UUID) ([]store.FrameOutput, error) {
	return l.outputs, l.err
}

func ratio(v float64) *float64 { return &v }

func TestAggregateSkipsMissingRatios(t *testing.T) {
	outputs := []store.FrameOutput{
		{FrameIndex: 0, OriginalSize: 100, CompressedSize: 10, CompressionRatio: ratio(10)},
		{FrameIndex: 1, OriginalSize: 200, CompressedSize: 50, CompressionRatio: ratio(4)},
		{FrameIndex: 2, OriginalSize: 50, CompressedSize: 0},
	}

	stats := Aggregate(outputs)

	assert.Equal(t, 3, stats.TotalFrames)
	assert.Equal(t, int64(350), stats.TotalOriginalSize)
	assert.Equal(t, int64(60), stats.TotalCompressedSize)
	// The zero-compressed frame has no ratio, so the average covers two rows.
	require.NotNil(t, stats.AvgCompressionRatio)
	assert.InDelta(t, 7.0, *stats.AvgCompressionRatio, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.TotalFrames)
	assert.Equal(t, int64(0), stats.TotalOriginalSize)
	assert.Equal(t, int64(0), stats.TotalCompressedSize)
	assert.Nil(t, stats.AvgCompressionRatio)
}

func TestAggregateAllRatiosMissing(t *testing.T) {
	outputs := []store.FrameOutput{
		{FrameIndex: 0, OriginalSize: 100, CompressedSize: 0},
		{FrameIndex: 1, OriginalSize: 200, CompressedSize: 0},
	}

	stats := Aggregate(outputs)
	assert.Nil(t, stats.AvgCompressionRatio)
}

func TestReaderRead(t *testing.T) {
	outputs := []store.FrameOutput{
		{FrameIndex: 0, OriginalSize: 1000, CompressedSize: 100, CompressionRatio: ratio(10)},
		{FrameIndex: 1, OriginalSize: 2000, CompressedSize: 100, CompressionRatio: ratio(20)},
	}
	r := NewReader(staticLister{outputs: outputs})

	got, stats, err := r.Read(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, outputs, got)
	assert.Equal(t, 2, stats.TotalFrames)
	require.NotNil(t, stats.AvgCompressionRatio)
	assert.InDelta(t, 15.0, *stats.AvgCompressionRatio, 1e-9)
}

func TestReaderReadError(t *testing.T) {
	r := NewReader(staticLister{err: errors.New("connection refused")})

	_, _, err := r.Read(context.Background(), uuid.New())
	require.Error(t, err)
}
