package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticDeterministic(t *testing.T) {
	p := NewSynthetic(12)

	first, err := p.ResolveFrames(context.Background(), "acme/demo", 500)
	require.NoError(t, err)
	second, err := p.ResolveFrames(context.Background(), "acme/demo", 500)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same id must resolve identically")
	require.NotEmpty(t, first.Frames)
	assert.LessOrEqual(t, len(first.Frames), 12)

	for i, frame := range first.Frames {
		assert.Equal(t, i, frame.Index)
		assert.Equal(t, fmt.Sprintf("synthetic://acme/demo/frame_%04d.png", i), frame.Reference)
	}

	assert.Equal(t, "synthetic", first.Metadata["source"])
	assert.Equal(t, "acme", first.Metadata["namespace"])
	assert.Equal(t, "demo", first.Metadata["name"])
}

func TestSyntheticHonorsMaxFrames(t *testing.T) {
	p := NewSynthetic(100)

	res, err := p.ResolveFrames(context.Background(), "acme/big-scene", 3)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Frames), 3)
}

func TestSyntheticRejectsMalformedID(t *testing.T) {
	p := NewSynthetic(12)

	_, err := p.ResolveFrames(context.Background(), "not-a-dataset-id", 500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSyntheticCancelledContext(t *testing.T) {
	p := NewSynthetic(12)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ResolveFrames(ctx, "acme/demo", 500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
}
