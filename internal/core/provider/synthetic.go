package provider

import (
	"context"
	"fmt"
	"hash/fnv"
)

// Synthetic fabricates frame references for any well-formed dataset id.
// Used in dev mode, where no dataset storage is wired up. The frame count
// is derived from the id so repeated submissions of the same dataset
// resolve identically.
type Synthetic struct {
	maxFramesPerSet int
}

func NewSynthetic(framesPerSet int) *Synthetic {
	if framesPerSet <= 0 {
		framesPerSet = 12
	}
	return &Synthetic{maxFramesPerSet: framesPerSet}
}

func (s *Synthetic) Name() string { return "synthetic" }

func (s *Synthetic) ResolveFrames(ctx context.Context, externalID string, maxFrames int) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	namespace, name, err := ParseExternalID(externalID)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	h := fnv.New32a()
	h.Write([]byte(externalID))
	count := 1 + int(h.Sum32()%uint32(s.maxFramesPerSet))
	if maxFrames > 0 && count > maxFrames {
		count = maxFrames
	}

	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		frames = append(frames, Frame{
			Index:     i,
			Reference: fmt.Sprintf("synthetic://%s/%s/frame_%04d.png", namespace, name, i),
		})
	}

	return Resolution{
		Frames: frames,
		Metadata: map[string]any{
			"source":    "synthetic",
			"namespace": namespace,
			"name":      name,
		},
	}, nil
}
