package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local resolves frames from a fixture directory laid out as
// <root>/<namespace>/<name>/. Every regular file with an image extension is
// one frame; lexicographic filename order defines frame indices.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Name() string { return "local" }

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".exr":  true,
}

func (l *Local) ResolveFrames(ctx context.Context, externalID string, maxFrames int) (Resolution, error) {
	namespace, name, err := ParseExternalID(externalID)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	dir := filepath.Join(l.root, namespace, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, externalID)
		}
		return Resolution{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if maxFrames > 0 && len(names) > maxFrames {
		names = names[:maxFrames]
	}

	frames := make([]Frame, 0, len(names))
	for i, n := range names {
		if err := ctx.Err(); err != nil {
			return Resolution{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		frames = append(frames, Frame{
			Index:     i,
			Reference: filepath.Join(dir, n),
		})
	}

	return Resolution{
		Frames: frames,
		Metadata: map[string]any{
			"source":    "local",
			"namespace": namespace,
			"name":      name,
			"directory": dir,
		},
	}, nil
}
