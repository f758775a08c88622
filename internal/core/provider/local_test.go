package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("fixture"), 0o644))
}

func TestLocalResolvesSortedImageFiles(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, "acme/demo/frame_0002.png")
	writeFixture(t, root, "acme/demo/frame_0000.png")
	writeFixture(t, root, "acme/demo/frame_0001.jpg")
	writeFixture(t, root, "acme/demo/notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme/demo/subdir"), 0o755))

	p := NewLocal(root)
	res, err := p.ResolveFrames(context.Background(), "acme/demo", 500)
	require.NoError(t, err)

	// Non-image files and directories are skipped; filename order wins.
	require.Len(t, res.Frames, 3)
	assert.Equal(t, 0, res.Frames[0].Index)
	assert.Equal(t, filepath.Join(root, "acme/demo/frame_0000.png"), res.Frames[0].Reference)
	assert.Equal(t, filepath.Join(root, "acme/demo/frame_0001.jpg"), res.Frames[1].Reference)
	assert.Equal(t, filepath.Join(root, "acme/demo/frame_0002.png"), res.Frames[2].Reference)

	assert.Equal(t, "local", res.Metadata["source"])
}

func TestLocalCapsFrames(t *testing.T) {
	root := t.TempDir()
	for _, n := range []string{"a.png", "b.png", "c.png", "d.png"} {
		writeFixture(t, root, filepath.Join("acme/demo", n))
	}

	p := NewLocal(root)
	res, err := p.ResolveFrames(context.Background(), "acme/demo", 2)
	require.NoError(t, err)
	assert.Len(t, res.Frames, 2)
}

func TestLocalMissingDataset(t *testing.T) {
	p := NewLocal(t.TempDir())

	_, err := p.ResolveFrames(context.Background(), "acme/missing", 500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme/empty"), 0o755))

	p := NewLocal(root)
	res, err := p.ResolveFrames(context.Background(), "acme/empty", 500)
	require.NoError(t, err)
	assert.Empty(t, res.Frames, "empty dataset resolves to zero frames, not an error")
}
