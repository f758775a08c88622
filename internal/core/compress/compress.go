// Package compress defines the pluggable compression strategy. The shipped
// implementation is a placeholder that fabricates plausible statistics; a
// real Gaussian-splatting compressor slots in behind the same interface.
package compress

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Exidekat/mechgen-ui/internal/core/provider"
)

// ErrCompression wraps any failure while compressing a single frame. One
// frame failure is fatal to the whole job; partial success is not supported.
var ErrCompression = errors.New("compression failed")

// Result is the outcome of compressing one frame. Payload may be nil — a
// successfully processed frame is not required to produce payload bytes.
type Result struct {
	OriginalSize   int64
	CompressedSize int64
	Payload        []byte
	Metadata       map[string]any
}

// Compressor turns one frame reference into size/ratio/payload statistics.
type Compressor interface {
	Name() string
	Compress(ctx context.Context, frame provider.Frame) (Result, error)
}

// Registry manages registered compressors by name.
type Registry struct {
	mu          sync.RWMutex
	compressors map[string]Compressor
}

func NewRegistry() *Registry {
	return &Registry{
		compressors: make(map[string]Compressor),
	}
}

func (r *Registry) Register(c Compressor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compressors[c.Name()] = c
}

func (r *Registry) Get(name string) (Compressor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.compressors[name]
	if !ok {
		return nil, fmt.Errorf("compressor %q not found", name)
	}
	return c, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.compressors))
	for name := range r.compressors {
		names = append(names, name)
	}
	return names
}
