// Package provider resolves a dataset's external id into the ordered set of
// frames a compression job will process.
package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrNotFound means the external dataset id does not exist upstream.
	ErrNotFound = errors.New("dataset not found")
	// ErrUnavailable means the upstream source could not be reached.
	ErrUnavailable = errors.New("dataset source unavailable")
	// ErrTimeout means frame resolution exceeded its deadline.
	ErrTimeout = errors.New("dataset resolution timed out")
)

// Frame is one unit of input work. Index is assigned by the provider's
// enumeration order and must be preserved through to the frame output.
type Frame struct {
	Index     int
	Reference string
}

// Resolution is the outcome of resolving a dataset: a finite ordered frame
// sequence plus dataset-level metadata.
type Resolution struct {
	Frames   []Frame
	Metadata map[string]any
}

// Provider resolves frames for an external dataset id. Implementations must
// cap the returned frames at maxFrames and keep enumeration order stable.
type Provider interface {
	Name() string
	ResolveFrames(ctx context.Context, externalID string, maxFrames int) (Resolution, error)
}

var externalIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*/[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ParseExternalID validates the namespace/name shape of a dataset id and
// splits it. Rejected ids never reach the registry.
func ParseExternalID(externalID string) (namespace, name string, err error) {
	if !externalIDPattern.MatchString(externalID) {
		return "", "", fmt.Errorf("invalid dataset id %q: expected namespace/name", externalID)
	}
	for i := range externalID {
		if externalID[i] == '/' {
			return externalID[:i], externalID[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("invalid dataset id %q: expected namespace/name", externalID)
}
