// Package runner drives one compression job through its lifecycle:
// pending -> processing -> completed | failed. It is the only writer of job
// status transitions.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Exidekat/mechgen-ui/internal/core/compress"
	"github.com/Exidekat/mechgen-ui/internal/core/event"
	"github.com/Exidekat/mechgen-ui/internal/core/provider"
	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// JobStore is the slice of the job store the runner writes through.
type JobStore interface {
	Get(ctx context.Context, id uuid.UUID) (store.Job, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, progress int, step string) (bool, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int, step string) error
	MarkCompleted(ctx context.Context, id uuid.UUID, step string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}

// DatasetStore is the slice of the dataset registry the runner needs.
type DatasetStore interface {
	Get(ctx context.Context, id uuid.UUID) (store.Dataset, error)
	SetResolved(ctx context.Context, id uuid.UUID, totalFrames int, metadata map[string]any) error
}

// OutputStore records per-frame results.
type OutputStore interface {
	Insert(ctx context.Context, out store.NewFrameOutput) (store.FrameOutput, error)
}

type Runner struct {
	jobs       JobStore
	datasets   DatasetStore
	outputs    OutputStore
	provider   provider.Provider
	compressor compress.Compressor
	bus        event.Bus
	budget     time.Duration
	maxFrames  int
}

type Config struct {
	Jobs       JobStore
	Datasets   DatasetStore
	Outputs    OutputStore
	Provider   provider.Provider
	Compressor compress.Compressor
	Bus        event.Bus
	// Budget is the wall-clock ceiling for one whole Run. Exceeding it
	// fails the job rather than leaving it stuck in processing.
	Budget    time.Duration
	MaxFrames int
}

func New(cfg Config) *Runner {
	if cfg.Budget <= 0 {
		cfg.Budget = time.Minute
	}
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = 500
	}
	return &Runner{
		jobs:       cfg.Jobs,
		datasets:   cfg.Datasets,
		outputs:    cfg.Outputs,
		provider:   cfg.Provider,
		compressor: cfg.Compressor,
		bus:        cfg.Bus,
		budget:     cfg.Budget,
		maxFrames:  cfg.MaxFrames,
	}
}

// Run processes one job end-to-end. Re-invocation on a job that already
// left pending is a no-op, so duplicated triggers never double-process.
// All processing failures are converted into a single failed status update;
// no error escapes for anything that happened after the job went processing.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) error {
	job, err := r.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	ds, err := r.datasets.Get(ctx, job.DatasetID)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	transitioned, err := r.jobs.MarkProcessing(ctx, jobID, 10, "resolving frames")
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if !transitioned {
		log.Debug().Stringer("job_id", jobID).Str("status", string(job.Status)).
			Msg("job not pending, skipping duplicate run")
		return nil
	}

	r.publish(ctx, event.EventJobStarted, event.JobEvent{
		JobID: jobID, DatasetID: ds.ID, ExternalID: ds.ExternalID, Progress: 10,
	})

	runCtx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	frames, runErr := r.process(runCtx, jobID, ds)

	// Status writes after a blown budget must not ride the expired context.
	finishCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		msg := runErr.Error()
		if errors.Is(runErr, context.DeadlineExceeded) {
			msg = fmt.Sprintf("job timed out after %s", r.budget)
		}
		if err := r.jobs.MarkFailed(finishCtx, jobID, msg); err != nil {
			log.Error().Err(err).Stringer("job_id", jobID).Msg("failed to record job failure")
		}
		r.publish(finishCtx, event.EventJobFailed, event.JobEvent{
			JobID: jobID, DatasetID: ds.ID, ExternalID: ds.ExternalID, Error: msg,
		})
		return nil
	}

	step := fmt.Sprintf("compressed %d frames", frames)
	if err := r.jobs.MarkCompleted(finishCtx, jobID, step); err != nil {
		log.Error().Err(err).Stringer("job_id", jobID).Msg("failed to record job completion")
		return nil
	}
	r.publish(finishCtx, event.EventJobCompleted, event.JobEvent{
		JobID: jobID, DatasetID: ds.ID, ExternalID: ds.ExternalID, Progress: 100, Frames: frames,
	})
	return nil
}

// process resolves frames and compresses them one by one. It returns the
// number of frames processed or the first fatal error.
func (r *Runner) process(ctx context.Context, jobID uuid.UUID, ds store.Dataset) (int, error) {
	res, err := r.provider.ResolveFrames(ctx, ds.ExternalID, r.maxFrames)
	if err != nil {
		return 0, err
	}

	// Frame count and metadata stick regardless of the job's outcome.
	if err := r.datasets.SetResolved(ctx, ds.ID, len(res.Frames), res.Metadata); err != nil {
		return 0, fmt.Errorf("update dataset: %w", err)
	}

	if len(res.Frames) == 0 {
		return 0, errors.New("no frames found in dataset")
	}

	total := len(res.Frames)
	for done, frame := range res.Frames {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		result, err := r.compressor.Compress(ctx, frame)
		if err != nil {
			return done, err
		}

		var ratio *float64
		if result.CompressedSize > 0 {
			v := float64(result.OriginalSize) / float64(result.CompressedSize)
			ratio = &v
		}

		// Output first, progress second: progress never reports a frame
		// as done before its output is recorded.
		if _, err := r.outputs.Insert(ctx, store.NewFrameOutput{
			JobID:            jobID,
			FrameIndex:       frame.Index,
			OriginalSize:     result.OriginalSize,
			CompressedSize:   result.CompressedSize,
			CompressionRatio: ratio,
			Payload:          result.Payload,
			Metadata:         result.Metadata,
		}); err != nil {
			return done, fmt.Errorf("record frame %d: %w", frame.Index, err)
		}

		progress := 30 + (60*(done+1))/total
		step := fmt.Sprintf("processing frame %d/%d", done+1, total)
		if err := r.jobs.UpdateProgress(ctx, jobID, progress, step); err != nil {
			return done + 1, fmt.Errorf("update progress: %w", err)
		}

		r.publish(ctx, event.EventJobProgress, event.JobEvent{
			JobID: jobID, DatasetID: ds.ID, ExternalID: ds.ExternalID,
			Progress: progress, Step: step,
		})
	}

	return total, nil
}

func (r *Runner) publish(ctx context.Context, t event.EventType, payload event.JobEvent) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(ctx, event.Event{Type: t, Payload: payload})
}
