package handlers

import (
	"context"
	"errors"

	"github.com/Exidekat/mechgen-ui/internal/core/result"
	"github.com/Exidekat/mechgen-ui/internal/core/worker"
	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

type JobsHandler struct {
	st     *store.Store
	reader *result.Reader
	pool   *worker.Pool
}

func NewJobsHandler(st *store.Store, reader *result.Reader, pool *worker.Pool) *JobsHandler {
	return &JobsHandler{st: st, reader: reader, pool: pool}
}

type JobIDInput struct {
	ID string `path:"id" doc:"Job ID"`
}

// Get returns a job with its dataset summary. Reads are side-effect free
// and safe to poll at sub-second intervals.
func (h *JobsHandler) Get(ctx context.Context, input *JobIDInput) (*DataOutput[JobBody], error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job id")
	}

	job, err := h.st.Jobs.GetWithDataset(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return OK(newJobBody(job)), nil
}

func (h *JobsHandler) List(ctx context.Context, _ *struct{}) (*DataOutput[[]JobBody], error) {
	jobs, err := h.st.Jobs.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return OK(newJobBodies(jobs)), nil
}

// Run triggers execution of a pending job. Duplicate triggers are no-ops:
// the pool dedups queued jobs and the runner skips jobs that already left
// pending.
func (h *JobsHandler) Run(ctx context.Context, input *JobIDInput) (*MsgOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job id")
	}

	job, err := h.st.Jobs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}

	if job.Status.Terminal() {
		return Msg("job already " + string(job.Status)), nil
	}

	if err := h.pool.Submit(id); err != nil {
		return nil, huma.Error503ServiceUnavailable(err.Error())
	}
	return Msg("job queued"), nil
}

type JobOutputsBody struct {
	Outputs []OutputBody `json:"outputs" doc:"Frame outputs ordered by frame index"`
	Stats   *StatsBody   `json:"stats" doc:"Aggregate statistics, null when the job has no outputs"`
}

// Outputs returns a job's frame outputs plus aggregate statistics. A job
// with zero outputs yields an empty list and null stats, not an error.
func (h *JobsHandler) Outputs(ctx context.Context, input *JobIDInput) (*DataOutput[JobOutputsBody], error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid job id")
	}

	if _, err := h.st.Jobs.Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}

	outputs, stats, err := h.reader.Read(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	bodies := make([]OutputBody, 0, len(outputs))
	for _, out := range outputs {
		bodies = append(bodies, OutputBody{
			FrameIndex:       out.FrameIndex,
			OriginalSize:     out.OriginalSize,
			CompressedSize:   out.CompressedSize,
			CompressionRatio: out.CompressionRatio,
			PayloadSize:      len(out.Payload),
			Metadata:         out.Metadata,
			CreatedAt:        out.CreatedAt,
		})
	}

	body := JobOutputsBody{Outputs: bodies}
	if len(outputs) > 0 {
		sb := newStatsBody(stats)
		body.Stats = &sb
	}
	return OK(body), nil
}
