package handlers

import (
	"context"
	"errors"

	"github.com/Exidekat/mechgen-ui/internal/core/event"
	"github.com/Exidekat/mechgen-ui/internal/core/provider"
	"github.com/Exidekat/mechgen-ui/internal/core/worker"
	"github.com/Exidekat/mechgen-ui/internal/store"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type DatasetsHandler struct {
	st   *store.Store
	pool *worker.Pool
	bus  event.Bus
}

func NewDatasetsHandler(st *store.Store, pool *worker.Pool, bus event.Bus) *DatasetsHandler {
	return &DatasetsHandler{st: st, pool: pool, bus: bus}
}

type SubmitDatasetInput struct {
	Body struct {
		ExternalID  string `json:"external_id" minLength:"3" doc:"External dataset id, namespace/name"`
		Name        string `json:"name,omitempty" doc:"Display name, defaults to the name part of the id"`
		Description string `json:"description,omitempty" doc:"Free-form description"`
	}
}

type SubmitDatasetBody struct {
	Dataset DatasetBody `json:"dataset" doc:"The upserted dataset"`
	Job     JobBody     `json:"job" doc:"The newly created compression job"`
}

// Submit upserts a dataset by external id, creates a pending job for it and
// hands the job to the worker pool. Resubmission of a known dataset creates
// a new job, never a new dataset.
func (h *DatasetsHandler) Submit(ctx context.Context, input *SubmitDatasetInput) (*DataOutput[SubmitDatasetBody], error) {
	_, namePart, err := provider.ParseExternalID(input.Body.ExternalID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	name := input.Body.Name
	if name == "" {
		name = namePart
	}

	ds, err := h.st.Datasets.Upsert(ctx, input.Body.ExternalID, name, input.Body.Description)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	job, err := h.st.Jobs.Create(ctx, ds.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	h.bus.Publish(ctx, event.Event{
		Type:    event.EventDatasetSubmitted,
		Payload: event.DatasetEvent{DatasetID: ds.ID, ExternalID: ds.ExternalID},
	})
	h.bus.Publish(ctx, event.Event{
		Type: event.EventJobCreated,
		Payload: event.JobEvent{
			JobID: job.ID, DatasetID: ds.ID, ExternalID: ds.ExternalID,
		},
	})

	if err := h.pool.Submit(job.ID); err != nil {
		// The job stays pending and can be triggered again later.
		log.Warn().Err(err).Stringer("job_id", job.ID).Msg("submit to worker pool failed")
		return nil, huma.Error503ServiceUnavailable(err.Error())
	}

	return OK(SubmitDatasetBody{
		Dataset: newDatasetBody(ds),
		Job: newJobBody(store.JobWithDataset{
			Job:               job,
			DatasetExternalID: ds.ExternalID,
			DatasetName:       ds.Name,
		}),
	}), nil
}

type ListDatasetsOutput = DataOutput[[]DatasetBody]

func (h *DatasetsHandler) List(ctx context.Context, _ *struct{}) (*ListDatasetsOutput, error) {
	datasets, err := h.st.Datasets.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	bodies := make([]DatasetBody, 0, len(datasets))
	for _, ds := range datasets {
		bodies = append(bodies, newDatasetBody(ds))
	}
	return OK(bodies), nil
}

type DatasetIDInput struct {
	ID string `path:"id" doc:"Dataset ID"`
}

// Jobs lists a dataset's jobs, newest first.
func (h *DatasetsHandler) Jobs(ctx context.Context, input *DatasetIDInput) (*DataOutput[[]JobBody], error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid dataset id")
	}

	if _, err := h.st.Datasets.Get(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error500InternalServerError(err.Error())
	}

	jobs, err := h.st.Jobs.ListByDataset(ctx, id)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}
	return OK(newJobBodies(jobs)), nil
}
