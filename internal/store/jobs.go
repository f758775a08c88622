package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Jobs is the job store. Status transitions are guarded in SQL so that
// terminal jobs are never rewritten and start/completion timestamps are
// first-write-wins.
type Jobs struct {
	pool *pgxpool.Pool
}

const jobColumns = `id, dataset_id, status, progress, current_step, error_message,
	started_at, completed_at, created_at, updated_at`

// Create inserts a pending job with progress 0 for the given dataset.
func (j *Jobs) Create(ctx context.Context, datasetID uuid.UUID) (Job, error) {
	row := j.pool.QueryRow(ctx, `
		INSERT INTO jobs (dataset_id, status, progress)
		VALUES ($1, 'pending', 0)
		RETURNING `+jobColumns,
		pgUUID(datasetID))
	return scanJob(row)
}

func (j *Jobs) Get(ctx context.Context, id uuid.UUID) (Job, error) {
	row := j.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, pgUUID(id))
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job, err
}

// GetWithDataset returns a job with its dataset summary denormalized.
func (j *Jobs) GetWithDataset(ctx context.Context, id uuid.UUID) (JobWithDataset, error) {
	row := j.pool.QueryRow(ctx, `
		SELECT j.id, j.dataset_id, j.status, j.progress, j.current_step, j.error_message,
			j.started_at, j.completed_at, j.created_at, j.updated_at,
			d.external_id, d.name
		FROM jobs j
		JOIN datasets d ON d.id = j.dataset_id
		WHERE j.id = $1`, pgUUID(id))
	jd, err := scanJobWithDataset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return JobWithDataset{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return jd, err
}

// List returns all jobs with dataset summaries, newest first.
func (j *Jobs) List(ctx context.Context) ([]JobWithDataset, error) {
	return j.listWhere(ctx, ``)
}

// ListByDataset returns a dataset's jobs, newest first.
func (j *Jobs) ListByDataset(ctx context.Context, datasetID uuid.UUID) ([]JobWithDataset, error) {
	return j.listWhere(ctx, `WHERE j.dataset_id = $1`, pgUUID(datasetID))
}

func (j *Jobs) listWhere(ctx context.Context, where string, args ...any) ([]JobWithDataset, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT j.id, j.dataset_id, j.status, j.progress, j.current_step, j.error_message,
			j.started_at, j.completed_at, j.created_at, j.updated_at,
			d.external_id, d.name
		FROM jobs j
		JOIN datasets d ON d.id = j.dataset_id
		`+where+`
		ORDER BY j.created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []JobWithDataset
	for rows.Next() {
		jd, err := scanJobWithDataset(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, jd)
	}
	return jobs, rows.Err()
}

// ListPending returns jobs still waiting for a runner, oldest first, so a
// restarted server can resubmit them in submission order.
func (j *Jobs) ListPending(ctx context.Context) ([]Job, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkProcessing transitions a pending job to processing, setting
// started_at exactly once. Returns false without error when the job was not
// pending — the runner's re-entrancy guard.
func (j *Jobs) MarkProcessing(ctx context.Context, id uuid.UUID, progress int, step string) (bool, error) {
	tag, err := j.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'processing', progress = $2, current_step = $3,
			started_at = COALESCE(started_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		pgUUID(id), progress, step)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateProgress records mid-run progress. It never touches status or
// timestamps and no-ops once the job has left processing.
func (j *Jobs) UpdateProgress(ctx context.Context, id uuid.UUID, progress int, step string) error {
	_, err := j.pool.Exec(ctx, `
		UPDATE jobs
		SET progress = $2, current_step = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`,
		pgUUID(id), progress, step)
	return err
}

// MarkCompleted transitions a processing job to completed with progress
// pinned to 100. completed_at is first-write-wins.
func (j *Jobs) MarkCompleted(ctx context.Context, id uuid.UUID, step string) error {
	_, err := j.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'completed', progress = 100, current_step = $2,
			completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status = 'processing'`,
		pgUUID(id), step)
	return err
}

// MarkFailed transitions a non-terminal job to failed, recording the error
// verbatim. Progress is left at its last recorded value.
func (j *Jobs) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	_, err := j.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'failed', error_message = $2,
			completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'failed')`,
		pgUUID(id), errMsg)
	return err
}

// FailStaleProcessing fails jobs a previous crashed process left in
// processing. Pending jobs are untouched; the server resubmits those.
func (j *Jobs) FailStaleProcessing(ctx context.Context) (int64, error) {
	tag, err := j.pool.Exec(ctx, `
		UPDATE jobs
		SET status = 'failed', error_message = 'runner terminated before job finished',
			completed_at = COALESCE(completed_at, NOW()), updated_at = NOW()
		WHERE status = 'processing'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanJob(row pgx.Row) (Job, error) {
	var (
		job         Job
		id, dsID    pgtype.UUID
		errMsg      pgtype.Text
		started     pgtype.Timestamptz
		completed   pgtype.Timestamptz
	)
	err := row.Scan(&id, &dsID, &job.Status, &job.Progress, &job.CurrentStep,
		&errMsg, &started, &completed, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return Job{}, err
	}
	job.ID = fromPgUUID(id)
	job.DatasetID = fromPgUUID(dsID)
	job.ErrorMessage = errMsg.String
	job.StartedAt = fromPgTime(started)
	job.CompletedAt = fromPgTime(completed)
	return job, nil
}

func scanJobWithDataset(row pgx.Row) (JobWithDataset, error) {
	var (
		jd          JobWithDataset
		id, dsID    pgtype.UUID
		errMsg      pgtype.Text
		started     pgtype.Timestamptz
		completed   pgtype.Timestamptz
	)
	err := row.Scan(&id, &dsID, &jd.Status, &jd.Progress, &jd.CurrentStep,
		&errMsg, &started, &completed, &jd.CreatedAt, &jd.UpdatedAt,
		&jd.DatasetExternalID, &jd.DatasetName)
	if err != nil {
		return JobWithDataset{}, err
	}
	jd.ID = fromPgUUID(id)
	jd.DatasetID = fromPgUUID(dsID)
	jd.ErrorMessage = errMsg.String
	jd.StartedAt = fromPgTime(started)
	jd.CompletedAt = fromPgTime(completed)
	return jd, nil
}
