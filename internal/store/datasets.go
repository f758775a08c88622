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

// Datasets is the dataset registry, deduplicated by external id.
type Datasets struct {
	pool *pgxpool.Pool
}

const datasetColumns = `id, external_id, name, description, total_frames, metadata, created_at, updated_at`

// Upsert creates a dataset on first submission of an external id and
// returns the existing row on resubmission. Name and description are only
// written on first creation.
func (d *Datasets) Upsert(ctx context.Context, externalID, name, description string) (Dataset, error) {
	row := d.pool.QueryRow(ctx, `
		INSERT INTO datasets (external_id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET updated_at = NOW()
		RETURNING `+datasetColumns,
		externalID, name, description)
	return scanDataset(row)
}

func (d *Datasets) Get(ctx context.Context, id uuid.UUID) (Dataset, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+datasetColumns+` FROM datasets WHERE id = $1`, pgUUID(id))
	ds, err := scanDataset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dataset{}, fmt.Errorf("dataset %s: %w", id, ErrNotFound)
	}
	return ds, err
}

func (d *Datasets) GetByExternalID(ctx context.Context, externalID string) (Dataset, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+datasetColumns+` FROM datasets WHERE external_id = $1`, externalID)
	ds, err := scanDataset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dataset{}, fmt.Errorf("dataset %q: %w", externalID, ErrNotFound)
	}
	return ds, err
}

// List returns all datasets, newest first.
func (d *Datasets) List(ctx context.Context) ([]Dataset, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+datasetColumns+` FROM datasets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// SetResolved records the frame count and provider metadata discovered by
// the runner. Called once per run, after frame resolution.
func (d *Datasets) SetResolved(ctx context.Context, id uuid.UUID, totalFrames int, metadata map[string]any) error {
	_, err := d.pool.Exec(ctx, `
		UPDATE datasets
		SET total_frames = $2, metadata = $3, updated_at = NOW()
		WHERE id = $1`,
		pgUUID(id), totalFrames, marshalMeta(metadata))
	return err
}

func scanDataset(row pgx.Row) (Dataset, error) {
	var (
		ds          Dataset
		id          pgtype.UUID
		totalFrames pgtype.Int4
		meta        []byte
	)
	err := row.Scan(&id, &ds.ExternalID, &ds.Name, &ds.Description,
		&totalFrames, &meta, &ds.CreatedAt, &ds.UpdatedAt)
	if err != nil {
		return Dataset{}, err
	}
	ds.ID = fromPgUUID(id)
	if totalFrames.Valid {
		v := int(totalFrames.Int32)
		ds.TotalFrames = &v
	}
	ds.Metadata = unmarshalMeta(meta)
	return ds, nil
}
