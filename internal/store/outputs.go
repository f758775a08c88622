package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outputs is the frame output store. Rows are write-once; the unique
// (job_id, frame_index) constraint rejects duplicate writes.
type Outputs struct {
	pool *pgxpool.Pool
}

const outputColumns = `id, job_id, frame_index, original_size, compressed_size,
	compression_ratio, payload, metadata, created_at`

func (o *Outputs) Insert(ctx context.Context, out NewFrameOutput) (FrameOutput, error) {
	row := o.pool.QueryRow(ctx, `
		INSERT INTO frame_outputs
			(job_id, frame_index, original_size, compressed_size, compression_ratio, payload, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+outputColumns,
		pgUUID(out.JobID), out.FrameIndex, out.OriginalSize, out.CompressedSize,
		out.CompressionRatio, out.Payload, marshalMeta(out.Metadata))
	fo, err := scanOutput(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return FrameOutput{}, ErrDuplicateOutput
		}
		return FrameOutput{}, err
	}
	return fo, nil
}

// ListByJob returns a job's frame outputs ordered by frame index ascending.
// Zero outputs is a valid empty result, not an error.
func (o *Outputs) ListByJob(ctx context.Context, jobID uuid.UUID) ([]FrameOutput, error) {
	rows, err := o.pool.Query(ctx,
		`SELECT `+outputColumns+` FROM frame_outputs WHERE job_id = $1 ORDER BY frame_index ASC`,
		pgUUID(jobID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outputs []FrameOutput
	for rows.Next() {
		fo, err := scanOutput(rows)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, fo)
	}
	return outputs, rows.Err()
}

func scanOutput(row pgx.Row) (FrameOutput, error) {
	var (
		fo        FrameOutput
		id, jobID pgtype.UUID
		ratio     pgtype.Float8
		meta      []byte
	)
	err := row.Scan(&id, &jobID, &fo.FrameIndex, &fo.OriginalSize, &fo.CompressedSize,
		&ratio, &fo.Payload, &meta, &fo.CreatedAt)
	if err != nil {
		return FrameOutput{}, err
	}
	fo.ID = fromPgUUID(id)
	fo.JobID = fromPgUUID(jobID)
	if ratio.Valid {
		v := ratio.Float64
		fo.CompressionRatio = &v
	}
	fo.Metadata = unmarshalMeta(meta)
	return fo, nil
}
