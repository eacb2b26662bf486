package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/moviebox/internal/dbx"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
)

// PostgresRepository implements the journal over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, j jobs.Job) error {
	query := `
		INSERT INTO export_jobs (id, source_path, status, progress, output_path, error, created_at, updated_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			output_path = EXCLUDED.output_path,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at,
			finished_at = EXCLUDED.finished_at;
	`
	finished := sql.NullTime{Time: j.FinishedAt, Valid: !j.FinishedAt.IsZero()}

	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.SourcePath, string(j.Status), j.Progress, j.OutputPath, j.Err, j.CreatedAt, j.UpdatedAt, finished)
	if err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM export_jobs WHERE id=$1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]jobs.Job, error) {
	query := `SELECT id, source_path, status, progress, output_path, error, created_at, updated_at, finished_at
		FROM export_jobs ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select jobs: %w", err)
	}
	defer rows.Close()

	var result []jobs.Job
	for rows.Next() {
		var (
			j        jobs.Job
			status   string
			finished sql.NullTime
		)
		if err := rows.Scan(&j.ID, &j.SourcePath, &status, &j.Progress, &j.OutputPath, &j.Err,
			&j.CreatedAt, &j.UpdatedAt, &finished); err != nil {
			return nil, err
		}
		j.Status = jobs.Status(status)
		if finished.Valid {
			j.FinishedAt = finished.Time
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
