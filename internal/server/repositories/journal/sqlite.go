package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/moviebox/internal/dbx"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
)

// SQLiteRepository keeps timestamps as Unix nanoseconds.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func unixNano(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

func fromUnixNano(v sql.NullInt64) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	return time.Unix(0, v.Int64).UTC()
}

func (r *SQLiteRepository) Save(ctx context.Context, j jobs.Job) error {
	query := `
		INSERT INTO export_jobs (id, source_path, status, progress, output_path, error, created_at, updated_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id)
		DO UPDATE SET
			status = excluded.status,
			progress = excluded.progress,
			output_path = excluded.output_path,
			error = excluded.error,
			updated_at = excluded.updated_at,
			finished_at = excluded.finished_at;
	`
	_, err := r.db.ExecContext(ctx, query,
		j.ID, j.SourcePath, string(j.Status), j.Progress, j.OutputPath, j.Err,
		j.CreatedAt.UnixNano(), j.UpdatedAt.UnixNano(), unixNano(j.FinishedAt))
	if err != nil {
		return fmt.Errorf("save job %s: %w", j.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM export_jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]jobs.Job, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_path, status, progress, output_path, error, created_at, updated_at, finished_at
		FROM export_jobs ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to select jobs: %w", err)
	}
	defer rows.Close()

	var result []jobs.Job
	for rows.Next() {
		var (
			j                jobs.Job
			status           string
			created, updated int64
			finished         sql.NullInt64
		)
		if err := rows.Scan(&j.ID, &j.SourcePath, &status, &j.Progress, &j.OutputPath, &j.Err,
			&created, &updated, &finished); err != nil {
			return nil, err
		}
		j.Status = jobs.Status(status)
		j.CreatedAt = time.Unix(0, created).UTC()
		j.UpdatedAt = time.Unix(0, updated).UTC()
		j.FinishedAt = fromUnixNano(finished)
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
