// Package journal stores export job snapshots in SQL so that a restarted
// server can clean up archives left by its predecessor. PostgreSQL and
// SQLite implementations share the same table layout.
package journal

import (
	"context"

	"github.com/dmitrijs2005/moviebox/internal/jobs"
)

type Repository interface {
	// Save inserts or replaces the row for j.ID.
	Save(ctx context.Context, j jobs.Job) error
	Delete(ctx context.Context, id string) error
	// List returns all rows ordered by creation time.
	List(ctx context.Context) ([]jobs.Job, error)
}

var (
	_ jobs.Journal = (*PostgresRepository)(nil)
	_ jobs.Journal = (*SQLiteRepository)(nil)
)
