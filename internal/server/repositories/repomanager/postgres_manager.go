package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/moviebox/internal/dbx"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
	"github.com/dmitrijs2005/moviebox/internal/server/migrations"
	"github.com/dmitrijs2005/moviebox/internal/server/repositories/journal"
)

// PostgresRepositoryManager vends the PostgreSQL-backed journal.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Driver() string { return "pgx" }

// Journal returns a journal bound to the provided DBTX.
func (m *PostgresRepositoryManager) Journal(db dbx.DBTX) jobs.Journal {
	return journal.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, dir)
}

// RunMigrations applies the embedded postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "pgx", migrations.PostgresDir)
}
