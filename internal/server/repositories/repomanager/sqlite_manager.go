package repomanager

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/moviebox/internal/dbx"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
	"github.com/dmitrijs2005/moviebox/internal/server/migrations"
	"github.com/dmitrijs2005/moviebox/internal/server/repositories/journal"
)

// SQLiteRepositoryManager vends the SQLite-backed journal.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Driver() string { return "sqlite" }

func (m *SQLiteRepositoryManager) Journal(db dbx.DBTX) jobs.Journal {
	return journal.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return runMigrations(ctx, db, "sqlite3", migrations.SQLiteDir)
}
