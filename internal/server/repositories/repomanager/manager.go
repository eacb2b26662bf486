// Package repomanager opens the export journal database, applies its goose
// migrations and vends the matching repository implementation.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/moviebox/internal/dbx"
	"github.com/dmitrijs2005/moviebox/internal/jobs"
)

type RepositoryManager interface {
	Driver() string
	RunMigrations(context.Context, *sql.DB) error
	Journal(db dbx.DBTX) jobs.Journal
}

var openDB = dbx.Open

// ForDSN picks the manager for dsn: postgres:// and postgresql:// URLs use
// pgx, anything else is treated as an SQLite file path.
func ForDSN(dsn string) RepositoryManager {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return &PostgresRepositoryManager{}
	}
	return &SQLiteRepositoryManager{}
}

// Open connects to dsn, migrates it and returns the journal with a closer.
// An empty dsn disables the journal.
func Open(ctx context.Context, dsn string) (jobs.Journal, func() error, error) {
	if strings.TrimSpace(dsn) == "" {
		return jobs.NopJournal{}, func() error { return nil }, nil
	}

	m := ForDSN(dsn)
	db, err := openDB(ctx, m.Driver(), dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate journal: %w", err)
	}

	return m.Journal(db), db.Close, nil
}
