package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/moviebox/internal/jobs"
	"github.com/dmitrijs2005/moviebox/internal/server/repositories/journal"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestForDSN(t *testing.T) {
	tests := []struct {
		dsn    string
		driver string
	}{
		{"postgres://u:p@localhost:5432/moviebox?sslmode=disable", "pgx"},
		{"postgresql://localhost/moviebox", "pgx"},
		{"/var/lib/moviebox/journal.db", "sqlite"},
		{"file:journal.db?_pragma=busy_timeout(5000)", "sqlite"},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.driver, ForDSN(tt.dsn).Driver())
		})
	}
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	_, ok := (&PostgresRepositoryManager{}).Journal(db).(*journal.PostgresRepository)
	assert.True(t, ok)

	_, ok = (&SQLiteRepositoryManager{}).Journal(db).(*journal.SQLiteRepository)
	assert.True(t, ok)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	var dirs []string
	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		dirs = append(dirs, dir)
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, (&PostgresRepositoryManager{}).RunMigrations(context.Background(), db))
	require.NoError(t, (&SQLiteRepositoryManager{}).RunMigrations(context.Background(), db))
	assert.Equal(t, []string{"postgres", "sqlite"}, dirs)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestOpen_EmptyDSNDisablesJournal(t *testing.T) {
	j, closeFn, err := Open(context.Background(), "  ")
	require.NoError(t, err)
	assert.IsType(t, jobs.NopJournal{}, j)
	require.NoError(t, closeFn())
}

func TestOpen_SQLiteRunsRealMigrations(t *testing.T) {
	ctx := context.Background()

	j, closeFn, err := Open(ctx, "file:repomanager_open?mode=memory&cache=shared")
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	require.NoError(t, j.Save(ctx, jobs.Job{ID: "j1", Status: jobs.StatusProcessing, SourcePath: "/share/A"}))
	rows, err := j.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "j1", rows[0].ID)
}

func TestOpen_MigrationErrorClosesDB(t *testing.T) {
	orig := gooseUpContext
	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("bad migration")
	}
	defer func() { gooseUpContext = orig }()

	_, _, err := Open(context.Background(), "file:repomanager_fail?mode=memory&cache=shared")
	require.ErrorContains(t, err, "bad migration")
}

func TestOpen_ConnectError(t *testing.T) {
	origOpen := openDB
	openDB = func(context.Context, string, string) (*sql.DB, error) { return nil, errors.New("refused") }
	defer func() { openDB = origOpen }()

	_, _, err := Open(context.Background(), "postgres://localhost/none")
	require.ErrorContains(t, err, "refused")
}
