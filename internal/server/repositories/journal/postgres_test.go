package journal

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/moviebox/internal/jobs"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const upsertRE = `(?s)^\s*INSERT\s+INTO\s+export_jobs\b.*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\b.*finished_at\s*=\s*EXCLUDED\.finished_at;?\s*$`

func TestPostgres_Save_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertRE).
		WithArgs("j1", "/share/Movies", "processing", 0, "", "", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	err := repo.Save(context.Background(), jobs.Job{
		ID:         "j1",
		Status:     jobs.StatusProcessing,
		SourcePath: "/share/Movies",
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Save_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	boom := errors.New("boom")
	mock.ExpectExec(upsertRE).WillReturnError(boom)

	err := repo.Save(context.Background(), jobs.Job{ID: "j1"})
	require.ErrorIs(t, err, boom)
}

func TestPostgres_Delete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM export_jobs WHERE id=\$1$`).
		WithArgs("j1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "j1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Delete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE FROM export_jobs`).WillReturnError(errors.New("down"))

	require.Error(t, repo.Delete(context.Background(), "j1"))
}

func TestPostgres_List(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	finished := created.Add(time.Minute)

	rows := sqlmock.NewRows([]string{"id", "source_path", "status", "progress", "output_path", "error", "created_at", "updated_at", "finished_at"}).
		AddRow("j1", "/share/A", "ready", 100, "/tmp/j1/A.zip", "", created, finished, finished).
		AddRow("j2", "/share/B", "processing", 40, "", "", created, created, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*source_path,.*FROM\s+export_jobs\s+ORDER\s+BY\s+created_at$`).
		WillReturnRows(rows)

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, jobs.Job{
		ID:         "j1",
		Status:     jobs.StatusReady,
		Progress:   100,
		SourcePath: "/share/A",
		OutputPath: "/tmp/j1/A.zip",
		CreatedAt:  created,
		UpdatedAt:  finished,
		FinishedAt: finished,
	}, got[0])
	assert.Equal(t, jobs.StatusProcessing, got[1].Status)
	assert.True(t, got[1].FinishedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_List_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
}

func TestPostgres_List_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow("j1")
	mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
}
