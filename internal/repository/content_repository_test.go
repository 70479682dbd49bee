package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

// ============================================================================
// POSTGRES CONTENT
// ============================================================================

func TestPostgresContentRepository_SeedsEmptyTables(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS dashboard_alerts")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM dashboard_alerts")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dashboard_alerts")).
		WillReturnResult(sqlmock.NewResult(3, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM farming_tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	_, err := NewPostgresContentRepository(context.Background(), db)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresContentRepository_MigrationFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE")).WillReturnError(errors.New("permission denied"))

	_, err := NewPostgresContentRepository(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create content tables")
}

func TestPostgresContentRepository_Reads(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &postgresContentRepository{db: db}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT alert_type, message, priority")).
		WillReturnRows(sqlmock.NewRows([]string{"alert_type", "message", "priority"}).
			AddRow("weather", "Frost warning tonight", "high").
			AddRow("soil", "Moisture is low", "medium"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT task, crop, due_date, status FROM farming_tasks")).
		WillReturnRows(sqlmock.NewRows([]string{"task", "crop", "due_date", "status"}).
			AddRow("Irrigate field 2", "Wheat", "Today", "pending"))

	alerts, err := repo.GetAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Frost warning tonight", alerts[0].Message)
	assert.Equal(t, "high", alerts[0].Priority)

	tasks, err := repo.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Today", tasks[0].DueDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}
