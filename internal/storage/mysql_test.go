package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dhima/client-service/internal/logging"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newMockClient(t *testing.T, cfg Config, logger logging.Logger) (*MySQLClient, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	client, err := NewMySQLClient(sqlx.NewDb(mockDB, "mysql"), cfg, logger)
	require.NoError(t, err)
	return client, mock
}

func TestMySQLClient_ExecExpandsParamsAndReleases(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	mock.ExpectExec("DELETE FROM client WHERE (id) IN (?,?,?)").
		WithArgs(int64(6), int64(10), int64(14)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := client.Exec(context.Background(), "DELETE FROM client WHERE (id) IN (?)", []int64{6, 10, 14})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.Equal(t, 0, client.Stats().InUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLClient_SelectScansRows(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	mock.ExpectQuery("SELECT id, first_name FROM client WHERE id IN (?,?)").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name"}).
			AddRow(1, "Mark").
			AddRow(2, "Anna"))

	var rows []struct {
		ID        int64  `db:"id"`
		FirstName string `db:"first_name"`
	}
	err := client.Select(context.Background(), &rows, "SELECT id, first_name FROM client WHERE id IN (?)", []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Anna", rows[1].FirstName)
	assert.Equal(t, 0, client.Stats().InUse)
}

func TestMySQLClient_FailureIsWrappedAndReleases(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	boom := errors.New("syntax error")
	mock.ExpectQuery("SELEC 1").WillReturnError(boom)

	var n int
	err := client.Get(context.Background(), &n, "SELEC 1")
	require.Error(t, err)

	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "get", dbErr.Op)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, 0, client.Stats().InUse)
}

func TestMySQLClient_SessionConfigAppliedInKeyOrder(t *testing.T) {
	cfg := Config{SessionConfig: map[string]any{
		"time_zone": "+00:00",
		"sql_mode":  "STRICT_ALL_TABLES",
	}}
	client, mock := newMockClient(t, cfg, nil)

	mock.ExpectExec("SET SESSION sql_mode = ?").WithArgs("STRICT_ALL_TABLES").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET SESSION time_zone = ?").WithArgs("+00:00").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	var n int
	require.NoError(t, client.Get(context.Background(), &n, "SELECT 1"))
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLClient_SessionConfigFailureReleases(t *testing.T) {
	cfg := Config{SessionConfig: map[string]any{"sql_mode": "NOPE"}}
	client, mock := newMockClient(t, cfg, nil)

	mock.ExpectExec("SET SESSION sql_mode = ?").WithArgs("NOPE").WillReturnError(errors.New("unknown mode"))

	_, err := client.Exec(context.Background(), "UPDATE t SET a = 1")
	require.Error(t, err)

	var dbErr *DatabaseError
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, "set session sql_mode", dbErr.Op)
	assert.Equal(t, 0, client.Stats().InUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLClient_BulkBuildsStatement(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	mock.ExpectExec("INSERT INTO t (a, b) VALUES (?,?),(?,?)").
		WithArgs(int64(1), "x", int64(2), nil).
		WillReturnResult(sqlmock.NewResult(10, 2))

	res, err := client.Bulk(context.Background(), "INSERT INTO t (a, b) VALUES ?", [][]any{{1, "x"}, {2, nil}})
	require.NoError(t, err)
	assert.Equal(t, ExecResult{LastInsertID: 10, RowsAffected: 2}, res)
}

func TestMySQLClient_BulkInvalidInputNeverAcquires(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	_, err := client.Bulk(context.Background(), "INSERT INTO t VALUES ?", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, 0, client.Stats().InUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLClient_WithConnKeepsCallbackError(t *testing.T) {
	client, _ := newMockClient(t, Config{}, nil)

	want := errors.New("callback failed")
	err := client.WithConn(context.Background(), func(*Conn) error { return want })
	assert.Equal(t, want, err)
	assert.Equal(t, 0, client.Stats().InUse)
}

func TestMySQLClient_DebugLogsStatements(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	client, mock := newMockClient(t, Config{Name: "reports", Debug: true}, logging.New(zap.New(core)))

	mock.ExpectExec("UPDATE t SET a = ? WHERE id IN (?,?)").
		WithArgs("v", int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	_, err := client.Exec(context.Background(), "UPDATE t SET a = ? WHERE id IN (?)", "v", []int{1, 2})
	require.NoError(t, err)

	entries := logs.FilterMessage("query and params").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "UPDATE t SET a = ? WHERE id IN (?,?)", entries[0].ContextMap()["query"])
	assert.Equal(t, "reports", entries[0].ContextMap()["pool"])
	assert.Equal(t, 1, logs.FilterMessage("ok - released connection").Len())
}

func TestMySQLClient_CanceledContextFailsAcquire(t *testing.T) {
	client, mock := newMockClient(t, Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Exec(ctx, "SELECT 1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewMySQLClient_Validation(t *testing.T) {
	_, err := NewMySQLClient(nil, Config{}, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))

	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	_, err = NewMySQLClient(sqlx.NewDb(mockDB, "mysql"), Config{SessionConfig: map[string]any{"bad key": 1}}, nil)
	assert.True(t, errors.Is(err, ErrConfiguration))

	client, err := NewMySQLClient(sqlx.NewDb(mockDB, "mysql"), Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultInstanceName, client.Name())
}
