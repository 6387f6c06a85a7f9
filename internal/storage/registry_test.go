package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDriverConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = "app"
	cfg.Passwd = "secret"
	cfg.Net = "tcp"
	cfg.Addr = "127.0.0.1:3306"
	cfg.DBName = "clients"
	return cfg
}

func TestRegistry_GetInstance_DefaultName(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.Close()

	client, err := reg.GetInstance(Config{Driver: testDriverConfig()})
	require.NoError(t, err)
	assert.Equal(t, DefaultInstanceName, client.Name())

	found, ok := reg.Lookup(DefaultInstanceName)
	require.True(t, ok)
	assert.Same(t, client, found)
}

func TestRegistry_GetInstance_ReusesByName(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.Close()

	first, err := reg.GetInstance(Config{Name: "reports", Driver: testDriverConfig()})
	require.NoError(t, err)

	other := testDriverConfig()
	other.Addr = "10.0.0.9:3306"
	second, err := reg.GetInstance(Config{Name: "reports", Driver: other, Debug: true})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.False(t, second.debug)
}

func TestRegistry_GetInstance_DistinctNames(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.Close()

	a, err := reg.GetInstance(Config{Name: "b-pool", Driver: testDriverConfig()})
	require.NoError(t, err)
	b, err := reg.GetInstance(Config{Name: "a-pool", Driver: testDriverConfig()})
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	instances := reg.Instances()
	require.Len(t, instances, 2)
	assert.Equal(t, "a-pool", instances[0].Name())
	assert.Equal(t, "b-pool", instances[1].Name())
}

func TestRegistry_GetInstance_EmptyConfig(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.GetInstance(Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Contains(t, err.Error(), "the config cannot be empty")
	assert.Empty(t, reg.Instances())
}

func TestRegistry_GetInstance_MissingDriver(t *testing.T) {
	reg := NewRegistry(nil)

	_, err := reg.GetInstance(Config{Name: "x"})
	assert.True(t, errors.Is(err, ErrConfiguration))
	_, ok := reg.Lookup("x")
	assert.False(t, ok)
}

func TestRegistry_CallerMutationDoesNotLeak(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.Close()

	session := map[string]any{"sql_mode": "STRICT_ALL_TABLES"}
	client, err := reg.GetInstance(Config{SessionConfig: session, Driver: testDriverConfig()})
	require.NoError(t, err)

	session["sql_mode"] = "ANSI"
	session["time_zone"] = "+00:00"

	assert.Equal(t, "STRICT_ALL_TABLES", client.sessionConfig["sql_mode"])
	assert.Equal(t, []string{"sql_mode"}, client.sessionKeys)
}

func TestRegistry_ConcurrentGetInstance(t *testing.T) {
	reg := NewRegistry(nil)
	defer reg.Close()

	const workers = 16
	results := make([]*MySQLClient, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, err := reg.GetInstance(Config{Name: "shared", Driver: testDriverConfig()})
			assert.NoError(t, err)
			results[i] = client
		}(i)
	}
	wg.Wait()

	for _, client := range results {
		assert.Same(t, results[0], client)
	}
	assert.Len(t, reg.Instances(), 1)
}

func TestRegistry_RegisterAndClose(t *testing.T) {
	reg := NewRegistry(nil)

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	client, err := NewMySQLClient(sqlx.NewDb(mockDB, "mysql"), Config{Name: "mocked"}, nil)
	require.NoError(t, err)

	assert.True(t, reg.Register(client))
	assert.False(t, reg.Register(client))

	require.NoError(t, reg.Close())
	assert.Empty(t, reg.Instances())
	assert.NoError(t, mock.ExpectationsWereMet())
}
