package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromDSN(t *testing.T) {
	cfg, err := ConfigFromDSN("app:secret@tcp(db:3306)/clients?charset=utf8mb4")
	require.NoError(t, err)
	require.NotNil(t, cfg.Driver)
	assert.Equal(t, "db:3306", cfg.Driver.Addr)
	assert.Equal(t, "clients", cfg.Driver.DBName)
	assert.True(t, cfg.Driver.ParseTime)
	assert.Equal(t, DefaultInstanceName, cfg.InstanceName())
}

func TestConfigFromDSN_Invalid(t *testing.T) {
	_, err := ConfigFromDSN("")
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = ConfigFromDSN("app:secret@tcp(db:3306")
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "empty", cfg: Config{}, wantErr: "the config cannot be empty"},
		{name: "no driver", cfg: Config{Debug: true}, wantErr: "driver settings are required"},
		{
			name:    "bad session key",
			cfg:     Config{Driver: testDriverConfig(), SessionConfig: map[string]any{"x; DROP TABLE": 1}},
			wantErr: "invalid session variable name",
		},
		{
			name:    "non scalar session value",
			cfg:     Config{Driver: testDriverConfig(), SessionConfig: map[string]any{"sql_mode": []string{"a"}}},
			wantErr: "must be a scalar",
		},
		{
			name:    "nil session value",
			cfg:     Config{Driver: testDriverConfig(), SessionConfig: map[string]any{"sql_mode": nil}},
			wantErr: "must be a scalar",
		},
		{
			name:    "negative limit",
			cfg:     Config{Driver: testDriverConfig(), MaxOpenConns: -1},
			wantErr: "must not be negative",
		},
		{
			name: "valid",
			cfg: Config{
				Driver:          testDriverConfig(),
				SessionConfig:   map[string]any{"sql_mode": "ANSI", "wait_timeout": 30, "autocommit": true},
				MaxOpenConns:    10,
				ConnMaxLifetime: time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_CloneIsDeep(t *testing.T) {
	orig := Config{
		Name:          "main",
		SessionConfig: map[string]any{"sql_mode": "ANSI"},
		Driver:        testDriverConfig(),
	}
	clone := orig.Clone()

	orig.SessionConfig["sql_mode"] = "TRADITIONAL"
	orig.Driver.Addr = "elsewhere:3306"

	assert.Equal(t, "ANSI", clone.SessionConfig["sql_mode"])
	assert.Equal(t, "127.0.0.1:3306", clone.Driver.Addr)
}

func TestMySQLErrorNumber(t *testing.T) {
	assert.Equal(t, uint16(0), MySQLErrorNumber(errors.New("plain")))
	assert.Equal(t, uint16(0), MySQLErrorNumber(nil))

	err := dbError("exec", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	assert.Equal(t, uint16(1062), MySQLErrorNumber(err))
	assert.Equal(t, "exec: Error 1062: Duplicate entry", err.Error())
}
