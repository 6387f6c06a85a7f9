package storage

import (
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DefaultInstanceName is the registry name used when Config.Name is empty.
const DefaultInstanceName = "_default_"

var sessionKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config describes one named MySQL pool.
type Config struct {
	// Name selects the registry instance; empty means DefaultInstanceName.
	Name string
	// Debug logs every statement and its parameters.
	Debug bool
	// SessionConfig is applied with SET SESSION on every acquired connection.
	SessionConfig map[string]any
	// Driver holds the go-sql-driver/mysql connection settings.
	Driver *mysql.Config

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// TransactionTimeout is the wait_timeout, in seconds, used by the
	// store's own transactions. Zero means DefaultTransactionTimeout.
	TransactionTimeout int
}

// ConfigFromDSN parses a go-sql-driver DSN into a Config with parseTime
// enabled.
func ConfigFromDSN(dsn string) (Config, error) {
	if dsn == "" {
		return Config{}, fmt.Errorf("%w: dsn is empty", ErrConfiguration)
	}
	driver, err := mysql.ParseDSN(dsn)
	if err != nil {
		return Config{}, fmt.Errorf("%w: parse dsn: %v", ErrConfiguration, err)
	}
	driver.ParseTime = true
	return Config{Driver: driver}, nil
}

// IsZero reports whether no setting at all was provided.
func (c Config) IsZero() bool {
	return c.Name == "" && !c.Debug && len(c.SessionConfig) == 0 && c.Driver == nil &&
		c.MaxOpenConns == 0 && c.MaxIdleConns == 0 && c.ConnMaxLifetime == 0 && c.TransactionTimeout == 0
}

// InstanceName returns the registry name for c.
func (c Config) InstanceName() string {
	if c.Name == "" {
		return DefaultInstanceName
	}
	return c.Name
}

// Clone returns a deep copy so later changes never reach the caller's value.
func (c Config) Clone() Config {
	out := c
	if c.SessionConfig != nil {
		out.SessionConfig = maps.Clone(c.SessionConfig)
	}
	if c.Driver != nil {
		out.Driver = c.Driver.Clone()
	}
	return out
}

// Validate checks the settings that must hold before a pool is opened.
func (c Config) Validate() error {
	if c.IsZero() {
		return fmt.Errorf("%w: the config cannot be empty", ErrConfiguration)
	}
	if c.Driver == nil {
		return fmt.Errorf("%w: driver settings are required", ErrConfiguration)
	}
	if err := validateSessionConfig(c.SessionConfig); err != nil {
		return err
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 || c.ConnMaxLifetime < 0 || c.TransactionTimeout < 0 {
		return fmt.Errorf("%w: pool limits must not be negative", ErrConfiguration)
	}
	return nil
}

func validateSessionConfig(session map[string]any) error {
	for key, value := range session {
		if !sessionKeyPattern.MatchString(key) {
			return fmt.Errorf("%w: invalid session variable name %q", ErrConfiguration, key)
		}
		if !isScalar(value) {
			return fmt.Errorf("%w: session variable %s must be a scalar, got %T", ErrConfiguration, key, value)
		}
	}
	return nil
}

func isScalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
