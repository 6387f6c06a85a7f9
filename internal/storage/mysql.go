package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/dhima/client-service/internal/logging"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// MySQLClient is a named pool facade: every call leases one connection,
// applies the session configuration, runs the statement and hands the
// connection back on success and failure alike.
type MySQLClient struct {
	name          string
	db            *sqlx.DB
	sessionConfig map[string]any
	sessionKeys   []string
	debug         bool
	txTimeout     int
	logger        logging.Logger
}

// ExecResult is the payload of a statement that returns no rows.
type ExecResult struct {
	LastInsertID int64 `json:"last_insert_id"`
	RowsAffected int64 `json:"rows_affected"`
}

// Open validates cfg and opens a pool for it. No connection is established
// until the first statement or Ping.
func Open(cfg Config, logger logging.Logger) (*MySQLClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	db, err := sqlx.Open("mysql", cfg.Driver.FormatDSN())
	if err != nil {
		return nil, dbError("open pool", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return NewMySQLClient(db, cfg, logger)
}

// NewMySQLClient wires an already opened pool; cfg.Driver is ignored.
func NewMySQLClient(db *sqlx.DB, cfg Config, logger logging.Logger) (*MySQLClient, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: nil pool", ErrConfiguration)
	}
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	if err := validateSessionConfig(cfg.SessionConfig); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(cfg.SessionConfig))
	for k := range cfg.SessionConfig {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	name := cfg.InstanceName()
	return &MySQLClient{
		name:          name,
		db:            db,
		sessionConfig: cfg.Clone().SessionConfig,
		sessionKeys:   keys,
		debug:         cfg.Debug,
		txTimeout:     cfg.TransactionTimeout,
		logger:        logger.With(zap.String("pool", name)),
	}, nil
}

// Name returns the registry name of the pool.
func (c *MySQLClient) Name() string { return c.name }

// Acquire leases a connection and applies the session configuration to it.
// The caller owns the connection until Release.
func (c *MySQLClient) Acquire(ctx context.Context) (*Conn, error) {
	inner, err := c.db.Connx(ctx)
	if err != nil {
		c.logger.Error("could not establish db connection", zap.Error(err))
		return nil, dbError("acquire connection", err)
	}
	if c.debug {
		c.logger.Info("getting connection")
	}

	conn := &Conn{inner: inner, client: c}
	if err := conn.applySessionConfig(ctx); err != nil {
		_ = conn.Release()
		return nil, err
	}
	return conn, nil
}

// WithConn acquires a connection, calls fn and always releases it.
func (c *MySQLClient) WithConn(ctx context.Context, fn func(*Conn) error) (err error) {
	conn, err := c.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := conn.Release(); err == nil {
			err = rerr
		}
	}()
	return fn(conn)
}

// Select runs a row-returning statement and scans all rows into dest.
func (c *MySQLClient) Select(ctx context.Context, dest any, query string, params ...any) error {
	return c.WithConn(ctx, func(conn *Conn) error {
		return conn.Select(ctx, dest, query, params...)
	})
}

// Get runs a row-returning statement and scans the first row into dest.
// When nothing matched the error satisfies errors.Is(err, sql.ErrNoRows).
func (c *MySQLClient) Get(ctx context.Context, dest any, query string, params ...any) error {
	return c.WithConn(ctx, func(conn *Conn) error {
		return conn.Get(ctx, dest, query, params...)
	})
}

// Exec runs a statement that returns no rows.
func (c *MySQLClient) Exec(ctx context.Context, query string, params ...any) (ExecResult, error) {
	var res ExecResult
	err := c.WithConn(ctx, func(conn *Conn) error {
		var err error
		res, err = conn.Exec(ctx, query, params...)
		return err
	})
	return res, err
}

// Bulk runs a multi-row statement built by PrepareBulk. Malformed rows fail
// before a connection is acquired.
func (c *MySQLClient) Bulk(ctx context.Context, query string, rows [][]any) (ExecResult, error) {
	bulkQuery, args, err := PrepareBulk(query, rows)
	if err != nil {
		return ExecResult{}, err
	}
	return c.Exec(ctx, bulkQuery, args...)
}

// Ping verifies that the server is reachable.
func (c *MySQLClient) Ping(ctx context.Context) error {
	return dbError("ping", c.db.PingContext(ctx))
}

// Stats returns the pool statistics of the underlying database handle.
func (c *MySQLClient) Stats() sql.DBStats {
	return c.db.Stats()
}

// Close closes the pool.
func (c *MySQLClient) Close() error {
	return dbError("close pool", c.db.Close())
}

func (c *MySQLClient) logStatement(query string, params []any) {
	if !c.debug {
		return
	}
	c.logger.Info("query and params",
		zap.String("query", query),
		zap.Any("params", params),
	)
}
