package storage

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Conn is a connection leased from a MySQLClient. It must be released to
// return it to the pool.
type Conn struct {
	inner  *sqlx.Conn
	client *MySQLClient
}

// Select expands params, runs query and scans all rows into dest.
func (c *Conn) Select(ctx context.Context, dest any, query string, params ...any) error {
	query, params = ExpandQuery(query, params)
	c.client.logStatement(query, params)
	return dbError("select", c.inner.SelectContext(ctx, dest, query, params...))
}

// Get expands params, runs query and scans the first row into dest.
func (c *Conn) Get(ctx context.Context, dest any, query string, params ...any) error {
	query, params = ExpandQuery(query, params)
	c.client.logStatement(query, params)
	return dbError("get", c.inner.GetContext(ctx, dest, query, params...))
}

// Exec expands params and runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, query string, params ...any) (ExecResult, error) {
	query, params = ExpandQuery(query, params)
	c.client.logStatement(query, params)

	res, err := c.inner.ExecContext(ctx, query, params...)
	if err != nil {
		return ExecResult{}, dbError("exec", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return ExecResult{}, dbError("last insert id", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ExecResult{}, dbError("rows affected", err)
	}
	return ExecResult{LastInsertID: id, RowsAffected: affected}, nil
}

// Bulk runs a multi-row statement built by PrepareBulk on this connection.
func (c *Conn) Bulk(ctx context.Context, query string, rows [][]any) (ExecResult, error) {
	bulkQuery, args, err := PrepareBulk(query, rows)
	if err != nil {
		return ExecResult{}, err
	}
	return c.Exec(ctx, bulkQuery, args...)
}

// Release returns the connection to the pool.
func (c *Conn) Release() error {
	if err := c.inner.Close(); err != nil {
		return dbError("release connection", err)
	}
	if c.client.debug {
		c.client.logger.Info("ok - released connection")
	}
	return nil
}

// discard drops the connection instead of pooling it. Used when the
// transaction state of the session is unknown.
func (c *Conn) discard() {
	_ = c.inner.Raw(func(any) error { return driver.ErrBadConn })
	c.client.logger.Warn("discarded connection with unknown transaction state")
}

func (c *Conn) applySessionConfig(ctx context.Context) error {
	if len(c.client.sessionKeys) == 0 {
		return nil
	}
	if c.client.debug {
		c.client.logger.Info("set session config", zap.Any("session_config", c.client.sessionConfig))
	}
	for _, key := range c.client.sessionKeys {
		stmt := fmt.Sprintf("SET SESSION %s = ?", key)
		if _, err := c.inner.ExecContext(ctx, stmt, c.client.sessionConfig[key]); err != nil {
			return dbError("set session "+key, err)
		}
	}
	return nil
}
