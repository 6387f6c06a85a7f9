package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultTransactionTimeout is the session wait_timeout, in seconds, applied
// by Begin when no positive timeout is given.
const DefaultTransactionTimeout = 20

// Tx is a connection on which START TRANSACTION was issued. It belongs to the
// caller of Begin until exactly one of Commit or Rollback releases it.
type Tx struct {
	conn *Conn
}

// Select runs a row-returning statement inside the transaction.
func (tx *Tx) Select(ctx context.Context, dest any, query string, params ...any) error {
	return tx.conn.Select(ctx, dest, query, params...)
}

// Get runs a row-returning statement inside the transaction and scans the
// first row.
func (tx *Tx) Get(ctx context.Context, dest any, query string, params ...any) error {
	return tx.conn.Get(ctx, dest, query, params...)
}

// Exec runs a statement that returns no rows inside the transaction.
func (tx *Tx) Exec(ctx context.Context, query string, params ...any) (ExecResult, error) {
	return tx.conn.Exec(ctx, query, params...)
}

// Bulk runs a multi-row statement inside the transaction.
func (tx *Tx) Bulk(ctx context.Context, query string, rows [][]any) (ExecResult, error) {
	return tx.conn.Bulk(ctx, query, rows)
}

// Begin leases a dedicated connection, sets its wait_timeout and starts a
// transaction on it.
func (c *MySQLClient) Begin(ctx context.Context, timeoutSeconds int) (*Tx, error) {
	if timeoutSeconds <= 0 {
		timeoutSeconds = DefaultTransactionTimeout
	}

	conn, err := c.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := conn.inner.ExecContext(ctx, "SET SESSION wait_timeout = ?", timeoutSeconds); err != nil {
		_ = conn.Release()
		return nil, dbError("set wait_timeout", err)
	}
	if _, err := conn.inner.ExecContext(ctx, "START TRANSACTION"); err != nil {
		_ = conn.Release()
		return nil, dbError("start transaction", err)
	}

	return &Tx{conn: conn}, nil
}

// Commit issues COMMIT and releases the connection whatever the outcome.
func (c *MySQLClient) Commit(ctx context.Context, tx *Tx) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidArgument)
	}
	return tx.finish(ctx, "COMMIT")
}

// Rollback issues ROLLBACK and releases the connection whatever the outcome.
// A nil transaction is a no-op.
func (c *MySQLClient) Rollback(ctx context.Context, tx *Tx) error {
	if tx == nil {
		return nil
	}
	return tx.finish(ctx, "ROLLBACK")
}

// WithinTransaction runs fn in a transaction, committing when fn succeeds and
// rolling back otherwise.
func (c *MySQLClient) WithinTransaction(ctx context.Context, timeoutSeconds int, fn func(*Tx) error) (err error) {
	tx, err := c.Begin(ctx, timeoutSeconds)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = c.Rollback(ctx, tx)
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := c.Rollback(ctx, tx); rbErr != nil {
			c.logger.Error("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	return c.Commit(ctx, tx)
}

// finish ends the transaction with stmt. The statement is not bound to ctx
// cancellation so an aborted request still closes its transaction; if it
// fails anyway the connection is dropped rather than pooled mid-transaction.
func (tx *Tx) finish(ctx context.Context, stmt string) error {
	if _, err := tx.conn.inner.ExecContext(context.WithoutCancel(ctx), stmt); err != nil {
		tx.conn.discard()
		return dbError(stmt, err)
	}
	return tx.conn.Release()
}
