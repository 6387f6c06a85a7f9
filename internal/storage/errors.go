package storage

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrConfiguration is returned when pool settings are missing or malformed.
	ErrConfiguration = errors.New("invalid database configuration")
	// ErrInvalidArgument is returned when statement input has the wrong shape.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrClientNotFound is returned when a client is not found.
	ErrClientNotFound = errors.New("client not found")
)

// DatabaseError wraps any failure surfaced by the driver while acquiring a
// connection, executing a statement or releasing it.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

func dbError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DatabaseError{Op: op, Err: err}
}

// MySQLErrorNumber returns the server error number carried by err, or 0 when
// err did not come from the MySQL server.
func MySQLErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
