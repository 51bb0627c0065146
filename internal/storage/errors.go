package storage

import (
	"errors"
	"fmt"
)

// ErrNoConnection is reported (wrapped in a *ConnectionError) when an
// operation needs the live connection and none has been opened.
var ErrNoConnection = errors.New("no connection established")

// ConnectionError reports a failure to open, reuse or release the shared
// connection. Op is one of "connect", "close" or the name of the operation
// that required a connection.
type ConnectionError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StatementError reports a single SQL statement that failed to execute. SQL
// is the statement text as sent to the driver (after placeholder rebinding).
type StatementError struct {
	SQL string
	Err error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("storage: statement failed: %v", e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }
