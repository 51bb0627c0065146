package stepstore

import (
	"fmt"
)

// SchemaError reports an invalid table declaration or a failed DDL statement.
type SchemaError struct {
	Table  string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stepstore: schema %s: %s: %v", e.Table, e.Reason, e.Err)
	}
	return fmt.Sprintf("stepstore: schema %s: %s", e.Table, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// UpsertError reports a Save that failed part way through its inserts. Rows
// listed in Committed (indexes into the caller's slice) stay persisted; Row
// is the index of the row whose insert failed, and nothing after it was
// attempted. Err is the underlying *storage.StatementError.
type UpsertError struct {
	Table     string
	Owner     OwnerKey
	Row       int
	Committed []int
	Err       error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("stepstore: save %s owner=%s: row %d failed after %d committed: %v",
		e.Table, e.Owner, e.Row, len(e.Committed), e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }

// ValueError rejects a cell before any statement runs. Row is -1 when the
// cell was not part of a row slice.
type ValueError struct {
	Row    int
	Column int
	Reason string
}

func (e *ValueError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("stepstore: cell %d: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("stepstore: row %d cell %d: %s", e.Row, e.Column, e.Reason)
}
