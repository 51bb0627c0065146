package stepstore

import (
	"github.com/jmoiron/sqlx"

	"stepstore/internal/metrics"
	"stepstore/internal/storage"
)

// Rows is a forward-only cursor over a Query result. It cannot be restarted.
//
//	rows, err := st.Query(ctx, "T", owner, []string{"A", "B"})
//	...
//	defer rows.Close()
//	for rows.Next() {
//		row := rows.Row()
//	}
//	err = rows.Err()
type Rows struct {
	rows    *sqlx.Rows
	table   string
	columns []string

	cur    Row
	err    error
	read   int64
	closed bool
}

// Columns returns the normalized column names of every row.
func (r *Rows) Columns() []string { return r.columns }

// Next advances to the next row. It returns false at the end of the result
// or on error; check Err afterwards.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			r.err = &storage.StatementError{Err: err}
		}
		r.Close()
		return false
	}

	dest := make([]any, len(r.columns))
	ptrs := make([]any, len(dest))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		r.err = &storage.StatementError{Err: err}
		r.Close()
		return false
	}

	row := make(Row, len(dest))
	for i, x := range dest {
		row[i] = fromDriver(x)
	}
	r.cur = row
	r.read++
	return true
}

// Row returns the current row. It is valid after Next returned true.
func (r *Rows) Row() Row { return r.cur }

// Err returns the error, if any, that ended iteration.
func (r *Rows) Err() error { return r.err }

// Close releases the cursor. It is safe to call more than once.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	metrics.RecordRows(r.table, metrics.RowsRead, r.read)
	return r.rows.Close()
}

// Collect drains the cursor into a slice and closes it.
func (r *Rows) Collect() ([]Row, error) {
	defer r.Close()
	var out []Row
	for r.Next() {
		out = append(out, r.cur)
	}
	return out, r.Err()
}
