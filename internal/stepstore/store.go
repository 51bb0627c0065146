// Package stepstore persists caller-defined column sets scoped to the
// (transformation, step) pair that owns them.
//
// Every table carries two leading owner-key columns, TRANSID and STEPID, and
// a primary key of (TRANSID, STEPID, <first declared column>). Save replaces
// an owner's rows, Query reads them back through a lazy cursor and Delete
// purges them.
//
// The store issues statements over the single connection held by a
// storage.Manager and never opens or closes it; the caller connects first.
// Save is not atomic: a failing insert leaves the earlier rows committed and
// is reported as an *UpsertError. Tables that already exist are never
// altered, so re-declaring a table with different columns has no effect on
// the database.
package stepstore

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stepstore/internal/ddl"
	"stepstore/internal/metrics"
	"stepstore/internal/storage"
)

// Store is the keyed table store. It is safe to share, but it adds no
// locking or transactions around its statements.
type Store struct {
	m       *storage.Manager
	schemas *fingerprints
}

// New returns a store that runs its statements over m's connection.
func New(m *storage.Manager) *Store {
	return &Store{m: m, schemas: newFingerprints()}
}

// CreateSchema creates the table for t unless it exists. With force the
// table is dropped first, discarding the rows of every owner.
func (s *Store) CreateSchema(ctx context.Context, t Table, force bool) (err error) {
	start := time.Now()
	defer func() { metrics.RecordOp(strings.TrimSpace(t.Name), "create_schema", err, time.Since(start)) }()

	def, _, err := buildTableDef(t, s.m.Dialect().Reserved())
	if err != nil {
		return err
	}
	if _, err := s.m.Conn(); err != nil {
		return err
	}
	return s.createSchema(ctx, def, force)
}

func (s *Store) createSchema(ctx context.Context, def ddl.TableDef, force bool) error {
	d := s.m.Dialect()
	if force {
		log.Printf("stepstore: dropping table=%s (forced recreate)", def.FQN)
		if _, err := s.m.Exec(ctx, d.DropTableSQL(def.FQN)); err != nil {
			return &SchemaError{Table: def.FQN, Reason: "drop failed", Err: err}
		}
		s.schemas.forget(def.FQN)
	}

	stmt, err := d.CreateTableSQL(def)
	if err != nil {
		return &SchemaError{Table: def.FQN, Reason: "render failed", Err: err}
	}
	if _, err := s.m.Exec(ctx, stmt); err != nil {
		return &SchemaError{Table: def.FQN, Reason: "create failed", Err: err}
	}
	s.schemas.observe(def)
	return nil
}

// Save replaces the rows owned by owner in table t.
//
// Every cell is checked before anything runs: each row must have exactly one
// cell per declared column and no Null cells (*ValueError). The table is then
// created if missing, the owner's existing rows are deleted, and rows are
// inserted one statement at a time. Rows whose first cell is empty text are
// skipped.
func (s *Store) Save(ctx context.Context, t Table, owner OwnerKey, rows []Row) (err error) {
	start := time.Now()
	defer func() { metrics.RecordOp(strings.TrimSpace(t.Name), "save", err, time.Since(start)) }()

	def, names, err := buildTableDef(t, s.m.Dialect().Reserved())
	if err != nil {
		return err
	}
	if err := validateRows(rows, len(names)); err != nil {
		return err
	}
	if _, err := s.m.Conn(); err != nil {
		return err
	}

	if err := s.createSchema(ctx, def, false); err != nil {
		return err
	}
	if _, err := s.deleteOwner(ctx, def.FQN, owner); err != nil {
		return fmt.Errorf("stepstore: save %s: clear owner %s: %w", def.FQN, owner, err)
	}

	insert := s.insertSQL(def.FQN, names)
	committed := make([]int, 0, len(rows))
	skipped := 0
	defer func() {
		metrics.RecordRows(def.FQN, metrics.RowsSaved, int64(len(committed)))
		metrics.RecordRows(def.FQN, metrics.RowsSkipped, int64(skipped))
	}()

	for i, row := range rows {
		if row[0].IsEmpty() {
			skipped++
			continue
		}
		args := make([]any, 0, len(row)+2)
		args = append(args, owner.Transformation, owner.Step)
		for _, v := range row {
			args = append(args, v.arg())
		}
		if _, err := s.m.Exec(ctx, insert, args...); err != nil {
			log.Printf("stepstore: partial save table=%s owner=%s failed_row=%d committed=%d err=%v",
				def.FQN, owner, i, len(committed), err)
			return &UpsertError{Table: def.FQN, Owner: owner, Row: i, Committed: committed, Err: err}
		}
		committed = append(committed, i)
	}
	return nil
}

func validateRows(rows []Row, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return &ValueError{Row: i, Column: len(row), Reason: fmt.Sprintf("row has %d cells, want %d", len(row), width)}
		}
		for j, v := range row {
			if v.IsNull() {
				return &ValueError{Row: i, Column: j, Reason: "null cell; only text and integer cells can be saved"}
			}
		}
	}
	return nil
}

func (s *Store) insertSQL(table string, names []string) string {
	d := s.m.Dialect()
	cols := make([]string, 0, len(names)+2)
	cols = append(cols, d.Quote(TransCol), d.Quote(StepCol))
	for _, n := range names {
		cols = append(cols, d.Quote(n))
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.Quote(table), strings.Join(cols, ", "), marks)
}

func (s *Store) ownerFilter() string {
	d := s.m.Dialect()
	return fmt.Sprintf("%s = ? AND %s = ?", d.Quote(TransCol), d.Quote(StepCol))
}

// Query returns the owner's rows from table, each holding exactly columns in
// the requested order. Rows come back in insertion order on backends that
// expose a row-order column (sqlite, libsql, duckdb) and in driver order
// elsewhere. The cursor must be closed; Collect does so.
func (s *Store) Query(ctx context.Context, table string, owner OwnerKey, columns []string) (_ *Rows, err error) {
	start := time.Now()
	defer func() { metrics.RecordOp(strings.TrimSpace(table), "query", err, time.Since(start)) }()

	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	cols, err := normalizeColumns(name, columns)
	if err != nil {
		return nil, err
	}

	d := s.m.Dialect()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(quoted, ", "), d.Quote(name), s.ownerFilter())
	if order := d.RowOrder(); order != "" {
		q += " ORDER BY " + order
	}

	rows, err := s.m.Query(ctx, q, owner.Transformation, owner.Step)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows, table: name, columns: cols}, nil
}

// Delete removes every row owned by owner from table. It reports true when
// the statement ran, including when nothing matched.
func (s *Store) Delete(ctx context.Context, table string, owner OwnerKey) (ok bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordOp(strings.TrimSpace(table), "delete", err, time.Since(start)) }()

	name, err := tableName(table)
	if err != nil {
		return false, err
	}
	if _, err := s.deleteOwner(ctx, name, owner); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) deleteOwner(ctx context.Context, table string, owner OwnerKey) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s", s.m.Dialect().Quote(table), s.ownerFilter())
	res, err := s.m.Exec(ctx, q, owner.Transformation, owner.Step)
	if err != nil {
		return 0, err
	}
	// Some drivers cannot report affected rows; the count only feeds metrics.
	n, _ := res.RowsAffected()
	metrics.RecordRows(table, metrics.RowsDeleted, n)
	return n, nil
}
