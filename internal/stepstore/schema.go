package stepstore

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"stepstore/internal/ddl"
)

// Owner-key columns prepended to every table.
const (
	TransCol     = "TRANSID"
	StepCol      = "STEPID"
	ownerKeyType = "VARCHAR(50)"
)

// Column declares one caller column. Name is normalized (upper-cased,
// whitespace runs folded to "_"); Type is raw SQL such as "VARCHAR(100)".
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table names a keyed table and its ordered caller columns. The first column
// joins the owner key in the primary key.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// OwnerKey identifies the (transformation, step) pair that owns a set of rows.
type OwnerKey struct {
	Transformation string `json:"transformation"`
	Step           string `json:"step"`
}

func (k OwnerKey) String() string { return k.Transformation + "/" + k.Step }

// tableName trims the caller's table name; case is preserved.
func tableName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", &SchemaError{Table: name, Reason: "table name is empty"}
	}
	return n, nil
}

// buildTableDef validates t and returns its DDL model together with the
// normalized caller column names in declared order. Columns named in
// reserved are rejected alongside the owner-key columns.
func buildTableDef(t Table, reserved []string) (ddl.TableDef, []string, error) {
	name, err := tableName(t.Name)
	if err != nil {
		return ddl.TableDef{}, nil, err
	}
	if len(t.Columns) == 0 {
		return ddl.TableDef{}, nil, &SchemaError{Table: name, Reason: "no columns declared, a primary column is required"}
	}

	cols := make([]ddl.ColumnDef, 0, len(t.Columns)+2)
	cols = append(cols,
		ddl.ColumnDef{Name: TransCol, SQLType: ownerKeyType, PrimaryKey: true},
		ddl.ColumnDef{Name: StepCol, SQLType: ownerKeyType, PrimaryKey: true},
	)
	names := make([]string, 0, len(t.Columns))
	seen := map[string]struct{}{TransCol: {}, StepCol: {}}
	for _, r := range reserved {
		seen[r] = struct{}{}
	}

	for i, c := range t.Columns {
		n := ddl.NormalizeIdent(c.Name)
		if n == "" {
			return ddl.TableDef{}, nil, &SchemaError{Table: name, Reason: fmt.Sprintf("column %d has an empty name", i)}
		}
		if _, dup := seen[n]; dup {
			return ddl.TableDef{}, nil, &SchemaError{Table: name, Reason: fmt.Sprintf("duplicate or reserved column %s", n)}
		}
		seen[n] = struct{}{}

		typ := strings.TrimSpace(c.Type)
		if typ == "" {
			return ddl.TableDef{}, nil, &SchemaError{Table: name, Reason: fmt.Sprintf("column %s has no type", n)}
		}
		if strings.ContainsAny(typ, ";'\"`") || strings.Contains(typ, "--") {
			return ddl.TableDef{}, nil, &SchemaError{Table: name, Reason: fmt.Sprintf("column %s has a malformed type %q", n, typ)}
		}

		// The primary column must be NOT NULL for backends (mssql) that
		// refuse nullable key columns.
		cols = append(cols, ddl.ColumnDef{Name: n, SQLType: typ, Nullable: i != 0, PrimaryKey: i == 0})
		names = append(names, n)
	}
	return ddl.TableDef{FQN: name, Columns: cols}, names, nil
}

// normalizeColumns normalizes requested column names for Query.
func normalizeColumns(table string, columns []string) ([]string, error) {
	if len(columns) == 0 {
		return nil, &SchemaError{Table: table, Reason: "no columns requested"}
	}
	out := make([]string, len(columns))
	for i, c := range columns {
		n := ddl.NormalizeIdent(c)
		if n == "" {
			return nil, &SchemaError{Table: table, Reason: fmt.Sprintf("requested column %d has an empty name", i)}
		}
		out[i] = n
	}
	return out, nil
}

// fingerprints remembers the column set each table was declared with during
// this process. Existing tables are never altered; a mismatch is only logged.
type fingerprints struct {
	mu   sync.Mutex
	seen map[string]uint64
}

func newFingerprints() *fingerprints {
	return &fingerprints{seen: make(map[string]uint64)}
}

func fingerprint(def ddl.TableDef) uint64 {
	var sb strings.Builder
	for _, c := range def.Columns {
		sb.WriteString(c.Name)
		sb.WriteByte(0)
		sb.WriteString(strings.ToUpper(strings.TrimSpace(c.SQLType)))
		sb.WriteByte(0x1f)
	}
	return xxh3.HashString(sb.String())
}

// observe records def and reports whether it differs from an earlier
// declaration of the same table.
func (f *fingerprints) observe(def ddl.TableDef) (drift bool) {
	sum := fingerprint(def)
	f.mu.Lock()
	prev, ok := f.seen[def.FQN]
	f.seen[def.FQN] = sum
	f.mu.Unlock()

	if ok && prev != sum {
		log.Printf("stepstore: WARN schema drift table=%s: column set differs from earlier declaration; existing table left unchanged", def.FQN)
		return true
	}
	return false
}

func (f *fingerprints) forget(table string) {
	f.mu.Lock()
	delete(f.seen, table)
	f.mu.Unlock()
}
