package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"stepstore/internal/ddl"
)

// Config identifies the backing database. The field set mirrors the
// recognized store options {uri, schema, username, password}; Kind selects
// the dialect.
type Config struct {
	Kind     string
	URI      string
	Schema   string
	Username string
	Password string
}

// Dialect is everything the store needs to know about one SQL backend.
//
// Backends (sqlite, postgres, mssql, ...) register an implementation at init
// time; importing stepstore/internal/storage/all wires every built-in one.
type Dialect interface {
	// Kind is the registry key, e.g. "sqlite".
	Kind() string
	// DriverName is the database/sql driver name passed to sqlx.Open.
	DriverName() string
	// DSN builds the driver connection string from cfg.
	DSN(cfg Config) (string, error)
	// BindType is the sqlx placeholder style used when rebinding '?' queries.
	BindType() int
	// Quote quotes a single identifier.
	Quote(id string) string
	// CreateTableSQL renders a statement that creates t only when absent.
	CreateTableSQL(t ddl.TableDef) (string, error)
	// DropTableSQL renders a statement that drops table when present.
	DropTableSQL(table string) string
	// RowOrder names a column that orders rows by insertion, or "" when the
	// backend has none.
	RowOrder() string
	// Reserved lists upper-case names the backend resolves to something
	// other than a caller column; declaring one is rejected.
	Reserved() []string
}

// RowIDNames are the implicit row-id aliases of sqlite-family and duckdb
// tables. A user column with one of these names shadows the row id.
var RowIDNames = []string{"ROWID", "_ROWID_", "OID"}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register registers (or replaces) a dialect under d.Kind(). It is typically
// called from backend packages' init functions.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	dialects[d.Kind()] = d
}

// Lookup returns the dialect registered for kind.
func Lookup(kind string) (Dialect, error) {
	dialectMu.RLock()
	d, ok := dialects[strings.ToLower(strings.TrimSpace(kind))]
	dialectMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage kind %q (registered: %s)", kind, strings.Join(ListKinds(), ", "))
	}
	return d, nil
}

// ListKinds returns the registered dialect kinds in sorted order.
func ListKinds() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	out := make([]string, 0, len(dialects))
	for k := range dialects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
