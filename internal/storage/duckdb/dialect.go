// Package duckdb registers an embedded DuckDB dialect.
package duckdb

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/marcboeker/go-duckdb/v2"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

const Kind = "duckdb"

type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "duckdb" }
func (Dialect) BindType() int      { return sqlx.QUESTION }
func (Dialect) RowOrder() string   { return "rowid" }
func (Dialect) Reserved() []string { return storage.RowIDNames }

func (Dialect) Quote(id string) string { return ddl.QuoteDouble(id) }

// DSN follows the same file layout as sqlite with a ".duckdb" extension and
// no "file:" scheme. ":memory:" opens an in-process database.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	dsn, err := storage.FileDSN(cfg.URI, cfg.Schema, ".duckdb")
	if err != nil {
		return "", fmt.Errorf("duckdb: %w", err)
	}
	if dsn == ":memory:" {
		// go-duckdb treats the empty DSN as in-memory.
		return "", nil
	}
	return strings.TrimPrefix(dsn, "file:"), nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote, IfNotExists: true})
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
