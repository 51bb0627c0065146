// Package sqlite registers the embedded SQLite dialect (the default store
// kind) backed by the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

// Kind is the registry key for this dialect.
const Kind = "sqlite"

// Dialect implements storage.Dialect for SQLite.
type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "sqlite" }
func (Dialect) BindType() int      { return sqlx.QUESTION }
func (Dialect) RowOrder() string   { return "rowid" }
func (Dialect) Reserved() []string { return storage.RowIDNames }

func (Dialect) Quote(id string) string { return ddl.QuoteDouble(id) }

// DSN resolves cfg.URI plus cfg.Schema into a database file path; the
// defaults ("file:~/", "dblod") yield "file:$HOME/dblod.db". Credentials are
// ignored: the embedded engine has no authentication.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	dsn, err := storage.FileDSN(cfg.URI, cfg.Schema, ".db")
	if err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}
	return dsn, nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote, IfNotExists: true})
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
