// Package libsql registers a dialect for remote libSQL (Turso / sqld)
// servers. SQL is SQLite-compatible; only the transport differs.
package libsql

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

const Kind = "libsql"

type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "libsql" }
func (Dialect) BindType() int      { return sqlx.QUESTION }
func (Dialect) RowOrder() string   { return "rowid" }
func (Dialect) Reserved() []string { return storage.RowIDNames }

func (Dialect) Quote(id string) string { return ddl.QuoteDouble(id) }

// DSN accepts libsql://, http(s):// and ws(s):// URIs. The password, when
// set, is sent as the auth token; username and schema have no meaning for
// libSQL and are ignored.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	raw := strings.TrimSpace(cfg.URI)
	if raw == "" {
		return "", fmt.Errorf("libsql: uri must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("libsql: parse uri: %w", err)
	}
	switch u.Scheme {
	case "libsql", "http", "https", "ws", "wss":
	default:
		return "", fmt.Errorf("libsql: unsupported scheme %q", u.Scheme)
	}
	if cfg.Password != "" {
		q := u.Query()
		q.Set("authToken", cfg.Password)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote, IfNotExists: true})
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
