// Package postgres registers a PostgreSQL dialect using pgx's database/sql
// driver.
package postgres

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

const Kind = "postgres"

type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "pgx" }
func (Dialect) BindType() int      { return sqlx.DOLLAR }

// RowOrder is empty: heap order in PostgreSQL is not insertion order.
func (Dialect) RowOrder() string   { return "" }
func (Dialect) Reserved() []string { return nil }

func (Dialect) Quote(id string) string { return ddl.QuoteDouble(id) }

// DSN builds a postgres:// URL: credentials from Username/Password and the
// database name from Schema. The result is validated with pgx.ParseConfig.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	raw := strings.TrimSpace(cfg.URI)
	if raw == "" {
		return "", fmt.Errorf("postgres: uri must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("postgres: parse uri: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("postgres: unsupported scheme %q", u.Scheme)
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if s := strings.TrimSpace(cfg.Schema); s != "" {
		u.Path = "/" + s
	}
	dsn := u.String()
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return "", fmt.Errorf("postgres: invalid dsn: %w", err)
	}
	return dsn, nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote, IfNotExists: true})
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
