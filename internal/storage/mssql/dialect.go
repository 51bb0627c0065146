// Package mssql registers a Microsoft SQL Server dialect.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the create statement is
// wrapped in an IF OBJECT_ID(...) IS NULL guard.
package mssql

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

const Kind = "mssql"

type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "sqlserver" }
func (Dialect) BindType() int      { return sqlx.AT }
func (Dialect) RowOrder() string   { return "" }
func (Dialect) Reserved() []string { return nil }

func (Dialect) Quote(id string) string { return ddl.QuoteBracket(id) }

// DSN builds a sqlserver:// URL with credentials and database=Schema and
// validates it with msdsn.Parse.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	raw := strings.TrimSpace(cfg.URI)
	if raw == "" {
		return "", fmt.Errorf("mssql: uri must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("mssql: parse uri: %w", err)
	}
	if u.Scheme != "sqlserver" {
		return "", fmt.Errorf("mssql: unsupported scheme %q", u.Scheme)
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	if s := strings.TrimSpace(cfg.Schema); s != "" {
		q := u.Query()
		q.Set("database", s)
		u.RawQuery = q.Encode()
	}
	dsn := u.String()
	if _, err := msdsn.Parse(dsn); err != nil {
		return "", fmt.Errorf("mssql: invalid dsn: %w", err)
	}
	return dsn, nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	create, err := ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", literal(d.Quote(t.FQN)), create), nil
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}

func literal(s string) string { return strings.ReplaceAll(s, "'", "''") }
