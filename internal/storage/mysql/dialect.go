// Package mysql registers a MySQL / MariaDB dialect.
package mysql

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"stepstore/internal/ddl"
	"stepstore/internal/storage"
)

const Kind = "mysql"

type Dialect struct{}

func init() { storage.Register(Dialect{}) }

func (Dialect) Kind() string       { return Kind }
func (Dialect) DriverName() string { return "mysql" }
func (Dialect) BindType() int      { return sqlx.QUESTION }
func (Dialect) RowOrder() string   { return "" }
func (Dialect) Reserved() []string { return nil }

func (Dialect) Quote(id string) string { return ddl.QuoteBacktick(id) }

// DSN treats URI as the server address: "host:port" over TCP, or an absolute
// path to a unix socket. An optional "tcp://" or "mysql://" prefix is
// stripped. Schema selects the database.
func (Dialect) DSN(cfg storage.Config) (string, error) {
	addr := strings.TrimSpace(cfg.URI)
	for _, p := range []string{"mysql://", "tcp://"} {
		addr = strings.TrimPrefix(addr, p)
	}
	addr = strings.TrimSuffix(addr, "/")
	if addr == "" {
		return "", fmt.Errorf("mysql: uri must not be empty")
	}

	c := mysql.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.DBName = strings.TrimSpace(cfg.Schema)
	if strings.HasPrefix(addr, "/") {
		c.Net = "unix"
	} else {
		c.Net = "tcp"
	}
	c.Addr = addr
	return c.FormatDSN(), nil
}

func (d Dialect) CreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, ddl.RenderOptions{Quote: d.Quote, IfNotExists: true})
}

func (d Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.Quote(table)
}
