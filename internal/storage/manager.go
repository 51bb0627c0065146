// Package storage owns the single shared database connection used by the
// step store, plus the dialect registry that tells it how to reach each
// supported backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

// Manager caches at most one live connection (and the pool it was drawn
// from). All store operations share that connection. Manager is safe for
// concurrent use, but it does not serialize statements issued over the
// connection.
type Manager struct {
	cfg     Config
	dialect Dialect

	open singleflight.Group

	mu   sync.Mutex
	pool *sqlx.DB
	conn *sqlx.Conn
}

// NewManager resolves the dialect for cfg.Kind. Nothing is opened until
// Connect is called.
func NewManager(cfg Config) (*Manager, error) {
	d, err := Lookup(cfg.Kind)
	if err != nil {
		return nil, fmt.Errorf("storage: new manager: %w", err)
	}
	return &Manager{cfg: cfg, dialect: d}, nil
}

// Dialect returns the dialect the manager was built for.
func (m *Manager) Dialect() Dialect { return m.dialect }

// Connected reports whether a live connection is cached.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Connect returns the cached connection, opening one first when none exists.
// Concurrent callers share one open attempt and receive the same handle. The
// attempt is detached from any single caller's cancellation; each caller
// stops waiting when its own ctx is done, and the attempt then completes
// for the others.
func (m *Manager) Connect(ctx context.Context) (*sqlx.Conn, error) {
	if c := m.current(); c != nil {
		return c, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &ConnectionError{Op: "connect", Kind: m.dialect.Kind(), Err: err}
	}
	ch := m.open.DoChan("connect", func() (any, error) {
		if c := m.current(); c != nil {
			return c, nil
		}
		return m.dial(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*sqlx.Conn), nil
	case <-ctx.Done():
		return nil, &ConnectionError{Op: "connect", Kind: m.dialect.Kind(), Err: ctx.Err()}
	}
}

func (m *Manager) current() *sqlx.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *Manager) dial(ctx context.Context) (*sqlx.Conn, error) {
	kind := m.dialect.Kind()
	fail := func(err error) (*sqlx.Conn, error) {
		return nil, &ConnectionError{Op: "connect", Kind: kind, Err: err}
	}

	dsn, err := m.dialect.DSN(m.cfg)
	if err != nil {
		return fail(fmt.Errorf("build dsn: %w", err))
	}
	pool, err := sqlx.Open(m.dialect.DriverName(), dsn)
	if err != nil {
		return fail(fmt.Errorf("open: %w", err))
	}
	// One logical connection; the pool never hands out a second one.
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return fail(fmt.Errorf("ping: %w", err))
	}
	conn, err := pool.Connx(ctx)
	if err != nil {
		pool.Close()
		return fail(fmt.Errorf("acquire: %w", err))
	}

	m.mu.Lock()
	m.pool, m.conn = pool, conn
	m.mu.Unlock()

	log.Printf("storage: connected kind=%s uri=%s schema=%s", kind, m.cfg.URI, m.cfg.Schema)
	return conn, nil
}

// Conn returns the live connection without opening one.
func (m *Manager) Conn() (*sqlx.Conn, error) {
	if c := m.current(); c != nil {
		return c, nil
	}
	return nil, &ConnectionError{Op: "use", Kind: m.dialect.Kind(), Err: ErrNoConnection}
}

// Close releases the connection and its pool. Calling Close when no
// connection exists is an error, not a no-op. After Close, Connect opens
// fresh state.
func (m *Manager) Close() error {
	m.mu.Lock()
	pool, conn := m.pool, m.conn
	m.pool, m.conn = nil, nil
	m.mu.Unlock()

	kind := m.dialect.Kind()
	if conn == nil {
		return &ConnectionError{Op: "close", Kind: kind, Err: ErrNoConnection}
	}

	err := conn.Close()
	if errors.Is(err, sql.ErrConnDone) {
		// Already released underneath us; the pool close below still matters.
		err = nil
	}
	if perr := pool.Close(); perr != nil && err == nil {
		err = perr
	}
	if err != nil {
		return &ConnectionError{Op: "close", Kind: kind, Err: err}
	}
	log.Printf("storage: closed kind=%s", kind)
	return nil
}

// Rebind converts a '?' placeholder query into the dialect's bind style.
func (m *Manager) Rebind(query string) string {
	return sqlx.Rebind(m.dialect.BindType(), query)
}

// Exec runs one statement over the live connection. Placeholders are written
// as '?' and rebound for the dialect.
func (m *Manager) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := m.Conn()
	if err != nil {
		return nil, err
	}
	q := m.Rebind(query)
	res, err := conn.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, &StatementError{SQL: q, Err: err}
	}
	return res, nil
}

// Query runs one query over the live connection. The caller must close the
// returned rows.
func (m *Manager) Query(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	conn, err := m.Conn()
	if err != nil {
		return nil, err
	}
	q := m.Rebind(query)
	rows, err := conn.QueryxContext(ctx, q, args...)
	if err != nil {
		return nil, &StatementError{SQL: q, Err: err}
	}
	return rows, nil
}

// Session connects, runs fn and closes the connection afterwards when the
// connection was not already open on entry, joining any close failure with
// fn's error. A connection opened earlier by the host stays open.
func Session(ctx context.Context, m *Manager, fn func(ctx context.Context) error) (err error) {
	owned := !m.Connected()
	if _, err := m.Connect(ctx); err != nil {
		return err
	}
	if owned {
		defer func() {
			if cerr := m.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
	}
	return fn(ctx)
}
