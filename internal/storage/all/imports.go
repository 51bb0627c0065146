// Package all wires every built-in dialect into the storage registry.
//
// It exists purely for side effects: importing it runs each backend's init,
// which calls storage.Register. Binaries that need only a subset can import
// the individual backend packages instead.
package all

import (
	_ "stepstore/internal/storage/duckdb"
	_ "stepstore/internal/storage/libsql"
	_ "stepstore/internal/storage/mssql"
	_ "stepstore/internal/storage/mysql"
	_ "stepstore/internal/storage/postgres"
	_ "stepstore/internal/storage/sqlite"
)
