// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

import "strings"

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:healthcare.db?_pragma=busy_timeout(5000)"
	//   "healthcare.db"
	DSN string

	// Table is the target table name for inserts, e.g. "healthcare".
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}

// FilePath extracts the database file path from a DSN, dropping a "file:"
// prefix and any query string. It returns "" for in-memory databases.
func FilePath(dsn string) string {
	p := strings.TrimSpace(dsn)
	p = strings.TrimPrefix(p, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == ":memory:" || p == "" {
		return ""
	}
	return p
}
