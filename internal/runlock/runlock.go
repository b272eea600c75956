// Package runlock keeps two pipeline runs from writing the same SQLite
// file at once. The lock is an advisory flock on <db>.lock; it is released
// by Release or when the process exits.
package runlock

import (
	"errors"
	"os"
)

// ErrLocked means another run holds the lock.
var ErrLocked = errors.New("another run holds the lock")

// Lock is a held run lock.
type Lock struct {
	f *os.File
}

// PathFor returns the lock file path guarding dbPath.
func PathFor(dbPath string) string { return dbPath + ".lock" }
