// Package etlerr defines the error classes shared by the pipeline stages.
//
// ErrNotFound and ErrStore are fatal and are matched with errors.Is. The
// recoverable classes (parse warnings, conversion failures and integrity
// repairs) never surface as errors; the stages count and log them instead.
package etlerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the source file or the store does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStore covers connection, write and schema-drift failures.
	ErrStore = errors.New("store error")
)

// NotFound wraps a missing path so callers can match ErrNotFound.
func NotFound(what, path string) error {
	return fmt.Errorf("%s %s: %w", what, path, ErrNotFound)
}

// Store wraps err as a store failure while keeping the cause matchable.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
