// Package storage is the backend-agnostic sink layer. Concrete backends
// (sqlite, postgres, mssql, mysql) register a Factory and a Dialect from
// their init functions; callers open them by kind through New.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is the minimal surface the writer needs from a backend.
type Repository interface {
	// CopyFrom appends rows (in columns order) to the configured table and
	// returns the number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// ColumnType reports the declared SQL type of table.column as the
	// backend's catalog spells it.
	ColumnType(ctx context.Context, table, column string) (string, error)
	// Close releases the underlying connection pool.
	Close()
}

// Config carries the backend-neutral connection settings.
type Config struct {
	Kind    string
	DSN     string
	Table   string
	Columns []string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// Backend is a Repository without Close. Concrete backends hand back their
// cleanup separately from their constructor.
type Backend interface {
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	Exec(ctx context.Context, sql string) error
	ColumnType(ctx context.Context, table, column string) (string, error)
}

// Closing attaches a cleanup function to a Backend.
type Closing[B Backend] struct {
	Backend B
	release func()
}

var _ Repository = (*Closing[Repository])(nil)

func (c *Closing[B]) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	return c.Backend.CopyFrom(ctx, columns, rows)
}

func (c *Closing[B]) Exec(ctx context.Context, sql string) error {
	return c.Backend.Exec(ctx, sql)
}

func (c *Closing[B]) ColumnType(ctx context.Context, table, column string) (string, error) {
	return c.Backend.ColumnType(ctx, table, column)
}

// Close runs the cleanup returned by the backend constructor.
func (c *Closing[B]) Close() {
	if c.release != nil {
		c.release()
	}
}

// RegisterBackend installs the factory and DDL dialect for kind in one call.
// open is invoked on every New, so it may be swapped out in tests.
func RegisterBackend[B Backend](kind string, open func(ctx context.Context, cfg Config) (B, func(), error), d Dialect) {
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		b, release, err := open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Closing[B]{Backend: b, release: release}, nil
	})
	RegisterDDL(kind, d)
}

// ListKinds returns a sorted snapshot of the registered kinds.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
