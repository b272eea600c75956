package storage

import (
	"context"
	"fmt"
	"sync"

	"healthetl/internal/ddl"
	"healthetl/internal/schema"
)

// Dialect is the backend-specific half of table bootstrapping:
//   - MapType turns a logical kind ("int", "float", ...) into a SQL type.
//   - EnsureTable applies a create-if-absent statement via repo.Exec.
type Dialect struct {
	MapType     func(kind string) string
	EnsureTable func(ctx context.Context, repo ddl.Execer, td ddl.TableDef) error
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the Dialect for kind. Backends call it
// from init.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

func dialectFor(kind string) (Dialect, error) {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok || d.MapType == nil || d.EnsureTable == nil {
		return Dialect{}, fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return d, nil
}

// EnsureTable creates the contract's table if it does not exist. It never
// alters or drops an existing table and is safe to call on every run.
func EnsureTable(ctx context.Context, kind string, repo Repository, c schema.Contract) error {
	d, err := dialectFor(kind)
	if err != nil {
		return err
	}
	td, err := ddl.FromContract(c, d.MapType)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	if err := d.EnsureTable(ctx, repo, td); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// ExpectedType returns the SQL type kind's dialect uses for a logical type.
func ExpectedType(kind, logical string) (string, error) {
	d, err := dialectFor(kind)
	if err != nil {
		return "", err
	}
	return d.MapType(logical), nil
}
