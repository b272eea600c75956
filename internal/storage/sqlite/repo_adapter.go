package sqlite

import (
	"context"

	"healthetl/internal/storage"
	sqliteddl "healthetl/internal/storage/sqlite/ddl"
)

// newRepository is replaced in tests.
var newRepository = NewRepository

func init() {
	storage.RegisterBackend("sqlite", func(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
	}, storage.Dialect{MapType: sqliteddl.MapType, EnsureTable: sqliteddl.EnsureTable})
}
