package mssql

import (
	"context"

	"healthetl/internal/storage"
	msddl "healthetl/internal/storage/mssql/ddl"
)

// newRepository is replaced in tests to avoid a live server.
var newRepository = NewRepository

func init() {
	storage.RegisterBackend("mssql", func(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
	}, storage.Dialect{MapType: msddl.MapType, EnsureTable: msddl.EnsureTable})
}
