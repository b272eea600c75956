package postgres

import (
	"context"

	"healthetl/internal/storage"
	pgddl "healthetl/internal/storage/postgres/ddl"
)

// newRepository is replaced in tests to avoid a live server.
var newRepository = NewRepository

func init() {
	storage.RegisterBackend("postgres", func(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
	}, storage.Dialect{MapType: pgddl.MapType, EnsureTable: pgddl.EnsureTable})
}
