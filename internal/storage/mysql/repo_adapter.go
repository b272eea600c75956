package mysql

import (
	"context"

	"healthetl/internal/storage"
	myddl "healthetl/internal/storage/mysql/ddl"
)

// newRepository is replaced in tests to avoid a live server.
var newRepository = NewRepository

func init() {
	storage.RegisterBackend("mysql", func(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
		return newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Columns: cfg.Columns})
	}, storage.Dialect{MapType: myddl.MapType, EnsureTable: myddl.EnsureTable})
}
