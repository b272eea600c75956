package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"

	"healthetl/internal/etlerr"
	"healthetl/internal/storage/sqlite"
)

// driverNames maps storage kinds to database/sql driver names.
var driverNames = map[string]string{
	"sqlite":   sqlite.DriverName,
	"postgres": "pgx",
	"mssql":    "sqlserver",
	"mysql":    "mysql",
}

// Open connects to the store the ETL loaded. A missing SQLite file is
// reported as etlerr.ErrNotFound instead of being created empty.
func Open(ctx context.Context, kind, dsn string) (*sqlx.DB, error) {
	driver, ok := driverNames[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported storage kind %q", kind)
	}
	if kind == "sqlite" {
		if err := storeExists(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, etlerr.Store("open "+kind, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, etlerr.Store("ping "+kind, err)
	}
	return db, nil
}

func storeExists(dsn string) error {
	path := sqlite.FilePath(dsn)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return etlerr.NotFound("database", path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return nil
}
