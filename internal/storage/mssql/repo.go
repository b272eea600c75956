// Package mssql stores batches in SQL Server through the TDS bulk copy
// protocol of go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository writes batches to one SQL Server table.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository validates the DSN, connects and returns the repository with
// its cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repository{db: db, table: cfg.Table}, func() { _ = db.Close() }, nil
}

// CopyFrom bulk loads rows inside one transaction. The table lock lets the
// server minimally log the load.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	opts := mssql.BulkOptions{Tablock: true, RowsPerBatch: len(rows)}
	n, err := bulkInsert(ctx, tx, mssql.CopyIn(r.table, opts, columns...), rows)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}
	return n, nil
}

// bulkInsert streams rows into a CopyIn statement. The final argument-less
// Exec flushes the buffered rows and reports the count.
func bulkInsert(ctx context.Context, tx *sql.Tx, copyIn string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, copyIn)
	if err != nil {
		return 0, fmt.Errorf("mssql: prepare bulk: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("mssql: bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("mssql: bulk flush: %w", err)
	}
	return res.RowsAffected()
}

// Exec runs a statement such as DDL. Blank statements are ignored.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("mssql: exec: %w", err)
	}
	return nil
}

// ColumnType reads DATA_TYPE from INFORMATION_SCHEMA.COLUMNS. Unqualified
// tables resolve to dbo.
func (r *Repository) ColumnType(ctx context.Context, table, column string) (string, error) {
	owner, name := splitFQN(table)
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT DATA_TYPE FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2 AND COLUMN_NAME = @p3`,
		owner, name, column).Scan(&typ)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("mssql: column %s.%s not found", table, column)
	case err != nil:
		return "", fmt.Errorf("mssql: column type: %w", err)
	}
	return typ, nil
}

func splitFQN(table string) (owner, name string) {
	table = strings.NewReplacer("[", "", "]", "").Replace(strings.TrimSpace(table))
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "dbo", table
}
