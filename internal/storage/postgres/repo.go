// Package postgres implements a Postgres repository using pgx v5. Batches are
// appended with COPY directly into the target table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // connection string for pgxpool
	Table   string   // target table, optionally schema qualified, e.g. "public.healthcare"
	Columns []string // ordered columns for COPY
}

// Repository writes batches to one Postgres table over a pgx pool.
type Repository struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
	name  string
}

// NewRepository parses cfg.DSN, connects the pool and returns the repository
// with its cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: dsn: %w", err)
	}
	if pc.ConnConfig.RuntimeParams["application_name"] == "" {
		pc.ConnConfig.RuntimeParams["application_name"] = "healthetl"
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool, table: identifier(cfg.Table), name: cfg.Table}, pool.Close, nil
}

// CopyFrom streams rows into the table with the COPY protocol. A failed
// COPY writes nothing.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, r.table, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy into %s: %w", r.name, describe(err))
	}
	return n, nil
}

// describe surfaces the server's detail line, which names the offending key
// on constraint violations.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Detail != "" {
		return fmt.Errorf("%s [%s]: %w", pgErr.Detail, pgErr.Code, err)
	}
	return err
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", describe(err))
	}
	return nil
}

// ColumnType reads data_type from information_schema.columns. An unqualified
// table is looked up in the current schema.
func (r *Repository) ColumnType(ctx context.Context, table, column string) (string, error) {
	schemaName, tableName := splitTable(table)
	const q = `SELECT data_type FROM information_schema.columns
WHERE table_schema = COALESCE(NULLIF($1, ''), current_schema()) AND table_name = $2 AND column_name = $3`
	var typ string
	if err := r.pool.QueryRow(ctx, q, schemaName, tableName, column).Scan(&typ); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("postgres: column %s.%s not found", table, column)
		}
		return "", fmt.Errorf("postgres: column type: %w", err)
	}
	return typ, nil
}

func identifier(table string) pgx.Identifier {
	return lo.Compact(lo.Map(strings.Split(table, "."), func(p string, _ int) string {
		return strings.TrimSpace(p)
	}))
}

func splitTable(table string) (string, string) {
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}
