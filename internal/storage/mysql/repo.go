// Package mysql implements a MySQL-backed storage.Repository using
// go-sql-driver/mysql. Batches are written as chunked multi-row INSERTs in a
// single transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// maxPlaceholders stays under MySQL's 65535 prepared-statement limit.
const maxPlaceholders = 60000

// Config holds MySQL repository configuration.
type Config struct {
	DSN     string
	Table   string
	Columns []string
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository parses the DSN, opens a pool and pings it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	if mc.Loc == nil {
		mc.Loc = time.UTC
	}
	conn, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(conn)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, func() { _ = db.Close() }, nil
}

// CopyFrom inserts rows with multi-row INSERT statements inside one
// transaction.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	perStmt := maxPlaceholders / len(columns)
	if perStmt < 1 {
		perStmt = 1
	}
	var total int64
	for start := 0; start < len(rows); start += perStmt {
		end := min(start+perStmt, len(rows))
		stmt, args, err := buildInsert(r.cfg.Table, columns, rows[start:end])
		if err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql insert rows %d..%d: %w", start, end-1, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

// Exec executes a SQL statement.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if strings.TrimSpace(sqlText) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql exec: %w", err)
	}
	return nil
}

// ColumnType reads DATA_TYPE from information_schema for the current
// database (or the qualifying one).
func (r *Repository) ColumnType(ctx context.Context, table, column string) (string, error) {
	dbName, tableName := "", table
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		dbName, tableName = table[:i], table[i+1:]
	}
	const q = `SELECT DATA_TYPE FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ? AND COLUMN_NAME = ?`
	var typ string
	err := r.db.QueryRowContext(ctx, q, dbName, tableName, column).Scan(&typ)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("mysql: column %s.%s not found", table, column)
	}
	if err != nil {
		return "", fmt.Errorf("mysql column type: %w", err)
	}
	return typ, nil
}

func buildInsert(table string, columns []string, rows [][]any) (string, []any, error) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", quoteFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func quoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}
