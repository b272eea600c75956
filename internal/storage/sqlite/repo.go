package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	gddl "healthetl/internal/ddl"
	"healthetl/internal/schema"
)

// maxVars stays under SQLITE_MAX_VARIABLE_NUMBER for older builds.
const maxVars = 999

// Repository writes batches to one SQLite table. Each CopyFrom call runs in a
// single transaction using multi-row INSERT statements.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository opens cfg.DSN and returns the repository with its cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, errors.New("sqlite: DSN must not be empty")
	}
	db, err := sql.Open(DriverName, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db, table: cfg.Table}, func() { _ = db.Close() }, nil
}

// CopyFrom inserts rows in column order. Every row must carry exactly
// len(columns) values; time.Time values are stored as ISO dates. Either all
// rows are committed or none are.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, errors.New("sqlite: CopyFrom: no columns")
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("sqlite: CopyFrom: row %d has %d values for %d columns", i, len(row), len(columns))
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	perStmt := max(1, maxVars/len(columns))
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var written int64
	for start := 0; start < len(rows); start += perStmt {
		chunk := rows[start:min(start+perStmt, len(rows))]
		res, err := tx.ExecContext(ctx, r.insertSQL(columns, len(chunk)), flatten(chunk)...)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert rows %d-%d: %w", start, start+len(chunk)-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		written += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return written, nil
}

func (r *Repository) insertSQL(columns []string, nrows int) string {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = quoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", gddl.QuoteFQN(r.table, quoteIdent), strings.Join(cols, ", "))
	for i := 0; i < nrows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
	}
	return b.String()
}

func flatten(rows [][]any) []any {
	out := make([]any, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		for _, v := range row {
			if t, ok := v.(time.Time); ok {
				v = t.Format(schema.DateLayout)
			}
			out = append(out, v)
		}
	}
	return out
}

// Exec runs a statement such as DDL. Blank statements are ignored.
func (r *Repository) Exec(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// ColumnType returns the declared type of column. table may be qualified
// with an attached schema name.
func (r *Repository) ColumnType(ctx context.Context, table, column string) (string, error) {
	schemaName, name := "main", table
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		schemaName, name = table[:i], table[i+1:]
	}
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT type FROM pragma_table_info(?, ?) WHERE name = ?`, name, schemaName, column).Scan(&typ)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("sqlite: column %s.%s not found", table, column)
	case err != nil:
		return "", fmt.Errorf("sqlite: table_info: %w", err)
	}
	return typ, nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(strings.TrimSpace(id), `"`, `""`) + `"`
}
