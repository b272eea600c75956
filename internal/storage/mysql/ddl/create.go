// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"context"
	"strings"

	gddl "healthetl/internal/ddl"
)

// BuildCreateTableSQL returns a MySQL CREATE TABLE IF NOT EXISTS statement
// with backtick-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		// TEXT columns need a prefix length to be indexed; use VARCHAR for keys.
		if c.PrimaryKey && strings.EqualFold(strings.TrimSpace(c.SQLType), "TEXT") {
			c.SQLType = "VARCHAR(64)"
		}
		cols[i] = c
	}
	t.Columns = cols
	return gddl.BuildCreateTableSQL(t, gddl.Syntax{Quote: quoteIdent, IfNotExists: true})
}

// EnsureTable renders td and applies it through repo.
func EnsureTable(ctx context.Context, repo gddl.Execer, td gddl.TableDef) error {
	stmt, err := BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}

// MapType returns the MySQL column type for a logical kind.
var MapType = gddl.TypeMap{Int: "BIGINT", Float: "DOUBLE", Date: "DATE", Text: "TEXT"}.Lookup

func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
