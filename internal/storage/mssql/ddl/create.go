// Package ddl provides MSSQL-specific helpers for generating CREATE TABLE
// statements from the generic ddl.TableDef model.
//
// T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is wrapped in an
// IF OBJECT_ID(...) IS NULL guard.
package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "healthetl/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates a table matching
// the provided definition if it does not already exist:
//
//	IF OBJECT_ID(N'[dbo].[healthcare]', N'U') IS NULL
//	BEGIN
//	CREATE TABLE [dbo].[healthcare] (
//	  ...
//	);
//	END
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		// NVARCHAR(MAX) cannot be part of an index key.
		if c.PrimaryKey && strings.EqualFold(strings.TrimSpace(c.SQLType), "NVARCHAR(MAX)") {
			c.SQLType = "NVARCHAR(450)"
		}
		cols[i] = c
	}
	t.Columns = cols

	create, err := gddl.BuildCreateTableSQL(t, gddl.Syntax{Quote: quoteIdent})
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	fqn := gddl.QuoteFQN(t.FQN, quoteIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND",
		strings.ReplaceAll(fqn, "'", "''"),
		create,
	), nil
}

// EnsureTable renders td and applies it through repo.
func EnsureTable(ctx context.Context, repo gddl.Execer, td gddl.TableDef) error {
	stmt, err := BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}

// MapType returns the T-SQL column type for a logical kind.
var MapType = gddl.TypeMap{Int: "BIGINT", Float: "FLOAT", Date: "DATE", Text: "NVARCHAR(MAX)"}.Lookup

// quoteIdent quotes a SQL Server identifier using [brackets], escaping ].
func quoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
