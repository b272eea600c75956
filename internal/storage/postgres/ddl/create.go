// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"context"
	"strings"

	gddl "healthetl/internal/ddl"
)

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// with double-quoted identifiers.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
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

// MapType returns the Postgres column type for a logical kind.
var MapType = gddl.TypeMap{Int: "BIGINT", Float: "DOUBLE PRECISION", Date: "DATE", Text: "TEXT"}.Lookup

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
