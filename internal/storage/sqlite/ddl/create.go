// Package ddl renders SQLite DDL for the generic ddl.TableDef model.
// Identifiers are double-quoted and every statement is create-if-absent.
package ddl

import (
	"context"
	"fmt"
	"strings"

	gddl "healthetl/internal/ddl"
	"healthetl/internal/schema"
)

// indexed lists the columns the reports group and join on.
var indexed = []string{schema.ColMedicalCondition, schema.ColDoctor}

// BuildCreateTableSQL returns the CREATE TABLE IF NOT EXISTS statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	stmt, err := gddl.BuildCreateTableSQL(t, gddl.Syntax{Quote: quoteIdent, IfNotExists: true})
	if err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	return stmt, nil
}

// BuildIndexSQL returns one CREATE INDEX IF NOT EXISTS statement for every
// report column present in t. SQLite takes the schema on the index name and
// a bare table name after ON.
func BuildIndexSQL(t gddl.TableDef) []string {
	prefix, table := "", strings.TrimSpace(t.FQN)
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		prefix, table = table[:i+1], table[i+1:]
	}
	var out []string
	for _, c := range t.Columns {
		for _, want := range indexed {
			if c.Name != want {
				continue
			}
			out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s);",
				quoteFQN(prefix+"idx_"+table+"_"+c.Name), quoteIdent(table), quoteIdent(c.Name)))
		}
	}
	return out
}

// EnsureTable creates the table and its report indexes through repo.
func EnsureTable(ctx context.Context, repo gddl.Execer, td gddl.TableDef) error {
	stmt, err := BuildCreateTableSQL(td)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return err
	}
	for _, idx := range BuildIndexSQL(td) {
		if err := repo.Exec(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(fqn string) string { return gddl.QuoteFQN(fqn, quoteIdent) }
