package ddl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Syntax carries the dialect knobs of BuildCreateTableSQL.
type Syntax struct {
	// Quote quotes one identifier segment. Nil emits names verbatim.
	Quote func(ident string) string
	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool
}

// BuildCreateTableSQL renders a CREATE TABLE statement from t. Primary key
// columns are gathered into a trailing PRIMARY KEY clause.
func BuildCreateTableSQL(t TableDef, syn Syntax) (string, error) {
	if err := t.validate(); err != nil {
		return "", err
	}
	quote := syn.Quote
	if quote == nil {
		quote = func(s string) string { return s }
	}

	lines := lo.Map(t.Columns, func(c ColumnDef, _ int) string { return c.render(quote) })
	pks := lo.FilterMap(t.Columns, func(c ColumnDef, _ int) (string, bool) {
		return quote(strings.TrimSpace(c.Name)), c.PrimaryKey
	})
	if len(pks) > 0 {
		lines = append(lines, "PRIMARY KEY ("+strings.Join(pks, ", ")+")")
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if syn.IfNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	fmt.Fprintf(&b, "%s (\n  %s\n);", QuoteFQN(t.FQN, quote), strings.Join(lines, ",\n  "))
	return b.String(), nil
}

func (t TableDef) validate() error {
	if strings.TrimSpace(t.FQN) == "" {
		return errors.New("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("ddl: table %s has no columns", t.FQN)
	}
	for i, c := range t.Columns {
		switch {
		case strings.TrimSpace(c.Name) == "":
			return fmt.Errorf("ddl: column %d of %s has no name", i, t.FQN)
		case strings.TrimSpace(c.SQLType) == "":
			return fmt.Errorf("ddl: column %s has no SQL type", c.Name)
		}
	}
	return nil
}

// render returns `<name> <type> [NOT NULL] [DEFAULT <expr>]`.
func (c ColumnDef) render(quote func(string) string) string {
	parts := []string{quote(strings.TrimSpace(c.Name)), strings.TrimSpace(c.SQLType)}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if def := strings.TrimSpace(c.Default); def != "" {
		parts = append(parts, "DEFAULT", def)
	}
	return strings.Join(parts, " ")
}

// QuoteFQN applies quote to every non-empty dotted segment of fqn.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := lo.FilterMap(strings.Split(fqn, "."), func(p string, _ int) (string, bool) {
		p = strings.TrimSpace(p)
		return quote(p), p != ""
	})
	return strings.Join(parts, ".")
}
