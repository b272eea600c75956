// Package ddl holds the backend-neutral table model rendered into CREATE
// TABLE statements by each storage backend.
package ddl

import (
	"context"
	"fmt"
	"strings"

	"healthetl/internal/schema"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, DOUBLE PRECISION)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (FQN, dotted form) and its ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TypeMap names one dialect's SQL type for each logical field kind. Text
// and unknown kinds use Text.
type TypeMap struct {
	Int, Float, Date, Text string
}

// Lookup returns the SQL type for kind.
func (m TypeMap) Lookup(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case schema.KindInt:
		return m.Int
	case schema.KindFloat:
		return m.Float
	case schema.KindDate:
		return m.Date
	}
	return m.Text
}

// Execer is the part of a repository needed to apply DDL.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

// FromContract renders c into a TableDef, mapping each logical type through
// mapType.
func FromContract(c schema.Contract, mapType func(kind string) string) (TableDef, error) {
	if strings.TrimSpace(c.Table) == "" {
		return TableDef{}, fmt.Errorf("ddl: contract %q has no table", c.Name)
	}
	if len(c.Fields) == 0 {
		return TableDef{}, fmt.Errorf("ddl: contract %q has no fields", c.Name)
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: nil type mapper")
	}
	defs := make([]ColumnDef, 0, len(c.Fields))
	for _, f := range c.Fields {
		defs = append(defs, ColumnDef{
			Name:       f.Name,
			SQLType:    mapType(f.Type),
			Nullable:   !f.Required,
			PrimaryKey: f.PrimaryKey,
		})
	}
	return TableDef{FQN: c.Table, Columns: defs}, nil
}
