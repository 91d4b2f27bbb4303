// Package schema derives ordered schema-change scripts from model metadata.
// A script is a structural description of one table: the migration writer
// (out of scope here) serializes it into a concrete migration format. The
// deriver is a pure function of the graph; identical graphs produce
// structurally identical scripts, which downstream schema-diffing tooling
// depends on.
package schema

import (
	"fmt"
	"strings"

	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// ColumnType is the storage-level column type of a script column.
type ColumnType string

const (
	ColVarchar  ColumnType = "varchar"
	ColText     ColumnType = "text"
	ColInteger  ColumnType = "integer"
	ColBigInt   ColumnType = "bigint"
	ColDecimal  ColumnType = "decimal"
	ColFloat    ColumnType = "float"
	ColBoolean  ColumnType = "boolean"
	ColDate     ColumnType = "date"
	ColDateTime ColumnType = "datetime"
	ColTime     ColumnType = "time"
	ColJSON     ColumnType = "json"
	ColEnum     ColumnType = "enum"
	ColUUID     ColumnType = "uuid"
	ColBinary   ColumnType = "binary"
)

// Column is one column operation in a schema script.
type Column struct {
	Name          string
	Type          ColumnType
	Length        int // varchar only
	Precision     int // decimal/float only
	Scale         int // decimal/float only
	NotNull       bool
	Unique        bool
	AutoIncrement bool
	Unsigned      bool // integer types only
	Default       metadata.TypedValue
	EnumValues    []string // enum columns only
}

// Index is one index operation in a schema script.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// ForeignKey is one foreign-key constraint operation in a schema script.
type ForeignKey struct {
	Name      string
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  metadata.ReferentialAction
	OnUpdate  metadata.ReferentialAction
}

// Script is the ordered set of operations creating one table: columns in
// field-declaration order, then indexes, then foreign keys.
type Script struct {
	Table      string
	Pivot      bool // true for many-to-many join tables
	Columns    []Column
	PrimaryKey []string
	Indexes    []Index
	ForeignKeys []ForeignKey
}

// String renders the script as pseudo-DDL for diagnostics and CLI output.
// It is not dialect SQL; serialization belongs to the migration writer.
func (s *Script) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "create table %s (\n", s.Table)
	for _, col := range s.Columns {
		b.WriteString("  ")
		b.WriteString(col.render())
		b.WriteString("\n")
	}
	if len(s.PrimaryKey) > 0 {
		fmt.Fprintf(&b, "  primary key (%s)\n", strings.Join(s.PrimaryKey, ", "))
	}
	b.WriteString(")\n")
	for _, idx := range s.Indexes {
		kind := "index"
		if idx.Unique {
			kind = "unique index"
		}
		fmt.Fprintf(&b, "create %s %s on %s (%s)\n", kind, idx.Name, s.Table, strings.Join(idx.Columns, ", "))
	}
	for _, fk := range s.ForeignKeys {
		fmt.Fprintf(&b, "alter table %s add constraint %s foreign key (%s) references %s (%s) on delete %s on update %s\n",
			s.Table, fk.Name, fk.Column, fk.RefTable, fk.RefColumn, fk.OnDelete, fk.OnUpdate)
	}
	return b.String()
}

func (c Column) render() string {
	parts := []string{c.Name, string(c.Type)}
	switch {
	case c.Type == ColVarchar && c.Length > 0:
		parts[1] = fmt.Sprintf("%s(%d)", c.Type, c.Length)
	case (c.Type == ColDecimal || c.Type == ColFloat) && c.Precision > 0:
		parts[1] = fmt.Sprintf("%s(%d,%d)", c.Type, c.Precision, c.Scale)
	case c.Type == ColEnum && len(c.EnumValues) > 0:
		parts[1] = fmt.Sprintf("enum(%s)", strings.Join(c.EnumValues, ", "))
	}
	if c.Unsigned {
		parts = append(parts, "unsigned")
	}
	if c.NotNull {
		parts = append(parts, "not null")
	}
	if c.Unique {
		parts = append(parts, "unique")
	}
	if c.AutoIncrement {
		parts = append(parts, "auto_increment")
	}
	if !c.Default.IsZero() {
		parts = append(parts, "default "+c.Default.String())
	}
	return strings.Join(parts, " ")
}
