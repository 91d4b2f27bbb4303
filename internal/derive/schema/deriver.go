package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"
	utilstrings "github.com/modelforge-dev/modelforge/internal/util/strings"
)

// DerivationErrorKind classifies a schema derivation failure.
type DerivationErrorKind string

const (
	ErrMissingPrecision       DerivationErrorKind = "MissingPrecision"
	ErrUnresolvableForeignKey DerivationErrorKind = "UnresolvableForeignKey"
	ErrDuplicateIndexName     DerivationErrorKind = "DuplicateIndexName"
	ErrUnmappedStorageType    DerivationErrorKind = "UnmappedStorageType"
)

// DerivationError is scoped to a single model/field; it does not corrupt
// the cached graph and does not prevent deriving other models.
type DerivationError struct {
	Model   metadata.ModelID
	Field   string
	Kind    DerivationErrorKind
	Message string
}

// Error implements the error interface
func (e *DerivationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s: %s", e.Model, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Model, e.Field, e.Kind, e.Message)
}

// Derive maps one model to its schema scripts: the model's own table plus
// one pivot script per many-to-many relationship. Columns appear in
// field-declaration order; table-level indexes precede field-level indexes,
// which precede relationship-derived foreign keys.
func Derive(g *graph.Graph, model *metadata.ModelMetadata) ([]*Script, error) {
	script := &Script{Table: model.TableName}

	for _, field := range model.FieldsInOrder() {
		col, err := mapColumn(model, field)
		if err != nil {
			return nil, err
		}
		script.Columns = append(script.Columns, col)
	}
	script.PrimaryKey = []string{model.PrimaryKey}

	appendBookkeepingColumns(script, model)

	if err := appendIndexes(script, model); err != nil {
		return nil, err
	}

	scripts := []*Script{script}
	for _, rel := range model.RelationshipsInOrder() {
		switch rel.Kind {
		case metadata.ManyToOne, metadata.OneToOne:
			fk, err := deriveForeignKey(g, model, rel)
			if err != nil {
				return nil, err
			}
			script.ForeignKeys = append(script.ForeignKeys, fk)
		case metadata.ManyToMany:
			pivot, err := derivePivot(g, model, rel)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, pivot)
		case metadata.MorphManyToMany:
			pivot, err := deriveMorphPivot(g, model, rel)
			if err != nil {
				return nil, err
			}
			scripts = append(scripts, pivot)
		}
		// one-to-many and polymorphic one-to-many contribute their columns
		// on the target model's table, derived when that model is derived
	}

	return scripts, nil
}

// appendBookkeepingColumns emits the timestamp and soft-delete columns after
// the declared fields.
func appendBookkeepingColumns(script *Script, model *metadata.ModelMetadata) {
	if model.Timestamps.Enabled {
		script.Columns = append(script.Columns,
			Column{Name: model.Timestamps.CreatedColumn, Type: ColDateTime},
			Column{Name: model.Timestamps.UpdatedColumn, Type: ColDateTime},
		)
	}
	if model.SoftDelete.Enabled {
		script.Columns = append(script.Columns,
			Column{Name: model.SoftDelete.Column, Type: ColDateTime},
		)
	}
}

// appendIndexes emits table-level indexes first, then single-column indexes
// from @index fields, checking name uniqueness across both.
func appendIndexes(script *Script, model *metadata.ModelMetadata) error {
	seen := make(map[string]bool)

	add := func(idx Index) error {
		if seen[idx.Name] {
			return &DerivationError{
				Model:   model.ID,
				Field:   strings.Join(idx.Columns, ","),
				Kind:    ErrDuplicateIndexName,
				Message: fmt.Sprintf("index name %q used more than once", idx.Name),
			}
		}
		seen[idx.Name] = true
		script.Indexes = append(script.Indexes, idx)
		return nil
	}

	for _, spec := range model.Indexes {
		idx := Index{Name: spec.Name, Columns: spec.Columns, Unique: spec.Unique}
		if idx.Name == "" {
			idx.Name = indexName(model.TableName, spec.Columns, spec.Unique)
		}
		if err := add(idx); err != nil {
			return err
		}
	}

	for _, field := range model.FieldsInOrder() {
		if !field.Indexed {
			continue
		}
		cols := []string{field.Name}
		if err := add(Index{Name: indexName(model.TableName, cols, false), Columns: cols}); err != nil {
			return err
		}
	}

	return nil
}

func indexName(table string, columns []string, unique bool) string {
	prefix := "idx"
	if unique {
		prefix = "uq"
	}
	return fmt.Sprintf("%s_%s_%s", prefix, table, strings.Join(columns, "_"))
}

// deriveForeignKey emits the constraint for an owning relationship,
// referencing the target model's primary key unless the relationship names
// another local key.
func deriveForeignKey(g *graph.Graph, model *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) (ForeignKey, error) {
	target, ok := g.Model(rel.Target)
	if !ok {
		return ForeignKey{}, &DerivationError{
			Model:   model.ID,
			Field:   rel.Name,
			Kind:    ErrUnresolvableForeignKey,
			Message: fmt.Sprintf("target model %q not in graph", rel.TargetName),
		}
	}
	if _, err := target.PrimaryKeyField(); err != nil {
		// unreachable after consistency validation, checked defensively
		return ForeignKey{}, &DerivationError{
			Model:   model.ID,
			Field:   rel.Name,
			Kind:    ErrUnresolvableForeignKey,
			Message: fmt.Sprintf("target model %q has no primary key", rel.TargetName),
		}
	}

	refColumn := rel.LocalKey
	if refColumn == "" {
		refColumn = target.PrimaryKey
	}

	return ForeignKey{
		Name:      fmt.Sprintf("fk_%s_%s", model.TableName, rel.ForeignKey),
		Column:    rel.ForeignKey,
		RefTable:  target.TableName,
		RefColumn: refColumn,
		OnDelete:  rel.OnDelete,
		OnUpdate:  rel.OnUpdate,
	}, nil
}

// derivePivot emits the separate pivot-table script for a many-to-many
// relationship: two foreign-key columns with a composite primary key over
// both. The column order follows the lexical order of the singularized
// table names, matching the derived pivot name, so both declaring sides
// produce the identical script.
func derivePivot(g *graph.Graph, model *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) (*Script, error) {
	target, ok := g.Model(rel.Target)
	if !ok {
		return nil, &DerivationError{
			Model:   model.ID,
			Field:   rel.Name,
			Kind:    ErrUnresolvableForeignKey,
			Message: fmt.Sprintf("target model %q not in graph", rel.TargetName),
		}
	}

	sides := []*metadata.ModelMetadata{model, target}
	sort.Slice(sides, func(i, j int) bool {
		return pivotColumn(sides[i]) < pivotColumn(sides[j])
	})

	pivot := &Script{Table: rel.ThroughTable, Pivot: true}
	for _, side := range sides {
		pk, err := side.PrimaryKeyField()
		if err != nil {
			return nil, &DerivationError{
				Model:   model.ID,
				Field:   rel.Name,
				Kind:    ErrUnresolvableForeignKey,
				Message: fmt.Sprintf("model %q has no primary key", side.Name),
			}
		}
		column := pivotColumn(side)
		colType := storageColumnType(pk.Storage)
		pivot.Columns = append(pivot.Columns, Column{Name: column, Type: colType, NotNull: true, Unsigned: pk.Unsigned})
		pivot.PrimaryKey = append(pivot.PrimaryKey, column)
		pivot.ForeignKeys = append(pivot.ForeignKeys, ForeignKey{
			Name:      fmt.Sprintf("fk_%s_%s", rel.ThroughTable, column),
			Column:    column,
			RefTable:  side.TableName,
			RefColumn: side.PrimaryKey,
			OnDelete:  metadata.ActionCascade,
			OnUpdate:  metadata.ActionCascade,
		})
	}

	return pivot, nil
}

// deriveMorphPivot emits the pivot for a polymorphic many-to-many: the
// declaring side's foreign key plus the morph id/type discriminator pair.
// No constraint is emitted for the morph side; its target table varies
// per row.
func deriveMorphPivot(g *graph.Graph, model *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) (*Script, error) {
	pk, err := model.PrimaryKeyField()
	if err != nil {
		return nil, &DerivationError{
			Model:   model.ID,
			Field:   rel.Name,
			Kind:    ErrUnresolvableForeignKey,
			Message: fmt.Sprintf("model %q has no primary key", model.Name),
		}
	}

	own := pivotColumn(model)
	morphID := rel.MorphName + "_id"
	morphType := rel.MorphName + "_type"

	pivot := &Script{Table: rel.ThroughTable, Pivot: true}
	pivot.Columns = append(pivot.Columns,
		Column{Name: own, Type: storageColumnType(pk.Storage), NotNull: true, Unsigned: pk.Unsigned},
		Column{Name: morphID, Type: ColBigInt, NotNull: true},
		Column{Name: morphType, Type: ColVarchar, Length: DefaultStringLength, NotNull: true},
	)
	pivot.PrimaryKey = []string{own, morphID, morphType}
	pivot.ForeignKeys = append(pivot.ForeignKeys, ForeignKey{
		Name:      fmt.Sprintf("fk_%s_%s", rel.ThroughTable, own),
		Column:    own,
		RefTable:  model.TableName,
		RefColumn: model.PrimaryKey,
		OnDelete:  metadata.ActionCascade,
		OnUpdate:  metadata.ActionCascade,
	})

	return pivot, nil
}

// pivotColumn mirrors the builder's pivot naming so column and table names
// agree across both declaring sides.
func pivotColumn(model *metadata.ModelMetadata) string {
	return utilstrings.Singularize(model.TableName) + "_id"
}

func storageColumnType(t metadata.StorageType) ColumnType {
	switch t {
	case metadata.TypeBigInt:
		return ColBigInt
	case metadata.TypeUUID:
		return ColUUID
	case metadata.TypeString:
		return ColVarchar
	default:
		return ColInteger
	}
}
