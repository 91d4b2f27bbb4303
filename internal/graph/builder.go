package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/modelforge-dev/modelforge/internal/metadata"
	utilstrings "github.com/modelforge-dev/modelforge/internal/util/strings"
)

// BuildErrorKind classifies a cross-model resolution failure.
type BuildErrorKind string

const (
	ErrUnknownTargetModel BuildErrorKind = "UnknownTargetModel"
	ErrDuplicateModel     BuildErrorKind = "DuplicateModel"
)

// BuildError reports a graph build failure. Any build error aborts the whole
// build; downstream derivers never see a partial graph.
type BuildError struct {
	Model    metadata.ModelID
	Relation string
	Kind     BuildErrorKind
	Message  string
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Relation == "" {
		return fmt.Sprintf("%s: %s: %s", e.Model, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Model, e.Relation, e.Kind, e.Message)
}

// Builder assembles reader output into a metadata graph.
type Builder struct {
	reader *metadata.Reader
}

// NewBuilder creates a new graph builder
func NewBuilder() *Builder {
	return &Builder{reader: metadata.NewReader()}
}

// Build reads every declaration and produces a resolved graph, or fails.
// Pass one inserts all nodes keyed by identity; pass two resolves each
// relationship's target against the keyed set, fills in defaulted keys, and
// materializes implicit foreign-key fields on owning sides.
func (b *Builder) Build(decls []*metadata.ModelDeclaration) (*Graph, error) {
	g := &Graph{
		buildID: uuid.NewString(),
		models:  make(map[metadata.ModelID]*metadata.ModelMetadata, len(decls)),
	}

	for _, decl := range decls {
		model, err := b.reader.Read(decl)
		if err != nil {
			return nil, err
		}
		if _, exists := g.models[model.ID]; exists {
			return nil, &BuildError{
				Model:   model.ID,
				Kind:    ErrDuplicateModel,
				Message: "model declared more than once",
			}
		}
		g.models[model.ID] = model
		g.order = append(g.order, model.ID)
	}

	for _, id := range g.order {
		model := g.models[id]
		for _, relName := range model.RelationOrder {
			rel := model.Relationships[relName]
			target, ok := g.models[metadata.ModelID(rel.TargetName)]
			if !ok {
				return nil, &BuildError{
					Model:    model.ID,
					Relation: relName,
					Kind:     ErrUnknownTargetModel,
					Message:  fmt.Sprintf("references unknown model %q", rel.TargetName),
				}
			}
			rel.Target = target.ID
			b.applyDefaults(model, target, rel)
			b.materializeForeignKey(model, target, rel)
		}
	}

	return g, nil
}

// applyDefaults fills the defaulted key and table names on a resolved
// relationship. The pivot name derivation is idempotent: the same two models
// produce the same name on every rebuild and from either declaring side.
func (b *Builder) applyDefaults(model, target *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) {
	switch rel.Kind {
	case metadata.ManyToOne, metadata.OneToOne:
		if rel.ForeignKey == "" {
			rel.ForeignKey = utilstrings.ToSnakeCase(rel.TargetName) + "_id"
		}
		if rel.LocalKey == "" {
			rel.LocalKey = target.PrimaryKey
		}
	case metadata.OneToMany:
		if rel.ForeignKey == "" {
			rel.ForeignKey = utilstrings.ToSnakeCase(model.Name) + "_id"
		}
		if rel.LocalKey == "" {
			rel.LocalKey = model.PrimaryKey
		}
	case metadata.ManyToMany, metadata.MorphManyToMany:
		if rel.ThroughTable == "" {
			rel.ThroughTable = PivotTableName(model.TableName, target.TableName)
		}
		if rel.ForeignKey == "" {
			rel.ForeignKey = utilstrings.Singularize(model.TableName) + "_id"
		}
		if rel.LocalKey == "" {
			rel.LocalKey = model.PrimaryKey
		}
	case metadata.MorphOneToMany:
		if rel.ForeignKey == "" && rel.MorphName != "" {
			rel.ForeignKey = rel.MorphName + "_id"
		}
		if rel.LocalKey == "" {
			rel.LocalKey = model.PrimaryKey
		}
	}
}

// materializeForeignKey appends the implicit foreign-key field for owning
// relationships so the field catalog is complete for schema derivation. A
// declared field with the same name takes precedence.
func (b *Builder) materializeForeignKey(model, target *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) {
	if !rel.Kind.Owning() || model.HasField(rel.ForeignKey) {
		return
	}

	storage := metadata.TypeInteger
	unsigned := false
	if pk, err := target.PrimaryKeyField(); err == nil {
		storage = pk.Storage
		unsigned = pk.Unsigned
	}

	field := &metadata.FieldMetadata{
		Name:     rel.ForeignKey,
		Storage:  storage,
		Nullable: rel.Nullable,
		Indexed:  true,
		Unsigned: unsigned,
		Implicit: true,
	}
	if rel.Kind == metadata.OneToOne {
		field.Unique = true
	}
	model.Fields[field.Name] = field
	model.FieldOrder = append(model.FieldOrder, field.Name)
}

// PivotTableName derives the deterministic pivot table name for a
// many-to-many relationship: both table names singularized and joined in
// stable lexical order. posts + tags -> post_tag, from either side.
func PivotTableName(tableA, tableB string) string {
	names := []string{
		utilstrings.Singularize(tableA),
		utilstrings.Singularize(tableB),
	}
	sort.Strings(names)
	return strings.Join(names, "_")
}
