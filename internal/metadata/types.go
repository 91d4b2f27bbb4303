// Package metadata defines the annotation model for Modelforge: the typed
// value objects describing one declared model's fields, relationships,
// validation rules, and presentation hints. These types are pure data; they
// are produced once by the declaration reader, assembled into a graph, and
// never mutated afterwards.
package metadata

import (
	"fmt"
	"strings"
)

// ModelID is the stable identity of a model within a metadata graph.
type ModelID string

// StorageType represents the storage-level type of a declared field.
type StorageType int

const (
	// Text types
	TypeString StorageType = iota
	TypeText

	// Numeric types
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeFloat

	// Boolean
	TypeBoolean

	// Time types
	TypeDate
	TypeDateTime
	TypeTime

	// Structured / opaque
	TypeJSON
	TypeEnum
	TypeUUID
	TypeBinary
)

// String returns the string representation of the storage type
func (t StorageType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInteger:
		return "integer"
	case TypeBigInt:
		return "bigint"
	case TypeDecimal:
		return "decimal"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeTime:
		return "time"
	case TypeJSON:
		return "json"
	case TypeEnum:
		return "enum"
	case TypeUUID:
		return "uuid"
	case TypeBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ParseStorageType converts a string to a StorageType
func ParseStorageType(s string) (StorageType, error) {
	switch s {
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "integer", "int":
		return TypeInteger, nil
	case "bigint":
		return TypeBigInt, nil
	case "decimal":
		return TypeDecimal, nil
	case "float":
		return TypeFloat, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "date":
		return TypeDate, nil
	case "datetime", "timestamp":
		return TypeDateTime, nil
	case "time":
		return TypeTime, nil
	case "json":
		return TypeJSON, nil
	case "enum":
		return TypeEnum, nil
	case "uuid":
		return TypeUUID, nil
	case "binary":
		return TypeBinary, nil
	default:
		return 0, fmt.Errorf("unknown storage type: %s", s)
	}
}

// IsNumeric returns true if the type is a numeric type
func (t StorageType) IsNumeric() bool {
	return t == TypeInteger || t == TypeBigInt || t == TypeDecimal || t == TypeFloat
}

// IsText returns true if the type is a text type
func (t StorageType) IsText() bool {
	return t == TypeString || t == TypeText
}

// ValueKind discriminates the payload of a TypedValue.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueInt
	ValueFloat
	ValueBool
)

// TypedValue is a tagged union for default values and annotation arguments.
// The explicit kind lets the consistency validator check type compatibility
// without runtime coercion surprises.
type TypedValue struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// StringValue wraps a string in a TypedValue.
func StringValue(s string) TypedValue { return TypedValue{Kind: ValueString, Str: s} }

// IntValue wraps an int64 in a TypedValue.
func IntValue(i int64) TypedValue { return TypedValue{Kind: ValueInt, Int: i} }

// FloatValue wraps a float64 in a TypedValue.
func FloatValue(f float64) TypedValue { return TypedValue{Kind: ValueFloat, Float: f} }

// BoolValue wraps a bool in a TypedValue.
func BoolValue(b bool) TypedValue { return TypedValue{Kind: ValueBool, Bool: b} }

// IsZero reports whether the value is unset.
func (v TypedValue) IsZero() bool { return v.Kind == ValueNone }

// String renders the payload for diagnostics and script output.
func (v TypedValue) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueInt:
		return fmt.Sprintf("%d", v.Int)
	case ValueFloat:
		return fmt.Sprintf("%g", v.Float)
	case ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return ""
	}
}

// CompatibleWith reports whether the value may serve as a default for a
// field of the given storage type.
func (v TypedValue) CompatibleWith(t StorageType) bool {
	switch t {
	case TypeString, TypeText, TypeEnum, TypeUUID, TypeDate, TypeDateTime, TypeTime, TypeJSON, TypeBinary:
		return v.Kind == ValueString
	case TypeInteger, TypeBigInt:
		return v.Kind == ValueInt
	case TypeDecimal, TypeFloat:
		return v.Kind == ValueFloat || v.Kind == ValueInt
	case TypeBoolean:
		return v.Kind == ValueBool
	default:
		return false
	}
}

// RuleDescriptor describes one validation rule on a field. Kind is the
// machine-readable rule name; Params carry rule arguments in a stable string
// form so derived rule sets compare structurally across rebuilds. When is an
// optional expression (expr-lang syntax, evaluated against `record` and
// `action` by the consumer) gating the rule.
type RuleDescriptor struct {
	Kind   string
	Params []string
	When   string
}

// Rule kinds understood by the derivers. Consumers may declare additional
// kinds; the engine passes them through untouched.
const (
	RuleRequired  = "required"
	RuleNumeric   = "numeric"
	RuleBoolean   = "boolean"
	RuleOneOf     = "oneOf"
	RuleMaxLength = "maxLength"
	RuleMinLength = "minLength"
	RuleMin       = "min"
	RuleMax       = "max"
	RulePattern   = "pattern"
	RuleUnique    = "unique"
	RuleExists    = "exists"
	RuleEmail     = "email"
	RuleURL       = "url"
)

// String renders the rule in kind(param, ...) form.
func (r RuleDescriptor) String() string {
	if len(r.Params) == 0 {
		return r.Kind
	}
	return fmt.Sprintf("%s(%s)", r.Kind, strings.Join(r.Params, ","))
}

// FormHints carries a field's presentation metadata.
type FormHints struct {
	Widget      string // explicit widget override, empty means derive
	Label       string
	Placeholder string
	Help        string
	Order       *int // explicit display order, nil means declaration order
	Hidden      bool
}

// FieldMetadata describes one declared property of a model.
type FieldMetadata struct {
	Name          string
	Storage       StorageType
	Length        *int // string types only
	Precision     *int // decimal/float only
	Scale         *int // decimal/float only
	Nullable      bool
	Unique        bool
	Indexed       bool
	PrimaryKey    bool
	AutoIncrement bool
	Unsigned      bool // integer types only
	Default       TypedValue
	EnumValues    []string // required iff Storage == TypeEnum
	Rules         []RuleDescriptor
	Form          FormHints

	// Set for foreign-key columns materialized by the graph builder.
	Implicit bool
}

// RelationKind represents the kind of a declared association.
type RelationKind int

const (
	OneToOne RelationKind = iota
	OneToMany
	ManyToOne
	ManyToMany
	MorphOneToMany
	MorphManyToMany
)

// String returns the string representation of the relation kind
func (k RelationKind) String() string {
	switch k {
	case OneToOne:
		return "one_to_one"
	case OneToMany:
		return "one_to_many"
	case ManyToOne:
		return "many_to_one"
	case ManyToMany:
		return "many_to_many"
	case MorphOneToMany:
		return "morph_one_to_many"
	case MorphManyToMany:
		return "morph_many_to_many"
	default:
		return "unknown"
	}
}

// Owning reports whether the declaring model's table carries the foreign
// key column for this relationship.
func (k RelationKind) Owning() bool {
	return k == ManyToOne || k == OneToOne
}

// Polymorphic reports whether the target model is determined per-row by a
// stored discriminator rather than fixed at declaration time.
func (k RelationKind) Polymorphic() bool {
	return k == MorphOneToMany || k == MorphManyToMany
}

// CompatibleInverse reports whether other may legally be the inverse side
// of a relationship of this kind.
func (k RelationKind) CompatibleInverse(other RelationKind) bool {
	switch k {
	case OneToMany:
		return other == ManyToOne
	case ManyToOne:
		return other == OneToMany
	case OneToOne:
		return other == OneToOne
	case ManyToMany:
		return other == ManyToMany
	case MorphOneToMany:
		return other == ManyToOne || other == MorphOneToMany
	case MorphManyToMany:
		return other == MorphManyToMany
	default:
		return false
	}
}

// ReferentialAction represents an ON DELETE / ON UPDATE action.
type ReferentialAction int

const (
	ActionRestrict ReferentialAction = iota
	ActionCascade
	ActionSetNull
	ActionNoAction
)

// String returns the string representation of the referential action
func (a ReferentialAction) String() string {
	switch a {
	case ActionRestrict:
		return "restrict"
	case ActionCascade:
		return "cascade"
	case ActionSetNull:
		return "set_null"
	case ActionNoAction:
		return "no_action"
	default:
		return "unknown"
	}
}

// ParseReferentialAction converts a string to a ReferentialAction
func ParseReferentialAction(s string) (ReferentialAction, error) {
	switch s {
	case "restrict":
		return ActionRestrict, nil
	case "cascade":
		return ActionCascade, nil
	case "set_null":
		return ActionSetNull, nil
	case "no_action":
		return ActionNoAction, nil
	default:
		return 0, fmt.Errorf("unknown referential action: %s", s)
	}
}

// RelationshipMetadata describes one declared association. TargetName holds
// the declared reference; Target is filled by the graph builder's resolve
// pass and is empty until then.
type RelationshipMetadata struct {
	Name       string
	Kind       RelationKind
	TargetName string
	Target     ModelID

	ForeignKey   string // defaults derived by the graph builder
	LocalKey     string // defaults to the owning side's primary key
	ThroughTable string // many-to-many only; derived when omitted
	MorphName    string // polymorphic kinds only
	Nullable     bool

	OnDelete ReferentialAction
	OnUpdate ReferentialAction
}

// Resolved reports whether the target reference has been resolved.
func (r *RelationshipMetadata) Resolved() bool { return r.Target != "" }

// IndexSpec describes a table-level index.
type IndexSpec struct {
	Name    string // optional; derived from columns when empty
	Columns []string
	Unique  bool
}

// TimestampConfig controls the created/updated bookkeeping columns.
type TimestampConfig struct {
	Enabled       bool
	CreatedColumn string // defaults to created_at
	UpdatedColumn string // defaults to updated_at
}

// SoftDeleteConfig controls the soft-delete bookkeeping column.
type SoftDeleteConfig struct {
	Enabled bool
	Column  string // defaults to deleted_at
}

// ModelMetadata is one node of the metadata graph: the complete normalized
// description of a declared model. Field insertion order equals declaration
// order and is significant for schema and form output.
type ModelMetadata struct {
	ID         ModelID
	Name       string
	TableName  string
	PrimaryKey string

	FieldOrder    []string
	Fields        map[string]*FieldMetadata
	RelationOrder []string
	Relationships map[string]*RelationshipMetadata

	Timestamps TimestampConfig
	SoftDelete SoftDeleteConfig
	Indexes    []IndexSpec
}

// Field returns the named field, if present.
func (m *ModelMetadata) Field(name string) (*FieldMetadata, bool) {
	f, ok := m.Fields[name]
	return f, ok
}

// HasField reports whether the model declares the named field.
func (m *ModelMetadata) HasField(name string) bool {
	_, ok := m.Fields[name]
	return ok
}

// FieldsInOrder returns the fields in declaration order.
func (m *ModelMetadata) FieldsInOrder() []*FieldMetadata {
	fields := make([]*FieldMetadata, 0, len(m.FieldOrder))
	for _, name := range m.FieldOrder {
		if f, ok := m.Fields[name]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// RelationshipsInOrder returns the relationships in declaration order.
func (m *ModelMetadata) RelationshipsInOrder() []*RelationshipMetadata {
	rels := make([]*RelationshipMetadata, 0, len(m.RelationOrder))
	for _, name := range m.RelationOrder {
		if r, ok := m.Relationships[name]; ok {
			rels = append(rels, r)
		}
	}
	return rels
}

// PrimaryKeyField returns the primary key field metadata.
func (m *ModelMetadata) PrimaryKeyField() (*FieldMetadata, error) {
	f, ok := m.Fields[m.PrimaryKey]
	if !ok {
		return nil, fmt.Errorf("model %s has no primary key field %q", m.Name, m.PrimaryKey)
	}
	return f, nil
}
