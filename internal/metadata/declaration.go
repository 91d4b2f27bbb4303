package metadata

// HostType is the declaration host's native type for a property, used to
// infer a storage type when no explicit type annotation is present.
type HostType int

const (
	HostUnknown HostType = iota
	HostString
	HostInt
	HostInt64
	HostFloat
	HostBool
	HostTime
	HostBytes
)

// String returns the string representation of the host type
func (h HostType) String() string {
	switch h {
	case HostString:
		return "string"
	case HostInt:
		return "int"
	case HostInt64:
		return "int64"
	case HostFloat:
		return "float"
	case HostBool:
		return "bool"
	case HostTime:
		return "time"
	case HostBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Annotation is one structured annotation attached to a property or model.
// Args are raw strings; the declaration reader is responsible for typing
// them against the annotation's contract.
type Annotation struct {
	Name string   `json:"name"`
	Args []string `json:"args,omitempty"`
}

// Arg returns the i-th argument or the empty string.
func (a Annotation) Arg(i int) string {
	if i >= len(a.Args) {
		return ""
	}
	return a.Args[i]
}

// PropertyDeclaration is one declared member of a model: a name, the host
// language's type, and the attached annotations in source order.
type PropertyDeclaration struct {
	Name        string       `json:"name"`
	HostType    HostType     `json:"hostType,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// ModelDeclaration is the declaration descriptor for one model: the
// normalized input shape every declaration front-end (struct tags, JSON
// files, hand-built descriptors) produces for the reader. Property order is
// declaration order and is preserved end to end.
type ModelDeclaration struct {
	Name       string                `json:"name"`
	TableName  string                `json:"table,omitempty"`
	Properties []PropertyDeclaration `json:"properties"`

	Timestamps       bool   `json:"timestamps,omitempty"`
	CreatedColumn    string `json:"createdColumn,omitempty"`
	UpdatedColumn    string `json:"updatedColumn,omitempty"`
	SoftDeletes      bool   `json:"softDeletes,omitempty"`
	SoftDeleteColumn string `json:"softDeleteColumn,omitempty"`

	Indexes []IndexSpec `json:"indexes,omitempty"`
}

// Annotation names understood by the declaration reader. A property holding
// any of the relationship annotations contributes a relationship instead of
// a field; combining the two families on one property is rejected.
const (
	AnnType        = "type"
	AnnLength      = "length"
	AnnPrecision   = "precision"
	AnnScale       = "scale"
	AnnNullable    = "nullable"
	AnnUnique      = "unique"
	AnnIndex       = "index"
	AnnPrimary     = "primary"
	AnnAuto        = "auto"
	AnnDefault     = "default"
	AnnEnum        = "enum"
	AnnRule        = "rule"
	AnnLabel       = "label"
	AnnPlaceholder = "placeholder"
	AnnHelp        = "help"
	AnnOrder       = "order"
	AnnWidget      = "widget"
	AnnHidden      = "hidden"

	AnnBelongsTo   = "belongsTo"
	AnnHasOne      = "hasOne"
	AnnHasMany     = "hasMany"
	AnnManyToMany  = "manyToMany"
	AnnMorphMany   = "morphMany"
	AnnMorphToMany = "morphToMany"

	AnnForeignKey = "foreignKey"
	AnnLocalKey   = "localKey"
	AnnThrough    = "through"
	AnnMorphName  = "morphName"
	AnnOnDelete   = "onDelete"
	AnnOnUpdate   = "onUpdate"
)

// relationKinds maps relationship annotation names to kinds.
var relationKinds = map[string]RelationKind{
	AnnBelongsTo:   ManyToOne,
	AnnHasOne:      OneToOne,
	AnnHasMany:     OneToMany,
	AnnManyToMany:  ManyToMany,
	AnnMorphMany:   MorphOneToMany,
	AnnMorphToMany: MorphManyToMany,
}
