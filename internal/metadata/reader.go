package metadata

import (
	"strconv"
	"strings"

	utilstrings "github.com/modelforge-dev/modelforge/internal/util/strings"
)

// Reader turns declaration descriptors into normalized metadata. Relationship
// targets are left as declared names; resolution happens in the graph
// builder, since the target model may not have been read yet.
type Reader struct{}

// NewReader creates a new declaration reader
func NewReader() *Reader {
	return &Reader{}
}

// fieldOnlyAnnotations may not be combined with a relationship annotation on
// the same property.
var fieldOnlyAnnotations = map[string]bool{
	AnnType:      true,
	AnnLength:    true,
	AnnPrecision: true,
	AnnScale:     true,
	AnnUnique:    true,
	AnnIndex:     true,
	AnnPrimary:   true,
	AnnAuto:      true,
	AnnDefault:   true,
	AnnEnum:      true,
	AnnRule:      true,
}

// Read produces one model's metadata from its declaration. The returned
// relationships are partial: TargetName is set, Target is not.
func (r *Reader) Read(decl *ModelDeclaration) (*ModelMetadata, error) {
	tableName := decl.TableName
	if tableName == "" {
		tableName = utilstrings.Pluralize(utilstrings.ToSnakeCase(decl.Name))
	}

	model := &ModelMetadata{
		ID:            ModelID(decl.Name),
		Name:          decl.Name,
		TableName:     tableName,
		Fields:        make(map[string]*FieldMetadata),
		Relationships: make(map[string]*RelationshipMetadata),
		Timestamps:    readTimestamps(decl),
		SoftDelete:    readSoftDelete(decl),
		Indexes:       append([]IndexSpec(nil), decl.Indexes...),
	}

	for i := range decl.Properties {
		prop := &decl.Properties[i]

		if model.HasField(prop.Name) || model.Relationships[prop.Name] != nil {
			return nil, declErr(decl.Name, prop.Name, ErrDuplicateProperty,
				"property declared more than once")
		}

		relAnn, fieldAnn := classify(prop)
		if relAnn != nil && fieldAnn != "" {
			return nil, declErr(decl.Name, prop.Name, ErrConflictingAnnotations,
				"property carries both @%s and @%s", relAnn.Name, fieldAnn)
		}

		if relAnn != nil {
			rel, err := r.readRelationship(decl.Name, prop, relAnn)
			if err != nil {
				return nil, err
			}
			model.Relationships[rel.Name] = rel
			model.RelationOrder = append(model.RelationOrder, rel.Name)
			continue
		}

		field, err := r.readField(decl.Name, prop)
		if err != nil {
			return nil, err
		}
		model.Fields[field.Name] = field
		model.FieldOrder = append(model.FieldOrder, field.Name)
	}

	r.resolvePrimaryKey(model)

	return model, nil
}

// classify finds the relationship annotation (if any) and the first
// field-only annotation (if any) on a property.
func classify(prop *PropertyDeclaration) (*Annotation, string) {
	var relAnn *Annotation
	var fieldAnn string
	for i := range prop.Annotations {
		ann := &prop.Annotations[i]
		if _, ok := relationKinds[ann.Name]; ok && relAnn == nil {
			relAnn = ann
		}
		if fieldOnlyAnnotations[ann.Name] && fieldAnn == "" {
			fieldAnn = ann.Name
		}
	}
	return relAnn, fieldAnn
}

// readField maps one annotated property to field metadata. An explicit
// @type annotation wins over host type inference.
func (r *Reader) readField(modelName string, prop *PropertyDeclaration) (*FieldMetadata, error) {
	field := &FieldMetadata{Name: prop.Name}

	storage, err := r.resolveStorage(modelName, prop)
	if err != nil {
		return nil, err
	}
	field.Storage = storage

	for _, ann := range prop.Annotations {
		switch ann.Name {
		case AnnType:
			// handled by resolveStorage
		case AnnLength:
			n, err := intArg(modelName, prop.Name, ann)
			if err != nil {
				return nil, err
			}
			field.Length = &n
		case AnnPrecision:
			n, err := intArg(modelName, prop.Name, ann)
			if err != nil {
				return nil, err
			}
			field.Precision = &n
		case AnnScale:
			n, err := intArg(modelName, prop.Name, ann)
			if err != nil {
				return nil, err
			}
			field.Scale = &n
		case AnnNullable:
			field.Nullable = true
		case AnnUnique:
			field.Unique = true
		case AnnIndex:
			field.Indexed = true
		case AnnPrimary:
			field.PrimaryKey = true
		case AnnAuto:
			field.AutoIncrement = true
		case AnnDefault:
			if len(ann.Args) == 0 {
				return nil, declErr(modelName, prop.Name, ErrBadAnnotation, "@default requires a value")
			}
			field.Default = parseTypedValue(ann.Args[0])
		case AnnEnum:
			field.EnumValues = append(field.EnumValues, ann.Args...)
		case AnnRule:
			rule, err := parseRuleAnnotation(modelName, prop.Name, ann)
			if err != nil {
				return nil, err
			}
			field.Rules = append(field.Rules, rule)
		case AnnLabel:
			field.Form.Label = ann.Arg(0)
		case AnnPlaceholder:
			field.Form.Placeholder = ann.Arg(0)
		case AnnHelp:
			field.Form.Help = ann.Arg(0)
		case AnnWidget:
			field.Form.Widget = ann.Arg(0)
		case AnnHidden:
			field.Form.Hidden = true
		case AnnOrder:
			n, err := intArg(modelName, prop.Name, ann)
			if err != nil {
				return nil, err
			}
			field.Form.Order = &n
		default:
			return nil, declErr(modelName, prop.Name, ErrBadAnnotation,
				"unknown annotation @%s", ann.Name)
		}
	}

	return field, nil
}

// resolveStorage applies the fixed type precedence: an explicit @type
// annotation wins; otherwise the host type decides.
func (r *Reader) resolveStorage(modelName string, prop *PropertyDeclaration) (StorageType, error) {
	for _, ann := range prop.Annotations {
		if ann.Name != AnnType {
			continue
		}
		if len(ann.Args) == 0 {
			return 0, declErr(modelName, prop.Name, ErrBadAnnotation, "@type requires a type name")
		}
		storage, err := ParseStorageType(ann.Args[0])
		if err != nil {
			return 0, declErr(modelName, prop.Name, ErrUnknownFieldType,
				"unknown field type %q", ann.Args[0])
		}
		return storage, nil
	}

	switch prop.HostType {
	case HostString:
		return TypeString, nil
	case HostInt:
		return TypeInteger, nil
	case HostInt64:
		return TypeBigInt, nil
	case HostFloat:
		return TypeDecimal, nil
	case HostBool:
		return TypeBoolean, nil
	case HostTime:
		return TypeDateTime, nil
	case HostBytes:
		return TypeBinary, nil
	default:
		return 0, declErr(modelName, prop.Name, ErrUnknownFieldType,
			"no explicit type and host type is not inferable")
	}
}

// readRelationship maps one relationship-annotated property. Option
// annotations (@foreignKey, @through, ...) on the same property configure it.
func (r *Reader) readRelationship(modelName string, prop *PropertyDeclaration, relAnn *Annotation) (*RelationshipMetadata, error) {
	if len(relAnn.Args) == 0 {
		return nil, declErr(modelName, prop.Name, ErrBadAnnotation,
			"@%s requires a target model", relAnn.Name)
	}

	rel := &RelationshipMetadata{
		Name:       prop.Name,
		Kind:       relationKinds[relAnn.Name],
		TargetName: relAnn.Args[0],
		OnDelete:   ActionRestrict,
		OnUpdate:   ActionRestrict,
	}

	for _, ann := range prop.Annotations {
		switch ann.Name {
		case relAnn.Name:
			// the relationship annotation itself
		case AnnNullable:
			rel.Nullable = true
		case AnnForeignKey:
			rel.ForeignKey = ann.Arg(0)
		case AnnLocalKey:
			rel.LocalKey = ann.Arg(0)
		case AnnThrough:
			rel.ThroughTable = ann.Arg(0)
		case AnnMorphName:
			rel.MorphName = ann.Arg(0)
		case AnnOnDelete:
			action, err := ParseReferentialAction(ann.Arg(0))
			if err != nil {
				return nil, declErr(modelName, prop.Name, ErrBadAnnotation, "%s", err)
			}
			rel.OnDelete = action
		case AnnOnUpdate:
			action, err := ParseReferentialAction(ann.Arg(0))
			if err != nil {
				return nil, declErr(modelName, prop.Name, ErrBadAnnotation, "%s", err)
			}
			rel.OnUpdate = action
		case AnnLabel, AnnPlaceholder, AnnHelp, AnnWidget, AnnHidden, AnnOrder:
			// presentation hints on relationships are read by the form deriver
			// from the synthesized foreign-key field; tolerated here
		default:
			if _, isRel := relationKinds[ann.Name]; isRel {
				return nil, declErr(modelName, prop.Name, ErrConflictingAnnotations,
					"property carries both @%s and @%s", relAnn.Name, ann.Name)
			}
			return nil, declErr(modelName, prop.Name, ErrBadAnnotation,
				"annotation @%s does not apply to relationships", ann.Name)
		}
	}

	return rel, nil
}

// resolvePrimaryKey picks the declared primary key, adopts a plain `id`
// field when present, or prepends the implicit auto-increment id.
func (r *Reader) resolvePrimaryKey(model *ModelMetadata) {
	for _, name := range model.FieldOrder {
		if model.Fields[name].PrimaryKey {
			model.PrimaryKey = name
			return
		}
	}

	if f, ok := model.Fields["id"]; ok {
		f.PrimaryKey = true
		model.PrimaryKey = "id"
		return
	}

	id := &FieldMetadata{
		Name:          "id",
		Storage:       TypeInteger,
		Unique:        true,
		PrimaryKey:    true,
		AutoIncrement: true,
		Unsigned:      true,
		Implicit:      true,
	}
	model.Fields["id"] = id
	model.FieldOrder = append([]string{"id"}, model.FieldOrder...)
	model.PrimaryKey = "id"
}

// intArg parses a single integer annotation argument.
func intArg(modelName, propName string, ann Annotation) (int, error) {
	if len(ann.Args) == 0 {
		return 0, declErr(modelName, propName, ErrBadAnnotation, "@%s requires a value", ann.Name)
	}
	n, err := strconv.Atoi(ann.Args[0])
	if err != nil {
		return 0, declErr(modelName, propName, ErrBadAnnotation,
			"@%s value %q is not an integer", ann.Name, ann.Args[0])
	}
	return n, nil
}

// parseTypedValue types a raw annotation value: bool and numeric literals
// become their typed forms, everything else stays a string. The consistency
// validator checks the result against the field's storage type.
func parseTypedValue(raw string) TypedValue {
	switch raw {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(raw)
}

// parseRuleAnnotation parses @rule(spec[, when]) into a descriptor.
// Spec grammar: kind, kind=param, or kind=p1|p2|p3.
func parseRuleAnnotation(modelName, propName string, ann Annotation) (RuleDescriptor, error) {
	if len(ann.Args) == 0 {
		return RuleDescriptor{}, declErr(modelName, propName, ErrBadAnnotation, "@rule requires a rule spec")
	}
	rule := ParseRuleSpec(ann.Args[0])
	if rule.Kind == "" {
		return RuleDescriptor{}, declErr(modelName, propName, ErrBadAnnotation,
			"empty rule spec %q", ann.Args[0])
	}
	if len(ann.Args) > 1 {
		rule.When = ann.Args[1]
	}
	return rule, nil
}

// ParseRuleSpec parses "kind", "kind=param" or "kind=p1|p2" rule shorthand.
func ParseRuleSpec(spec string) RuleDescriptor {
	kind, rest, found := strings.Cut(spec, "=")
	rule := RuleDescriptor{Kind: strings.TrimSpace(kind)}
	if found && rest != "" {
		for _, p := range strings.Split(rest, "|") {
			rule.Params = append(rule.Params, strings.TrimSpace(p))
		}
	}
	return rule
}

func readTimestamps(decl *ModelDeclaration) TimestampConfig {
	if !decl.Timestamps {
		return TimestampConfig{}
	}
	cfg := TimestampConfig{
		Enabled:       true,
		CreatedColumn: decl.CreatedColumn,
		UpdatedColumn: decl.UpdatedColumn,
	}
	if cfg.CreatedColumn == "" {
		cfg.CreatedColumn = "created_at"
	}
	if cfg.UpdatedColumn == "" {
		cfg.UpdatedColumn = "updated_at"
	}
	return cfg
}

func readSoftDelete(decl *ModelDeclaration) SoftDeleteConfig {
	if !decl.SoftDeletes {
		return SoftDeleteConfig{}
	}
	cfg := SoftDeleteConfig{Enabled: true, Column: decl.SoftDeleteColumn}
	if cfg.Column == "" {
		cfg.Column = "deleted_at"
	}
	return cfg
}
