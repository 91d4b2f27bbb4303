package graph

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// Severity ranks a consistency issue. Errors make the graph unsafe to cache
// for production startup; warnings are advisory (design-time linting).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the string representation of the severity
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// IssueKind is the machine-readable classification of a consistency issue.
type IssueKind string

const (
	IssueDuplicateFieldName    IssueKind = "DuplicateFieldName"
	IssueDuplicateRelationName IssueKind = "DuplicateRelationName"
	IssueUnknownTargetModel    IssueKind = "UnknownTargetModel"
	IssueMissingForeignKey     IssueKind = "MissingForeignKeyField"
	IssueMissingPrimaryKey     IssueKind = "MissingPrimaryKey"
	IssueNullablePrimaryKey    IssueKind = "NullablePrimaryKey"
	IssueIncompatibleDefault   IssueKind = "IncompatibleDefault"
	IssueEmptyEnum             IssueKind = "EmptyEnum"
	IssueDuplicateEnumValue    IssueKind = "DuplicateEnumValue"
	IssueEnumOnNonEnum         IssueKind = "EnumValuesOnNonEnum"
	IssueLengthOnNonString     IssueKind = "LengthOnNonString"
	IssuePrecisionOnNonDecimal IssueKind = "PrecisionOnNonDecimal"
	IssueMissingMorphName      IssueKind = "MissingMorphName"
	IssueIncompatibleInverse   IssueKind = "IncompatibleInverse"
	IssueBadRuleCondition      IssueKind = "BadRuleCondition"
	IssueCircularDependency    IssueKind = "CircularDependency"
)

// Issue is one consistency finding, carrying the offending model and
// field/relationship path for diagnostics.
type Issue struct {
	Kind     IssueKind
	Severity Severity
	Model    metadata.ModelID
	Path     string // field or relationship name, empty for model-level issues
	Message  string
}

// String renders the issue for human consumption.
func (i Issue) String() string {
	where := string(i.Model)
	if i.Path != "" {
		where += "." + i.Path
	}
	return fmt.Sprintf("%s: %s: %s: %s", i.Severity, where, i.Kind, i.Message)
}

// Validate walks a built graph and collects every invariant violation. It
// never stops at the first issue, so an operator can fix a declaration set
// in one pass. An empty result means the graph is safe to cache.
func Validate(g *Graph) []Issue {
	v := &validator{graph: g}
	for _, model := range g.Models() {
		v.checkFields(model)
		v.checkPrimaryKey(model)
		v.checkRelationships(model)
	}
	v.checkCycles()
	return v.issues
}

// HasErrors reports whether any issue in the list is error severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

type validator struct {
	graph  *Graph
	issues []Issue
}

func (v *validator) add(kind IssueKind, sev Severity, model metadata.ModelID, path, format string, args ...interface{}) {
	v.issues = append(v.issues, Issue{
		Kind:     kind,
		Severity: sev,
		Model:    model,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkFields(model *metadata.ModelMetadata) {
	seen := make(map[string]bool, len(model.FieldOrder))
	for _, name := range model.FieldOrder {
		if seen[name] {
			v.add(IssueDuplicateFieldName, SeverityError, model.ID, name,
				"field name appears more than once")
			continue
		}
		seen[name] = true

		field := model.Fields[name]
		v.checkTypeParameters(model, field)
		v.checkEnum(model, field)
		v.checkDefault(model, field)
		v.checkRules(model, field)
	}
}

// checkTypeParameters enforces that length applies only to string fields
// and precision/scale only to decimal/float fields.
func (v *validator) checkTypeParameters(model *metadata.ModelMetadata, field *metadata.FieldMetadata) {
	if field.Length != nil && field.Storage != metadata.TypeString {
		v.add(IssueLengthOnNonString, SeverityError, model.ID, field.Name,
			"length set on %s field", field.Storage)
	}
	if (field.Precision != nil || field.Scale != nil) &&
		field.Storage != metadata.TypeDecimal && field.Storage != metadata.TypeFloat {
		v.add(IssuePrecisionOnNonDecimal, SeverityError, model.ID, field.Name,
			"precision/scale set on %s field", field.Storage)
	}
}

func (v *validator) checkEnum(model *metadata.ModelMetadata, field *metadata.FieldMetadata) {
	if field.Storage == metadata.TypeEnum {
		if len(field.EnumValues) == 0 {
			v.add(IssueEmptyEnum, SeverityError, model.ID, field.Name,
				"enum field declares no values")
			return
		}
		seen := make(map[string]bool, len(field.EnumValues))
		for _, val := range field.EnumValues {
			if seen[val] {
				v.add(IssueDuplicateEnumValue, SeverityError, model.ID, field.Name,
					"duplicate enum value %q", val)
			}
			seen[val] = true
		}
		return
	}
	if len(field.EnumValues) > 0 {
		v.add(IssueEnumOnNonEnum, SeverityError, model.ID, field.Name,
			"enum values on %s field", field.Storage)
	}
}

func (v *validator) checkDefault(model *metadata.ModelMetadata, field *metadata.FieldMetadata) {
	if field.Default.IsZero() {
		return
	}
	if !field.Default.CompatibleWith(field.Storage) {
		v.add(IssueIncompatibleDefault, SeverityError, model.ID, field.Name,
			"default value %q is not compatible with %s", field.Default, field.Storage)
		return
	}
	if field.Storage == metadata.TypeEnum {
		for _, val := range field.EnumValues {
			if val == field.Default.Str {
				return
			}
		}
		v.add(IssueIncompatibleDefault, SeverityError, model.ID, field.Name,
			"default value %q is not one of the enum values", field.Default)
	}
}

// checkRules compile-checks declared rule conditions so a malformed
// expression fails at lint time rather than on first payload.
func (v *validator) checkRules(model *metadata.ModelMetadata, field *metadata.FieldMetadata) {
	for _, rule := range field.Rules {
		if rule.When == "" {
			continue
		}
		if _, err := expr.Compile(rule.When); err != nil {
			v.add(IssueBadRuleCondition, SeverityError, model.ID, field.Name,
				"rule %s condition does not compile: %v", rule.Kind, err)
		}
	}
}

func (v *validator) checkPrimaryKey(model *metadata.ModelMetadata) {
	pk, ok := model.Fields[model.PrimaryKey]
	if !ok {
		v.add(IssueMissingPrimaryKey, SeverityError, model.ID, "",
			"primary key field %q does not exist", model.PrimaryKey)
		return
	}
	if pk.Nullable {
		v.add(IssueNullablePrimaryKey, SeverityError, model.ID, pk.Name,
			"primary key must be non-nullable")
	}
}

func (v *validator) checkRelationships(model *metadata.ModelMetadata) {
	seen := make(map[string]bool, len(model.RelationOrder))
	for _, name := range model.RelationOrder {
		if seen[name] {
			v.add(IssueDuplicateRelationName, SeverityError, model.ID, name,
				"relationship name appears more than once")
			continue
		}
		seen[name] = true

		rel := model.Relationships[name]
		target, ok := v.graph.Model(rel.Target)
		if !rel.Resolved() || !ok {
			v.add(IssueUnknownTargetModel, SeverityError, model.ID, name,
				"target model %q is not in the graph", rel.TargetName)
			continue
		}

		v.checkForeignKey(model, target, rel)
		if rel.Kind.Polymorphic() && rel.MorphName == "" {
			v.add(IssueMissingMorphName, SeverityError, model.ID, name,
				"%s relationship requires a morph name", rel.Kind)
		}
		v.checkInverse(model, target, rel)
	}
}

// checkForeignKey verifies the foreign-key field referenced by a
// relationship exists on the owning or target model.
func (v *validator) checkForeignKey(model, target *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) {
	switch rel.Kind {
	case metadata.ManyToOne, metadata.OneToOne:
		if !model.HasField(rel.ForeignKey) {
			v.add(IssueMissingForeignKey, SeverityError, model.ID, rel.Name,
				"foreign key field %q does not exist on %s", rel.ForeignKey, model.Name)
		}
		if !target.HasField(rel.LocalKey) {
			v.add(IssueMissingForeignKey, SeverityError, model.ID, rel.Name,
				"referenced key field %q does not exist on %s", rel.LocalKey, target.Name)
		}
	case metadata.OneToMany:
		if !target.HasField(rel.ForeignKey) {
			v.add(IssueMissingForeignKey, SeverityError, model.ID, rel.Name,
				"foreign key field %q does not exist on %s", rel.ForeignKey, target.Name)
		}
	case metadata.ManyToMany:
		if !model.HasField(rel.LocalKey) {
			v.add(IssueMissingForeignKey, SeverityError, model.ID, rel.Name,
				"local key field %q does not exist on %s", rel.LocalKey, model.Name)
		}
	}
}

// checkInverse verifies that a declared inverse pair agrees on its
// foreign-key field (pivot table for many-to-many). Declaring an inverse is
// optional: a relationship whose target declares no agreeing counterpart
// stands alone, and only an unambiguous pairing can disagree. Each pair is
// reported once.
func (v *validator) checkInverse(model, target *metadata.ModelMetadata, rel *metadata.RelationshipMetadata) {
	if rel.Kind.Polymorphic() {
		return
	}
	if strings.Compare(string(model.ID), string(target.ID)) > 0 {
		return // the other side reports
	}

	var compatible []*metadata.RelationshipMetadata
	for _, invName := range target.RelationOrder {
		inv := target.Relationships[invName]
		if inv.Target != model.ID || inv == rel {
			continue
		}
		if rel.Kind.CompatibleInverse(inv.Kind) {
			compatible = append(compatible, inv)
		}
	}

	for _, inv := range compatible {
		if inverseAgrees(rel, inv) {
			return
		}
	}
	if len(compatible) != 1 {
		return
	}

	// The sole candidate may already pair with a sibling relationship to
	// the same target; then this side simply has no declared inverse.
	inv := compatible[0]
	for _, otherName := range model.RelationOrder {
		other := model.Relationships[otherName]
		if other == rel || other.Target != target.ID {
			continue
		}
		if other.Kind.CompatibleInverse(inv.Kind) && inverseAgrees(other, inv) {
			return
		}
	}

	if rel.Kind == metadata.ManyToMany {
		// each side names its own pivot column; the pivot table must agree
		v.add(IssueIncompatibleInverse, SeverityError, model.ID, rel.Name,
			"inverse %s.%s uses pivot table %q, this side uses %q",
			target.Name, inv.Name, inv.ThroughTable, rel.ThroughTable)
		return
	}
	v.add(IssueIncompatibleInverse, SeverityError, model.ID, rel.Name,
		"inverse %s.%s declares foreign key %q, this side declares %q",
		target.Name, inv.Name, inv.ForeignKey, rel.ForeignKey)
}

// inverseAgrees reports whether two relationship sides describe the same
// join: the same foreign-key field, or the same pivot table for
// many-to-many.
func inverseAgrees(rel, inv *metadata.RelationshipMetadata) bool {
	if rel.Kind == metadata.ManyToMany {
		return rel.ThroughTable == inv.ThroughTable
	}
	return rel.ForeignKey == inv.ForeignKey
}

// checkCycles reports belongs-to dependency cycles as advisory issues;
// nullable foreign keys make them legal, but schema ordering cannot satisfy
// them without deferred constraints.
func (v *validator) checkCycles() {
	deps := NewDependencyGraph(v.graph)
	for _, cycle := range deps.DetectCycles() {
		v.add(IssueCircularDependency, SeverityWarning, cycle[0], "",
			"dependency cycle: %s", formatCycle(cycle))
	}
}

func formatCycle(cycle []metadata.ModelID) string {
	parts := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		parts = append(parts, string(id))
	}
	parts = append(parts, string(cycle[0]))
	return strings.Join(parts, " -> ")
}
