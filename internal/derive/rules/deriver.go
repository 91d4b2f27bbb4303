// Package rules derives field-level validation rule sets from model
// metadata. Implied rules come from the field's storage shape; declared
// rules come from annotations and win on conflict. The deriver is pure:
// it never mutates the graph and the same graph always yields the same
// rule set.
package rules

import (
	"fmt"
	"strconv"

	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// Derive returns the validation rules for every field of the model, keyed
// by field name. Fields with no applicable rules are omitted.
func Derive(g *graph.Graph, model *metadata.ModelMetadata) (map[string][]metadata.RuleDescriptor, error) {
	out := make(map[string][]metadata.RuleDescriptor)

	for _, field := range model.FieldsInOrder() {
		set := fieldRules(model, field)
		if len(set) > 0 {
			out[field.Name] = set
		}
	}

	// Non-nullable owning relationships imply an existence check on the
	// foreign-key field against the target table.
	for _, rel := range model.RelationshipsInOrder() {
		if !rel.Kind.Owning() || rel.Nullable || !rel.Resolved() {
			continue
		}
		target, ok := g.Model(rel.Target)
		if !ok {
			return nil, fmt.Errorf("%s.%s: target model %q is not in the graph", model.Name, rel.Name, rel.TargetName)
		}
		out[rel.ForeignKey] = appendRule(out[rel.ForeignKey], metadata.RuleDescriptor{
			Kind:   metadata.RuleExists,
			Params: []string{target.TableName, target.PrimaryKey},
		})
	}

	return out, nil
}

// fieldRules merges a field's implied rules with its declared ones.
// Declared rules replace an implied rule of the same kind.
func fieldRules(model *metadata.ModelMetadata, field *metadata.FieldMetadata) []metadata.RuleDescriptor {
	var set []metadata.RuleDescriptor

	if field.PrimaryKey && field.AutoIncrement {
		// generated keys are never client-supplied, so nothing to validate
		return declaredOnly(field)
	}

	if !field.Nullable && field.Default.IsZero() {
		set = append(set, metadata.RuleDescriptor{Kind: metadata.RuleRequired})
	}

	switch {
	case field.Storage.IsNumeric():
		set = append(set, metadata.RuleDescriptor{Kind: metadata.RuleNumeric})
	case field.Storage == metadata.TypeBoolean:
		set = append(set, metadata.RuleDescriptor{Kind: metadata.RuleBoolean})
	case field.Storage == metadata.TypeEnum && len(field.EnumValues) > 0:
		set = append(set, metadata.RuleDescriptor{
			Kind:   metadata.RuleOneOf,
			Params: append([]string(nil), field.EnumValues...),
		})
	case field.Storage == metadata.TypeString && field.Length != nil:
		set = append(set, metadata.RuleDescriptor{
			Kind:   metadata.RuleMaxLength,
			Params: []string{strconv.Itoa(*field.Length)},
		})
	}

	if field.Unique {
		// emitted unconditionally; the update path is responsible for
		// exempting the current record's own value
		set = append(set, metadata.RuleDescriptor{
			Kind:   metadata.RuleUnique,
			Params: []string{model.TableName, field.Name},
		})
	}

	for _, declared := range field.Rules {
		set = appendRule(set, declared)
	}

	return set
}

func declaredOnly(field *metadata.FieldMetadata) []metadata.RuleDescriptor {
	if len(field.Rules) == 0 {
		return nil
	}
	var set []metadata.RuleDescriptor
	for _, declared := range field.Rules {
		set = appendRule(set, declared)
	}
	return set
}

// appendRule adds a rule to the set, replacing any existing rule of the
// same kind so explicit declarations win over implied ones.
func appendRule(set []metadata.RuleDescriptor, rule metadata.RuleDescriptor) []metadata.RuleDescriptor {
	for i, existing := range set {
		if existing.Kind == rule.Kind {
			set[i] = rule
			return set
		}
	}
	return append(set, rule)
}
