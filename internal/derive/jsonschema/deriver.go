// Package jsonschema exports a model's metadata as a JSON Schema document,
// for consumers that validate payloads outside this process (API gateways,
// frontend form libraries). The export reuses the validation rule deriver
// so both validation paths agree on what a conforming payload looks like.
package jsonschema

import (
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/modelforge-dev/modelforge/internal/derive/rules"
	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// Derive builds a JSON Schema object describing payloads for the model.
// Generated primary keys and bookkeeping columns are excluded; they are
// never client-supplied.
func Derive(g *graph.Graph, model *metadata.ModelMetadata) (*jsonschema.Schema, error) {
	ruleSet, err := rules.Derive(g, model)
	if err != nil {
		return nil, err
	}

	schema := &jsonschema.Schema{
		Title:      model.Name,
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema),
	}

	for _, field := range model.FieldsInOrder() {
		if field.PrimaryKey && field.AutoIncrement {
			continue
		}
		prop := propertyFor(field)
		applyRules(prop, ruleSet[field.Name])
		schema.Properties[field.Name] = prop

		if hasRule(ruleSet[field.Name], metadata.RuleRequired) {
			schema.Required = append(schema.Required, field.Name)
		}
	}

	return schema, nil
}

func propertyFor(field *metadata.FieldMetadata) *jsonschema.Schema {
	prop := &jsonschema.Schema{}

	switch field.Storage {
	case metadata.TypeInteger, metadata.TypeBigInt:
		prop.Type = "integer"
	case metadata.TypeDecimal, metadata.TypeFloat:
		prop.Type = "number"
	case metadata.TypeBoolean:
		prop.Type = "boolean"
	case metadata.TypeJSON:
		prop.Type = "object"
	case metadata.TypeDate:
		prop.Type = "string"
		prop.Format = "date"
	case metadata.TypeDateTime:
		prop.Type = "string"
		prop.Format = "date-time"
	case metadata.TypeTime:
		prop.Type = "string"
		prop.Format = "time"
	case metadata.TypeUUID:
		prop.Type = "string"
		prop.Format = "uuid"
	default:
		prop.Type = "string"
	}

	if field.Storage == metadata.TypeEnum {
		prop.Type = "string"
		for _, v := range field.EnumValues {
			prop.Enum = append(prop.Enum, v)
		}
	}

	return prop
}

// applyRules folds numeric and length constraints from the validation rule
// set into the schema property so both validators agree.
func applyRules(prop *jsonschema.Schema, set []metadata.RuleDescriptor) {
	for _, rule := range set {
		switch rule.Kind {
		case metadata.RuleMaxLength:
			if n, ok := intParam(rule, 0); ok {
				prop.MaxLength = &n
			}
		case metadata.RuleMinLength:
			if n, ok := intParam(rule, 0); ok {
				prop.MinLength = &n
			}
		case metadata.RuleMin:
			if f, ok := floatParam(rule, 0); ok {
				prop.Minimum = &f
			}
		case metadata.RuleMax:
			if f, ok := floatParam(rule, 0); ok {
				prop.Maximum = &f
			}
		case metadata.RulePattern:
			if len(rule.Params) > 0 {
				prop.Pattern = rule.Params[0]
			}
		case metadata.RuleEmail:
			prop.Format = "email"
		case metadata.RuleURL:
			prop.Format = "uri"
		}
	}
}

func hasRule(set []metadata.RuleDescriptor, kind string) bool {
	for _, rule := range set {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

func intParam(rule metadata.RuleDescriptor, i int) (int, bool) {
	if i >= len(rule.Params) {
		return 0, false
	}
	n, err := strconv.Atoi(rule.Params[i])
	if err != nil {
		return 0, false
	}
	return n, true
}

func floatParam(rule metadata.RuleDescriptor, i int) (float64, bool) {
	if i >= len(rule.Params) {
		return 0, false
	}
	f, err := strconv.ParseFloat(rule.Params[i], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
