// Package form derives renderable form definitions from model metadata.
// Descriptors carry everything the template layer needs: widget choice,
// label, the field's validation constraints mirrored for native input
// attributes, and an options source for relationship selects. The deriver
// emits no markup.
package form

import (
	"sort"

	"github.com/modelforge-dev/modelforge/internal/derive/rules"
	"github.com/modelforge-dev/modelforge/internal/graph"
	"github.com/modelforge-dev/modelforge/internal/metadata"
	utilstrings "github.com/modelforge-dev/modelforge/internal/util/strings"
)

// Widget identifies the input control a field renders as.
type Widget string

const (
	WidgetText       Widget = "text"
	WidgetTextarea   Widget = "textarea"
	WidgetNumber     Widget = "number"
	WidgetCheckbox   Widget = "checkbox"
	WidgetSelect     Widget = "select"
	WidgetDate       Widget = "date"
	WidgetDateTime   Widget = "datetime"
	WidgetTimePicker Widget = "time"
)

// OptionsSource tells the caller where to load a relationship select's
// options from. The deriver cannot know the target model's live rows.
type OptionsSource struct {
	Table         string `json:"table"`
	ValueColumn   string `json:"value_column"`
	DisplayColumn string `json:"display_column"`
}

// Descriptor describes one form field.
type Descriptor struct {
	Field         string                    `json:"field"`
	Widget        Widget                    `json:"widget"`
	Label         string                    `json:"label"`
	Placeholder   string                    `json:"placeholder,omitempty"`
	Help          string                    `json:"help,omitempty"`
	Options       []string                  `json:"options,omitempty"`
	OptionsSource *OptionsSource            `json:"options_source,omitempty"`
	Constraints   []metadata.RuleDescriptor `json:"constraints,omitempty"`
	Value         interface{}               `json:"value,omitempty"`
}

// Derive returns the form descriptors for the model's editable fields,
// ordered by explicit form order where declared, else by declaration order.
// When record is non-nil its values pre-fill the descriptors.
func Derive(g *graph.Graph, model *metadata.ModelMetadata, record map[string]interface{}) ([]Descriptor, error) {
	constraints, err := rules.Derive(g, model)
	if err != nil {
		return nil, err
	}

	type ordered struct {
		desc     Descriptor
		explicit *int
	}
	var fields []ordered

	relByFK := relationshipsByForeignKey(model)

	for _, field := range model.FieldsInOrder() {
		if field.Form.Hidden || (field.PrimaryKey && field.AutoIncrement) {
			continue
		}

		desc := Descriptor{
			Field:       field.Name,
			Widget:      widgetFor(field),
			Label:       labelFor(field),
			Placeholder: field.Form.Placeholder,
			Help:        field.Form.Help,
			Constraints: constraints[field.Name],
		}
		if field.Storage == metadata.TypeEnum {
			desc.Options = append([]string(nil), field.EnumValues...)
		}
		if rel, ok := relByFK[field.Name]; ok && rel.Kind == metadata.ManyToOne {
			desc.Widget = WidgetSelect
			desc.OptionsSource = optionsSourceFor(g, rel)
		}
		if field.Form.Widget != "" {
			desc.Widget = Widget(field.Form.Widget)
		}
		if record != nil {
			if value, ok := record[field.Name]; ok {
				desc.Value = value
			}
		}

		fields = append(fields, ordered{desc: desc, explicit: field.Form.Order})
	}

	// Explicitly ordered fields come first, sorted by their order value;
	// the rest keep declaration order. The sort is stable so ties and
	// unordered fields never shuffle between runs.
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i].explicit, fields[j].explicit
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})

	out := make([]Descriptor, len(fields))
	for i, f := range fields {
		out[i] = f.desc
	}
	return out, nil
}

func widgetFor(field *metadata.FieldMetadata) Widget {
	switch {
	case field.Storage == metadata.TypeBoolean:
		return WidgetCheckbox
	case field.Storage == metadata.TypeEnum:
		return WidgetSelect
	case field.Storage == metadata.TypeText || field.Storage == metadata.TypeJSON:
		return WidgetTextarea
	case field.Storage == metadata.TypeDate:
		return WidgetDate
	case field.Storage == metadata.TypeDateTime:
		return WidgetDateTime
	case field.Storage == metadata.TypeTime:
		return WidgetTimePicker
	case field.Storage.IsNumeric():
		return WidgetNumber
	default:
		return WidgetText
	}
}

func labelFor(field *metadata.FieldMetadata) string {
	if field.Form.Label != "" {
		return field.Form.Label
	}
	return utilstrings.Humanize(field.Name)
}

// optionsSourceFor picks the target's first string field as the display
// column, falling back to the primary key when the target has none.
func optionsSourceFor(g *graph.Graph, rel *metadata.RelationshipMetadata) *OptionsSource {
	target, ok := g.Model(rel.Target)
	if !ok {
		return nil
	}
	display := target.PrimaryKey
	for _, f := range target.FieldsInOrder() {
		if f.Storage == metadata.TypeString && !f.Implicit {
			display = f.Name
			break
		}
	}
	return &OptionsSource{
		Table:         target.TableName,
		ValueColumn:   target.PrimaryKey,
		DisplayColumn: display,
	}
}

func relationshipsByForeignKey(model *metadata.ModelMetadata) map[string]*metadata.RelationshipMetadata {
	out := make(map[string]*metadata.RelationshipMetadata)
	for _, rel := range model.RelationshipsInOrder() {
		if rel.Kind.Owning() && rel.ForeignKey != "" {
			out[rel.ForeignKey] = rel
		}
	}
	return out
}
