package metadata

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	utilstrings "github.com/modelforge-dev/modelforge/internal/util/strings"
)

// TagKey is the struct tag inspected by FromStruct.
const TagKey = "forge"

// FromStruct reflects over an annotated Go struct and produces the same
// declaration descriptor every other front-end produces, so Go hosts can
// declare models as plain structs:
//
//	type Product struct {
//		Name    string  `forge:"length:255;rule:required"`
//		Price   float64 `forge:"type:decimal;precision:10;scale:2"`
//		InStock bool    `forge:"default:true"`
//	}
//
// Tag grammar: semicolon-separated options, each `name`, `name:arg`, or
// `name:a|b|c` for multi-valued arguments. A `-` tag skips the field.
// Pointer fields are nullable. CreatedAt/UpdatedAt/DeletedAt time.Time
// fields switch on timestamps and soft deletes instead of becoming fields.
func FromStruct(v interface{}) (*ModelDeclaration, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct: expected a struct, got %T", v)
	}

	decl := &ModelDeclaration{Name: t.Name()}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		tag := sf.Tag.Get(TagKey)
		if tag == "-" {
			continue
		}

		if special := readBookkeepingField(decl, sf); special {
			continue
		}

		prop := PropertyDeclaration{Name: utilstrings.ToSnakeCase(sf.Name)}

		ft := sf.Type
		if ft.Kind() == reflect.Ptr {
			prop.Annotations = append(prop.Annotations, Annotation{Name: AnnNullable})
			ft = ft.Elem()
		}
		prop.HostType = hostTypeOf(ft)

		anns, err := parseTagOptions(t.Name(), sf.Name, tag)
		if err != nil {
			return nil, err
		}
		prop.Annotations = append(prop.Annotations, anns...)

		decl.Properties = append(decl.Properties, prop)
	}

	return decl, nil
}

// readBookkeepingField recognizes the conventional timestamp and soft-delete
// fields and records them as table-level flags.
func readBookkeepingField(decl *ModelDeclaration, sf reflect.StructField) bool {
	ft := sf.Type
	if ft.Kind() == reflect.Ptr {
		ft = ft.Elem()
	}
	if ft != reflect.TypeOf(time.Time{}) {
		return false
	}
	switch sf.Name {
	case "CreatedAt":
		decl.Timestamps = true
		return true
	case "UpdatedAt":
		decl.Timestamps = true
		return true
	case "DeletedAt":
		decl.SoftDeletes = true
		return true
	}
	return false
}

func hostTypeOf(t reflect.Type) HostType {
	if t == reflect.TypeOf(time.Time{}) {
		return HostTime
	}
	switch t.Kind() {
	case reflect.String:
		return HostString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return HostInt
	case reflect.Int64, reflect.Uint64:
		return HostInt64
	case reflect.Float32, reflect.Float64:
		return HostFloat
	case reflect.Bool:
		return HostBool
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return HostBytes
		}
		return HostUnknown
	default:
		return HostUnknown
	}
}

// parseTagOptions splits a forge tag into annotations.
func parseTagOptions(model, field, tag string) ([]Annotation, error) {
	if tag == "" {
		return nil, nil
	}
	var anns []Annotation
	for _, opt := range strings.Split(tag, ";") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		name, rest, found := strings.Cut(opt, ":")
		ann := Annotation{Name: strings.TrimSpace(name)}
		if found {
			switch ann.Name {
			case AnnEnum:
				for _, v := range strings.Split(rest, "|") {
					ann.Args = append(ann.Args, strings.TrimSpace(v))
				}
			case AnnRule:
				// rule:min=0 or rule:min=0@when expr
				spec, when, hasWhen := strings.Cut(rest, "@when ")
				ann.Args = []string{strings.TrimSpace(spec)}
				if hasWhen {
					ann.Args = append(ann.Args, strings.TrimSpace(when))
				}
			default:
				ann.Args = []string{strings.TrimSpace(rest)}
			}
		}
		if ann.Name == "" {
			return nil, fmt.Errorf("%s.%s: empty option in forge tag %q", model, field, tag)
		}
		anns = append(anns, ann)
	}
	return anns, nil
}
