package metadata

import "fmt"

// DeclarationErrorKind is the machine-readable classification of a
// declaration reading failure.
type DeclarationErrorKind string

const (
	ErrUnknownFieldType       DeclarationErrorKind = "UnknownFieldType"
	ErrConflictingAnnotations DeclarationErrorKind = "ConflictingAnnotations"
	ErrDuplicateProperty      DeclarationErrorKind = "DuplicateProperty"
	ErrBadAnnotation          DeclarationErrorKind = "BadAnnotation"
)

// DeclarationError reports a malformed annotation on a single property.
// It carries the model and property names so tooling can point at the
// offending declaration without inspecting graph internals.
type DeclarationError struct {
	Model    string
	Property string
	Kind     DeclarationErrorKind
	Message  string
}

// Error implements the error interface
func (e *DeclarationError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("%s: %s: %s", e.Model, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s.%s: %s: %s", e.Model, e.Property, e.Kind, e.Message)
}

func declErr(model, property string, kind DeclarationErrorKind, format string, args ...interface{}) *DeclarationError {
	return &DeclarationError{
		Model:    model,
		Property: property,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	}
}
