package schema

import (
	"github.com/modelforge-dev/modelforge/internal/metadata"
)

// DefaultStringLength is the varchar length used when a string field does
// not declare one.
const DefaultStringLength = 255

// mapColumn converts one field's metadata into a column operation.
// The storage-to-column mapping is fixed; derivers must reproduce it exactly
// across runs so schema diffs stay structural.
func mapColumn(model *metadata.ModelMetadata, field *metadata.FieldMetadata) (Column, error) {
	col := Column{
		Name:          field.Name,
		NotNull:       !field.Nullable,
		Unique:        field.Unique,
		AutoIncrement: field.AutoIncrement,
		Unsigned:      field.Unsigned,
		Default:       field.Default,
	}

	switch field.Storage {
	case metadata.TypeString:
		col.Type = ColVarchar
		col.Length = DefaultStringLength
		if field.Length != nil {
			col.Length = *field.Length
		}
	case metadata.TypeText:
		col.Type = ColText
	case metadata.TypeInteger:
		col.Type = ColInteger
	case metadata.TypeBigInt:
		col.Type = ColBigInt
	case metadata.TypeDecimal, metadata.TypeFloat:
		col.Type = ColDecimal
		if field.Storage == metadata.TypeFloat {
			col.Type = ColFloat
		}
		if field.Precision == nil || field.Scale == nil {
			return Column{}, &DerivationError{
				Model:   model.ID,
				Field:   field.Name,
				Kind:    ErrMissingPrecision,
				Message: "decimal/float column requires precision and scale",
			}
		}
		col.Precision = *field.Precision
		col.Scale = *field.Scale
	case metadata.TypeBoolean:
		col.Type = ColBoolean
	case metadata.TypeDate:
		col.Type = ColDate
	case metadata.TypeDateTime:
		col.Type = ColDateTime
	case metadata.TypeTime:
		col.Type = ColTime
	case metadata.TypeJSON:
		col.Type = ColJSON
	case metadata.TypeEnum:
		col.Type = ColEnum
		col.EnumValues = append([]string(nil), field.EnumValues...)
	case metadata.TypeUUID:
		col.Type = ColUUID
	case metadata.TypeBinary:
		col.Type = ColBinary
	default:
		return Column{}, &DerivationError{
			Model:   model.ID,
			Field:   field.Name,
			Kind:    ErrUnmappedStorageType,
			Message: "unmapped storage type " + field.Storage.String(),
		}
	}

	return col, nil
}
