package metadata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBasicModel(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Product",
		Properties: []PropertyDeclaration{
			{Name: "name", HostType: HostString, Annotations: []Annotation{
				{Name: AnnLength, Args: []string{"255"}},
				{Name: AnnRule, Args: []string{"required"}},
			}},
			{Name: "price", Annotations: []Annotation{
				{Name: AnnType, Args: []string{"decimal"}},
				{Name: AnnPrecision, Args: []string{"10"}},
				{Name: AnnScale, Args: []string{"2"}},
				{Name: AnnRule, Args: []string{"min=0"}},
			}},
			{Name: "in_stock", HostType: HostBool, Annotations: []Annotation{
				{Name: AnnDefault, Args: []string{"true"}},
			}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)

	assert.Equal(t, ModelID("Product"), model.ID)
	assert.Equal(t, "products", model.TableName)

	// implicit id is prepended
	assert.Equal(t, []string{"id", "name", "price", "in_stock"}, model.FieldOrder)
	assert.Equal(t, "id", model.PrimaryKey)

	id, _ := model.Field("id")
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.True(t, id.Unsigned)
	assert.True(t, id.Implicit)
	assert.Equal(t, TypeInteger, id.Storage)

	name, _ := model.Field("name")
	assert.Equal(t, TypeString, name.Storage)
	require.NotNil(t, name.Length)
	assert.Equal(t, 255, *name.Length)
	require.Len(t, name.Rules, 1)
	assert.Equal(t, RuleRequired, name.Rules[0].Kind)

	price, _ := model.Field("price")
	assert.Equal(t, TypeDecimal, price.Storage)
	require.NotNil(t, price.Precision)
	assert.Equal(t, 10, *price.Precision)
	require.Len(t, price.Rules, 1)
	assert.Equal(t, []string{"0"}, price.Rules[0].Params)

	inStock, _ := model.Field("in_stock")
	assert.Equal(t, TypeBoolean, inStock.Storage)
	assert.Equal(t, BoolValue(true), inStock.Default)
}

func TestReadTableNameDefault(t *testing.T) {
	tests := []struct {
		model    string
		declared string
		expected string
	}{
		{"Post", "", "posts"},
		{"Category", "", "categories"},
		{"BlogPost", "", "blog_posts"},
		{"Post", "articles", "articles"},
	}

	for _, tt := range tests {
		t.Run(tt.model+"/"+tt.expected, func(t *testing.T) {
			model, err := NewReader().Read(&ModelDeclaration{Name: tt.model, TableName: tt.declared})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, model.TableName)
		})
	}
}

func TestReadExplicitTypeWinsOverHostType(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Doc",
		Properties: []PropertyDeclaration{
			{Name: "body", HostType: HostString, Annotations: []Annotation{
				{Name: AnnType, Args: []string{"text"}},
			}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)
	body, _ := model.Field("body")
	assert.Equal(t, TypeText, body.Storage)
}

func TestReadUnknownFieldType(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Doc",
		Properties: []PropertyDeclaration{
			{Name: "body", Annotations: []Annotation{
				{Name: AnnType, Args: []string{"varchar2"}},
			}},
		},
	}

	_, err := NewReader().Read(decl)
	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, ErrUnknownFieldType, declErr.Kind)
	assert.Equal(t, "Doc", declErr.Model)
	assert.Equal(t, "body", declErr.Property)
}

func TestReadNoTypeAndNoHostType(t *testing.T) {
	decl := &ModelDeclaration{
		Name:       "Doc",
		Properties: []PropertyDeclaration{{Name: "body"}},
	}

	_, err := NewReader().Read(decl)
	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, ErrUnknownFieldType, declErr.Kind)
}

func TestReadConflictingAnnotations(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Comment",
		Properties: []PropertyDeclaration{
			{Name: "post", Annotations: []Annotation{
				{Name: AnnBelongsTo, Args: []string{"Post"}},
				{Name: AnnUnique},
			}},
		},
	}

	_, err := NewReader().Read(decl)
	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, ErrConflictingAnnotations, declErr.Kind)
}

func TestReadDuplicateProperty(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Doc",
		Properties: []PropertyDeclaration{
			{Name: "title", HostType: HostString},
			{Name: "title", HostType: HostString},
		},
	}

	_, err := NewReader().Read(decl)
	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, ErrDuplicateProperty, declErr.Kind)
}

func TestReadDeclaredPrimaryKey(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Session",
		Properties: []PropertyDeclaration{
			{Name: "token", HostType: HostString, Annotations: []Annotation{{Name: AnnPrimary}}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)
	assert.Equal(t, "token", model.PrimaryKey)
	assert.False(t, model.HasField("id"))
}

func TestReadAdoptsPlainIDField(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Device",
		Properties: []PropertyDeclaration{
			{Name: "id", Annotations: []Annotation{{Name: AnnType, Args: []string{"uuid"}}}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)
	assert.Equal(t, "id", model.PrimaryKey)

	id, _ := model.Field("id")
	assert.True(t, id.PrimaryKey)
	assert.False(t, id.Implicit)
	assert.Equal(t, TypeUUID, id.Storage)
}

func TestReadRelationship(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Comment",
		Properties: []PropertyDeclaration{
			{Name: "post", Annotations: []Annotation{
				{Name: AnnBelongsTo, Args: []string{"Post"}},
				{Name: AnnOnDelete, Args: []string{"cascade"}},
			}},
			{Name: "tags", Annotations: []Annotation{
				{Name: AnnManyToMany, Args: []string{"Tag"}},
			}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)
	require.Equal(t, []string{"post", "tags"}, model.RelationOrder)

	post := model.Relationships["post"]
	assert.Equal(t, ManyToOne, post.Kind)
	assert.Equal(t, "Post", post.TargetName)
	assert.False(t, post.Resolved())
	assert.Equal(t, ActionCascade, post.OnDelete)
	assert.Equal(t, ActionRestrict, post.OnUpdate)

	tags := model.Relationships["tags"]
	assert.Equal(t, ManyToMany, tags.Kind)
}

func TestReadRelationshipRequiresTarget(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Comment",
		Properties: []PropertyDeclaration{
			{Name: "post", Annotations: []Annotation{{Name: AnnBelongsTo}}},
		},
	}

	_, err := NewReader().Read(decl)
	var declErr *DeclarationError
	require.ErrorAs(t, err, &declErr)
	assert.Equal(t, ErrBadAnnotation, declErr.Kind)
}

func TestReadTimestampsAndSoftDeletes(t *testing.T) {
	model, err := NewReader().Read(&ModelDeclaration{
		Name:        "Post",
		Timestamps:  true,
		SoftDeletes: true,
	})
	require.NoError(t, err)

	assert.True(t, model.Timestamps.Enabled)
	assert.Equal(t, "created_at", model.Timestamps.CreatedColumn)
	assert.Equal(t, "updated_at", model.Timestamps.UpdatedColumn)
	assert.True(t, model.SoftDelete.Enabled)
	assert.Equal(t, "deleted_at", model.SoftDelete.Column)

	custom, err := NewReader().Read(&ModelDeclaration{
		Name:          "Post",
		Timestamps:    true,
		CreatedColumn: "inserted_at",
	})
	require.NoError(t, err)
	assert.Equal(t, "inserted_at", custom.Timestamps.CreatedColumn)
	assert.Equal(t, "updated_at", custom.Timestamps.UpdatedColumn)
}

func TestParseRuleSpec(t *testing.T) {
	tests := []struct {
		spec     string
		expected RuleDescriptor
	}{
		{"required", RuleDescriptor{Kind: "required"}},
		{"min=0", RuleDescriptor{Kind: "min", Params: []string{"0"}}},
		{"oneOf=a|b|c", RuleDescriptor{Kind: "oneOf", Params: []string{"a", "b", "c"}}},
		{"maxLength= 255", RuleDescriptor{Kind: "maxLength", Params: []string{"255"}}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseRuleSpec(tt.spec))
		})
	}
}

func TestRuleConditionArgument(t *testing.T) {
	decl := &ModelDeclaration{
		Name: "Order",
		Properties: []PropertyDeclaration{
			{Name: "coupon", HostType: HostString, Annotations: []Annotation{
				{Name: AnnNullable},
				{Name: AnnRule, Args: []string{"minLength=3", `action == "create"`}},
			}},
		},
	}

	model, err := NewReader().Read(decl)
	require.NoError(t, err)

	coupon, _ := model.Field("coupon")
	require.Len(t, coupon.Rules, 1)
	assert.Equal(t, `action == "create"`, coupon.Rules[0].When)
}

func TestDeclarationErrorMessage(t *testing.T) {
	err := declErr("Product", "price", ErrUnknownFieldType, "unknown field type %q", "mony")
	assert.Contains(t, err.Error(), "Product")
	assert.Contains(t, err.Error(), "price")
	assert.Contains(t, err.Error(), "mony")

	var target *DeclarationError
	assert.True(t, errors.As(err, &target))
}
