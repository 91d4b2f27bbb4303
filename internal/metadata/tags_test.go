package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	Name      string   `forge:"length:255;rule:required"`
	Price     float64  `forge:"type:decimal;precision:10;scale:2;rule:min=0"`
	InStock   bool     `forge:"default:true"`
	Notes     *string  `forge:"type:text"`
	Status    string   `forge:"type:enum;enum:draft|active|retired;default:draft"`
	hidden    int
	Ignored   string   `forge:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func TestFromStruct(t *testing.T) {
	decl, err := FromStruct(product{})
	require.NoError(t, err)

	assert.Equal(t, "product", decl.Name)
	assert.True(t, decl.Timestamps)
	assert.True(t, decl.SoftDeletes)

	names := make([]string, len(decl.Properties))
	for i, p := range decl.Properties {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"name", "price", "in_stock", "notes", "status"}, names)
}

func TestFromStructThroughReader(t *testing.T) {
	decl, err := FromStruct(&product{})
	require.NoError(t, err)

	model, err := NewReader().Read(decl)
	require.NoError(t, err)

	name, ok := model.Field("name")
	require.True(t, ok)
	assert.Equal(t, TypeString, name.Storage)
	require.NotNil(t, name.Length)
	assert.Equal(t, 255, *name.Length)

	price, ok := model.Field("price")
	require.True(t, ok)
	assert.Equal(t, TypeDecimal, price.Storage)
	require.NotNil(t, price.Precision)
	assert.Equal(t, 10, *price.Precision)

	notes, ok := model.Field("notes")
	require.True(t, ok)
	assert.True(t, notes.Nullable)
	assert.Equal(t, TypeText, notes.Storage)

	status, ok := model.Field("status")
	require.True(t, ok)
	assert.Equal(t, TypeEnum, status.Storage)
	assert.Equal(t, []string{"draft", "active", "retired"}, status.EnumValues)
	assert.Equal(t, StringValue("draft"), status.Default)

	assert.False(t, model.HasField("ignored"))
	assert.False(t, model.HasField("created_at"))
	assert.True(t, model.Timestamps.Enabled)
	assert.True(t, model.SoftDelete.Enabled)
}

func TestFromStructRuleCondition(t *testing.T) {
	type order struct {
		Coupon *string `forge:"rule:minLength=3@when action == \"create\""`
	}

	decl, err := FromStruct(order{})
	require.NoError(t, err)

	require.Len(t, decl.Properties, 1)
	var ruleAnn *Annotation
	for i := range decl.Properties[0].Annotations {
		if decl.Properties[0].Annotations[i].Name == AnnRule {
			ruleAnn = &decl.Properties[0].Annotations[i]
		}
	}
	require.NotNil(t, ruleAnn)
	require.Len(t, ruleAnn.Args, 2)
	assert.Equal(t, "minLength=3", ruleAnn.Args[0])
	assert.Equal(t, `action == "create"`, ruleAnn.Args[1])
}

func TestFromStructRejectsNonStruct(t *testing.T) {
	_, err := FromStruct(42)
	assert.Error(t, err)
}
