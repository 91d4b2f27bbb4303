package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelforge-dev/modelforge/internal/metadata"
)

func buildGraph(t *testing.T, decls []*metadata.ModelDeclaration) *Graph {
	t.Helper()
	g, err := NewBuilder().Build(decls)
	require.NoError(t, err)
	return g
}

func issueKinds(issues []Issue) []IssueKind {
	kinds := make([]IssueKind, len(issues))
	for i, issue := range issues {
		kinds[i] = issue.Kind
	}
	return kinds
}

func TestValidateCleanGraph(t *testing.T) {
	g := buildGraph(t, commentDecls())
	issues := Validate(g)
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestValidateCollectsAllIssues(t *testing.T) {
	decls := []*metadata.ModelDeclaration{
		{
			Name: "Product",
			Properties: []metadata.PropertyDeclaration{
				{Name: "count", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"integer"}},
					{Name: metadata.AnnLength, Args: []string{"10"}},
				}},
				{Name: "status", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"enum"}},
				}},
				{Name: "active", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"boolean"}},
					{Name: metadata.AnnDefault, Args: []string{"maybe"}},
				}},
			},
		},
	}

	issues := Validate(buildGraph(t, decls))
	kinds := issueKinds(issues)
	assert.Contains(t, kinds, IssueLengthOnNonString)
	assert.Contains(t, kinds, IssueEmptyEnum)
	assert.Contains(t, kinds, IssueIncompatibleDefault)
	assert.Len(t, issues, 3, "validator must not stop at the first issue")
	assert.True(t, HasErrors(issues))
}

func TestValidateEnumChecks(t *testing.T) {
	t.Run("duplicate enum value", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{{
			Name: "Doc",
			Properties: []metadata.PropertyDeclaration{
				{Name: "status", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"enum"}},
					{Name: metadata.AnnEnum, Args: []string{"draft", "final", "draft"}},
				}},
			},
		}}
		kinds := issueKinds(Validate(buildGraph(t, decls)))
		assert.Contains(t, kinds, IssueDuplicateEnumValue)
	})

	t.Run("enum values on non-enum field", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{{
			Name: "Doc",
			Properties: []metadata.PropertyDeclaration{
				{Name: "status", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"string"}},
					{Name: metadata.AnnEnum, Args: []string{"draft"}},
				}},
			},
		}}
		kinds := issueKinds(Validate(buildGraph(t, decls)))
		assert.Contains(t, kinds, IssueEnumOnNonEnum)
	})

	t.Run("enum default must be a member", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{{
			Name: "Doc",
			Properties: []metadata.PropertyDeclaration{
				{Name: "status", Annotations: []metadata.Annotation{
					{Name: metadata.AnnType, Args: []string{"enum"}},
					{Name: metadata.AnnEnum, Args: []string{"draft", "final"}},
					{Name: metadata.AnnDefault, Args: []string{"published"}},
				}},
			},
		}}
		kinds := issueKinds(Validate(buildGraph(t, decls)))
		assert.Contains(t, kinds, IssueIncompatibleDefault)
	})
}

func TestValidateNullablePrimaryKey(t *testing.T) {
	decls := []*metadata.ModelDeclaration{{
		Name: "Session",
		Properties: []metadata.PropertyDeclaration{
			{Name: "token", HostType: metadata.HostString, Annotations: []metadata.Annotation{
				{Name: metadata.AnnPrimary},
				{Name: metadata.AnnNullable},
			}},
		},
	}}

	kinds := issueKinds(Validate(buildGraph(t, decls)))
	assert.Contains(t, kinds, IssueNullablePrimaryKey)
}

func TestValidateMissingForeignKeyOnTarget(t *testing.T) {
	// hasMany without the inverse belongsTo: nothing materializes the
	// foreign key on the target side
	decls := []*metadata.ModelDeclaration{
		{
			Name: "Post",
			Properties: []metadata.PropertyDeclaration{
				{Name: "comments", Annotations: []metadata.Annotation{
					{Name: metadata.AnnHasMany, Args: []string{"Comment"}},
				}},
			},
		},
		{
			Name: "Comment",
			Properties: []metadata.PropertyDeclaration{
				{Name: "body", HostType: metadata.HostString},
			},
		},
	}

	kinds := issueKinds(Validate(buildGraph(t, decls)))
	assert.Contains(t, kinds, IssueMissingForeignKey)
}

func TestValidateInverseAgreement(t *testing.T) {
	t.Run("mismatched foreign keys", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{
			{
				Name: "Post",
				Properties: []metadata.PropertyDeclaration{
					{Name: "comments", Annotations: []metadata.Annotation{
						{Name: metadata.AnnHasMany, Args: []string{"Comment"}},
						{Name: metadata.AnnForeignKey, Args: []string{"article_id"}},
					}},
				},
			},
			{
				Name: "Comment",
				Properties: []metadata.PropertyDeclaration{
					{Name: "post", Annotations: []metadata.Annotation{
						{Name: metadata.AnnBelongsTo, Args: []string{"Post"}},
					}},
				},
			},
		}

		issues := Validate(buildGraph(t, decls))
		kinds := issueKinds(issues)
		assert.Contains(t, kinds, IssueIncompatibleInverse)
	})

	t.Run("second owning relationship without inverse is legal", func(t *testing.T) {
		// User.posts pairs with Post.author; Post.editor has no declared
		// inverse, which is not a disagreement
		decls := []*metadata.ModelDeclaration{
			{
				Name: "Post",
				Properties: []metadata.PropertyDeclaration{
					{Name: "author", Annotations: []metadata.Annotation{
						{Name: metadata.AnnBelongsTo, Args: []string{"User"}},
					}},
					{Name: "editor", Annotations: []metadata.Annotation{
						{Name: metadata.AnnBelongsTo, Args: []string{"User"}},
						{Name: metadata.AnnForeignKey, Args: []string{"editor_id"}},
					}},
				},
			},
			{
				Name: "User",
				Properties: []metadata.PropertyDeclaration{
					{Name: "posts", Annotations: []metadata.Annotation{
						{Name: metadata.AnnHasMany, Args: []string{"Post"}},
					}},
				},
			},
		}

		issues := Validate(buildGraph(t, decls))
		assert.Empty(t, issues)
	})

	t.Run("mutual belongs-to with no compatible inverse is legal", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{
			{
				Name: "Employee",
				Properties: []metadata.PropertyDeclaration{
					{Name: "department", Annotations: []metadata.Annotation{
						{Name: metadata.AnnBelongsTo, Args: []string{"Department"}},
						{Name: metadata.AnnNullable},
					}},
				},
			},
			{
				Name: "Department",
				Properties: []metadata.PropertyDeclaration{
					{Name: "manager", Annotations: []metadata.Annotation{
						{Name: metadata.AnnBelongsTo, Args: []string{"Employee"}},
						{Name: metadata.AnnNullable},
					}},
				},
			},
		}

		kinds := issueKinds(Validate(buildGraph(t, decls)))
		assert.NotContains(t, kinds, IssueIncompatibleInverse)
	})

	t.Run("symmetric many-to-many is clean", func(t *testing.T) {
		issues := Validate(buildGraph(t, postAndTagDecls()))
		assert.False(t, HasErrors(issues))
	})

	t.Run("reported once per pair", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{
			{
				Name: "Post",
				Properties: []metadata.PropertyDeclaration{
					{Name: "tags", Annotations: []metadata.Annotation{
						{Name: metadata.AnnManyToMany, Args: []string{"Tag"}},
						{Name: metadata.AnnThrough, Args: []string{"post_taggings"}},
					}},
				},
			},
			{
				Name: "Tag",
				Properties: []metadata.PropertyDeclaration{
					{Name: "posts", Annotations: []metadata.Annotation{
						{Name: metadata.AnnManyToMany, Args: []string{"Post"}},
					}},
				},
			},
		}

		issues := Validate(buildGraph(t, decls))
		var inverseIssues int
		for _, issue := range issues {
			if issue.Kind == IssueIncompatibleInverse {
				inverseIssues++
			}
		}
		assert.Equal(t, 1, inverseIssues)
	})
}

func TestValidateMorphNameRequired(t *testing.T) {
	decls := []*metadata.ModelDeclaration{
		{Name: "Image"},
		{
			Name: "Post",
			Properties: []metadata.PropertyDeclaration{
				{Name: "images", Annotations: []metadata.Annotation{
					{Name: metadata.AnnMorphMany, Args: []string{"Image"}},
				}},
			},
		},
	}

	kinds := issueKinds(Validate(buildGraph(t, decls)))
	assert.Contains(t, kinds, IssueMissingMorphName)
}

func TestValidateRuleConditionCompiles(t *testing.T) {
	t.Run("valid condition", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{{
			Name: "Order",
			Properties: []metadata.PropertyDeclaration{
				{Name: "coupon", HostType: metadata.HostString, Annotations: []metadata.Annotation{
					{Name: metadata.AnnNullable},
					{Name: metadata.AnnRule, Args: []string{"minLength=3", `action == "create"`}},
				}},
			},
		}}
		assert.False(t, HasErrors(Validate(buildGraph(t, decls))))
	})

	t.Run("malformed condition", func(t *testing.T) {
		decls := []*metadata.ModelDeclaration{{
			Name: "Order",
			Properties: []metadata.PropertyDeclaration{
				{Name: "coupon", HostType: metadata.HostString, Annotations: []metadata.Annotation{
					{Name: metadata.AnnNullable},
					{Name: metadata.AnnRule, Args: []string{"minLength=3", `action == ==`}},
				}},
			},
		}}
		kinds := issueKinds(Validate(buildGraph(t, decls)))
		assert.Contains(t, kinds, IssueBadRuleCondition)
	})
}

func TestValidateCycleIsWarning(t *testing.T) {
	decls := []*metadata.ModelDeclaration{
		{
			Name: "Employee",
			Properties: []metadata.PropertyDeclaration{
				{Name: "department", Annotations: []metadata.Annotation{
					{Name: metadata.AnnBelongsTo, Args: []string{"Department"}},
				}},
			},
		},
		{
			Name: "Department",
			Properties: []metadata.PropertyDeclaration{
				{Name: "head", Annotations: []metadata.Annotation{
					{Name: metadata.AnnHasOne, Args: []string{"Employee"}},
					{Name: metadata.AnnNullable},
				}},
			},
		},
	}

	issues := Validate(buildGraph(t, decls))
	var cycle *Issue
	for i := range issues {
		if issues[i].Kind == IssueCircularDependency {
			cycle = &issues[i]
		}
	}
	require.NotNil(t, cycle, "expected a cycle issue")
	assert.Equal(t, SeverityWarning, cycle.Severity)
}

func TestIssueString(t *testing.T) {
	issue := Issue{
		Kind:     IssueMissingForeignKey,
		Severity: SeverityError,
		Model:    "Comment",
		Path:     "post",
		Message:  "foreign key field missing",
	}
	s := issue.String()
	assert.Contains(t, s, "error")
	assert.Contains(t, s, "Comment.post")
	assert.Contains(t, s, "MissingForeignKeyField")
}
