package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/modelforge-dev/modelforge/internal/graph"
)

func TestFormatError(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		opts     ErrorOptions
		contains []string
	}{
		{
			name: "basic error",
			opts: ErrorOptions{
				Level:   ErrorLevelError,
				Context: "MODEL NOT FOUND",
				Problem: "Cannot find model 'Post'.",
			},
			contains: []string{
				"❌",
				"MODEL NOT FOUND",
				"Cannot find model 'Post'.",
			},
		},
		{
			name: "error with suggestions",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "MODEL NOT FOUND",
				Problem:     "Cannot find model 'Pst'.",
				Suggestions: []string{"Post", "User"},
			},
			contains: []string{
				"Did you mean: Post, User?",
			},
		},
		{
			name: "error with consequence",
			opts: ErrorOptions{
				Level:       ErrorLevelError,
				Context:     "METADATA BUILD FAILED",
				Problem:     "Comment.post references unknown model \"Pots\"",
				Consequence: "No graph was cached.",
			},
			contains: []string{
				"METADATA BUILD FAILED",
				"No graph was cached.",
			},
		},
		{
			name: "error with help commands",
			opts: ErrorOptions{
				Level:        ErrorLevelError,
				Context:      "MODEL NOT FOUND",
				Problem:      "Cannot find model 'Pst'.",
				HelpCommands: []string{"See all models: modelforge stats"},
			},
			contains: []string{
				"→ See all models: modelforge stats",
			},
		},
		{
			name: "warning level",
			opts: ErrorOptions{
				Level:   ErrorLevelWarning,
				Context: "CYCLE DETECTED",
				Problem: "Employee and Department depend on each other.",
			},
			contains: []string{
				"⚠️",
				"CYCLE DETECTED",
			},
		},
		{
			name: "info level",
			opts: ErrorOptions{
				Level:   ErrorLevelInfo,
				Problem: "Nothing to do.",
			},
			contains: []string{
				"ℹ️",
				"Nothing to do.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.opts)
			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("FormatError output missing %q\nGot:\n%s", expected, result)
				}
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	WriteError(&buf, ErrorOptions{
		Level:   ErrorLevelError,
		Context: "MODEL NOT FOUND",
		Problem: "Cannot find model 'Ghost'.",
		NoColor: true,
	})

	if !strings.Contains(buf.String(), "Ghost") {
		t.Errorf("WriteError output missing model name, got: %q", buf.String())
	}
}

func TestFormatSuccess(t *testing.T) {
	result := FormatSuccess("wrote 3 schema script(s)", true)

	if !strings.Contains(result, "✓") {
		t.Errorf("FormatSuccess output missing checkmark")
	}
	if !strings.Contains(result, "wrote 3 schema script(s)") {
		t.Errorf("FormatSuccess output missing message")
	}
}

func TestModelNotFoundError(t *testing.T) {
	result := ModelNotFoundError("Pst", []string{"Post"}, true)

	expected := []string{
		"MODEL NOT FOUND",
		"Cannot find model 'Pst'.",
		"Did you mean: Post?",
		"modelforge stats",
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("ModelNotFoundError output missing %q\nGot:\n%s", exp, result)
		}
	}
}

func TestModelNotFoundErrorNoSuggestions(t *testing.T) {
	result := ModelNotFoundError("Zebra", nil, true)

	if strings.Contains(result, "Did you mean") {
		t.Errorf("Expected no suggestion line without suggestions, got:\n%s", result)
	}
}

func TestGraphBuildError(t *testing.T) {
	result := GraphBuildError("Comment.post references unknown model \"Pots\"", true)

	expected := []string{
		"METADATA BUILD FAILED",
		"references unknown model",
		"modelforge lint",
	}
	for _, exp := range expected {
		if !strings.Contains(result, exp) {
			t.Errorf("GraphBuildError output missing %q\nGot:\n%s", exp, result)
		}
	}
}

func TestDeclarationLoadError(t *testing.T) {
	result := DeclarationLoadError("models/post.json", "unexpected end of JSON input", true)

	if !strings.Contains(result, "models/post.json") {
		t.Errorf("DeclarationLoadError output missing path")
	}
	if !strings.Contains(result, "unexpected end of JSON input") {
		t.Errorf("DeclarationLoadError output missing message")
	}
}

func TestRenderIssues(t *testing.T) {
	issues := []graph.Issue{
		{
			Model:    "Doc",
			Path:     "status",
			Kind:     graph.IssueEmptyEnum,
			Severity: graph.SeverityError,
			Message:  "enum field declares no values",
		},
		{
			Model:    "Doc",
			Path:     "title",
			Kind:     graph.IssueLengthOnNonString,
			Severity: graph.SeverityError,
			Message:  "length is only valid on string fields",
		},
		{
			Model:    "Employee",
			Kind:     graph.IssueCircularDependency,
			Severity: graph.SeverityWarning,
			Message:  "required relationship cycle",
		},
	}

	var buf bytes.Buffer
	RenderIssues(&buf, issues, true)
	output := buf.String()

	expected := []string{
		"Doc",
		"Employee",
		"error  status: enum field declares no values",
		"error  title: length is only valid on string fields",
		"warn   (model): required relationship cycle",
		"2 error(s), 1 warning(s)",
	}
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("RenderIssues output missing %q\nGot:\n%s", exp, output)
		}
	}

	// model header appears once per group
	if strings.Count(output, "Doc") != 1 {
		t.Errorf("Expected a single Doc header, got:\n%s", output)
	}
}

func TestRenderIssuesEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderIssues(&buf, nil, true)

	if !strings.Contains(buf.String(), "no issues found") {
		t.Errorf("Expected success message for empty issue list, got: %q", buf.String())
	}
}
