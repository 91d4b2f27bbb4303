package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestKeyValueTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("Models", "3")
	kvTable.AddRow("Fields", "14")
	kvTable.AddRow("Build ID", "0c7c1fe8")

	kvTable.Render()

	output := buf.String()

	expected := []string{
		"Models:",
		"3",
		"Fields:",
		"14",
		"Build ID:",
		"0c7c1fe8",
	}

	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			t.Errorf("KeyValueTable output missing: %q", exp)
		}
	}
}

func TestKeyValueTableAlignment(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("A", "1")
	kvTable.AddRow("Longer key", "2")

	kvTable.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}

	// values are aligned to the widest key
	if strings.Index(lines[0], "1") != strings.Index(lines[1], "2") {
		t.Errorf("Expected aligned values, got:\n%s", buf.String())
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.Render()

	output := buf.String()
	if output != "" {
		t.Errorf("Expected empty output for empty KeyValueTable, got: %q", output)
	}
}

func TestDivider(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Divider(&buf, 40, true)

	output := buf.String()

	if !strings.Contains(output, "─") {
		t.Errorf("Divider output missing line character")
	}

	// Should have 40 characters plus newline
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 0 && len(lines[0]) < 30 {
		t.Errorf("Divider seems too short")
	}
}

func TestDividerDefaultWidth(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Divider(&buf, 0, true) // 0 should use default width of 80

	output := buf.String()

	if !strings.Contains(output, "─") {
		t.Errorf("Divider output missing line character")
	}
}

func TestHeader(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Header(&buf, "Metadata graph", true)

	output := buf.String()

	if !strings.Contains(output, "Metadata graph") {
		t.Errorf("Header output missing title")
	}

	if !strings.Contains(output, "─") {
		t.Errorf("Header output missing divider")
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}
