package ui

import (
	"reflect"
	"testing"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Post", "Pst", 1},
		{"User", "Uses", 1},
		{"Product", "Produce", 1},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			result := LevenshteinDistance(tt.s1, tt.s2)
			if result != tt.expected {
				t.Errorf("LevenshteinDistance(%q, %q) = %d; want %d", tt.s1, tt.s2, result, tt.expected)
			}
		})
	}
}

func TestSuggestModels(t *testing.T) {
	declared := []string{"Post", "User", "Product", "Comment", "Category"}

	tests := []struct {
		name     string
		typed    string
		expected []string
	}{
		{
			name:     "exact match first",
			typed:    "Post",
			expected: []string{"Post"},
		},
		{
			name:     "one character off",
			typed:    "Pst",
			expected: []string{"Post", "User"}, // "User" is also distance 3 from "Pst"
		},
		{
			name:     "case insensitive",
			typed:    "post",
			expected: []string{"Post"},
		},
		{
			name:     "closest first",
			typed:    "Prod",
			expected: []string{"Post", "Product"},
		},
		{
			name:     "nothing close enough",
			typed:    "Invoice",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SuggestModels(tt.typed, declared)

			if len(result) != len(tt.expected) {
				t.Fatalf("SuggestModels(%q) returned %d results; want %d\nGot: %v\nWant: %v",
					tt.typed, len(result), len(tt.expected), result, tt.expected)
			}
			if len(tt.expected) > 0 && !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SuggestModels(%q) = %v; want %v", tt.typed, result, tt.expected)
			}
		})
	}
}

func TestSuggestModelsCap(t *testing.T) {
	declared := []string{"Tag", "Tab", "Tap", "Tan", "Tar"}

	result := SuggestModels("Tak", declared)
	if len(result) != maxSuggestions {
		t.Errorf("Expected %d suggestions, got %d: %v", maxSuggestions, len(result), result)
	}
}

func TestSuggestModelsNoDeclaredModels(t *testing.T) {
	if result := SuggestModels("Post", nil); len(result) != 0 {
		t.Errorf("Expected no suggestions without declared models, got %v", result)
	}
}
