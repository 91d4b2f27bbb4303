package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/modelforge-dev/modelforge/internal/graph"
)

// RenderIssues writes a consistency issue list grouped by model, errors in
// red and warnings in yellow, with a summary line at the end.
func RenderIssues(w io.Writer, issues []graph.Issue, noColor bool) {
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)
	if noColor {
		red.DisableColor()
		yellow.DisableColor()
		bold.DisableColor()
	}

	var errors, warnings int
	var lastModel string

	for _, issue := range issues {
		model := string(issue.Model)
		if model != lastModel {
			bold.Fprintf(w, "%s\n", model)
			lastModel = model
		}

		location := issue.Path
		if location == "" {
			location = "(model)"
		}

		switch issue.Severity {
		case graph.SeverityError:
			errors++
			red.Fprintf(w, "  error  %s: %s [%s]\n", location, issue.Message, issue.Kind)
		default:
			warnings++
			yellow.Fprintf(w, "  warn   %s: %s [%s]\n", location, issue.Message, issue.Kind)
		}
	}

	if errors == 0 && warnings == 0 {
		WriteSuccess(w, "no issues found", noColor)
		return
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s)\n", errors, warnings)
}
