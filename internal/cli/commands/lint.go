package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
	"github.com/modelforge-dev/modelforge/internal/cli/ui"
	"github.com/modelforge-dev/modelforge/internal/graph"
)

// NewLintCommand creates the lint command
func NewLintCommand() *cobra.Command {
	var noColor bool
	var warningsAsErrors bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check model declarations for consistency issues",
		Long: `Build the metadata graph and report every consistency issue found.

Unlike the derivation commands, lint reports all issues in one pass,
warnings included, so declarations can be fixed in a single edit cycle.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			eng, err := NewEngine(cfg)
			if err != nil {
				return err
			}

			issues, err := eng.Lint()
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.GraphBuildError(err.Error(), noColor))
				return err
			}

			ui.RenderIssues(cmd.OutOrStdout(), issues, noColor)

			if graph.HasErrors(issues) {
				return fmt.Errorf("lint found consistency errors")
			}
			if warningsAsErrors && len(issues) > 0 {
				return fmt.Errorf("lint found warnings and --strict is set")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&warningsAsErrors, "strict", false, "Treat warnings as errors")

	return cmd
}
