package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
	"github.com/modelforge-dev/modelforge/internal/cli/ui"
)

// NewStatsCommand creates the stats command
func NewStatsCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the metadata graph",
		Long:  "Build the metadata graph and print model, field, and relationship counts plus the dependency order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			eng, err := NewEngine(cfg)
			if err != nil {
				return err
			}

			stats, err := eng.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Header(out, "Metadata graph", noColor)

			table := ui.NewKeyValueTable(out, noColor)
			table.AddRow("Models", strconv.Itoa(stats.Models))
			table.AddRow("Fields", strconv.Itoa(stats.Fields))
			table.AddRow("Relationships", strconv.Itoa(stats.Relationships))
			table.AddRow("Build ID", stats.BuildID)

			order, err := eng.DependencyOrder()
			if err != nil {
				// cycles make a total order impossible; counts above are
				// still useful, so report and move on
				table.AddRow("Dependency order", fmt.Sprintf("unavailable (%v)", err))
				table.Render()
				return nil
			}

			names := make([]string, len(order))
			for i, id := range order {
				names[i] = string(id)
			}
			table.AddRow("Dependency order", strings.Join(names, ", "))
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
