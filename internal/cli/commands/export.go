package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
)

// NewExportCommand creates the export command
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <model>",
		Short: "Export a model's payload shape as JSON Schema",
		Long: `Export a JSON Schema document describing valid payloads for one model.
The document reflects the same rule set the validation deriver produces,
so external validators agree with in-process validation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			eng, err := NewEngine(cfg)
			if err != nil {
				return err
			}

			id, err := resolveModel(eng, args[0])
			if err != nil {
				return err
			}

			schema, err := eng.ExportJSONSchema(id)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(schema, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	return cmd
}
