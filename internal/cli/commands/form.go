package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
)

// NewFormCommand creates the form command
func NewFormCommand() *cobra.Command {
	var recordPath string

	cmd := &cobra.Command{
		Use:   "form <model>",
		Short: "Derive the form definition for a model",
		Long: `Derive the ordered form field descriptors for one model. With --record,
values from the given JSON file pre-fill the descriptors, as an edit form
would be rendered.`,
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

			var record map[string]interface{}
			if recordPath != "" {
				data, err := os.ReadFile(recordPath)
				if err != nil {
					return fmt.Errorf("failed to read record file: %w", err)
				}
				if err := json.Unmarshal(data, &record); err != nil {
					return fmt.Errorf("failed to parse record file: %w", err)
				}
			}

			id, err := resolveModel(eng, args[0])
			if err != nil {
				return err
			}

			descriptors, err := eng.DeriveFormDefinition(id, record)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(descriptors, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "JSON file with an existing record to pre-fill values")

	return cmd
}
