package commands

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
)

// NewRulesCommand creates the rules command
func NewRulesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rules <model>",
		Short: "Derive validation rules for a model",
		Long: `Derive the field-keyed validation rule set for one model: type-implied
rules merged with explicitly declared ones, plus existence checks for
required relationships.`,
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

			ruleSet, err := eng.DeriveValidationRules(id)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(ruleSet, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			model, err := eng.Model(id)
			if err != nil {
				return err
			}

			fieldColor := color.New(color.FgCyan, color.Bold)
			for _, field := range model.FieldsInOrder() {
				set, ok := ruleSet[field.Name]
				if !ok {
					continue
				}
				fieldColor.Fprintf(cmd.OutOrStdout(), "%s:\n", field.Name)
				for _, rule := range set {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", rule.String())
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}
