package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/modelforge-dev/modelforge/internal/cli/config"
	"github.com/modelforge-dev/modelforge/internal/cli/ui"
	"github.com/modelforge-dev/modelforge/internal/derive/schema"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	var noColor bool
	var write bool

	cmd := &cobra.Command{
		Use:   "schema [model]",
		Short: "Derive schema change scripts",
		Long: `Derive the schema change script for one model, or for every model in
dependency order when no model is named. Pivot tables shared by two
many-to-many declarations appear once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			eng, err := NewEngine(cfg)
			if err != nil {
				return err
			}

			var scripts []*schema.Script
			if len(args) == 1 {
				id, err := resolveModel(eng, args[0])
				if err != nil {
					return err
				}
				scripts, err = eng.DeriveSchema(id)
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), ui.GraphBuildError(err.Error(), noColor))
					return err
				}
			} else {
				scripts, err = eng.DeriveAllSchemas()
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), ui.GraphBuildError(err.Error(), noColor))
					return err
				}
			}

			if write {
				return writeScripts(cmd, cfg, scripts, noColor)
			}

			for _, script := range scripts {
				fmt.Fprintln(cmd.OutOrStdout(), script.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&write, "write", false, "Write scripts to the configured schema directory")

	return cmd
}

// writeScripts writes one numbered file per script so the file order
// matches the dependency order the scripts were derived in.
func writeScripts(cmd *cobra.Command, cfg *config.Config, scripts []*schema.Script, noColor bool) error {
	dir := cfg.Output.SchemaDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create schema directory %s: %w", dir, err)
	}

	for i, script := range scripts {
		name := fmt.Sprintf("%03d_create_%s.schema", i+1, script.Table)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(script.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("wrote %d schema script(s) to %s", len(scripts), dir), noColor)
	return nil
}
