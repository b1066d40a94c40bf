// Package cli — validate.go implements the "burmake validate" command.
//
// The validate command loads the pipeline configuration and reports
// whether it is usable, without running anything. It is meant for CI
// and for checking a config edit before the next pipeline run.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the "validate" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the pipeline configuration",
		Long: `Discover and load the pipeline configuration, validate it, and report
the workspace root and configuration file in use. Nothing is executed.

Exits non-zero with a config error when the configuration is invalid.

Examples:
  burmake validate
  burmake validate -C ./subproject --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			// Load performs discovery, parsing, and validation; an error
			// here already carries ExitConfigError.
			ws, err := loadWorkspace()
			if err != nil {
				return err
			}

			if IsJSONOutput() {
				result := map[string]interface{}{
					"valid":        true,
					"root":         ws.Root,
					"configPath":   ws.ConfigPath,
					"environments": len(ws.Pipeline.Environments),
				}
				data, _ := json.MarshalIndent(result, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if ws.ConfigPath != "" {
				fmt.Printf("Configuration %s is valid (%d environments).\n",
					ws.ConfigPath, len(ws.Pipeline.Environments))
			} else {
				fmt.Printf("No configuration file found; built-in defaults are in effect (%d environments).\n",
					len(ws.Pipeline.Environments))
			}
			return nil
		},
	}
}
