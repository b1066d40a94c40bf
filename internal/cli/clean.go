// Package cli — clean.go implements the "burmake clean" command.
//
// The clean command removes generated output: the distribution
// directory, coverage data and report, and the documentation output.
// "burmake run clean" dispatches here as well, so both spellings
// behave identically.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/enmaas/burmake/internal/model"
)

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove generated build, coverage, and documentation output",
		Long: `Remove generated output from the workspace: the distribution directory,
the coverage data directory and rendered report, and the documentation
output directory. Paths come from the pipeline configuration and resolve
against the workspace root.

Examples:
  burmake clean
  burmake clean -C ./subproject`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace()
			if err != nil {
				return err
			}
			return cleanWorkspace(ws)
		},
	}
}

// removeTargets deletes the given workspace-relative paths. Missing
// targets are not an error; clean is idempotent.
func removeTargets(root string, targets []string) error {
	for _, target := range targets {
		path := filepath.Join(root, target)
		VerboseLog("Removing %s", path)
		if err := os.RemoveAll(path); err != nil {
			return model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to remove %s", path), err)
		}
	}
	return nil
}
