// Package cli — docs.go implements the "burmake docs" command.
//
// The docs command generates HTML API documentation by invoking the
// external documenter configured in the pipeline (golds by default).
// "burmake run docs" dispatches here as well.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/enmaas/burmake/internal/docs"
)

// NewDocsCommand creates the "docs" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDocsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "Generate HTML API documentation",
		Long: `Generate HTML API documentation for the workspace by invoking the
configured documenter. When the documenter is not installed, it is
installed into the workspace tools directory first.

The source pattern, output directory, and graph option come from the
docs section of the pipeline configuration.

Examples:
  burmake docs
  burmake docs --verbose`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace()
			if err != nil {
				return err
			}

			gen := docs.NewGenerator(ws.Pipeline.Docs, ws.Root,
				docs.WithVerboseLog(VerboseLog))
			return gen.Generate(cmd.Context())
		},
	}
}
