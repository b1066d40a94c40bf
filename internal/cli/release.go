// Package cli — release.go implements the "burmake release" command.
//
// The release command runs the full release pipeline: TEST, BUILD, and
// PACKAGE, in strict order. Each stage gates the next — a test failure
// aborts before any build output exists, and a build failure aborts
// before packaging.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/enmaas/burmake/internal/dockerrun"
	"github.com/enmaas/burmake/internal/envrun"
	"github.com/enmaas/burmake/internal/release"
)

// NewReleaseCommand creates the "release" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewReleaseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Run the release pipeline (test, build, package)",
		Long: `Run the release pipeline: execute the configured test environment,
compile the project binary and archive its source into the distribution
directory, then fetch the published artifact and assemble the final
release archive.

A test failure terminates the pipeline immediately; the build and
package stages never run. The artifact name, version, and URL come from
the release section of the pipeline configuration.

Examples:
  burmake release
  burmake release --verbose`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd.Context())
		},
	}
}

// runRelease is the main logic function for the release command.
func runRelease(ctx context.Context) error {
	// Step 1: Discover and load the pipeline configuration.
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	// Step 2: Build the environment runner the TEST stage drives. When
	// the configured test environment is containerized, attach the
	// Docker backend so it can run.
	opts := []envrun.Option{envrun.WithVerboseLog(VerboseLog)}
	if env, err := ws.Pipeline.Lookup(ws.Pipeline.Release.TestEnv); err == nil && env.Container != nil {
		backend, err := dockerrun.NewRunner(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = backend.Close() }()
		opts = append(opts, envrun.WithContainerRunner(backend))
	}
	runner := envrun.NewRunner(ws.Pipeline, ws.Root, opts...)

	// Step 3: Run the three stages in order.
	driver := release.NewDriver(ws.Pipeline, ws.Root, runner,
		release.WithDriverVerboseLog(VerboseLog))
	return driver.Run(ctx)
}
