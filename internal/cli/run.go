// Package cli — run.go implements the "burmake run" command.
//
// The run command executes one named environment: it installs the
// environment's tool dependencies, runs its command sequence in order,
// and reports the per-command results as text or JSON. The selectors
// "build", "docs", and "clean" are built-in pipeline steps rather than
// configured environments; they dispatch to the corresponding drivers.
//
// Arguments after "--" are passed through to the environment's commands
// via their {posargs} placeholder.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/docs"
	"github.com/enmaas/burmake/internal/dockerrun"
	"github.com/enmaas/burmake/internal/envrun"
	"github.com/enmaas/burmake/internal/model"
	"github.com/enmaas/burmake/internal/release"
)

// NewRunCommand creates the "run" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <environment> [-- args...]",
		Short: "Run a pipeline environment",
		Long: `Run one named environment from the pipeline configuration.

The environment's tool dependencies are installed first; a failed install
aborts the run. Commands then execute in order. Advisory environments
(style, lint, security) run every command and exit 0 regardless of
findings.

The selectors "build", "docs", and "clean" are built-in steps: "build"
compiles the project and archives its source, "docs" generates API
documentation, and "clean" removes generated output.

Examples:
  burmake run unit
  burmake run full
  burmake run lint
  burmake run unit -- -run TestBackup
  burmake run build`,

		Args: cobra.MinimumNArgs(1),

		// RunE returns an error to the root command's error handler.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args[0], args[1:])
		},
	}

	return cmd
}

// runRun is the main logic function for the run command.
// It loads the workspace, dispatches built-in selectors, and otherwise
// executes the selected environment.
func runRun(ctx context.Context, selector string, posargs []string) error {
	// Step 1: Discover and load the pipeline configuration.
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	// Step 2: Built-in selectors bypass the environment runner entirely.
	switch selector {
	case "build":
		driver := release.NewDriver(ws.Pipeline, ws.Root, nil,
			release.WithDriverVerboseLog(VerboseLog))
		return driver.Build(ctx)
	case "docs":
		gen := docs.NewGenerator(ws.Pipeline.Docs, ws.Root,
			docs.WithVerboseLog(VerboseLog))
		return gen.Generate(ctx)
	case "clean":
		return cleanWorkspace(ws)
	}

	// Step 3: Resolve the environment up front so the Docker backend is
	// only created (and the daemon only pinged) when the environment
	// actually runs in a container.
	env, err := ws.Pipeline.Lookup(selector)
	if err != nil {
		return err
	}

	opts := []envrun.Option{envrun.WithVerboseLog(VerboseLog)}
	if env.Container != nil {
		backend, err := dockerrun.NewRunner(ctx)
		if err != nil {
			return err // NewRunner already returns CLIError with ExitDockerNotRunning
		}
		// defer ensures the Docker client is closed when this function
		// returns, releasing the underlying HTTP connection.
		defer func() { _ = backend.Close() }()
		VerboseLog("Connected to Docker daemon")
		opts = append(opts, envrun.WithContainerRunner(backend))
	}

	// Step 4: Run the environment and report results. A non-nil result
	// is printed even on failure so the user sees how far the run got.
	runner := envrun.NewRunner(ws.Pipeline, ws.Root, opts...)
	res, runErr := runner.Run(ctx, selector, posargs)
	if res != nil {
		printRunResult(res)
	}
	return runErr
}

// printRunResult outputs the environment run result in text or JSON
// format, depending on the global --json flag.
func printRunResult(res *model.EnvResult) {
	if IsJSONOutput() {
		printRunResultJSON(res)
	} else {
		printRunResultText(res)
	}
}

// runCommandJSON is the JSON output structure for a single executed
// command in the run command's output.
type runCommandJSON struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exitCode"`
	DurationMs int64  `json:"durationMs"`
}

// printRunResultJSON outputs the run result as structured JSON.
func printRunResultJSON(res *model.EnvResult) {
	type resultJSON struct {
		Environment string           `json:"environment"`
		Advisory    bool             `json:"advisory"`
		Success     bool             `json:"success"`
		Commands    []runCommandJSON `json:"commands"`
	}

	result := resultJSON{
		Environment: res.Name,
		Advisory:    res.Advisory,
		Success:     !res.Failed(),
		// Use an empty slice instead of nil to ensure JSON output shows []
		// instead of null when no commands were run.
		Commands: make([]runCommandJSON, 0, len(res.Commands)),
	}
	for _, c := range res.Commands {
		result.Commands = append(result.Commands, runCommandJSON{
			Command:    c.Command,
			ExitCode:   c.ExitCode,
			DurationMs: c.Duration.Milliseconds(),
		})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printRunResultText outputs the run result as human-readable text:
// one line per executed command, then a summary line.
func printRunResultText(res *model.EnvResult) {
	for _, c := range res.Commands {
		status := "ok"
		if c.ExitCode != 0 {
			status = fmt.Sprintf("exit %d", c.ExitCode)
		}
		fmt.Printf("  %-8s %s (%s)\n", status, c.Command, c.Duration.Round(time.Millisecond))
	}
	fmt.Println(FormatRunSummary(res))
}

// FormatRunSummary renders the one-line outcome for an environment run.
//
// This function is exported for testing purposes (tested in run_test.go).
//
// Example:
//
//	unit: 2 commands, passed
//	lint: 3 commands, findings reported (advisory)
//	systemtest: 1 command, FAILED
func FormatRunSummary(res *model.EnvResult) string {
	noun := "commands"
	if len(res.Commands) == 1 {
		noun = "command"
	}

	outcome := "passed"
	if res.Failed() {
		if res.Advisory {
			outcome = "findings reported (advisory)"
		} else {
			outcome = "FAILED"
		}
	}
	return fmt.Sprintf("%s: %d %s, %s", res.Name, len(res.Commands), noun, outcome)
}

// cleanWorkspace removes the generated output directories: the dist
// directory, the coverage data directory, the rendered coverage report,
// and the documentation output. Paths resolve against the workspace
// root, never the process working directory.
func cleanWorkspace(ws *config.LoadResult) error {
	targets := CleanTargets(ws.Pipeline)
	return removeTargets(ws.Root, targets)
}

// CleanTargets returns the workspace-relative paths "clean" removes.
//
// This function is exported for testing purposes (tested in clean_test.go).
func CleanTargets(p *config.Pipeline) []string {
	return []string{
		p.Release.DistDir,
		p.Coverage.DataDir,
		p.Coverage.HTML,
		p.Docs.Output,
	}
}

// joinCommands renders a command list for display, one per line,
// indented.
func joinCommands(commands []string) string {
	var b strings.Builder
	for _, c := range commands {
		b.WriteString("    ")
		b.WriteString(c)
		b.WriteString("\n")
	}
	return b.String()
}
