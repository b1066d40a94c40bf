// Package envrun executes pipeline environments: it installs an
// environment's tool dependencies, runs its command sequence in order,
// applies the advisory-tool policy, and performs coverage
// post-processing for coverage environments.
//
// Failure semantics (the orchestrator contract):
//   - Dependency installation failure is FATAL: the environment's
//     commands never run and the error carries ExitDepsError.
//   - In a normal environment, the first command that exits non-zero
//     stops the run and fails it.
//   - In an advisory environment, every command runs to completion and
//     the run reports success regardless of findings. The per-command
//     exit codes are still recorded in the result so output formatters
//     can show what the tools found.
package envrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/coverage"
	"github.com/enmaas/burmake/internal/execx"
	"github.com/enmaas/burmake/internal/model"
)

// toolsDirName is the workspace-relative directory tool dependencies are
// installed into. It is prepended to PATH for every environment command,
// so pinned tool versions shadow whatever is installed globally.
const toolsDirName = ".burmake/bin"

// ToolsDir returns the absolute tools directory for a workspace. Tool
// dependencies are installed here and the directory is prepended to
// PATH for every environment command, so pinned tool versions shadow
// whatever is installed globally.
func ToolsDir(workspace string) string {
	return filepath.Join(workspace, filepath.FromSlash(toolsDirName))
}

// ContainerRunner executes a command inside a container with the
// workspace bind-mounted. Implemented by internal/dockerrun; declared
// here as an interface so the runner can be tested without a Docker
// daemon.
type ContainerRunner interface {
	Run(ctx context.Context, spec *model.ContainerSpec, workspace string, env map[string]string, argv []string, stdout, stderr io.Writer) (int, error)
}

// Runner executes environments against a single workspace.
type Runner struct {
	pipeline  *config.Pipeline
	workspace string

	// containers executes containerized environments. May be nil, in
	// which case selecting a containerized environment is an error.
	containers ContainerRunner

	// stdout and stderr receive tool output. Defaults to the process
	// streams when nil.
	stdout io.Writer
	stderr io.Writer

	// verbose receives progress messages. No-op when nil.
	verbose func(format string, args ...any)

	// reportHTML renders the combined profile. Swappable in tests so the
	// runner's coverage flow can be verified without invoking the Go
	// toolchain against synthetic profiles.
	reportHTML func(ctx context.Context, workspace, profilePath, htmlPath string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithContainerRunner supplies the containerized execution backend.
func WithContainerRunner(cr ContainerRunner) Option {
	return func(r *Runner) { r.containers = cr }
}

// WithOutput redirects tool output, primarily for tests.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) { r.stdout, r.stderr = stdout, stderr }
}

// WithVerboseLog supplies a progress logging function.
func WithVerboseLog(log func(format string, args ...any)) Option {
	return func(r *Runner) { r.verbose = log }
}

// NewRunner creates a Runner for the given pipeline and absolute
// workspace root.
func NewRunner(pipeline *config.Pipeline, workspace string, opts ...Option) *Runner {
	r := &Runner{
		pipeline:   pipeline,
		workspace:  workspace,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		verbose:    func(string, ...any) {},
		reportHTML: coverage.WriteHTML,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the environment named by selector (aliases allowed) with
// the given pass-through arguments.
//
// The returned EnvResult is non-nil whenever commands were started, even
// on failure, so callers can report partial progress.
func (r *Runner) Run(ctx context.Context, selector string, posargs []string) (*model.EnvResult, error) {
	env, err := r.pipeline.Lookup(selector)
	if err != nil {
		return nil, err
	}

	if env.Container != nil && r.containers == nil {
		return nil, model.NewCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("environment %q requires containerized execution, which is not available", env.Name))
	}

	// Step 1: Install tool dependencies. A failed install is fatal and
	// surfaced immediately — running commands against missing or
	// half-installed tools produces misleading results.
	if err := r.installDeps(ctx, env); err != nil {
		return nil, err
	}

	// Step 2: Prepare the coverage data directory for coverage
	// environments, clearing stale partial profiles from earlier runs.
	coverDir := filepath.Join(r.workspace, r.pipeline.Coverage.DataDir)
	if env.Coverage {
		if err := r.resetCoverDir(coverDir); err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				"failed to prepare coverage data directory", err)
		}
	}

	vars := map[string]string{
		"workspace": r.workspace,
		"coverdir":  coverDir,
	}

	result := &model.EnvResult{Name: env.Name, Advisory: env.Advisory}

	// Step 3: Run the command sequence in order.
	for _, command := range env.Commands {
		argv := ExpandCommand(command, posargs, vars)
		if len(argv) == 0 {
			continue
		}

		r.verbose("[%s] %s", env.Name, strings.Join(argv, " "))

		start := time.Now()
		code, err := r.runCommand(ctx, env, argv)
		if err != nil {
			// The command could not be started at all (missing binary,
			// cancelled context). This is an invocation failure, not a
			// finding — it fails even advisory environments.
			return result, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("environment %q: command %q could not be run", env.Name, argv[0]), err)
		}

		result.Commands = append(result.Commands, model.CommandResult{
			Command:  strings.Join(argv, " "),
			ExitCode: code,
			Duration: time.Since(start),
		})

		if code != 0 && !env.Advisory {
			return result, model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("environment %q: command %q exited with code %d", env.Name, strings.Join(argv, " "), code))
		}
	}

	// Step 4: Coverage post-processing — combine the parallel partial
	// profiles into one and render the HTML report.
	if env.Coverage {
		profile := filepath.Join(coverDir, r.pipeline.Coverage.Profile)
		n, err := coverage.Combine(coverDir, profile)
		if err != nil {
			return result, model.WrapCLIError(model.ExitGeneralError,
				"failed to combine coverage profiles", err)
		}
		r.verbose("[%s] combined %d coverage profiles into %s", env.Name, n, profile)

		htmlPath := filepath.Join(r.workspace, r.pipeline.Coverage.HTML)
		if err := r.reportHTML(ctx, r.workspace, profile, htmlPath); err != nil {
			return result, model.WrapCLIError(model.ExitGeneralError,
				"failed to render coverage report", err)
		}
		r.verbose("[%s] coverage report written to %s", env.Name, htmlPath)
	}

	return result, nil
}

// runCommand dispatches one command to the host or to a container,
// depending on the environment definition.
func (r *Runner) runCommand(ctx context.Context, env *model.Environment, argv []string) (int, error) {
	if env.Container != nil {
		return r.containers.Run(ctx, env.Container, r.workspace, env.Env, argv, r.stdout, r.stderr)
	}

	return execx.Run(ctx, execx.Options{
		Dir:    r.workspace,
		Env:    r.commandEnv(env),
		Stdout: r.stdout,
		Stderr: r.stderr,
	}, argv[0], argv[1:]...)
}

// commandEnv builds the extra environment variables for host commands:
// the environment's own variables plus a PATH that prefers the workspace
// tools directory.
func (r *Runner) commandEnv(env *model.Environment) map[string]string {
	merged := make(map[string]string, len(env.Env)+1)
	for k, v := range env.Env {
		merged[k] = v
	}
	toolsDir := ToolsDir(r.workspace)
	merged["PATH"] = toolsDir + string(os.PathListSeparator) + os.Getenv("PATH")
	return merged
}

// installDeps installs the environment's tool dependencies into the
// workspace tools directory via "go install". Any failure is fatal for
// the environment run.
func (r *Runner) installDeps(ctx context.Context, env *model.Environment) error {
	if len(env.Deps) == 0 {
		return nil
	}

	toolsDir := ToolsDir(r.workspace)
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitDepsError,
			"failed to create tools directory", err)
	}

	for _, dep := range env.Deps {
		r.verbose("[%s] installing %s", env.Name, dep)

		code, err := execx.Run(ctx, execx.Options{
			Dir:    r.workspace,
			Env:    map[string]string{"GOBIN": toolsDir},
			Stdout: r.stdout,
			Stderr: r.stderr,
		}, "go", "install", dep)
		if err != nil {
			return model.WrapCLIError(model.ExitDepsError,
				fmt.Sprintf("environment %q: failed to install %s", env.Name, dep), err)
		}
		if code != 0 {
			return model.NewCLIError(model.ExitDepsError,
				fmt.Sprintf("environment %q: go install %s exited with code %d", env.Name, dep, code))
		}
	}

	return nil
}

// resetCoverDir creates the coverage data directory and removes stale
// partial profiles so a fresh run never merges old data.
func (r *Runner) resetCoverDir(coverDir string) error {
	if err := os.MkdirAll(coverDir, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(coverDir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".out") {
			continue
		}
		if err := os.Remove(filepath.Join(coverDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
