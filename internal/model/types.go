// Package model defines the domain types for the burmake CLI.
//
// All entities in this package represent pipeline configuration and results:
// named environments (dependency set + command sequence), the release
// pipeline stages, and the documentation generator settings. These types are
// pure data structures with no external dependencies; they are populated by
// the internal/config loader and consumed by the runner packages.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Environment is a named, isolated task definition: a dependency set plus a
// fixed command sequence. It is the primary unit the orchestrator operates
// on — "burmake run <name>" installs the environment's deps and executes its
// commands in order.
type Environment struct {
	// Name is the unique identifier for this environment.
	// Must contain only alphanumeric characters and hyphens.
	Name string `json:"name" yaml:"name"`

	// Description is a one-line summary shown by "burmake list".
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Deps lists tool dependencies installed before the commands run,
	// as "module/path/cmd/tool@version" strings passed to "go install".
	// An installation failure is fatal: the environment's commands never
	// run and the error is surfaced to the caller.
	Deps []string `json:"deps,omitempty" yaml:"deps,omitempty"`

	// Commands is the fixed command sequence executed in order. Each entry
	// is tokenized on whitespace (no shell interpretation). The literal
	// token "{posargs}" is replaced by the pass-through arguments given
	// after "--" on the command line.
	Commands []string `json:"commands" yaml:"commands"`

	// Advisory marks the environment's tools as advisory-only: every
	// command runs to completion and the environment reports success even
	// when a tool exits non-zero. Used for style, lint, and security
	// environments whose findings must never fail the pipeline.
	Advisory bool `json:"advisory,omitempty" yaml:"advisory,omitempty"`

	// Env holds extra environment variables set for every command.
	Env map[string]string `json:"env,omitempty" yaml:"env,omitempty"`

	// Coverage enables coverage post-processing: after all commands have
	// run, the partial coverage profiles written under the coverage data
	// directory are combined into a single profile and rendered to HTML.
	Coverage bool `json:"coverage,omitempty" yaml:"coverage,omitempty"`

	// Container optionally names a Docker image. When set, the
	// environment's commands run inside a disposable container with the
	// workspace bind-mounted, instead of directly on the host.
	Container *ContainerSpec `json:"container,omitempty" yaml:"container,omitempty"`
}

// ContainerSpec describes the container an environment's commands run in.
type ContainerSpec struct {
	// Image is the Docker image reference (e.g., "golang:1.25").
	Image string `json:"image" yaml:"image"`

	// Workdir is the mount point for the workspace inside the container.
	// Defaults to /workspace when empty.
	Workdir string `json:"workdir,omitempty" yaml:"workdir,omitempty"`
}

// nameRegex validates environment names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateName checks if the given name is a valid environment name.
// Valid names contain only alphanumeric characters and hyphens,
// and must start/end with an alphanumeric character.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid environment name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// Validate checks the environment definition for structural problems.
// It does not verify that the referenced tools exist — that is deferred
// to execution time.
func (e *Environment) Validate() error {
	if err := ValidateName(e.Name); err != nil {
		return err
	}
	if len(e.Commands) == 0 {
		return fmt.Errorf("environment %q: must define at least one command", e.Name)
	}
	for i, c := range e.Commands {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("environment %q: command %d is empty", e.Name, i+1)
		}
	}
	if e.Container != nil && e.Container.Image == "" {
		return fmt.Errorf("environment %q: container image must not be empty", e.Name)
	}
	return nil
}

// CommandResult records the outcome of a single command within an
// environment run. Advisory environments keep running after failures,
// so a run produces one result per command regardless of exit codes.
type CommandResult struct {
	// Command is the command line as executed (after posargs substitution).
	Command string `json:"command"`

	// ExitCode is the command's process exit code. Zero means success.
	ExitCode int `json:"exitCode"`

	// Duration is the wall-clock time the command took.
	Duration time.Duration `json:"duration"`
}

// EnvResult is the aggregate outcome of running one environment.
type EnvResult struct {
	// Name is the environment that was run.
	Name string `json:"name"`

	// Advisory mirrors the environment's advisory flag, so output
	// formatters can annotate findings that did not fail the run.
	Advisory bool `json:"advisory"`

	// Commands holds one entry per executed command, in execution order.
	Commands []CommandResult `json:"commands"`
}

// Failed reports whether any command in the run exited non-zero.
// For advisory environments this can be true even though the run as a
// whole still reports success to the caller.
func (r *EnvResult) Failed() bool {
	for _, c := range r.Commands {
		if c.ExitCode != 0 {
			return true
		}
	}
	return false
}

// ReleaseStage identifies a stage of the release pipeline.
// The pipeline is strictly linear: Test → Build → Package, each stage
// terminal on failure.
type ReleaseStage string

const (
	// StageTest runs the unit test environment. This is the gated stage:
	// a failure prints a fixed message and stops the pipeline with exit
	// code 1, never reaching Build or Package.
	StageTest ReleaseStage = "test"

	// StageBuild produces the compiled binary and the source archive
	// into the dist directory.
	StageBuild ReleaseStage = "build"

	// StagePackage fetches the configured external artifact into a dist
	// subdirectory and produces the final tar.gz archive.
	StagePackage ReleaseStage = "package"
)

// String returns the string representation of ReleaseStage.
func (s ReleaseStage) String() string {
	return string(s)
}

// ExitCode defines standard CLI exit codes. These codes form the
// operational contract with CI systems and scripts invoking burmake.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred. The gated
	// release test stage also uses this code, as required by the pipeline
	// contract.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the pipeline configuration file is
	// missing required values, malformed, or fails validation.
	ExitConfigError ExitCode = 2

	// ExitDepsError indicates an environment's tool dependencies could
	// not be installed. Dependency installation failure is always fatal.
	ExitDepsError ExitCode = 3

	// ExitFetchError indicates the external artifact could not be
	// downloaded or failed checksum verification.
	ExitFetchError ExitCode = 4

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// while a containerized environment was requested.
	ExitDockerNotRunning ExitCode = 5

	// ExitEnvNotFound indicates the requested environment name does not
	// exist in the pipeline configuration.
	ExitEnvNotFound ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
