// Package model defines the domain types and value objects for the
// burmake CLI.
//
// This package contains pure data structures with no external dependencies:
// environment definitions (Environment, ContainerSpec), run results
// (EnvResult, CommandResult), and the release pipeline stages.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
