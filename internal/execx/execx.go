// Package execx provides external process invocation for the burmake CLI.
//
// Every pipeline step ultimately runs an external tool (go, staticcheck,
// gosec, docker, a documenter). This package is the single place such
// invocations happen, so that directory handling, environment injection,
// and exit code extraction behave identically across all steps.
//
// Design decisions:
//   - Commands always receive an explicit absolute working directory via
//     exec.Cmd.Dir. The burmake process's own working directory is never
//     changed, so pipeline stages cannot leak directory state into each
//     other.
//   - No shell interpretation. Arguments are passed as an argv vector,
//     which keeps command definitions predictable across platforms.
//   - Exit codes are extracted from exec.ExitError so callers can apply
//     the advisory-tool policy (run everything, ignore findings) without
//     string-matching error text.
package execx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options controls how a command is executed.
type Options struct {
	// Dir is the working directory for the command. Must be an absolute
	// path — relative paths would reintroduce the ambient working
	// directory coupling this package exists to eliminate.
	Dir string

	// Env holds extra environment variables set for the command, merged
	// over the current process environment.
	Env map[string]string

	// Stdout and Stderr receive the command's output streams. When nil,
	// the corresponding stream is discarded.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes a command and returns its exit code.
//
// The returned error is non-nil only when the command could not be started
// at all (binary not found, directory missing, context cancelled). A
// command that starts and exits non-zero returns (exitCode, nil) — callers
// decide whether a non-zero exit is a failure, because advisory tools must
// never fail the pipeline regardless of findings.
func Run(ctx context.Context, opts Options, name string, args ...string) (int, error) {
	if !filepath.IsAbs(opts.Dir) {
		return 0, fmt.Errorf("execx: working directory must be absolute, got %q", opts.Dir)
	}

	// #nosec G204 — argv comes from the validated pipeline configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	// Inherit the current process environment and add any extra variables.
	// os.Environ() returns a copy, so modifications don't affect this process.
	cmd.Env = os.Environ()
	for k, v := range opts.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// An ExitError means the process ran and exited non-zero — report the
	// code and let the caller apply its failure policy.
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}

	// Anything else (ENOENT, permission, cancelled context) is a genuine
	// invocation failure.
	return 0, fmt.Errorf("failed to run %s: %w", name, err)
}

// Capture executes a command and returns its trimmed stdout output.
//
// Unlike Run, a non-zero exit is reported as an error, with the command's
// stderr included in the message for diagnostics. This mirrors how version
// control and tool queries are typically consumed: the output only makes
// sense when the command succeeded.
func Capture(ctx context.Context, dir string, name string, args ...string) (string, error) {
	if !filepath.IsAbs(dir) {
		return "", fmt.Errorf("execx: working directory must be absolute, got %q", dir)
	}

	// #nosec G204 — argv comes from the validated pipeline configuration
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	// Capture stdout and stderr separately so we can include stderr
	// in error messages while returning stdout on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// LookPath reports whether the named binary is resolvable, either through
// PATH or as an explicit path. Used to surface "tool not installed" errors
// before a multi-command environment starts running.
func LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("required tool %q not found in PATH: %w", name, err)
	}
	return nil
}
