// run.go executes one environment command inside a disposable container.
//
// Each command gets its own "docker run --rm" invocation with the
// workspace bind-mounted at the configured working directory. Containers
// are never reused between commands: tool state must come from the
// workspace, not from container layers, so a pipeline run is reproducible
// on any host with the same image.
package dockerrun

import (
	"context"
	"io"
	"sort"

	"github.com/enmaas/burmake/internal/execx"
	"github.com/enmaas/burmake/internal/model"
)

// defaultWorkdir is the workspace mount point used when the container
// spec does not set one.
const defaultWorkdir = "/workspace"

// Runner executes environment commands in containers. It implements the
// envrun.ContainerRunner interface.
type Runner struct {
	cli *Client
}

// NewRunner creates a containerized command runner after verifying the
// Docker daemon is reachable. The daemon check happens here, at wiring
// time, so a stopped daemon surfaces before any pipeline stage runs.
func NewRunner(ctx context.Context) (*Runner, error) {
	cli, err := NewClient()
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return &Runner{cli: cli}, nil
}

// Close releases the underlying Docker client.
func (r *Runner) Close() error {
	return r.cli.Close()
}

// Run executes argv inside a disposable container with the workspace
// bind-mounted. The command's exit code is propagated unchanged, so the
// advisory-tool policy applies identically to containerized environments.
func (r *Runner) Run(ctx context.Context, spec *model.ContainerSpec, workspace string, env map[string]string, argv []string, stdout, stderr io.Writer) (int, error) {
	args := buildRunArgs(spec, workspace, env, argv)

	return execx.Run(ctx, execx.Options{
		Dir:    workspace,
		Stdout: stdout,
		Stderr: stderr,
	}, "docker", args...)
}

// buildRunArgs constructs the docker run argument vector. --rm removes
// the container as soon as the command exits; the bind mount makes
// command output (coverage profiles, dist artifacts) land in the
// workspace. Environment variables are emitted in sorted order so the
// invocation is deterministic.
func buildRunArgs(spec *model.ContainerSpec, workspace string, env map[string]string, argv []string) []string {
	workdir := spec.Workdir
	if workdir == "" {
		workdir = defaultWorkdir
	}

	args := make([]string, 0, len(argv)+len(env)*2+8)
	args = append(args, "run", "--rm",
		"-v", workspace+":"+workdir,
		"-w", workdir,
	)

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+env[k])
	}

	args = append(args, spec.Image)
	args = append(args, argv...)
	return args
}
