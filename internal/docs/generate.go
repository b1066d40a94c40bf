// Package docs invokes the external API documenter. burmake owns none
// of the rendering; it assembles the documenter's command line from the
// pipeline configuration, installs the tool when it is missing, and
// runs it against the workspace.
package docs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/envrun"
	"github.com/enmaas/burmake/internal/execx"
	"github.com/enmaas/burmake/internal/model"
)

// Generator runs the configured documenter against a workspace.
type Generator struct {
	cfg       config.DocsConfig
	workspace string

	stdout  io.Writer
	stderr  io.Writer
	verbose func(format string, args ...any)
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput redirects the documenter's output streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(g *Generator) {
		g.stdout = stdout
		g.stderr = stderr
	}
}

// WithVerboseLog supplies a progress logging function.
func WithVerboseLog(log func(format string, args ...any)) Option {
	return func(g *Generator) { g.verbose = log }
}

// NewGenerator constructs a documentation generator for the workspace.
func NewGenerator(cfg config.DocsConfig, workspace string, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		workspace: workspace,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		verbose:   func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Args returns the full documenter invocation, tool name first. The
// output directory is resolved against the workspace so the documenter
// writes to the same place regardless of the process working directory.
func (g *Generator) Args() []string {
	args := []string{g.cfg.Tool, "-gen", "-dir", filepath.Join(g.workspace, g.cfg.Output)}
	if !g.cfg.Graph {
		// Relation pages (uses, implementations) are the expensive part
		// of generation; skip them when the graph is not wanted.
		args = append(args, "-nouses")
	}
	args = append(args, g.cfg.ExtraArgs...)
	return append(args, g.cfg.Source)
}

// Generate runs the documenter. When the tool is not on PATH and a dep
// spec is configured, it is installed into the workspace tools
// directory first.
func (g *Generator) Generate(ctx context.Context) error {
	toolsDir := envrun.ToolsDir(g.workspace)

	if err := g.ensureTool(ctx, toolsDir); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(g.workspace, g.cfg.Output), 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			"failed to create documentation output directory", err)
	}

	argv := g.Args()
	g.verbose("generating documentation: %v", argv)

	code, err := execx.Run(ctx, execx.Options{
		Dir:    g.workspace,
		Env:    map[string]string{"PATH": toolsDir + string(os.PathListSeparator) + os.Getenv("PATH")},
		Stdout: g.stdout,
		Stderr: g.stderr,
	}, argv[0], argv[1:]...)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to run documenter %s", g.cfg.Tool), err)
	}
	if code != 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("documenter %s exited with code %d", g.cfg.Tool, code))
	}
	return nil
}

// ensureTool installs the documenter when it is neither on PATH nor in
// the workspace tools directory.
func (g *Generator) ensureTool(ctx context.Context, toolsDir string) error {
	if execx.LookPath(g.cfg.Tool) == nil {
		return nil
	}
	if _, err := os.Stat(filepath.Join(toolsDir, g.cfg.Tool)); err == nil {
		return nil
	}
	if g.cfg.Dep == "" {
		return model.NewCLIError(model.ExitDepsError,
			fmt.Sprintf("documenter %s is not installed and no dep is configured for it", g.cfg.Tool))
	}

	g.verbose("installing documenter %s", g.cfg.Dep)
	if err := os.MkdirAll(toolsDir, 0o755); err != nil {
		return model.WrapCLIError(model.ExitDepsError, "failed to create tools directory", err)
	}
	code, err := execx.Run(ctx, execx.Options{
		Dir:    g.workspace,
		Env:    map[string]string{"GOBIN": toolsDir},
		Stdout: g.stdout,
		Stderr: g.stderr,
	}, "go", "install", g.cfg.Dep)
	if err != nil {
		return model.WrapCLIError(model.ExitDepsError,
			fmt.Sprintf("failed to install documenter %s", g.cfg.Dep), err)
	}
	if code != 0 {
		return model.NewCLIError(model.ExitDepsError,
			fmt.Sprintf("go install %s exited with code %d", g.cfg.Dep, code))
	}
	return nil
}
