// Package release drives the gated release pipeline: TEST, then BUILD,
// then PACKAGE. The stages run strictly in order and each gates the
// next, so a failed test run never produces build output and a failed
// build never produces a package.
package release

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/execx"
	"github.com/enmaas/burmake/internal/model"
)

// testFailedMessage is the exact message printed when the TEST stage
// fails. Downstream automation greps for it, so it must not change.
const testFailedMessage = "unit tests failed, aborting release"

// sourceExcludes lists top-level workspace entries that never belong in
// a source archive: VCS metadata, generated output, and the tool cache.
var sourceExcludes = []string{".git", ".burmake", "build"}

// EnvRunner runs a named environment's command sequence. It is the
// seam between the release driver and the environment runner, and lets
// tests substitute a fake.
type EnvRunner interface {
	Run(ctx context.Context, selector string, posargs []string) (*model.EnvResult, error)
}

// buildFunc compiles and archives the workspace. Overridable in tests
// so the driver can be exercised without a Go toolchain.
type buildFunc func(ctx context.Context, d *Driver) error

// Driver executes the release pipeline against a workspace.
type Driver struct {
	pipeline  *config.Pipeline
	workspace string
	runner    EnvRunner
	fetcher   Fetcher
	build     buildFunc

	out     io.Writer
	verbose func(format string, args ...any)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithFetcher replaces the artifact fetcher.
func WithFetcher(f Fetcher) DriverOption {
	return func(d *Driver) { d.fetcher = f }
}

// WithDriverOutput redirects stage progress output.
func WithDriverOutput(out io.Writer) DriverOption {
	return func(d *Driver) { d.out = out }
}

// WithDriverVerboseLog supplies a progress logging function.
func WithDriverVerboseLog(log func(format string, args ...any)) DriverOption {
	return func(d *Driver) { d.verbose = log }
}

// withBuildFunc replaces the build stage implementation. Test-only.
func withBuildFunc(fn buildFunc) DriverOption {
	return func(d *Driver) { d.build = fn }
}

// NewDriver constructs a release driver. The workspace must be the
// absolute project root the pipeline configuration was loaded from.
func NewDriver(pipeline *config.Pipeline, workspace string, runner EnvRunner, opts ...DriverOption) *Driver {
	d := &Driver{
		pipeline:  pipeline,
		workspace: workspace,
		runner:    runner,
		fetcher:   NewHTTPFetcher(),
		build:     runBuild,
		out:       os.Stdout,
		verbose:   func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes the full pipeline. A TEST failure prints the fixed
// abort message and returns a general error without touching the later
// stages; every subsequent stage failure also aborts the pipeline.
func (d *Driver) Run(ctx context.Context) error {
	// Stage 1: TEST.
	fmt.Fprintf(d.out, "[%s] running environment %q\n", model.StageTest, d.pipeline.Release.TestEnv)
	res, err := d.runner.Run(ctx, d.pipeline.Release.TestEnv, nil)
	if err != nil && res == nil {
		// The environment never ran: misconfiguration or a failed tool
		// install. That is not a test verdict, so its error passes
		// through with its own exit code.
		return err
	}
	if err != nil || res.Failed() {
		fmt.Fprintln(d.out, testFailedMessage)
		return model.NewCLIError(model.ExitGeneralError, testFailedMessage)
	}

	// Stage 2: BUILD.
	fmt.Fprintf(d.out, "[%s] compiling %s\n", model.StageBuild, d.pipeline.Release.Binary)
	if err := d.build(ctx, d); err != nil {
		return err
	}

	// Stage 3: PACKAGE.
	fmt.Fprintf(d.out, "[%s] assembling %s\n", model.StagePackage, d.pipeline.Release.ArchiveName)
	return d.Package(ctx)
}

// distDir returns the absolute distribution directory. All release
// output lands here regardless of the process working directory.
func (d *Driver) distDir() string {
	return filepath.Join(d.workspace, d.pipeline.Release.DistDir)
}

// Build runs the BUILD stage on its own: compile the project binary
// into the distribution directory and archive the source tree next to
// it.
func (d *Driver) Build(ctx context.Context) error {
	return d.build(ctx, d)
}

func runBuild(ctx context.Context, d *Driver) error {
	rel := d.pipeline.Release
	dist := d.distDir()
	if err := os.MkdirAll(dist, 0o755); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to create distribution directory", err)
	}

	if goVersion, err := execx.Capture(ctx, d.workspace, "go", "version"); err == nil {
		d.verbose("toolchain: %s", goVersion)
	}

	binPath := filepath.Join(dist, rel.Binary)
	d.verbose("building %s from %s", binPath, rel.MainPackage)
	code, err := execx.Run(ctx, execx.Options{Dir: d.workspace, Stdout: d.out, Stderr: d.out},
		"go", "build", "-o", binPath, rel.MainPackage)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to run go build", err)
	}
	if code != 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("go build exited with status %d", code))
	}

	srcArchive := filepath.Join(dist, rel.SourceArchive)
	d.verbose("archiving source tree to %s", srcArchive)
	excludes := append([]string{rel.DistDir, d.pipeline.Coverage.DataDir}, sourceExcludes...)
	if err := TarGz(d.workspace, srcArchive, excludes...); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to archive source tree", err)
	}
	return nil
}

// Package runs the PACKAGE stage on its own: fetch the published
// artifact into the distribution directory and archive the result. The
// artifact URL and version must be configured; packaging refuses to
// guess them.
func (d *Driver) Package(ctx context.Context) error {
	rel := d.pipeline.Release
	if rel.Artifact.URL == "" || rel.Artifact.Version == "" {
		return model.NewCLIError(model.ExitConfigError,
			"release.artifact.url and release.artifact.version must be set to package a release")
	}

	dist := d.distDir()
	stageDir := filepath.Join(dist, rel.Artifact.Name)
	destPath := filepath.Join(stageDir, rel.Artifact.FileName())

	url := rel.Artifact.ResolveURL()
	d.verbose("fetching %s to %s", url, destPath)
	if err := d.fetcher.Fetch(ctx, url, destPath, rel.Artifact.SHA256); err != nil {
		return err
	}

	archivePath := filepath.Join(dist, rel.ArchiveName)
	d.verbose("archiving %s to %s", stageDir, archivePath)
	if err := TarGz(stageDir, archivePath); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to archive release package", err)
	}
	return nil
}
