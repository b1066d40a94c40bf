package release

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/model"
)

// fakeEnvRunner records the selectors it ran and returns canned results.
type fakeEnvRunner struct {
	selectors []string
	result    *model.EnvResult
	err       error
}

func (f *fakeEnvRunner) Run(ctx context.Context, selector string, posargs []string) (*model.EnvResult, error) {
	f.selectors = append(f.selectors, selector)
	return f.result, f.err
}

// fakeFetcher writes canned bytes to the destination path.
type fakeFetcher struct {
	calls []string
	body  []byte
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url, destPath, sha256Hex string) error {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(destPath, f.body, 0o644)
}

func passingResult(name string) *model.EnvResult {
	return &model.EnvResult{
		Name:     name,
		Commands: []model.CommandResult{{Command: "go test ./...", ExitCode: 0}},
	}
}

func releasePipeline(t *testing.T) *config.Pipeline {
	t.Helper()
	p := config.Default()
	p.Release.Artifact.URL = "https://artifacts.example.com/{name}-{version}.tar.gz"
	p.Release.Artifact.Version = "1.4.2"
	return p
}

func TestDriver_RunsStagesInOrder(t *testing.T) {
	workspace := t.TempDir()
	p := releasePipeline(t)
	runner := &fakeEnvRunner{result: passingResult("unit")}
	fetcher := &fakeFetcher{body: []byte("artifact")}

	var stages []string
	d := NewDriver(p, workspace, runner,
		WithFetcher(fetcher),
		WithDriverOutput(io.Discard),
		withBuildFunc(func(ctx context.Context, d *Driver) error {
			stages = append(stages, "build")
			return nil
		}))

	require.NoError(t, d.Run(context.Background()))

	assert.Equal(t, []string{"unit"}, runner.selectors)
	assert.Equal(t, []string{"build"}, stages)
	assert.Len(t, fetcher.calls, 1)
	assert.FileExists(t, filepath.Join(workspace, "dist", "bur-packaged.tar.gz"))
}

func TestDriver_TestFailureAbortsWithFixedMessage(t *testing.T) {
	workspace := t.TempDir()
	runner := &fakeEnvRunner{
		result: &model.EnvResult{
			Name:     "unit",
			Commands: []model.CommandResult{{Command: "go test ./...", ExitCode: 1}},
		},
		err: model.NewCLIError(model.ExitGeneralError, `environment "unit": command "go test ./..." exited with code 1`),
	}
	fetcher := &fakeFetcher{}

	var out captureWriter
	buildRan := false
	d := NewDriver(releasePipeline(t), workspace, runner,
		WithFetcher(fetcher),
		WithDriverOutput(&out),
		withBuildFunc(func(ctx context.Context, d *Driver) error {
			buildRan = true
			return nil
		}))

	err := d.Run(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Equal(t, "unit tests failed, aborting release", cliErr.Message)
	assert.Contains(t, out.String(), "unit tests failed, aborting release")

	assert.False(t, buildRan, "build stage must not run after a test failure")
	assert.Empty(t, fetcher.calls, "package stage must not run after a test failure")
}

func TestDriver_TestEnvironmentErrorPassesThrough(t *testing.T) {
	// An environment that never ran is not a test verdict: the error
	// keeps its own exit code instead of the test-failure message.
	runner := &fakeEnvRunner{err: model.NewCLIError(model.ExitEnvNotFound, `unknown environment "unit"`)}
	d := NewDriver(releasePipeline(t), t.TempDir(), runner,
		WithDriverOutput(io.Discard),
		withBuildFunc(func(ctx context.Context, d *Driver) error { return nil }))

	err := d.Run(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitEnvNotFound, cliErr.Code)
}

func TestDriver_BuildFailureSkipsPackage(t *testing.T) {
	runner := &fakeEnvRunner{result: passingResult("unit")}
	fetcher := &fakeFetcher{}
	buildErr := model.NewCLIError(model.ExitGeneralError, "go build exited with status 2")

	d := NewDriver(releasePipeline(t), t.TempDir(), runner,
		WithFetcher(fetcher),
		WithDriverOutput(io.Discard),
		withBuildFunc(func(ctx context.Context, d *Driver) error { return buildErr }))

	err := d.Run(context.Background())
	require.ErrorIs(t, err, buildErr)
	assert.Empty(t, fetcher.calls, "package stage must not run after a build failure")
}

func TestDriver_PackageRequiresArtifactConfig(t *testing.T) {
	p := config.Default() // artifact URL and version unset
	d := NewDriver(p, t.TempDir(), &fakeEnvRunner{}, WithDriverOutput(io.Discard))

	err := d.Package(context.Background())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

func TestDriver_PackageFetchesAndArchives(t *testing.T) {
	workspace := t.TempDir()
	p := releasePipeline(t)
	fetcher := &fakeFetcher{body: []byte("published artifact")}

	d := NewDriver(p, workspace, &fakeEnvRunner{},
		WithFetcher(fetcher),
		WithDriverOutput(io.Discard))

	require.NoError(t, d.Package(context.Background()))

	assert.Equal(t, []string{"https://artifacts.example.com/enmaas-bur-1.4.2.tar.gz"}, fetcher.calls)
	assert.FileExists(t, filepath.Join(workspace, "dist", "enmaas-bur", "enmaas-bur-1.4.2.tar.gz"))

	archive := filepath.Join(workspace, "dist", "bur-packaged.tar.gz")
	assert.Equal(t, []string{"enmaas-bur/enmaas-bur-1.4.2.tar.gz"}, listArchive(t, archive))
}

func TestDriver_PackageFetchFailureAborts(t *testing.T) {
	workspace := t.TempDir()
	fetchErr := model.NewCLIError(model.ExitFetchError, "failed to fetch artifact")
	fetcher := &fakeFetcher{err: fetchErr}

	d := NewDriver(releasePipeline(t), workspace, &fakeEnvRunner{},
		WithFetcher(fetcher),
		WithDriverOutput(io.Discard))

	err := d.Package(context.Background())
	require.ErrorIs(t, err, fetchErr)
	assert.NoFileExists(t, filepath.Join(workspace, "dist", "bur-packaged.tar.gz"))
}

// captureWriter collects writes for assertions.
type captureWriter struct {
	data []byte
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *captureWriter) String() string { return string(w.data) }
