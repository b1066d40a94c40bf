// defaults.go defines the built-in pipeline used when the workspace has no
// burmake.yaml. It mirrors the environment set the original bur tooling
// shipped with: full-coverage and no-coverage suites, unit-only and
// system-only suites, advisory style/lint/security checks, and the
// release/docs settings.
//
// A workspace configuration file overlays these defaults: environments are
// replaced by name, and scalar settings are overridden field by field
// (see merge in loader.go).
package config

import "github.com/enmaas/burmake/internal/model"

// Default tool dependency versions. Pinned so environment runs are
// reproducible; a workspace config can override the environment to
// pick different versions.
const (
	depStaticcheck = "honnef.co/go/tools/cmd/staticcheck@2025.1"
	depGosec       = "github.com/securego/gosec/v2/cmd/gosec@v2.22.0"
	depGolds       = "go101.org/golds@v0.7.6"
)

// Default returns the built-in pipeline configuration.
//
// The returned value is freshly allocated on each call so callers can
// mutate it (the loader overlays the workspace file onto it) without
// affecting other callers.
func Default() *Pipeline {
	envs := []*model.Environment{
		{
			Name:        "full",
			Description: "Full test suite with coverage collection and HTML report",
			Commands: []string{
				"go test -covermode=atomic -coverprofile={coverdir}/unit.out {posargs} ./...",
				"go test -tags system -covermode=atomic -coverprofile={coverdir}/system.out -count=1 ./...",
			},
			Coverage: true,
		},
		{
			Name:        "nocoverage",
			Description: "Full test suite without coverage instrumentation",
			Commands: []string{
				"go test -count=1 {posargs} ./...",
				"go test -tags system -count=1 ./...",
			},
		},
		{
			Name:        "unit",
			Description: "Unit tests only",
			Commands: []string{
				"go test {posargs} ./...",
			},
		},
		{
			Name:        "systemtest",
			Description: "System tests only",
			Commands: []string{
				"go test -tags system -count=1 {posargs} ./...",
			},
		},
		{
			Name:        "style",
			Description: "Code formatting check (advisory, never fails the pipeline)",
			Commands: []string{
				"gofmt -l .",
			},
			Advisory: true,
		},
		{
			Name:        "lint",
			Description: "Static analysis (advisory, never fails the pipeline)",
			Deps:        []string{depStaticcheck},
			Commands: []string{
				"go vet ./...",
				"staticcheck ./...",
			},
			Advisory: true,
		},
		{
			Name:        "security",
			Description: "Security scan (advisory, never fails the pipeline)",
			Deps:        []string{depGosec},
			Commands: []string{
				"gosec ./...",
			},
			Advisory: true,
		},
		{
			Name:        "linters",
			Description: "All style, lint, and security checks (advisory)",
			Deps:        []string{depStaticcheck, depGosec},
			Commands: []string{
				"gofmt -l .",
				"go vet ./...",
				"staticcheck ./...",
				"gosec ./...",
			},
			Advisory: true,
		},
	}

	environments := make(map[string]*model.Environment, len(envs))
	for _, e := range envs {
		environments[e.Name] = e
	}

	return &Pipeline{
		Environments: environments,
		// Historical selector names from the original tooling remain
		// valid and resolve to the Go-native environments.
		Aliases: map[string]string{
			"flake8": "style",
			"pylint": "lint",
			"bandit": "security",
		},
		Release: ReleaseConfig{
			TestEnv:       "unit",
			DistDir:       "dist",
			Binary:        "bur",
			MainPackage:   ".",
			SourceArchive: "bur-src.tar.gz",
			Artifact: ArtifactConfig{
				Name: "enmaas-bur",
				// Version and URL are workspace-specific and must come
				// from burmake.yaml; the package stage refuses to run
				// without them.
			},
			ArchiveName: "bur-packaged.tar.gz",
		},
		Docs: DocsConfig{
			Tool:   "golds",
			Dep:    depGolds,
			Source: "./...",
			Output: "build/apidocs",
			Graph:  true,
		},
		Coverage: CoverageConfig{
			DataDir: ".cover",
			Profile: "coverage.out",
			HTML:    "build/coverage.html",
		},
	}
}
