// Package config loads and validates the burmake pipeline configuration.
//
// The pipeline is described declaratively in a burmake.yaml (or burmake.jsonc)
// file at the workspace root: named environments, alias mappings, the release
// pipeline settings, and the documentation generator settings. When no file
// exists, a built-in default pipeline is used (see defaults.go), so burmake
// works out of the box on a conventional Go module.
//
// All relative paths in the configuration (dist directory, coverage data
// directory, docs output) are resolved against the workspace root at load
// time — never against the invoking process's working directory.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/enmaas/burmake/internal/model"
)

// Pipeline is the complete burmake configuration.
type Pipeline struct {
	// Environments maps environment names to their definitions.
	Environments map[string]*model.Environment `json:"environments" yaml:"environments"`

	// Aliases maps alternate selector names to environment names. The
	// historical selectors from the original tooling (flake8, pylint,
	// bandit) are kept as aliases for the Go-native environments.
	Aliases map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Release configures the Test → Build → Package pipeline.
	Release ReleaseConfig `json:"release" yaml:"release"`

	// Docs configures the API documentation generator.
	Docs DocsConfig `json:"docs" yaml:"docs"`

	// Coverage configures coverage data collection and reporting.
	Coverage CoverageConfig `json:"coverage" yaml:"coverage"`
}

// ReleaseConfig holds the release pipeline settings.
type ReleaseConfig struct {
	// TestEnv names the environment run by the gated test stage.
	TestEnv string `json:"testEnv" yaml:"testEnv"`

	// DistDir is the output directory for built artifacts, relative to
	// the workspace root.
	DistDir string `json:"distDir" yaml:"distDir"`

	// Binary is the name of the compiled binary placed in DistDir.
	Binary string `json:"binary" yaml:"binary"`

	// MainPackage is the package path built to produce the binary
	// (e.g., "./cmd/bur").
	MainPackage string `json:"mainPackage" yaml:"mainPackage"`

	// SourceArchive is the name of the source distribution tarball
	// placed in DistDir alongside the binary.
	SourceArchive string `json:"sourceArchive" yaml:"sourceArchive"`

	// Artifact identifies the externally built package fetched during
	// the package stage. The identifier and version are configuration
	// inputs, not script literals, so a pipeline can be repointed
	// without code changes.
	Artifact ArtifactConfig `json:"artifact" yaml:"artifact"`

	// ArchiveName is the file name of the final tar.gz produced by the
	// package stage, placed directly in DistDir.
	ArchiveName string `json:"archiveName" yaml:"archiveName"`
}

// ArtifactConfig identifies the external artifact fetched by the package stage.
type ArtifactConfig struct {
	// Name is the artifact identifier (e.g., "enmaas-bur"). Also used as
	// the name of the DistDir subdirectory the artifact is fetched into.
	Name string `json:"name" yaml:"name"`

	// Version is the artifact version string.
	Version string `json:"version" yaml:"version"`

	// URL is the download location template. The placeholders {name} and
	// {version} are substituted before the request is made.
	URL string `json:"url" yaml:"url"`

	// SHA256 is an optional hex-encoded checksum. When set, the download
	// is verified and a mismatch fails the package stage.
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
}

// ResolveURL substitutes the {name} and {version} placeholders in the URL
// template and returns the concrete download location.
func (a ArtifactConfig) ResolveURL() string {
	url := strings.ReplaceAll(a.URL, "{name}", a.Name)
	return strings.ReplaceAll(url, "{version}", a.Version)
}

// FileName returns the local file name for the fetched artifact. The name
// is derived from the final URL path segment; when the URL has no usable
// segment, a "<name>-<version>.tar.gz" fallback is used.
func (a ArtifactConfig) FileName() string {
	resolved := a.ResolveURL()
	if idx := strings.LastIndex(resolved, "/"); idx >= 0 && idx < len(resolved)-1 {
		base := resolved[idx+1:]
		// Strip any query string left on the final segment.
		if q := strings.Index(base, "?"); q >= 0 {
			base = base[:q]
		}
		if base != "" {
			return base
		}
	}
	return fmt.Sprintf("%s-%s.tar.gz", a.Name, a.Version)
}

// DocsConfig holds the documentation generator settings. The generator is
// an external tool; burmake only assembles its invocation from these
// declarative values.
type DocsConfig struct {
	// Tool is the documenter binary name.
	Tool string `json:"tool" yaml:"tool"`

	// Dep is the "module@version" spec used to install the documenter
	// via "go install" when it is not already on PATH. Empty disables
	// auto-installation.
	Dep string `json:"dep,omitempty" yaml:"dep,omitempty"`

	// Source is the package pattern the documenter is pointed at.
	Source string `json:"source" yaml:"source"`

	// Output is the directory HTML documentation is written to,
	// relative to the workspace root.
	Output string `json:"output" yaml:"output"`

	// Graph requests a type-hierarchy graph in the generated docs.
	Graph bool `json:"graph,omitempty" yaml:"graph,omitempty"`

	// ExtraArgs are appended verbatim to the documenter invocation.
	ExtraArgs []string `json:"extraArgs,omitempty" yaml:"extraArgs,omitempty"`
}

// CoverageConfig holds coverage collection and reporting settings.
type CoverageConfig struct {
	// DataDir is the directory partial coverage profiles are written to
	// by coverage environments, relative to the workspace root. Each
	// parallel test invocation writes its own profile file here.
	DataDir string `json:"dataDir" yaml:"dataDir"`

	// Profile is the combined profile file name, written into DataDir
	// after merging the partial profiles.
	Profile string `json:"profile" yaml:"profile"`

	// HTML is the rendered coverage report path, relative to the
	// workspace root.
	HTML string `json:"html" yaml:"html"`
}

// Lookup resolves an environment selector to its definition, following
// one level of alias indirection. Unknown selectors return a CLIError
// with ExitEnvNotFound.
func (p *Pipeline) Lookup(selector string) (*model.Environment, error) {
	name := selector
	if target, ok := p.Aliases[selector]; ok {
		name = target
	}
	env, ok := p.Environments[name]
	if !ok {
		return nil, model.NewCLIError(model.ExitEnvNotFound,
			fmt.Sprintf("unknown environment %q (run \"burmake list\" to see available environments)", selector))
	}
	return env, nil
}

// EnvironmentNames returns all environment names in sorted order,
// for stable list output.
func (p *Pipeline) EnvironmentNames() []string {
	names := make([]string, 0, len(p.Environments))
	for name := range p.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the full pipeline configuration for structural problems.
// It is called after defaults have been merged, so every field is expected
// to hold its final value.
func (p *Pipeline) Validate() error {
	for name, env := range p.Environments {
		if env == nil {
			return fmt.Errorf("environment %q: definition is empty", name)
		}
		if env.Name != name {
			return fmt.Errorf("environment %q: name field %q does not match its key", name, env.Name)
		}
		if err := env.Validate(); err != nil {
			return err
		}
	}

	for alias, target := range p.Aliases {
		if err := model.ValidateName(alias); err != nil {
			return fmt.Errorf("alias %q: %w", alias, err)
		}
		if _, ok := p.Environments[target]; !ok {
			return fmt.Errorf("alias %q points to unknown environment %q", alias, target)
		}
	}

	if _, ok := p.Environments[p.Release.TestEnv]; !ok {
		return fmt.Errorf("release.testEnv %q is not a defined environment", p.Release.TestEnv)
	}
	if p.Release.DistDir == "" {
		return fmt.Errorf("release.distDir must not be empty")
	}
	if p.Release.ArchiveName == "" {
		return fmt.Errorf("release.archiveName must not be empty")
	}
	if p.Release.Artifact.Name == "" {
		return fmt.Errorf("release.artifact.name must not be empty")
	}
	if p.Release.Artifact.URL != "" &&
		!strings.Contains(p.Release.Artifact.URL, "{name}") &&
		!strings.Contains(p.Release.Artifact.URL, "{version}") &&
		p.Release.Artifact.Version != "" {
		// A fully literal URL with a separately configured version is
		// almost always a mistake: bumping the version silently fetches
		// the old artifact.
		return fmt.Errorf("release.artifact.url should reference {name} or {version} when a version is configured")
	}

	if p.Docs.Tool == "" {
		return fmt.Errorf("docs.tool must not be empty")
	}
	if p.Docs.Output == "" {
		return fmt.Errorf("docs.output must not be empty")
	}

	if p.Coverage.DataDir == "" {
		return fmt.Errorf("coverage.dataDir must not be empty")
	}
	if p.Coverage.Profile == "" {
		return fmt.Errorf("coverage.profile must not be empty")
	}

	return nil
}
