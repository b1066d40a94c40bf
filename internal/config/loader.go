// loader.go implements pipeline configuration discovery and loading.
//
// Discovery walks up from the starting directory until it finds one of the
// supported configuration file names, the same way build tools locate their
// project file from any subdirectory. The directory containing the file
// becomes the workspace root; every relative path in the configuration is
// resolved against it.
//
// Two formats are supported:
//   - burmake.yaml / burmake.yml — parsed with gopkg.in/yaml.v3
//   - burmake.jsonc / burmake.json — JSON with comments, stripped with
//     github.com/tidwall/jsonc before standard encoding/json parsing
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/enmaas/burmake/internal/model"
)

// configFileNames lists the supported configuration file names, in
// precedence order when more than one exists in the same directory.
var configFileNames = []string{
	"burmake.yaml",
	"burmake.yml",
	"burmake.jsonc",
	"burmake.json",
}

// LoadResult bundles the loaded pipeline with the workspace it belongs to.
type LoadResult struct {
	// Pipeline is the merged and validated configuration.
	Pipeline *Pipeline

	// Root is the absolute workspace root directory: the directory
	// containing the configuration file, or the starting directory when
	// no file was found and defaults are in effect.
	Root string

	// ConfigPath is the absolute path of the configuration file that was
	// loaded, or empty when the built-in defaults are in effect.
	ConfigPath string
}

// Load discovers and loads the pipeline configuration starting from the
// given directory. The workspace file, when present, overlays the built-in
// defaults: environments are replaced by name, aliases are merged, and
// scalar settings are overridden field by field.
func Load(startDir string) (*LoadResult, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("cannot resolve directory %q", startDir), err)
	}

	configPath, err := Discover(absStart)
	if err != nil {
		return nil, err
	}

	pipeline := Default()
	root := absStart

	if configPath != "" {
		root = filepath.Dir(configPath)
		fc, err := parseFile(configPath)
		if err != nil {
			return nil, err
		}
		merge(pipeline, fc)
	}

	if err := pipeline.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			"invalid pipeline configuration", err)
	}

	return &LoadResult{Pipeline: pipeline, Root: root, ConfigPath: configPath}, nil
}

// Discover walks up from startDir looking for a configuration file.
// Returns the absolute path of the first file found, or an empty string
// when no configuration file exists anywhere up the tree.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("cannot resolve directory %q", startDir), err)
	}

	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			info, err := os.Stat(candidate)
			if err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root without finding a file.
			return "", nil
		}
		dir = parent
	}
}

// fileConfig mirrors Pipeline but with optional fields, so a workspace
// file only overrides what it mentions. Scalar overrides use pointers
// where the zero value is meaningful (booleans); strings treat empty as
// "keep the default".
type fileConfig struct {
	Environments map[string]*model.Environment `json:"environments" yaml:"environments"`
	Aliases      map[string]string             `json:"aliases" yaml:"aliases"`
	Release      *fileRelease                  `json:"release" yaml:"release"`
	Docs         *fileDocs                     `json:"docs" yaml:"docs"`
	Coverage     *fileCoverage                 `json:"coverage" yaml:"coverage"`
}

type fileRelease struct {
	TestEnv       string        `json:"testEnv" yaml:"testEnv"`
	DistDir       string        `json:"distDir" yaml:"distDir"`
	Binary        string        `json:"binary" yaml:"binary"`
	MainPackage   string        `json:"mainPackage" yaml:"mainPackage"`
	SourceArchive string        `json:"sourceArchive" yaml:"sourceArchive"`
	Artifact      *fileArtifact `json:"artifact" yaml:"artifact"`
	ArchiveName   string        `json:"archiveName" yaml:"archiveName"`
}

type fileArtifact struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	URL     string `json:"url" yaml:"url"`
	SHA256  string `json:"sha256" yaml:"sha256"`
}

type fileDocs struct {
	Tool      string   `json:"tool" yaml:"tool"`
	Dep       string   `json:"dep" yaml:"dep"`
	Source    string   `json:"source" yaml:"source"`
	Output    string   `json:"output" yaml:"output"`
	Graph     *bool    `json:"graph" yaml:"graph"`
	ExtraArgs []string `json:"extraArgs" yaml:"extraArgs"`
}

type fileCoverage struct {
	DataDir string `json:"dataDir" yaml:"dataDir"`
	Profile string `json:"profile" yaml:"profile"`
	HTML    string `json:"html" yaml:"html"`
}

// parseFile reads and decodes a configuration file based on its extension.
func parseFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 — path comes from Discover
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read pipeline config %s", path), err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", path), err)
		}
	case ".jsonc", ".json":
		// jsonc.ToJSON strips comments and trailing commas, producing
		// bytes the standard library decoder accepts.
		if err := json.Unmarshal(jsonc.ToJSON(data), &fc); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", path), err)
		}
	default:
		return nil, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unsupported config file extension on %s", path))
	}

	return &fc, nil
}

// merge overlays a workspace file configuration onto the defaults.
// Environments replace defaults wholesale by name; aliases are merged
// with the file winning on conflicts; scalar settings override only
// when the file sets them.
func merge(base *Pipeline, fc *fileConfig) {
	for name, env := range fc.Environments {
		if env == nil {
			// "name:" with no body removes the default environment.
			delete(base.Environments, name)
			continue
		}
		// The map key is authoritative for the environment name; the
		// name field inside the body is filled in for the user.
		env.Name = name
		base.Environments[name] = env
	}

	for alias, target := range fc.Aliases {
		base.Aliases[alias] = target
	}

	if r := fc.Release; r != nil {
		overrideString(&base.Release.TestEnv, r.TestEnv)
		overrideString(&base.Release.DistDir, r.DistDir)
		overrideString(&base.Release.Binary, r.Binary)
		overrideString(&base.Release.MainPackage, r.MainPackage)
		overrideString(&base.Release.SourceArchive, r.SourceArchive)
		overrideString(&base.Release.ArchiveName, r.ArchiveName)
		if a := r.Artifact; a != nil {
			overrideString(&base.Release.Artifact.Name, a.Name)
			overrideString(&base.Release.Artifact.Version, a.Version)
			overrideString(&base.Release.Artifact.URL, a.URL)
			overrideString(&base.Release.Artifact.SHA256, a.SHA256)
		}
	}

	if d := fc.Docs; d != nil {
		overrideString(&base.Docs.Tool, d.Tool)
		overrideString(&base.Docs.Dep, d.Dep)
		overrideString(&base.Docs.Source, d.Source)
		overrideString(&base.Docs.Output, d.Output)
		if d.Graph != nil {
			base.Docs.Graph = *d.Graph
		}
		if d.ExtraArgs != nil {
			base.Docs.ExtraArgs = d.ExtraArgs
		}
	}

	if c := fc.Coverage; c != nil {
		overrideString(&base.Coverage.DataDir, c.DataDir)
		overrideString(&base.Coverage.Profile, c.Profile)
		overrideString(&base.Coverage.HTML, c.HTML)
	}
}

// overrideString sets dst to src unless src is empty.
func overrideString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
