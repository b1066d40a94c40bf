// Package cli — list.go implements the "burmake list" command.
//
// The list command enumerates the environments defined by the pipeline
// configuration (built-in defaults plus the workspace file's overlay),
// with their aliases, as a text table or JSON object depending on the
// --json flag.
package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/enmaas/burmake/internal/config"
)

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available pipeline environments",
		Long: `List every environment the pipeline configuration defines, with its
description and policy flags (advisory, coverage, containerized).

Examples:
  burmake list
  burmake list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace()
			if err != nil {
				return err
			}
			printEnvList(ws.Pipeline)
			return nil
		},
	}
}

// printEnvList outputs the environment listing in text or JSON format,
// depending on the global --json flag.
func printEnvList(p *config.Pipeline) {
	if IsJSONOutput() {
		printEnvListJSON(p)
	} else {
		printEnvListText(p)
	}
}

// listEnvJSON is the JSON output structure for a single environment
// in the list command.
type listEnvJSON struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Advisory    bool     `json:"advisory"`
	Coverage    bool     `json:"coverage"`
	Container   string   `json:"container,omitempty"`
	Deps        []string `json:"deps,omitempty"`
	Commands    []string `json:"commands"`
}

// printEnvListJSON outputs the environment list as structured JSON.
// The top-level keys are "environments" and "aliases".
func printEnvListJSON(p *config.Pipeline) {
	type resultJSON struct {
		Environments []listEnvJSON     `json:"environments"`
		Aliases      map[string]string `json:"aliases"`
	}

	names := p.EnvironmentNames()
	result := resultJSON{
		Environments: make([]listEnvJSON, 0, len(names)),
		Aliases:      p.Aliases,
	}

	for _, name := range names {
		env := p.Environments[name]
		result.Environments = append(result.Environments, listEnvJSON{
			Name:        env.Name,
			Description: env.Description,
			Advisory:    env.Advisory,
			Coverage:    env.Coverage,
			Container:   containerImage(p, name),
			Deps:        env.Deps,
			Commands:    env.Commands,
		})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printEnvListText outputs the environment list as a human-readable
// table, followed by the alias mappings. In verbose mode each
// environment's command sequence is printed below its row.
func printEnvListText(p *config.Pipeline) {
	names := p.EnvironmentNames()
	if len(names) == 0 {
		fmt.Println("No environments defined.")
		return
	}

	fmt.Printf("%-12s %-10s %s\n", "NAME", "FLAGS", "DESCRIPTION")
	for _, name := range names {
		env := p.Environments[name]
		fmt.Printf("%-12s %-10s %s\n", env.Name, FormatEnvFlags(p, name), env.Description)
		if verbose {
			fmt.Print(joinCommands(env.Commands))
		}
	}

	if len(p.Aliases) > 0 {
		fmt.Println()
		fmt.Println(FormatAliases(p.Aliases))
	}
}

// containerImage returns the container image an environment runs in, or
// an empty string for host execution.
func containerImage(p *config.Pipeline, name string) string {
	env := p.Environments[name]
	if env.Container == nil {
		return ""
	}
	return env.Container.Image
}

// FormatEnvFlags renders an environment's policy flags as a compact
// string: "advisory", "coverage", "container", joined with commas, or
// "-" when none apply.
//
// This function is exported for testing purposes (tested in list_test.go).
func FormatEnvFlags(p *config.Pipeline, name string) string {
	env := p.Environments[name]

	var flags []string
	if env.Advisory {
		flags = append(flags, "advisory")
	}
	if env.Coverage {
		flags = append(flags, "coverage")
	}
	if env.Container != nil {
		flags = append(flags, "container")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

// FormatAliases renders the alias map as "alias -> target" lines,
// sorted by alias name for stable output.
//
// This function is exported for testing purposes (tested in list_test.go).
func FormatAliases(aliases map[string]string) string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s -> %s", name, aliases[name]))
	}
	return strings.Join(lines, "\n")
}
