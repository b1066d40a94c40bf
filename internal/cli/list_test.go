// Package cli — list_test.go contains unit tests for the pure formatting
// functions used by the list and run commands.
//
// These tests verify data transformation logic without executing any
// external commands.
package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/enmaas/burmake/internal/config"
	"github.com/enmaas/burmake/internal/model"
)

// TestFormatEnvFlags verifies that FormatEnvFlags renders an
// environment's policy flags as a compact comma-joined string.
func TestFormatEnvFlags(t *testing.T) {
	p := &config.Pipeline{
		Environments: map[string]*model.Environment{
			"unit": {Name: "unit", Commands: []string{"go test ./..."}},
			"lint": {Name: "lint", Advisory: true, Commands: []string{"go vet ./..."}},
			"full": {Name: "full", Coverage: true, Commands: []string{"go test ./..."}},
			"audit": {
				Name:      "audit",
				Advisory:  true,
				Coverage:  true,
				Container: &model.ContainerSpec{Image: "golang:1.25"},
				Commands:  []string{"gosec ./..."},
			},
		},
	}

	tests := []struct {
		name string
		env  string
		want string
	}{
		{
			name: "no flags returns dash",
			env:  "unit",
			want: "-",
		},
		{
			name: "advisory only",
			env:  "lint",
			want: "advisory",
		},
		{
			name: "coverage only",
			env:  "full",
			want: "coverage",
		},
		{
			name: "all flags in fixed order",
			env:  "audit",
			want: "advisory,coverage,container",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatEnvFlags(p, tt.env)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestFormatAliases verifies that FormatAliases renders alias mappings
// sorted by alias name for stable output.
func TestFormatAliases(t *testing.T) {
	tests := []struct {
		name    string
		aliases map[string]string
		want    string
	}{
		{
			name:    "empty map",
			aliases: map[string]string{},
			want:    "",
		},
		{
			name:    "single alias",
			aliases: map[string]string{"flake8": "style"},
			want:    "flake8 -> style",
		},
		{
			name: "multiple aliases sorted",
			aliases: map[string]string{
				"pylint": "lint",
				"bandit": "security",
				"flake8": "style",
			},
			want: "bandit -> security\nflake8 -> style\npylint -> lint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAliases(tt.aliases)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestFormatRunSummary verifies the one-line outcome rendering for
// environment runs, including the advisory wording.
func TestFormatRunSummary(t *testing.T) {
	tests := []struct {
		name string
		res  *model.EnvResult
		want string
	}{
		{
			name: "all commands passed",
			res: &model.EnvResult{
				Name: "unit",
				Commands: []model.CommandResult{
					{Command: "go test ./...", ExitCode: 0, Duration: time.Second},
					{Command: "go vet ./...", ExitCode: 0, Duration: time.Second},
				},
			},
			want: "unit: 2 commands, passed",
		},
		{
			name: "single command uses singular noun",
			res: &model.EnvResult{
				Name: "systemtest",
				Commands: []model.CommandResult{
					{Command: "go test ./test/system/...", ExitCode: 0},
				},
			},
			want: "systemtest: 1 command, passed",
		},
		{
			name: "failed command",
			res: &model.EnvResult{
				Name: "unit",
				Commands: []model.CommandResult{
					{Command: "go test ./...", ExitCode: 1},
				},
			},
			want: "unit: 1 command, FAILED",
		},
		{
			name: "advisory findings are not a failure",
			res: &model.EnvResult{
				Name:     "lint",
				Advisory: true,
				Commands: []model.CommandResult{
					{Command: "go vet ./...", ExitCode: 0},
					{Command: "staticcheck ./...", ExitCode: 2},
				},
			},
			want: "lint: 2 commands, findings reported (advisory)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRunSummary(tt.res)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestCleanTargets verifies that clean removes exactly the configured
// generated-output paths.
func TestCleanTargets(t *testing.T) {
	p := config.Default()
	assert.Equal(t, []string{"dist", ".cover", "build/coverage.html", "build/apidocs"}, CleanTargets(p))
}
