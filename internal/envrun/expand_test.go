package envrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExpandCommand covers tokenization and placeholder substitution.
func TestExpandCommand(t *testing.T) {
	vars := map[string]string{
		"workspace": "/work/backup",
		"coverdir":  "/work/backup/.cover",
	}

	tests := []struct {
		name    string
		command string
		posargs []string
		want    []string
	}{
		{
			name:    "plain command",
			command: "go test ./...",
			want:    []string{"go", "test", "./..."},
		},
		{
			name:    "posargs expand in place",
			command: "go test {posargs} ./...",
			posargs: []string{"-run", "TestFoo"},
			want:    []string{"go", "test", "-run", "TestFoo", "./..."},
		},
		{
			name:    "posargs with no arguments vanish",
			command: "go test {posargs} ./...",
			want:    []string{"go", "test", "./..."},
		},
		{
			name:    "coverdir substituted inside a token",
			command: "go test -coverprofile={coverdir}/unit.out ./...",
			want:    []string{"go", "test", "-coverprofile=/work/backup/.cover/unit.out", "./..."},
		},
		{
			name:    "workspace substitution",
			command: "ls {workspace}/dist",
			want:    []string{"ls", "/work/backup/dist"},
		},
		{
			name:    "whitespace collapsed",
			command: "  go   vet   ./...  ",
			want:    []string{"go", "vet", "./..."},
		},
		{
			name:    "empty command yields no argv",
			command: "   ",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandCommand(tt.command, tt.posargs, vars)
			assert.Equal(t, tt.want, got)
		})
	}
}
