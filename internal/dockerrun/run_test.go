package dockerrun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enmaas/burmake/internal/model"
)

// TestBuildRunArgs verifies the docker run argument construction:
// disposable container, workspace bind mount, deterministic env
// ordering, and argv placement after the image reference.
func TestBuildRunArgs(t *testing.T) {
	tests := []struct {
		name      string
		spec      *model.ContainerSpec
		workspace string
		env       map[string]string
		argv      []string
		want      []string
	}{
		{
			name:      "default workdir",
			spec:      &model.ContainerSpec{Image: "golang:1.25"},
			workspace: "/work/backup",
			argv:      []string{"go", "test", "./..."},
			want: []string{
				"run", "--rm",
				"-v", "/work/backup:/workspace",
				"-w", "/workspace",
				"golang:1.25",
				"go", "test", "./...",
			},
		},
		{
			name:      "custom workdir",
			spec:      &model.ContainerSpec{Image: "golang:1.25", Workdir: "/src"},
			workspace: "/work/backup",
			argv:      []string{"go", "vet", "./..."},
			want: []string{
				"run", "--rm",
				"-v", "/work/backup:/src",
				"-w", "/src",
				"golang:1.25",
				"go", "vet", "./...",
			},
		},
		{
			name:      "environment variables sorted",
			spec:      &model.ContainerSpec{Image: "golang:1.25"},
			workspace: "/work/backup",
			env: map[string]string{
				"ZED":   "last",
				"ALPHA": "first",
			},
			argv: []string{"go", "env"},
			want: []string{
				"run", "--rm",
				"-v", "/work/backup:/workspace",
				"-w", "/workspace",
				"-e", "ALPHA=first",
				"-e", "ZED=last",
				"golang:1.25",
				"go", "env",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildRunArgs(tt.spec, tt.workspace, tt.env, tt.argv)
			assert.Equal(t, tt.want, got)
		})
	}
}
