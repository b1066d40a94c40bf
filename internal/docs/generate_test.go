package docs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/enmaas/burmake/internal/config"
)

func TestGenerator_Args(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.DocsConfig
		workspace string
		want      []string
	}{
		{
			name: "defaults with graph",
			cfg: config.DocsConfig{
				Tool:   "golds",
				Source: "./...",
				Output: "build/apidocs",
				Graph:  true,
			},
			workspace: "/ws",
			want:      []string{"golds", "-gen", "-dir", filepath.Join("/ws", "build/apidocs"), "./..."},
		},
		{
			name: "graph disabled skips relation pages",
			cfg: config.DocsConfig{
				Tool:   "golds",
				Source: "./...",
				Output: "build/apidocs",
				Graph:  false,
			},
			workspace: "/ws",
			want:      []string{"golds", "-gen", "-dir", filepath.Join("/ws", "build/apidocs"), "-nouses", "./..."},
		},
		{
			name: "extra args precede the source pattern",
			cfg: config.DocsConfig{
				Tool:      "golds",
				Source:    "./internal/...",
				Output:    "docs/api",
				Graph:     true,
				ExtraArgs: []string{"-silent", "-wdpkgs-listing=promoted"},
			},
			workspace: "/home/user/project",
			want: []string{
				"golds", "-gen", "-dir", filepath.Join("/home/user/project", "docs/api"),
				"-silent", "-wdpkgs-listing=promoted", "./internal/...",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.cfg, tt.workspace)
			assert.Equal(t, tt.want, g.Args())
		})
	}
}

func TestGenerator_MissingToolWithoutDep(t *testing.T) {
	cfg := config.DocsConfig{
		Tool:   "definitely-not-an-installed-documenter",
		Source: "./...",
		Output: "build/apidocs",
	}
	g := NewGenerator(cfg, t.TempDir())

	err := g.ensureTool(context.Background(), filepath.Join(t.TempDir(), ".burmake", "bin"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no dep is configured")
}
