package release

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listArchive returns the entry names of a tar.gz archive, sorted.
func listArchive(t *testing.T, path string) []string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	return names
}

func TestTarGz_ArchivesTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "internal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "internal", "util.go"), []byte("package internal\n"), 0o644))

	dest := filepath.Join(t.TempDir(), "out", "project.tar.gz")
	require.NoError(t, TarGz(src, dest))

	assert.Equal(t, []string{
		"project/internal/",
		"project/internal/util.go",
		"project/main.go",
	}, listArchive(t, dest))
}

func TestTarGz_PreservesFileContent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "payload.txt"), []byte("release payload"), 0o644))

	dest := filepath.Join(t.TempDir(), "data.tar.gz")
	require.NoError(t, TarGz(src, dest))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	hdr, err := tr.Next()
	require.NoError(t, err)
	assert.Equal(t, "data/payload.txt", hdr.Name)
	content, err := io.ReadAll(tr)
	require.NoError(t, err)
	assert.Equal(t, "release payload", string(content))
}

func TestTarGz_SkipsExcludedTopLevelEntries(t *testing.T) {
	src := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "dist"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "HEAD"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "dist", "bur"), []byte("bin"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "go.mod"), []byte("module x\n"), 0o644))

	dest := filepath.Join(t.TempDir(), "src.tar.gz")
	require.NoError(t, TarGz(src, dest, ".git", "dist"))

	assert.Equal(t, []string{"ws/go.mod"}, listArchive(t, dest))
}

func TestTarGz_NeverArchivesItself(t *testing.T) {
	src := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0o644))

	// Destination inside the source tree.
	dest := filepath.Join(src, "ws.tar.gz")
	require.NoError(t, TarGz(src, dest))

	assert.Equal(t, []string{"ws/a.txt"}, listArchive(t, dest))
}
