// archive.go produces the gzip-compressed tar archives for the release
// pipeline: the source distribution in the build stage and the final
// packaged artifact in the package stage.
//
// Archives are built with archive/tar and compress/gzip directly rather
// than by shelling out to tar: the original pipeline depended on the
// host's tar flavor (GNU vs Solaris), which this removes.
package release

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TarGz archives srcDir into a gzip-compressed tarball at destPath.
// Entries are named under the base name of srcDir, matching the layout
// "tar czf dest src" would produce. Top-level entries whose name appears
// in exclude are skipped, as is the destination file itself should it
// live inside srcDir.
func TarGz(srcDir, destPath string, exclude ...string) error {
	absSrc, err := filepath.Abs(srcDir)
	if err != nil {
		return fmt.Errorf("failed to resolve archive source %s: %w", srcDir, err)
	}
	absDest, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("failed to resolve archive destination %s: %w", destPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(absDest), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	f, err := os.Create(absDest) // #nosec G304 — destination comes from the pipeline config
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", absDest, err)
	}
	defer func() { _ = f.Close() }()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	prefix := filepath.Base(absSrc)

	walkErr := filepath.WalkDir(absSrc, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absSrc {
			return nil
		}
		// Never archive the archive being written.
		if path == absDest {
			return nil
		}

		rel, err := filepath.Rel(absSrc, path)
		if err != nil {
			return err
		}

		// Exclusions apply to top-level entry names.
		top := rel
		if idx := strings.IndexByte(filepath.ToSlash(rel), '/'); idx >= 0 {
			top = filepath.ToSlash(rel)[:idx]
		}
		if excluded[top] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		// Regular files and directories only. Sockets, devices, and
		// symlinks have no place in a source or package archive.
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = prefix + "/" + filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path) // #nosec G304 — path enumerated by WalkDir
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, src)
		_ = src.Close()
		return err
	})
	if walkErr != nil {
		return fmt.Errorf("failed to archive %s: %w", absSrc, walkErr)
	}

	// Close order matters: the tar writer flushes into the gzip writer,
	// which flushes into the file.
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive compression: %w", err)
	}
	return f.Close()
}
