// report.go renders the combined coverage profile to HTML by invoking
// "go tool cover". The rendering is delegated to the Go toolchain
// because the HTML format is owned by it and changes across releases.
package coverage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/enmaas/burmake/internal/execx"
)

// WriteHTML renders the combined profile at profilePath into an HTML
// report at htmlPath, creating the report's parent directory as needed.
// workspace must be the absolute workspace root; it becomes the working
// directory for the cover tool so source files resolve correctly.
func WriteHTML(ctx context.Context, workspace, profilePath, htmlPath string) error {
	if err := os.MkdirAll(filepath.Dir(htmlPath), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory for %s: %w", htmlPath, err)
	}

	code, err := execx.Run(ctx, execx.Options{
		Dir:    workspace,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, "go", "tool", "cover", "-html="+profilePath, "-o", htmlPath)
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("go tool cover exited with code %d", code)
	}
	return nil
}
