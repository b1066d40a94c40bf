package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enmaas/burmake/internal/model"
)

// fetchTimeout bounds a single artifact download. Artifacts are small
// tarballs; anything that takes longer than this is stuck.
const fetchTimeout = 5 * time.Minute

// Fetcher downloads a release artifact to a local path. It exists as an
// interface so the release driver can be tested without a network.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath, sha256Hex string) error
}

// HTTPFetcher downloads artifacts over HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher with a bounded request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads url into destPath, creating parent directories as
// needed. When sha256Hex is non-empty the downloaded bytes must hash to
// it; on mismatch the partial file is removed and an error returned.
// Non-2xx responses and transport failures surface as fetch errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, destPath, sha256Hex string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.WrapCLIError(model.ExitFetchError,
			fmt.Sprintf("invalid artifact URL %s", url), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return model.WrapCLIError(model.ExitFetchError,
			fmt.Sprintf("failed to fetch artifact from %s", url), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NewCLIError(model.ExitFetchError,
			fmt.Sprintf("failed to fetch artifact from %s: HTTP %d", url, resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return model.WrapCLIError(model.ExitFetchError,
			"failed to create artifact directory", err)
	}

	out, err := os.Create(destPath) // #nosec G304 — destination derives from the pipeline config
	if err != nil {
		return model.WrapCLIError(model.ExitFetchError,
			fmt.Sprintf("failed to create artifact file %s", destPath), err)
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return model.WrapCLIError(model.ExitFetchError,
			fmt.Sprintf("failed to download artifact from %s", url), err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return model.WrapCLIError(model.ExitFetchError,
			fmt.Sprintf("failed to write artifact file %s", destPath), err)
	}

	if sha256Hex != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, sha256Hex) {
			_ = os.Remove(destPath)
			return model.NewCLIError(model.ExitFetchError,
				fmt.Sprintf("artifact checksum mismatch for %s: got %s, want %s", url, got, sha256Hex))
		}
	}
	return nil
}
