// Package dockerrun executes environment commands inside disposable
// containers for pipeline environments that declare a container image.
//
// The Docker Engine SDK client is used for daemon detection and health
// checking (socket discovery, ping), while command execution goes through
// "docker run --rm" as a child process — the CLI flags map directly onto
// the environment definition, and the container lifecycle (create, attach,
// wait, remove) is handled by the docker binary itself.
package dockerrun

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/enmaas/burmake/internal/model"
)

// pingTimeout bounds the daemon health check, so a paused or wedged
// Docker Desktop does not hang the pipeline.
const pingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client, adding automatic socket
// detection and burmake-specific error mapping.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// The detection strategy follows this priority order:
//  1. DOCKER_HOST environment variable (if set, used as-is)
//  2. Platform-specific default socket paths:
//     - Linux: /var/run/docker.sock
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
//
// Returns a model.CLIError with ExitDockerNotRunning if no Docker socket
// is found or the client cannot be created.
func NewClient() (*Client, error) {
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		return newClientWithHost(host)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			"Docker socket not found", err)
	}

	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client connected to the given host
// string (e.g., "unix:///var/run/docker.sock").
func newClientWithHost(host string) (*Client, error) {
	// API version negotiation keeps the client compatible with whatever
	// daemon version the workspace happens to run.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost determines the Docker socket path for the current
// platform by probing known locations. Existence is checked rather than
// connectivity; Ping handles the latter.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Newer Docker Desktop versions place the socket under the user
		// home directory and may not create the /var/run symlink.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// Named pipes cannot be probed with os.Stat; a short dial is the
		// reliable existence check.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the Docker host URI for the first socket path
// that exists on the filesystem, checked in preference order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies that the Docker daemon is reachable and responsive.
// Returns a model.CLIError with ExitDockerNotRunning on failure.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitDockerNotRunning,
			"Docker daemon is not responding — is Docker running?", err)
	}
	return nil
}

// Close releases the resources held by the Docker client.
// Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
