package execx

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipOnWindows skips tests that rely on POSIX shell utilities.
// The command execution contract itself is platform-independent;
// only the test fixtures (sh, true, false) are not.
func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX shell utilities")
	}
}

// TestRun_Success verifies that a successful command reports exit code 0
// and no error.
func TestRun_Success(t *testing.T) {
	skipOnWindows(t)

	code, err := Run(context.Background(), Options{Dir: t.TempDir()}, "true")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

// TestRun_NonZeroExit verifies the advisory-tool contract: a command that
// runs and exits non-zero returns its exit code with a nil error, so the
// caller decides whether that constitutes a failure.
func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	code, err := Run(context.Background(), Options{Dir: t.TempDir()}, "false")
	require.NoError(t, err, "non-zero exit must not be reported as an invocation error")
	assert.NotEqual(t, 0, code)
}

// TestRun_ExitCodePropagated verifies that the exact exit code of the
// child process is reported, not just a boolean success flag.
func TestRun_ExitCodePropagated(t *testing.T) {
	skipOnWindows(t)

	code, err := Run(context.Background(), Options{Dir: t.TempDir()}, "sh", "-c", "exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

// TestRun_MissingBinary verifies that an unresolvable binary is a genuine
// invocation error, distinct from a tool that ran and failed.
func TestRun_MissingBinary(t *testing.T) {
	_, err := Run(context.Background(), Options{Dir: t.TempDir()}, "burmake-no-such-binary-xyz")
	assert.Error(t, err)
}

// TestRun_RelativeDirRejected verifies the explicit-absolute-path rule:
// pipeline stages must never depend on the invoking process's working
// directory.
func TestRun_RelativeDirRejected(t *testing.T) {
	_, err := Run(context.Background(), Options{Dir: "relative/dir"}, "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absolute")

	_, err = Run(context.Background(), Options{Dir: ""}, "true")
	assert.Error(t, err)
}

// TestRun_OutputStreams verifies that stdout and stderr are routed to the
// writers supplied in Options.
func TestRun_OutputStreams(t *testing.T) {
	skipOnWindows(t)

	var stdout, stderr strings.Builder
	code, err := Run(context.Background(), Options{
		Dir:    t.TempDir(),
		Stdout: &stdout,
		Stderr: &stderr,
	}, "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

// TestRun_EnvInjection verifies that Options.Env variables reach the child
// process on top of the inherited environment.
func TestRun_EnvInjection(t *testing.T) {
	skipOnWindows(t)

	var stdout strings.Builder
	code, err := Run(context.Background(), Options{
		Dir:    t.TempDir(),
		Env:    map[string]string{"BURMAKE_TEST_VAR": "hello"},
		Stdout: &stdout,
	}, "sh", "-c", "echo $BURMAKE_TEST_VAR")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", stdout.String())
}

// TestRun_WorkingDirectory verifies that the command executes in the
// directory given by Options.Dir, not in the test process's own directory.
func TestRun_WorkingDirectory(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var stdout strings.Builder
	code, err := Run(context.Background(), Options{Dir: dir, Stdout: &stdout}, "pwd")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	// macOS reports /private-prefixed temp dirs from pwd; match the suffix.
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout.String()), dir))
}

// TestCapture_Success verifies trimmed stdout capture from a successful command.
func TestCapture_Success(t *testing.T) {
	skipOnWindows(t)

	out, err := Capture(context.Background(), t.TempDir(), "sh", "-c", "echo '  captured  '")
	require.NoError(t, err)
	assert.Equal(t, "captured", out)
}

// TestCapture_FailureIncludesStderr verifies that Capture treats non-zero
// exits as errors and surfaces the tool's stderr for diagnostics.
func TestCapture_FailureIncludesStderr(t *testing.T) {
	skipOnWindows(t)

	_, err := Capture(context.Background(), t.TempDir(), "sh", "-c", "echo boom >&2; exit 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

// TestCapture_RelativeDirRejected mirrors the Run contract for Capture.
func TestCapture_RelativeDirRejected(t *testing.T) {
	_, err := Capture(context.Background(), ".", "true")
	assert.Error(t, err)
}

// TestRun_ContextCancellation verifies that a cancelled context aborts
// the command with an invocation error.
func TestRun_ContextCancellation(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Options{Dir: t.TempDir()}, "sleep", "10")
	assert.Error(t, err)
}

// TestLookPath verifies binary resolution checks.
func TestLookPath(t *testing.T) {
	assert.NoError(t, LookPath("go"))
	assert.Error(t, LookPath("burmake-no-such-binary-xyz"))
}
