// Package testutil holds helpers shared by the integration tests.
package testutil

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/rustdex/internal/cli"
)

// HarnessResult holds the outcome of one CLI invocation.
type HarnessResult struct {
	Stdout string
	Stderr string
	Err    error
}

// ExitCode returns the process exit code the invocation would produce.
func (r *HarnessResult) ExitCode() int {
	if r.Err == nil {
		return cli.ExitOK
	}
	var exitErr *cli.ExitError
	if errors.As(r.Err, &exitErr) {
		return exitErr.Code
	}
	return cli.ExitInternal
}

// WriteFiles creates files under a fresh temporary directory and returns
// its path. Keys are slash-separated paths relative to that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// RunCLI runs the command line in args with color disabled.
func RunCLI(t *testing.T, args ...string) *HarnessResult {
	t.Helper()
	return RunCLIWithContext(context.Background(), t, args...)
}

// RunCLIWithContext is RunCLI with a caller-provided context.
func RunCLIWithContext(ctx context.Context, t *testing.T, args ...string) *HarnessResult {
	t.Helper()

	var out, errOut bytes.Buffer
	err := cli.Execute(ctx, append([]string{"--color", "off"}, args...), &out, &errOut)

	res := &HarnessResult{Stdout: out.String(), Stderr: errOut.String(), Err: err}
	if os.Getenv("RUSTDEX_TEST_LOGS") == "true" {
		t.Logf("--- stdout ---\n%s\n--- stderr ---\n%s", res.Stdout, res.Stderr)
	}
	return res
}
