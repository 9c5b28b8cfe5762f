package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rustdex/internal/catalog"
)

const fmtHCL = `
module "fmt" {
  introductory = "I deal with formatting"

  capability "Write" {
    implementor_facts = ["I can be written into with write!."]
    example           = "write!(s, \"hi\")"
    signature         = "pub trait Write"
  }
}
`

const ioYAML = `
io:
  introductory: I deal with input/output
  capabilities:
    Write:
      implementor_facts: ["I am a byte sink."]
      example: "out.write_all(b\"hi\")"
      signature: pub trait Write
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_Embedded(t *testing.T) {
	// --- Act ---
	reg, err := Load(context.Background(), "")

	// --- Assert ---
	require.NoError(t, err)
	assert.Len(t, reg.ListModules(), 12)
	assert.Equal(t, 74, reg.Len())
	assert.Equal(t, []string{"fmt", "io"}, reg.Candidates("Write"))
}

func TestLoad_SingleFile(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "fmt.hcl")
	writeFile(t, path, fmtHCL)

	// --- Act ---
	reg, err := Load(context.Background(), path)

	// --- Assert ---
	require.NoError(t, err)
	c, err := reg.Resolve("Write", "")
	require.NoError(t, err)
	assert.Equal(t, "pub trait Write", c.Signature)
}

func TestLoad_DirectoryConcatenatesInPathOrder(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "io.yaml"), ioYAML)
	writeFile(t, filepath.Join(dir, "a.hcl"), fmtHCL)
	writeFile(t, filepath.Join(dir, "README.md"), "not a catalog")

	// --- Act ---
	reg, err := Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"fmt", "io"}, reg.ListModules())

	_, err = reg.Resolve("Write", "")
	assert.ErrorIs(t, err, catalog.ErrAmbiguous)
}

func TestLoad_DuplicateModuleAcrossFiles(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "one.hcl"), fmtHCL)
	writeFile(t, filepath.Join(dir, "two.hcl"), fmtHCL)

	// --- Act ---
	_, err := Load(context.Background(), dir)

	// --- Assert ---
	require.ErrorIs(t, err, catalog.ErrSchemaViolation)
	var sv *catalog.SchemaViolation
	require.True(t, errors.As(err, &sv))
	assert.Equal(t, "fmt", sv.ModuleID)
	assert.Equal(t, "id", sv.Field)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "unsupported", "cat.json"), "{}")
	writeFile(t, filepath.Join(dir, "broken.hcl"), `module "io" {`)
	writeFile(t, filepath.Join(dir, "empty-dir", ".keep"), "")

	testCases := []struct {
		name string
		path string
		want string
	}{
		{name: "missing path", path: filepath.Join(dir, "absent.hcl"), want: "failed to access catalog source"},
		{name: "unknown extension", path: filepath.Join(dir, "notes.txt"), want: "no catalog format"},
		{name: "decode error", path: filepath.Join(dir, "broken.hcl"), want: "broken.hcl"},
		{name: "no catalog files", path: filepath.Join(dir, "empty-dir"), want: "no catalog files found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(context.Background(), tc.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "embedded:traits.hcl", Describe(""))
	assert.Equal(t, "cat.hcl", Describe("cat.hcl"))
}

func TestWatcher_ReportsSettledChange(t *testing.T) {
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "fmt.hcl")
	writeFile(t, path, fmtHCL)

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(context.Context) { calls.Add(1) })
	}()

	// --- Act ---
	// The watch is registered in NewWatcher, so writes made now are seen.
	for i := 0; i < 3; i++ {
		writeFile(t, path, fmtHCL)
	}
	writeFile(t, filepath.Join(filepath.Dir(path), "unrelated.hcl"), fmtHCL)

	// --- Assert ---
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher("", time.Second)
	assert.Error(t, err)

	_, err = NewWatcher(filepath.Join(t.TempDir(), "absent"), time.Second)
	assert.Error(t, err)
}
