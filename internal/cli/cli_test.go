package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/lookup"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) code() int {
	if r.err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(r.err, &exitErr) {
		return exitErr.Code
	}
	return -1
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Execute(context.Background(), append([]string{"--color", "off"}, args...), &out, &errOut)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func TestExecute_ExitCodes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		code int
	}{
		{name: "show unique", args: []string{"show", "Clone"}, code: ExitOK},
		{name: "show qualified", args: []string{"show", "fmt::Write"}, code: ExitOK},
		{name: "show module flag", args: []string{"show", "Write", "--module", "io"}, code: ExitOK},
		{name: "show ambiguous", args: []string{"show", "Write"}, code: ExitAmbiguous},
		{name: "show not found", args: []string{"show", "Frobnicate"}, code: ExitNotFound},
		{name: "show wrong module", args: []string{"show", "io::Clone"}, code: ExitNotFound},
		{name: "show invalid ref", args: []string{"show", "io::"}, code: ExitUsage},
		{name: "show missing arg", args: []string{"show"}, code: ExitUsage},
		{name: "list", args: []string{"list"}, code: ExitOK},
		{name: "list module", args: []string{"list", "iter"}, code: ExitOK},
		{name: "list unknown module", args: []string{"list", "net"}, code: ExitNotFound},
		{name: "module", args: []string{"module", "marker"}, code: ExitOK},
		{name: "module unknown", args: []string{"module", "net"}, code: ExitNotFound},
		{name: "validate bundled", args: []string{"validate"}, code: ExitOK},
		{name: "validate missing path", args: []string{"validate", "/does/not/exist.hcl"}, code: ExitInternal},
		{name: "export", args: []string{"export", "--format", "yaml"}, code: ExitOK},
		{name: "export unknown format", args: []string{"export", "--format", "toml"}, code: ExitUsage},
		{name: "version", args: []string{"version"}, code: ExitOK},
		{name: "unknown command", args: []string{"frobnicate"}, code: ExitUsage},
		{name: "bad output", args: []string{"--output", "xml", "list"}, code: ExitUsage},
		{name: "bad color", args: []string{"--color", "sometimes", "list"}, code: ExitUsage},
		{name: "bad log level", args: []string{"--log-level", "loud", "list"}, code: ExitUsage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := execute(t, tc.args...)
			assert.Equal(t, tc.code, r.code(), "stdout=%q err=%v", r.stdout, r.err)
		})
	}
}

func TestExecute_ShowText(t *testing.T) {
	t.Parallel()

	r := execute(t, "show", "io::Write")

	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "io::Write\n")
	assert.Contains(t, r.stdout, "Signature\n")
	assert.Contains(t, r.stdout, "Example\n")
	assert.NotContains(t, r.stdout, "\x1b[")
}

func TestExecute_ShowAmbiguousListsCandidates(t *testing.T) {
	t.Parallel()

	r := execute(t, "show", "Write")

	assert.Equal(t, ExitAmbiguous, r.code())
	assert.Contains(t, r.stdout, "fmt::Write")
	assert.Contains(t, r.stdout, "io::Write")
	assert.Contains(t, r.err.Error(), "qualify it with a module")
}

func TestExecute_ShowJSON(t *testing.T) {
	t.Parallel()

	r := execute(t, "--output", "json", "show", "Clone")
	require.NoError(t, r.err)

	var reply lookup.Reply
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &reply))
	assert.Equal(t, lookup.StatusOK, reply.Status)
	assert.Equal(t, "clone", reply.Module)
	require.NotNil(t, reply.Capability)
	assert.Equal(t, "Clone", reply.Capability.Name)
}

func TestExecute_ListJSON(t *testing.T) {
	t.Parallel()

	r := execute(t, "--output", "json", "list")
	require.NoError(t, r.err)

	var view modulesView
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &view))
	assert.Len(t, view.Modules, 12)
	assert.Equal(t, "borrow", view.Modules[0])
}

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const smallCatalog = `
module "ops" {
  introductory = "I deal with operators"

  capability "Add" {
    implementor_facts = ["I can be used with +."]
    example           = "a + b"
    signature         = "pub trait Add<Rhs = Self>"
  }
}
`

func TestExecute_CatalogFlagAndConfigFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	catalogPath := writeCatalog(t, "ops.hcl", smallCatalog)
	configPath := writeCatalog(t, "rustdex.toml", fmt.Sprintf("catalog = %q\n", filepath.ToSlash(catalogPath)))

	// --- Act ---
	fromFlag := execute(t, "--catalog", catalogPath, "list")
	fromConfig := execute(t, "--config", configPath, "list")
	overridden := execute(t, "--config", configPath, "--catalog", "", "list")

	// --- Assert ---
	require.NoError(t, fromFlag.err)
	assert.Equal(t, "ops\n", fromFlag.stdout)
	require.NoError(t, fromConfig.err)
	assert.Equal(t, "ops\n", fromConfig.stdout)
	require.NoError(t, overridden.err)
	assert.Contains(t, overridden.stdout, "borrow\n", "an empty --catalog selects the bundled catalog")
}

func TestExecute_ShowReachesFreeFormNames(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "slug.yaml", `
my-mod:
  introductory: A module id that is a slug.
  capabilities:
    Add<Rhs>:
      trait_facts: ["I am generic."]
      example: a + b
      signature: pub trait Add<Rhs>
`)

	for _, args := range [][]string{
		{"show", "Add<Rhs>", "--module", "my-mod"},
		{"show", "my-mod::Add<Rhs>"},
		{"show", "Add<Rhs>"},
	} {
		r := execute(t, append([]string{"--catalog", path}, args...)...)
		require.NoError(t, r.err, args)
		assert.Contains(t, r.stdout, "my-mod::Add<Rhs>\n", args)
	}
}

func TestExecute_ValidateReportsViolation(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, "bad.hcl", `module "ops" { introductory = "x" }`)
	r := execute(t, "validate", path)

	assert.Equal(t, ExitSchema, r.code())
	assert.Contains(t, r.err.Error(), `field "capabilities"`)
}

func TestExecute_ValidateOK(t *testing.T) {
	t.Parallel()

	r := execute(t, "validate", writeCatalog(t, "ops.hcl", smallCatalog))

	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "ok: ")
	assert.Contains(t, r.stdout, "1 modules and 1 capabilities")
}

func TestExecute_ExportToFileInfersFormat(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := writeCatalog(t, "ops.hcl", smallCatalog)
	dst := filepath.Join(t.TempDir(), "ops.yaml")

	// --- Act ---
	r := execute(t, "--catalog", src, "export", "-o", dst)
	require.NoError(t, r.err)
	back := execute(t, "--catalog", dst, "show", "Add")

	// --- Assert ---
	require.NoError(t, back.err)
	assert.Contains(t, back.stdout, "ops::Add")
	assert.Empty(t, r.stdout)
}

func TestExitErrorFor(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{err: &catalog.NotFoundError{Name: "X"}, code: ExitNotFound},
		{err: fmt.Errorf("wrapped: %w", &catalog.AmbiguousError{Name: "Write", Candidates: []string{"fmt", "io"}}), code: ExitAmbiguous},
		{err: &catalog.SchemaViolation{Field: "modules", Reason: "must declare at least one module"}, code: ExitSchema},
		{err: &ExitError{Code: ExitUsage, Message: "x"}, code: ExitUsage},
		{err: errors.New("disk on fire"), code: ExitInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.code, exitErrorFor(tc.err).Code)
		})
	}
}
