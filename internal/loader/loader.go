// Package loader turns catalog sources into registries.
//
// A source is a single catalog file, a directory of catalog files, or, when
// no path is given, the catalog bundled with the binary.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/rustdex/data"
	"github.com/vk/rustdex/internal/catalog"
	"github.com/vk/rustdex/internal/codec"
	"github.com/vk/rustdex/internal/ctxlog"
	"github.com/vk/rustdex/internal/fsutil"
)

// EmbeddedName is how the bundled catalog is referred to in logs and errors.
const EmbeddedName = "embedded:" + data.TraitsFilename

// Describe returns a printable name for the source at path.
func Describe(path string) string {
	if path == "" {
		return EmbeddedName
	}
	return path
}

// Load reads the source at path and builds a registry from it.
func Load(ctx context.Context, path string) (*catalog.Registry, error) {
	raw, err := Read(ctx, path)
	if err != nil {
		return nil, err
	}
	reg, err := catalog.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from %s: %w", Describe(path), err)
	}
	ctxlog.FromContext(ctx).Debug("Catalog loaded.",
		"source", Describe(path),
		"modules", len(reg.ListModules()),
		"capabilities", reg.Len())
	return reg, nil
}

// Read decodes the source at path without validating it. Directory sources
// are concatenated in lexical file order.
func Read(ctx context.Context, path string) (*catalog.RawCatalog, error) {
	logger := ctxlog.FromContext(ctx)

	if path == "" {
		logger.Debug("Reading embedded catalog.", "file", data.TraitsFilename)
		return decodeFile(ctx, data.Traits, data.TraitsFilename)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog source: %w", err)
	}
	if !info.IsDir() {
		return readFile(ctx, path)
	}

	files, err := fsutil.FindFilesByExtension(path, codec.Extensions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog directory %s: %w", path, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalog files found in %s", path)
	}
	logger.Debug("Found catalog files.", "dir", path, "count", len(files))

	merged := &catalog.RawCatalog{}
	for _, file := range files {
		raw, err := readFile(ctx, file)
		if err != nil {
			return nil, err
		}
		merged.Modules = append(merged.Modules, raw.Modules...)
	}
	return merged, nil
}

func readFile(ctx context.Context, path string) (*catalog.RawCatalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Reading catalog file.", "path", path, "bytes", len(content))
	return decodeFile(ctx, content, path)
}

func decodeFile(ctx context.Context, content []byte, filename string) (*catalog.RawCatalog, error) {
	c, err := codec.ForFilename(filename)
	if err != nil {
		return nil, err
	}
	return c.Decode(ctx, content, filename)
}
