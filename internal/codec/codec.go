package codec

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/rustdex/internal/catalog"
)

// Codec converts between catalog files and catalog.RawCatalog.
type Codec interface {
	// Name is the format name used on the command line and in the HTTP API.
	Name() string
	// Extensions lists the file extensions, with leading dot, handled by the codec.
	Extensions() []string
	// Decode parses data. filename is used for diagnostics only.
	Decode(ctx context.Context, data []byte, filename string) (*catalog.RawCatalog, error)
	// Encode renders raw in the codec's format.
	Encode(ctx context.Context, raw *catalog.RawCatalog) ([]byte, error)
}

var codecs = []Codec{
	NewHCL(),
	NewYAML(),
	NewMsgpack(),
}

// All returns every supported codec. HCL comes first.
func All() []Codec {
	out := make([]Codec, len(codecs))
	copy(out, codecs)
	return out
}

// Names returns the names of all supported codecs, sorted.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for _, c := range codecs {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// ByName returns the codec with the given name.
func ByName(name string) (Codec, error) {
	for _, c := range codecs {
		if c.Name() == strings.ToLower(name) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown catalog format %q (supported: %s)", name, strings.Join(Names(), ", "))
}

// ForFilename picks a codec from a file's extension.
func ForFilename(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range codecs {
		for _, e := range c.Extensions() {
			if e == ext {
				return c, nil
			}
		}
	}
	return nil, fmt.Errorf("no catalog format for file %s (extension %q)", path, ext)
}

// Extensions returns every extension handled by some codec.
func Extensions() []string {
	var exts []string
	for _, c := range codecs {
		exts = append(exts, c.Extensions()...)
	}
	return exts
}
