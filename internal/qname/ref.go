package qname

import (
	"fmt"
	"strings"
	"unicode"
)

// Ref is a parsed capability reference. Module is empty for bare names.
type Ref struct {
	Module string
	Name   string
}

// cratePrefix is dropped from three-segment references.
const cratePrefix = "std"

// Parse turns raw into a Ref. Surrounding whitespace is ignored.
func Parse(raw string) (Ref, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Ref{}, fmt.Errorf("reference cannot be empty")
	}

	var segments []string
	if strings.Contains(s, "::") {
		segments = strings.Split(s, "::")
	} else {
		segments = strings.Split(s, ".")
	}

	for _, seg := range segments {
		if seg == "" {
			return Ref{}, fmt.Errorf("reference %q contains an empty segment", raw)
		}
		if strings.IndexFunc(seg, unicode.IsSpace) >= 0 {
			return Ref{}, fmt.Errorf("segment %q in reference %q contains whitespace", seg, raw)
		}
	}

	switch len(segments) {
	case 1:
		return Ref{Name: segments[0]}, nil
	case 2:
		return Ref{Module: segments[0], Name: segments[1]}, nil
	case 3:
		if segments[0] != cratePrefix {
			return Ref{}, fmt.Errorf("reference %q: only the %s crate is catalogued", raw, cratePrefix)
		}
		return Ref{Module: segments[1], Name: segments[2]}, nil
	default:
		return Ref{}, fmt.Errorf("reference %q has too many segments", raw)
	}
}

// Exact returns a Ref for a name already known to live in module. name is
// taken verbatim: separators in it are part of the name.
func Exact(module, name string) (Ref, error) {
	if strings.TrimSpace(name) == "" {
		return Ref{}, fmt.Errorf("reference cannot be empty")
	}
	return Ref{Module: module, Name: name}, nil
}
