// Package data bundles the reference catalog shipped with the binary.
package data

import _ "embed"

// TraitsFilename is the name the bundled catalog is decoded under; its
// extension selects the codec.
const TraitsFilename = "traits.hcl"

// Traits is the bundled catalog source.
//
//go:embed traits.hcl
var Traits []byte
