// Package codec reads and writes catalog files.
//
// Every codec maps a file to catalog.RawCatalog and back, preserving the
// declaration order of modules and capabilities. Decoders only check syntax
// and shape; emptiness and uniqueness rules are left to catalog.Validate so
// that all formats report the same SchemaViolation for the same mistake.
//
// Supported formats:
//
//   - hcl (.hcl): labelled `module` and `capability` blocks. This is the
//     format of the bundled catalog.
//   - yaml (.yaml, .yml): nested mappings, module id -> {introductory,
//     capabilities: {name -> record}}; read through yaml.Node so key order
//     survives.
//   - msgpack (.msgpack, .mpk): a compact snapshot of the ordered structure.
package codec
