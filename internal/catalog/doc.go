// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package catalog is the data model and lookup engine of the trait reference.
//
// A catalog is a list of topical modules (borrow, cmp, fmt, io, ...), each of
// which declares an ordered list of capability records. The package turns the
// loosely structured load input (RawCatalog) into an immutable, indexed
// Registry.
//
// # Lifecycle
//
// Load validates the raw input and builds the Registry in one step. A Registry
// is never modified afterwards: every accessor returns copies, so any number
// of goroutines may query it without synchronization. Reloading means calling
// Load again and discarding the old value.
//
// # Lookup semantics
//
// Capability names are unique within a module but not across modules; "Write"
// exists in both "fmt" and "io". A qualified lookup (module + name) always
// identifies at most one record. A bare lookup succeeds only when exactly one
// module declares the name; otherwise the caller receives an AmbiguousError
// listing every candidate module in declaration order and must ask again with
// a module hint. Matching is exact and case-sensitive.
//
// The package never logs. Failures are returned as *SchemaViolation,
// *NotFoundError or *AmbiguousError, which match ErrSchemaViolation,
// ErrNotFound and ErrAmbiguous through errors.Is.
package catalog
