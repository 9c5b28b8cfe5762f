// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaViolation matches every *SchemaViolation.
	ErrSchemaViolation = errors.New("catalog schema violation")
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous matches every *AmbiguousError.
	ErrAmbiguous = errors.New("ambiguous capability name")
)

// SchemaViolation reports the first structural problem found in a load input.
// CapabilityName is empty when the problem is at module level; ModuleID is
// empty only when the catalog itself is empty.
type SchemaViolation struct {
	ModuleID       string
	CapabilityName string
	Field          string
	Reason         string
}

func (e *SchemaViolation) Error() string {
	var sb strings.Builder
	sb.WriteString("schema violation")
	if e.ModuleID != "" {
		fmt.Fprintf(&sb, " in module %q", e.ModuleID)
	}
	if e.CapabilityName != "" {
		fmt.Fprintf(&sb, ", capability %q", e.CapabilityName)
	}
	fmt.Fprintf(&sb, ": field %q %s", e.Field, e.Reason)
	return sb.String()
}

// Is makes errors.Is(err, ErrSchemaViolation) succeed.
func (e *SchemaViolation) Is(target error) bool { return target == ErrSchemaViolation }

// NotFoundError reports a lookup for a module or capability that is not in
// the Registry. Name is empty for module lookups; ModuleID is empty for bare
// name lookups.
type NotFoundError struct {
	ModuleID string
	Name     string
}

func (e *NotFoundError) Error() string {
	switch {
	case e.Name == "":
		return fmt.Sprintf("module %q not found", e.ModuleID)
	case e.ModuleID == "":
		return fmt.Sprintf("capability %q not found", e.Name)
	default:
		return fmt.Sprintf("capability %q not found in module %q", e.Name, e.ModuleID)
	}
}

// Is makes errors.Is(err, ErrNotFound) succeed.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AmbiguousError reports a bare name declared by more than one module.
// Candidates lists the declaring modules in declaration order.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("capability %q is declared in %d modules (%s); qualify it with a module",
		e.Name, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Is makes errors.Is(err, ErrAmbiguous) succeed.
func (e *AmbiguousError) Is(target error) bool { return target == ErrAmbiguous }
