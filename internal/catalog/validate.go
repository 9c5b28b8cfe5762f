// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

import (
	"fmt"
	"strings"
)

// Validate checks raw against the catalog schema and returns the first
// violation as a *SchemaViolation, or nil.
//
// Traversal is deterministic: modules in declaration order, and within a
// module its own fields before its capabilities, which are checked in
// declaration order. Repeated runs on the same input report the same
// violation.
func Validate(raw *RawCatalog) error {
	if raw == nil || len(raw.Modules) == 0 {
		return &SchemaViolation{Field: "modules", Reason: "must declare at least one module"}
	}

	seenModules := make(map[string]struct{}, len(raw.Modules))
	for i := range raw.Modules {
		m := &raw.Modules[i]
		if blank(m.ID) {
			return &SchemaViolation{
				ModuleID: fmt.Sprintf("#%d", i),
				Field:    "id",
				Reason:   "must not be empty",
			}
		}
		if _, dup := seenModules[m.ID]; dup {
			return &SchemaViolation{ModuleID: m.ID, Field: "id", Reason: "duplicate module id"}
		}
		seenModules[m.ID] = struct{}{}

		if err := validateModule(m); err != nil {
			return err
		}
	}
	return nil
}

func validateModule(m *RawModule) error {
	if blank(m.Introductory) {
		return &SchemaViolation{ModuleID: m.ID, Field: "introductory", Reason: "must not be empty"}
	}
	if len(m.Capabilities) == 0 {
		return &SchemaViolation{ModuleID: m.ID, Field: "capabilities", Reason: "must declare at least one capability"}
	}

	seen := make(map[string]struct{}, len(m.Capabilities))
	for i := range m.Capabilities {
		c := &m.Capabilities[i]
		if blank(c.Name) {
			return &SchemaViolation{
				ModuleID:       m.ID,
				CapabilityName: fmt.Sprintf("#%d", i),
				Field:          "name",
				Reason:         "must not be empty",
			}
		}
		if _, dup := seen[c.Name]; dup {
			return &SchemaViolation{ModuleID: m.ID, CapabilityName: c.Name, Field: "name", Reason: "duplicate capability name in module"}
		}
		seen[c.Name] = struct{}{}

		if err := validateCapability(m.ID, c); err != nil {
			return err
		}
	}
	return nil
}

func validateCapability(moduleID string, c *Capability) error {
	violation := func(field, reason string) error {
		return &SchemaViolation{ModuleID: moduleID, CapabilityName: c.Name, Field: field, Reason: reason}
	}

	if len(c.ImplementorFacts)+len(c.TraitFacts) == 0 {
		return violation("facts", "implementor_facts and trait_facts must contain at least one entry together")
	}
	for i, f := range c.ImplementorFacts {
		if blank(f) {
			return violation(fmt.Sprintf("implementor_facts[%d]", i), "must not be empty")
		}
	}
	for i, f := range c.TraitFacts {
		if blank(f) {
			return violation(fmt.Sprintf("trait_facts[%d]", i), "must not be empty")
		}
	}
	if blank(c.Example) {
		return violation("example", "must not be empty")
	}
	if blank(c.Signature) {
		return violation("signature", "must not be empty")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
