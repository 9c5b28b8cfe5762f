// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the record shapes: the load input (RawCatalog) and the
// read-only views handed out by a Registry (Module, Capability).

package catalog

// Capability is one documented trait: what an implementor gains, facts about
// the trait itself, an example and the formal signature.
//
// Capability values returned by a Registry are copies; modifying one has no
// effect on the Registry.
type Capability struct {
	Name             string
	ImplementorFacts []string
	TraitFacts       []string
	Example          string
	Signature        string
}

// clone returns a deep copy of c.
func (c Capability) clone() Capability {
	c.ImplementorFacts = cloneStrings(c.ImplementorFacts)
	c.TraitFacts = cloneStrings(c.TraitFacts)
	return c
}

// RawModule is a module as it appears in the load input.
type RawModule struct {
	ID           string
	Introductory string
	Capabilities []Capability
}

// RawCatalog is the load input: modules in declaration order. It is also the
// shape produced by Registry.Export.
type RawCatalog struct {
	Modules []RawModule
}

// Module is a read-only view of one topical module.
type Module struct {
	id           string
	introductory string
	capabilities []Capability
	index        map[string]int
}

// ID returns the module identifier.
func (m *Module) ID() string { return m.id }

// Introductory returns the module summary.
func (m *Module) Introductory() string { return m.introductory }

// Len returns the number of capabilities declared by the module.
func (m *Module) Len() int { return len(m.capabilities) }

// Names returns capability names in declaration order.
func (m *Module) Names() []string {
	names := make([]string, len(m.capabilities))
	for i, c := range m.capabilities {
		names[i] = c.Name
	}
	return names
}

// Capabilities returns copies of the module's records in declaration order.
func (m *Module) Capabilities() []Capability {
	out := make([]Capability, len(m.capabilities))
	for i, c := range m.capabilities {
		out[i] = c.clone()
	}
	return out
}

// Capability returns the named record of this module.
func (m *Module) Capability(name string) (Capability, bool) {
	i, ok := m.index[name]
	if !ok {
		return Capability{}, false
	}
	return m.capabilities[i].clone(), true
}

// Position returns the declaration index of the named capability, or -1.
func (m *Module) Position(name string) int {
	if i, ok := m.index[name]; ok {
		return i
	}
	return -1
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
