// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

// QualifiedName identifies a capability within a module.
type QualifiedName struct {
	Module string
	Name   string
}

// Registry is the immutable, indexed aggregate of a validated catalog.
// The zero value is not usable; obtain one from Load.
type Registry struct {
	modules []*Module
	byID    map[string]*Module

	// byQualifiedName is the ground truth: one entry per declared capability.
	byQualifiedName map[QualifiedName]*Capability
	// byBareName maps a capability name to its declaring modules, in module
	// declaration order.
	byBareName map[string][]string

	capabilityCount int
}

// Load validates raw and builds a Registry from it. On a schema violation it
// returns the *SchemaViolation and no Registry. raw is copied; later changes
// to it do not affect the returned Registry.
func Load(raw *RawCatalog) (*Registry, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	return build(raw), nil
}

// build assembles the indexes. raw must already be valid.
func build(raw *RawCatalog) *Registry {
	r := &Registry{
		modules:         make([]*Module, 0, len(raw.Modules)),
		byID:            make(map[string]*Module, len(raw.Modules)),
		byQualifiedName: make(map[QualifiedName]*Capability),
		byBareName:      make(map[string][]string),
	}

	for _, rm := range raw.Modules {
		m := &Module{
			id:           rm.ID,
			introductory: rm.Introductory,
			capabilities: make([]Capability, len(rm.Capabilities)),
			index:        make(map[string]int, len(rm.Capabilities)),
		}
		for i, c := range rm.Capabilities {
			m.capabilities[i] = Capability{
				Name:             c.Name,
				ImplementorFacts: copyFacts(c.ImplementorFacts),
				TraitFacts:       copyFacts(c.TraitFacts),
				Example:          c.Example,
				Signature:        c.Signature,
			}
			m.index[c.Name] = i
		}

		// Index after the slice is final so the pointers stay valid.
		for i := range m.capabilities {
			c := &m.capabilities[i]
			r.byQualifiedName[QualifiedName{Module: m.id, Name: c.Name}] = c
			// A name already seen in an earlier module is not an error: the
			// same bare name may legitimately mean different things.
			r.byBareName[c.Name] = append(r.byBareName[c.Name], m.id)
		}

		r.modules = append(r.modules, m)
		r.byID[m.id] = m
		r.capabilityCount += len(m.capabilities)
	}
	return r
}

// copyFacts copies a fact list, normalizing empty lists to nil.
func copyFacts(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return cloneStrings(in)
}

// Len returns the total number of capability records.
func (r *Registry) Len() int { return r.capabilityCount }
