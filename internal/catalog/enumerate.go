// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

// ListModules returns module ids in declaration order. Each call returns a
// new slice.
func (r *Registry) ListModules() []string {
	ids := make([]string, len(r.modules))
	for i, m := range r.modules {
		ids[i] = m.id
	}
	return ids
}

// ListCapabilities returns the capability names of a module in declaration
// order, or a *NotFoundError when the module does not exist.
func (r *Registry) ListCapabilities(moduleID string) ([]string, error) {
	m, err := r.GetModule(moduleID)
	if err != nil {
		return nil, err
	}
	return m.Names(), nil
}

// GetModule returns a read-only view of a module.
func (r *Registry) GetModule(moduleID string) (*Module, error) {
	m, ok := r.byID[moduleID]
	if !ok {
		return nil, &NotFoundError{ModuleID: moduleID}
	}
	return m, nil
}

// Modules returns read-only views of all modules in declaration order.
func (r *Registry) Modules() []*Module {
	out := make([]*Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Export returns the Registry in load-input shape. The result is a deep copy
// and Load(r.Export()) yields a Registry with the same content as r.
func (r *Registry) Export() *RawCatalog {
	raw := &RawCatalog{Modules: make([]RawModule, len(r.modules))}
	for i, m := range r.modules {
		raw.Modules[i] = RawModule{
			ID:           m.id,
			Introductory: m.introductory,
			Capabilities: m.Capabilities(),
		}
	}
	return raw
}
