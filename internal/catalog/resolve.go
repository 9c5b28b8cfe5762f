// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package catalog

// Resolve looks up a capability by name. An empty moduleHint means the name
// is bare.
//
// With a hint, the result is the record declared under that module or a
// *NotFoundError carrying both the module and the name. Without one, the
// name must be declared by exactly one module: zero modules yields a
// *NotFoundError and two or more yield an *AmbiguousError listing every
// candidate. Resolve never picks a candidate on the caller's behalf.
//
// Matching is exact and case-sensitive.
func (r *Registry) Resolve(name, moduleHint string) (Capability, error) {
	if moduleHint != "" {
		c, ok := r.byQualifiedName[QualifiedName{Module: moduleHint, Name: name}]
		if !ok {
			return Capability{}, &NotFoundError{ModuleID: moduleHint, Name: name}
		}
		return c.clone(), nil
	}

	owners := r.byBareName[name]
	switch len(owners) {
	case 0:
		return Capability{}, &NotFoundError{Name: name}
	case 1:
		return r.byQualifiedName[QualifiedName{Module: owners[0], Name: name}].clone(), nil
	default:
		return Capability{}, &AmbiguousError{Name: name, Candidates: cloneStrings(owners)}
	}
}

// ResolveQualified is Resolve with a mandatory module.
func (r *Registry) ResolveQualified(q QualifiedName) (Capability, error) {
	if q.Module == "" {
		return Capability{}, &NotFoundError{Name: q.Name}
	}
	return r.Resolve(q.Name, q.Module)
}

// Candidates returns the modules declaring name, in declaration order, or nil
// when no module does.
func (r *Registry) Candidates(name string) []string {
	return cloneStrings(r.byBareName[name])
}
