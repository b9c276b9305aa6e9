package analysis

import (
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
)

// ResolveClassFQN resolves a local class-reference name (one written
// at a use site: an `extends`, a `new`, a type hint) to an FQN,
// honoring `self`/`static`/`parent` against the class currently being
// walked (spec §4.6 rules 1-4).
func (s *AnalysisState) ResolveClassFQN(local symbols.Name) (symbols.FullyQualifiedName, bool) {
	switch local.ToLower() {
	case "self", "static":
		if s.InClass == nil {
			return symbols.FullyQualifiedName{}, false
		}
		return s.InClass.Name.FQN, true
	case "parent":
		cd, ok := s.Symbols.GetClass(s.InClass.Name.FQN)
		if s.InClass == nil || !ok {
			return symbols.FullyQualifiedName{}, false
		}
		return cd.GetParent()
	}
	return s.GetFQSymbolNameFromLocalName(local), true
}

// LookupMethod walks a class's own methods, then its parent chain,
// then its imported traits, matching spec §4.6's "method lookup walks
// own methods, then base class, then imported traits, in that order".
// A same-named method declared directly on the class always wins over
// one pulled in from a trait.
func LookupMethod(store *symboldata.Store, classFQN symbols.FullyQualifiedName, name symbols.Name) (*symboldata.MethodData, bool) {
	cd, ok := store.GetClass(classFQN)
	if !ok {
		if id, ok := store.GetInterface(classFQN); ok {
			return lookupInterfaceMethod(store, id, name)
		}
		return nil, false
	}
	if m, ok := cd.GetMethod(name); ok {
		return m, true
	}
	if parent, ok := cd.GetParent(); ok {
		if m, ok := LookupMethod(store, parent, name); ok {
			return m, true
		}
	}
	for _, traitFQN := range cd.Traits {
		if td, ok := store.GetTrait(traitFQN); ok {
			if m, ok := td.GetMethod(name); ok {
				return m, true
			}
		}
	}
	return nil, false
}

func lookupInterfaceMethod(store *symboldata.Store, id *symboldata.InterfaceData, name symbols.Name) (*symboldata.MethodData, bool) {
	if m, ok := id.GetMethod(name); ok {
		return m, true
	}
	for _, ext := range id.Extends {
		if parent, ok := store.GetInterface(ext); ok {
			if m, ok := lookupInterfaceMethod(store, parent, name); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// LookupProperty walks own properties then the parent chain (traits
// contribute properties too, but never override a same-named class
// property, mirroring LookupMethod's precedence).
func LookupProperty(store *symboldata.Store, classFQN symbols.FullyQualifiedName, name symbols.Name) (*symboldata.PropertyData, bool) {
	cd, ok := store.GetClass(classFQN)
	if !ok {
		return nil, false
	}
	if p, ok := cd.GetProperty(name); ok {
		return p, true
	}
	if parent, ok := cd.GetParent(); ok {
		if p, ok := LookupProperty(store, parent, name); ok {
			return p, true
		}
	}
	for _, traitFQN := range cd.Traits {
		if td, ok := store.GetTrait(traitFQN); ok {
			if p, ok := td.GetProperty(name); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// LookupClassConstant walks own constants, then the parent chain,
// then each implemented interface depth-first (spec §4.6: "constant
// lookup walks own, then base, then each implemented interface
// depth-first").
func LookupClassConstant(store *symboldata.Store, classFQN symbols.FullyQualifiedName, name symbols.Name) (*symboldata.ConstantData, bool) {
	cd, ok := store.GetClass(classFQN)
	if !ok {
		if id, ok := store.GetInterface(classFQN); ok {
			return lookupInterfaceConstant(store, id, name)
		}
		return nil, false
	}
	if c, ok := cd.GetConstant(name); ok {
		return c, true
	}
	if parent, ok := cd.GetParent(); ok {
		if c, ok := LookupClassConstant(store, parent, name); ok {
			return c, true
		}
	}
	for _, ifaceFQN := range cd.Interfaces {
		if id, ok := store.GetInterface(ifaceFQN); ok {
			if c, ok := lookupInterfaceConstant(store, id, name); ok {
				return c, true
			}
		}
	}
	return nil, false
}

func lookupInterfaceConstant(store *symboldata.Store, id *symboldata.InterfaceData, name symbols.Name) (*symboldata.ConstantData, bool) {
	if c, ok := id.Constants[string(name)]; ok {
		return c, true
	}
	for _, ext := range id.Extends {
		if parent, ok := store.GetInterface(ext); ok {
			if c, ok := lookupInterfaceConstant(store, parent, name); ok {
				return c, true
			}
		}
	}
	return nil, false
}

// classAncestry returns classFQN plus the FQN of every class it
// transitively extends (not interfaces), innermost first.
func classAncestry(store *symboldata.Store, classFQN symbols.FullyQualifiedName) []symbols.FullyQualifiedName {
	out := []symbols.FullyQualifiedName{classFQN}
	cur := classFQN
	for {
		cd, ok := store.GetClass(cur)
		if !ok {
			break
		}
		parent, ok := cd.GetParent()
		if !ok {
			break
		}
		out = append(out, parent)
		cur = parent
	}
	return out
}

// classImplementsInterface reports whether classFQN, or any ancestor
// in its extends chain, lists targetFQN (or a descendant of it via
// interface-extends) among its implemented interfaces.
func classImplementsInterface(store *symboldata.Store, classFQN, targetFQN symbols.FullyQualifiedName) bool {
	for _, anc := range classAncestry(store, classFQN) {
		cd, ok := store.GetClass(anc)
		if !ok {
			continue
		}
		for _, ifaceFQN := range cd.Interfaces {
			if interfaceExtendsOrIs(store, ifaceFQN, targetFQN) {
				return true
			}
		}
	}
	return false
}

func interfaceExtendsOrIs(store *symboldata.Store, ifaceFQN, targetFQN symbols.FullyQualifiedName) bool {
	if ifaceFQN.Equal(targetFQN) {
		return true
	}
	id, ok := store.GetInterface(ifaceFQN)
	if !ok {
		return false
	}
	for _, ext := range id.Extends {
		if interfaceExtendsOrIs(store, ext, targetFQN) {
			return true
		}
	}
	return false
}

// IsInstanceOf reports whether a value statically typed as fromFQN can
// be an instance of targetFQN: reflexive, transitive over `extends`,
// and true when targetFQN is implemented (directly or via an
// ancestor) (spec §8's instanceof-reflexivity invariant).
func IsInstanceOf(store *symboldata.Store, fromFQN, targetFQN symbols.FullyQualifiedName) bool {
	for _, anc := range classAncestry(store, fromFQN) {
		if anc.Equal(targetFQN) {
			return true
		}
	}
	return classImplementsInterface(store, fromFQN, targetFQN)
}

// IsInstanceOfUnion reports whether every discrete member of u that
// names a class is an instance of targetFQN; Unknown/Mixed/Object
// members are treated as "maybe" and do not count as a confirmed
// match, matching phptype.IsInstanceOf's conservative stance for
// untyped values.
func IsInstanceOfUnion(store *symboldata.Store, u phptype.UnionType, targetFQN symbols.FullyQualifiedName) bool {
	if u.Empty() {
		return false
	}
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNamed, phptype.KindClassType:
			if !IsInstanceOf(store, d.FQN, targetFQN) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
