package phptype

import "github.com/doITmagic/php-analyzer/internal/symbols"

// This file groups the small classification predicates that
// orig:src/types/discrete.rs exposes as a TypeTraits trait. Go has no
// trait/extension-method mechanism, so they are plain functions over
// UnionType — callers that used `ty.is_int()` in the original instead
// write `phptype.IsInt(ty)`.

// IsInt reports whether every alternative is Int (a union still
// containing e.g. Int|String is not "an int").
func IsInt(u UnionType) bool {
	return allKind(u, KindInt)
}

func IsFloat(u UnionType) bool {
	return allKind(u, KindFloat)
}

func IsString(u UnionType) bool {
	return allKind(u, KindString)
}

// IsBool reports whether every alternative is Bool, True, or False.
func IsBool(u UnionType) bool {
	for _, d := range u.types {
		if d.Kind != KindBool && d.Kind != KindTrue && d.Kind != KindFalse {
			return false
		}
	}
	return !u.Empty()
}

// IsCallable reports whether every alternative is Callable or
// TypedCallable.
func IsCallable(u UnionType) bool {
	for _, d := range u.types {
		if d.Kind != KindCallable && d.Kind != KindTypedCallable {
			return false
		}
	}
	return !u.Empty()
}

func allKind(u UnionType, k Kind) bool {
	if u.Empty() {
		return false
	}
	for _, d := range u.types {
		if d.Kind != k {
			return false
		}
	}
	return true
}

// CanBeCastToString reports whether PHP permits an implicit
// string-cast of every alternative: scalars, Stringable-ish Named
// types are accepted optimistically (the analyzer does not track
// __toString presence per class, matching spec §4.5's Non-goals on
// full interface-satisfaction checking), but Array/Object/Resource may
// not.
func CanBeCastToString(u UnionType) bool {
	for _, d := range u.types {
		switch d.Kind {
		case KindArray, KindVector, KindHashMap, KindShape, KindResource:
			return false
		}
	}
	return true
}

// CanBeInstanceOf reports whether a value typed as u could plausibly be
// an instance of the class named by target — true whenever u contains
// Object, Mixed, Unknown, a Named/Generic type matching or unrelated to
// target (the analyzer has no full class hierarchy reachability check
// here; that refinement is deferred to NarrowInstanceOf's ancestor
// walk in package analysis), or the Special Self/Static/Parent markers.
func CanBeInstanceOf(u UnionType) bool {
	for _, d := range u.types {
		switch d.Kind {
		case KindObject, KindMixed, KindUnknown, KindNamed, KindSpecial, KindGeneric:
			return true
		}
	}
	return false
}

// IsInstanceOf reports whether u is already narrowed to exactly one
// Named alternative matching target (used to skip redundant
// instanceof narrowing).
func IsInstanceOf(u UnionType, target symbols.FullyQualifiedName) bool {
	if u.Len() != 1 {
		return false
	}
	d := u.types[0]
	return d.Kind == KindNamed && d.FQN.Equal(target)
}

// CheckTypeCasing reports whether local, as written at a use site,
// matches the casing of canonical (the class's declared name),
// returning false when only the casing differs — used to emit
// WrongClassNameCasing without re-running full FQN resolution.
func CheckTypeCasing(local, canonical symbols.Name) bool {
	if local == canonical {
		return true
	}
	return !local.EqualFold(canonical)
}

// IsSameType is an explicit alias of DiscreteType.Equal for call sites
// that read more naturally with a type-traits-style free function.
func IsSameType(a, b DiscreteType) bool {
	return a.Equal(b)
}
