package phptype

import (
	"sort"
	"strings"
)

// UnionType is a set of DiscreteType alternatives (spec §3: "a PHP
// value's static type is a set of DiscreteType alternatives"). The
// backing slice is kept sorted and deduplicated so two unions built by
// different code paths (e.g. two branches of an if merged in either
// order) compare and print identically — this is load-bearing for the
// merge-commutativity guarantee in spec §8.
type UnionType struct {
	types []DiscreteType
}

// UnionOf builds a UnionType from zero or more discrete alternatives,
// canonicalizing (dedup + sort) immediately.
func UnionOf(ds ...DiscreteType) UnionType {
	var u UnionType
	for _, d := range ds {
		u = u.Add(d)
	}
	return u
}

// Empty reports whether the union carries no alternatives at all —
// distinct from containing Null; an empty union models "never
// observed/no information yet", used before the first write to a
// variable.
func (u UnionType) Empty() bool {
	return len(u.types) == 0
}

// Len returns the number of discrete alternatives.
func (u UnionType) Len() int {
	return len(u.types)
}

// Types returns the canonical, sorted slice of alternatives. Callers
// must not mutate the returned slice.
func (u UnionType) Types() []DiscreteType {
	return u.types
}

// Add returns a new UnionType with d folded in, deduplicated against
// existing alternatives via DiscreteType.Equal.
func (u UnionType) Add(d DiscreteType) UnionType {
	for _, existing := range u.types {
		if existing.Equal(d) {
			return u
		}
	}
	next := make([]DiscreteType, len(u.types), len(u.types)+1)
	copy(next, u.types)
	next = append(next, d)
	sort.Slice(next, func(i, j int) bool { return next[i].sortKey() < next[j].sortKey() })
	return UnionType{types: next}
}

// Merge unions two UnionTypes together (the "|" composition of spec
// §3, and the control-flow branch-merge operation of §4.6).
func (u UnionType) Merge(o UnionType) UnionType {
	out := u
	for _, d := range o.types {
		out = out.Add(d)
	}
	return out
}

// Contains reports whether d (by Equal) is one of the alternatives.
func (u UnionType) Contains(d DiscreteType) bool {
	for _, existing := range u.types {
		if existing.Equal(d) {
			return true
		}
	}
	return false
}

// ContainsKind reports whether any alternative has the given Kind.
func (u UnionType) ContainsKind(k Kind) bool {
	for _, d := range u.types {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// Equal compares two UnionTypes as sets: same cardinality and every
// alternative of u present in o. Canonicalization on construction makes
// slice-order comparison safe, but Equal doesn't rely on that so a
// UnionType assembled by hand still compares correctly.
func (u UnionType) Equal(o UnionType) bool {
	if len(u.types) != len(o.types) {
		return false
	}
	for _, d := range u.types {
		if !o.Contains(d) {
			return false
		}
	}
	return true
}

// IsNullable reports whether Null is one of the alternatives, or any
// alternative is itself nullable (e.g. a nullable generic).
func (u UnionType) IsNullable() bool {
	for _, d := range u.types {
		if d.IsNullable() {
			return true
		}
	}
	return false
}

// WithoutNull returns a copy of u with the Null alternative removed,
// used by instanceof/isset-style narrowing.
func (u UnionType) WithoutNull() UnionType {
	var out UnionType
	for _, d := range u.types {
		if d.Kind != KindNull {
			out = out.Add(d)
		}
	}
	return out
}

// CanEvaluateToTrue/CanEvaluateToFalse report whether at least one
// alternative can evaluate to that truthiness, used by truthiness
// narrowing in if/while/ternary conditions (spec §4.5).
func (u UnionType) CanEvaluateToTrue() bool {
	for _, d := range u.types {
		if d.CanEvaluateToTrue() {
			return true
		}
	}
	return false
}

func (u UnionType) CanEvaluateToFalse() bool {
	for _, d := range u.types {
		if d.CanEvaluateToFalse() {
			return true
		}
	}
	return false
}

// ContainsTemplate reports whether any alternative still carries an
// unsubstituted Template.
func (u UnionType) ContainsTemplate() bool {
	for _, d := range u.types {
		if d.ContainsTemplate() {
			return true
		}
	}
	return false
}

func (u UnionType) String() string {
	if len(u.types) == 0 {
		return "*empty*"
	}
	parts := make([]string, len(u.types))
	for i, d := range u.types {
		parts[i] = d.String()
	}
	return strings.Join(parts, "|")
}

// Unknown reports whether the union is exactly the single Unknown
// alternative — the bottom type assigned when inference gives up.
func (u UnionType) IsUnknown() bool {
	return len(u.types) == 1 && u.types[0].Kind == KindUnknown
}

// UnknownUnion is the canonical "*unknown*" union returned when pass 3
// cannot infer anything for an expression.
func UnknownUnion() UnionType {
	return UnionOf(Unknown())
}

// MixedUnion is the canonical "mixed" union.
func MixedUnion() UnionType {
	return UnionOf(Mixed())
}

// VoidUnion is the canonical "void" union, used for function/method
// return types with no declared or inferred return.
func VoidUnion() UnionType {
	return UnionOf(Void())
}

// NullUnion is the canonical "null" union.
func NullUnion() UnionType {
	return UnionOf(Null())
}

// BoolUnion is the canonical "bool" union (distinct from true|false,
// which constant-folding may produce instead).
func BoolUnion() UnionType {
	return UnionOf(Bool())
}
