package phptype

import "strings"

// IntersectionType is a conjunction of UnionTypes (spec §3: PHP 8.1+
// intersection types such as Countable&Traversable). Each member is
// itself a UnionType to allow the parser to accept a parenthesized
// union as one intersection operand, e.g. (A|B)&C, even though that
// form is rare in practice.
type IntersectionType struct {
	members []UnionType
}

// IntersectionOf builds an IntersectionType from its member unions.
func IntersectionOf(members ...UnionType) IntersectionType {
	return IntersectionType{members: append([]UnionType(nil), members...)}
}

func (it IntersectionType) Members() []UnionType {
	return it.members
}

func (it IntersectionType) Len() int {
	return len(it.members)
}

// Normalize collapses a single-member intersection down to its lone
// UnionType's discrete alternatives; an intersection of one operand is
// not meaningfully different from that operand alone.
func (it IntersectionType) Normalize() UnionType {
	if len(it.members) == 1 {
		return it.members[0]
	}
	var out UnionType
	for _, m := range it.members {
		out = out.Merge(m)
	}
	return out
}

func (it IntersectionType) String() string {
	parts := make([]string, len(it.members))
	for i, m := range it.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, "&")
}

// Equal compares two intersections member-for-member in order; PHP's
// intersection syntax is unordered in principle but the parser always
// produces them in source order so structural comparison is sufficient
// here.
func (it IntersectionType) Equal(o IntersectionType) bool {
	if len(it.members) != len(o.members) {
		return false
	}
	for i := range it.members {
		if !it.members[i].Equal(o.members[i]) {
			return false
		}
	}
	return true
}
