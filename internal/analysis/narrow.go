package analysis

import (
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// NarrowTruthy returns the subset of u that remains possible when the
// expression is known to have evaluated truthy: Null, False, the
// integer/float zero discretes, empty-string, "0" and empty-array are
// never representable once a condition on the expression passed (spec
// §4.5's truthiness narrowing, mirroring PHP's falsy-value rules
// embodied in phptype.PHPValue.Truthy).
func NarrowTruthy(u phptype.UnionType) phptype.UnionType {
	var out phptype.UnionType
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNull, phptype.KindFalse:
			continue
		case phptype.KindBool:
			out = out.Add(phptype.True())
		default:
			out = out.Add(d)
		}
	}
	return out
}

// NarrowFalsy returns the subset of u that remains possible when the
// expression is known to have evaluated falsy: Null and False survive,
// a bare bool narrows to False, int/float/string/array are kept since
// each has falsy values (0, 0.0, "", "0", []), and any other discrete
// is kept only if it can evaluate to false at all.
func NarrowFalsy(u phptype.UnionType) phptype.UnionType {
	var out phptype.UnionType
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNull, phptype.KindFalse:
			out = out.Add(d)
		case phptype.KindBool:
			out = out.Add(phptype.False())
		case phptype.KindInt, phptype.KindFloat, phptype.KindString, phptype.KindArray:
			// Could have been the falsy member (0, 0.0, "", "0", []),
			// so it remains possible but not exclusively so; keep it.
			out = out.Add(d)
		default:
			if !d.CanEvaluateToFalse() {
				continue
			}
			out = out.Add(d)
		}
	}
	return out
}

// NarrowInstanceOfTrue returns u intersected with targetFQN for the
// true branch of an `instanceof` check: every discrete member that
// cannot possibly be targetFQN is dropped, and an Object/Mixed/Unknown
// member collapses to exactly targetFQN (spec §4.5: "instanceof
// narrowing to T ∩ type(x) on the true branch").
func NarrowInstanceOfTrue(store *symboldata.Store, u phptype.UnionType, targetLocal symbols.Name, targetFQN symbols.FullyQualifiedName) phptype.UnionType {
	var out phptype.UnionType
	matched := false
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNamed, phptype.KindClassType:
			if IsInstanceOf(store, d.FQN, targetFQN) {
				out = out.Add(d)
				matched = true
			}
			// Otherwise: this member is statically known not to be
			// an instance, so the true branch rules it out entirely.
		case phptype.KindObject, phptype.KindMixed, phptype.KindUnknown:
			out = out.Add(phptype.Named(targetLocal, targetFQN))
			matched = true
		default:
			// Non-object discretes cannot pass instanceof; dropped.
		}
	}
	if !matched {
		return phptype.UnionOf(phptype.Named(targetLocal, targetFQN))
	}
	return out
}

// NarrowInstanceOfFalse returns u with any member statically known to
// be exactly (or a subtype of) targetFQN removed, for the false
// branch (spec §4.5: "type(x) − T on the false branch"). Members whose
// relationship to T is unknown (Object, Mixed, Unknown) are kept,
// since they might still fail the instanceof check.
func NarrowInstanceOfFalse(store *symboldata.Store, u phptype.UnionType, targetFQN symbols.FullyQualifiedName) phptype.UnionType {
	var out phptype.UnionType
	for _, d := range u.Types() {
		if d.Kind == phptype.KindNamed || d.Kind == phptype.KindClassType {
			if IsInstanceOf(store, d.FQN, targetFQN) {
				continue
			}
		}
		out = out.Add(d)
	}
	return out
}
