package phptype

import (
	"fmt"
	"strconv"
)

// ValueKind tags the variant of a constant-folded PHPValue (spec §3:
// "PHPValue: a constant-folded value... carries a minimal
// DiscreteType alongside the literal").
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueArray
	ValueObjectInstance
)

// PHPValue is the constant-folding companion to DiscreteType: pass 3
// tracks it alongside the inferred UnionType so that literal-valued
// expressions (return 5;, a class constant, string concatenation of
// two literals) can narrow to True()/False() or to a specific
// class-string, per §4.5's "constant folding" requirement.
type PHPValue struct {
	Kind ValueKind

	B bool
	I int64
	F float64
	S string

	// ValueArray: ordered key/value pairs; keys are themselves
	// PHPValues (PHP arrays support both int and string keys).
	ArrayKeys []PHPValue
	ArrayVals []PHPValue

	// ValueObjectInstance: the class a `new Foo()` expression
	// constructed, with no further constant payload.
	ObjectClass DiscreteType
}

func NullValue() PHPValue           { return PHPValue{Kind: ValueNull} }
func BoolValue(b bool) PHPValue     { return PHPValue{Kind: ValueBool, B: b} }
func IntValue(i int64) PHPValue     { return PHPValue{Kind: ValueInt, I: i} }
func FloatValue(f float64) PHPValue { return PHPValue{Kind: ValueFloat, F: f} }
func StringValue(s string) PHPValue { return PHPValue{Kind: ValueString, S: s} }

func ArrayValue(keys, vals []PHPValue) PHPValue {
	return PHPValue{Kind: ValueArray, ArrayKeys: keys, ArrayVals: vals}
}

func ObjectInstanceValue(class DiscreteType) PHPValue {
	return PHPValue{Kind: ValueObjectInstance, ObjectClass: class}
}

// DiscreteType returns the minimal DiscreteType this value folds to:
// True()/False() for bools so truthiness narrowing can use the value
// directly, Int()/Float()/String() for scalars, and Named(class) for
// object instances.
func (v PHPValue) DiscreteType() DiscreteType {
	switch v.Kind {
	case ValueNull:
		return Null()
	case ValueBool:
		if v.B {
			return True()
		}
		return False()
	case ValueInt:
		return Int()
	case ValueFloat:
		return Float()
	case ValueString:
		return String()
	case ValueArray:
		return Array()
	case ValueObjectInstance:
		return v.ObjectClass
	default:
		return Unknown()
	}
}

// Truthy reports PHP's loose-truthiness rule for a folded constant:
// false, 0, 0.0, "", "0", null, and empty array are falsy; everything
// else is truthy. Used to fold `if (CONST)`-style conditions.
func (v PHPValue) Truthy() bool {
	switch v.Kind {
	case ValueNull:
		return false
	case ValueBool:
		return v.B
	case ValueInt:
		return v.I != 0
	case ValueFloat:
		return v.F != 0
	case ValueString:
		return v.S != "" && v.S != "0"
	case ValueArray:
		return len(v.ArrayVals) != 0
	case ValueObjectInstance:
		return true
	default:
		return true
	}
}

func (v PHPValue) String() string {
	switch v.Kind {
	case ValueNull:
		return "null"
	case ValueBool:
		return strconv.FormatBool(v.B)
	case ValueInt:
		return strconv.FormatInt(v.I, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(v.S)
	case ValueArray:
		return fmt.Sprintf("array(%d)", len(v.ArrayVals))
	case ValueObjectInstance:
		return fmt.Sprintf("instance<%s>", v.ObjectClass.String())
	default:
		return "?"
	}
}

// Equal compares two folded values structurally; used by pass 3 to
// decide whether a branch merge's constant value survived unchanged.
func (v PHPValue) Equal(o PHPValue) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.B == o.B
	case ValueInt:
		return v.I == o.I
	case ValueFloat:
		return v.F == o.F
	case ValueString:
		return v.S == o.S
	case ValueArray:
		if len(v.ArrayVals) != len(o.ArrayVals) {
			return false
		}
		for i := range v.ArrayVals {
			if !v.ArrayKeys[i].Equal(o.ArrayKeys[i]) || !v.ArrayVals[i].Equal(o.ArrayVals[i]) {
				return false
			}
		}
		return true
	case ValueObjectInstance:
		return v.ObjectClass.Equal(o.ObjectClass)
	default:
		return true
	}
}
