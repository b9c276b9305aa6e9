// Package phptype implements the type model of §3/§4.1 of the
// specification: discrete types, union and intersection composites,
// shape types, generic templates, class references, and constant
// values, plus the narrow type-expression mini-language parser that
// feeds PHPDoc annotations into this model.
package phptype

import (
	"fmt"
	"strings"

	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// Kind tags the variant of a DiscreteType, making it a closed Go sum
// type (grounded on orig:src/types/discrete.rs's DiscreteType enum).
type Kind int

const (
	KindNull Kind = iota
	KindVoid
	KindInt
	KindFloat
	KindString
	KindBool
	KindTrue
	KindFalse
	KindResource
	KindMixed
	KindIterable
	KindObject
	KindArray
	KindCallable
	KindUnknown
	KindTypedCallable
	KindVector
	KindHashMap
	KindShape
	KindNamed
	KindGeneric
	KindClassType
	KindTemplate
	KindSpecial
)

// SpecialKind enumerates DiscreteType::Special's payload variants.
type SpecialKind int

const (
	SpecialSelf SpecialKind = iota
	SpecialStatic
	SpecialParent
	SpecialClassString
)

// ShapeField is one entry of a Shape's ordered key -> (type, optional)
// map.
type ShapeField struct {
	Key      string
	Type     UnionType
	Optional bool
}

// DiscreteType is an indivisible element of the type system (spec §3).
// It is represented as one tagged struct rather than an interface
// hierarchy so that equality, ordering and Display stay centralized and
// exhaustive-switch-checkable, per the "closed sum type, no
// inheritance" re-architecture note in spec §9.
type DiscreteType struct {
	Kind Kind

	// KindTypedCallable
	CallableParams []UnionType
	CallableReturn *UnionType

	// KindVector
	VectorElem *UnionType

	// KindHashMap
	MapKey   *UnionType
	MapValue *UnionType

	// KindShape
	ShapeFields []ShapeField

	// KindNamed, KindGeneric base must not itself be Generic
	Local symbols.Name
	FQN   symbols.FullyQualifiedName

	// KindGeneric
	GenericBase *DiscreteType
	GenericArgs []UnionType

	// KindClassType
	ClassMember symbols.Name

	// KindTemplate
	TemplateName symbols.Name

	// KindSpecial
	Special   SpecialKind
	ClassStrF *symbols.FullyQualifiedName // ClassString(Option<FQN>)
}

// Simple constructors for the primitive, argument-less kinds.
func Null() DiscreteType      { return DiscreteType{Kind: KindNull} }
func Void() DiscreteType      { return DiscreteType{Kind: KindVoid} }
func Int() DiscreteType       { return DiscreteType{Kind: KindInt} }
func Float() DiscreteType     { return DiscreteType{Kind: KindFloat} }
func String() DiscreteType    { return DiscreteType{Kind: KindString} }
func Bool() DiscreteType      { return DiscreteType{Kind: KindBool} }
func True() DiscreteType      { return DiscreteType{Kind: KindTrue} }
func False() DiscreteType     { return DiscreteType{Kind: KindFalse} }
func Resource() DiscreteType  { return DiscreteType{Kind: KindResource} }
func Mixed() DiscreteType     { return DiscreteType{Kind: KindMixed} }
func Iterable() DiscreteType  { return DiscreteType{Kind: KindIterable} }
func Object() DiscreteType    { return DiscreteType{Kind: KindObject} }
func Array() DiscreteType     { return DiscreteType{Kind: KindArray} }
func Callable() DiscreteType  { return DiscreteType{Kind: KindCallable} }
func Unknown() DiscreteType   { return DiscreteType{Kind: KindUnknown} }

func TypedCallable(params []UnionType, ret UnionType) DiscreteType {
	return DiscreteType{Kind: KindTypedCallable, CallableParams: params, CallableReturn: &ret}
}

func Vector(elem UnionType) DiscreteType {
	return DiscreteType{Kind: KindVector, VectorElem: &elem}
}

func HashMap(key, value UnionType) DiscreteType {
	return DiscreteType{Kind: KindHashMap, MapKey: &key, MapValue: &value}
}

func Shape(fields []ShapeField) DiscreteType {
	return DiscreteType{Kind: KindShape, ShapeFields: fields}
}

func Named(local symbols.Name, fq symbols.FullyQualifiedName) DiscreteType {
	return DiscreteType{Kind: KindNamed, Local: local, FQN: fq}
}

// Generic builds base<args...>; base must not itself be KindGeneric
// (spec §3).
func Generic(base DiscreteType, args []UnionType) DiscreteType {
	if base.Kind == KindGeneric {
		panic("phptype: Generic base must not itself be Generic")
	}
	b := base
	return DiscreteType{Kind: KindGeneric, GenericBase: &b, GenericArgs: args}
}

func ClassType(fq symbols.FullyQualifiedName, member symbols.Name) DiscreteType {
	return DiscreteType{Kind: KindClassType, FQN: fq, ClassMember: member}
}

func Template(name symbols.Name) DiscreteType {
	return DiscreteType{Kind: KindTemplate, TemplateName: name}
}

func SpecialSelfType() DiscreteType   { return DiscreteType{Kind: KindSpecial, Special: SpecialSelf} }
func SpecialStaticType() DiscreteType { return DiscreteType{Kind: KindSpecial, Special: SpecialStatic} }
func SpecialParentType() DiscreteType { return DiscreteType{Kind: KindSpecial, Special: SpecialParent} }

func ClassString(fq *symbols.FullyQualifiedName) DiscreteType {
	return DiscreteType{Kind: KindSpecial, Special: SpecialClassString, ClassStrF: fq}
}

// Equal implements the "is_same_type" comparison from
// orig:src/types/discrete.rs: Named/ClassType compare their FQN and
// member name case-insensitively, Template names compare exactly,
// everything else structurally.
func (d DiscreteType) Equal(o DiscreteType) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case KindTypedCallable:
		if len(d.CallableParams) != len(o.CallableParams) {
			return false
		}
		for i := range d.CallableParams {
			if !d.CallableParams[i].Equal(o.CallableParams[i]) {
				return false
			}
		}
		return d.CallableReturn.Equal(*o.CallableReturn)
	case KindVector:
		return d.VectorElem.Equal(*o.VectorElem)
	case KindHashMap:
		return d.MapKey.Equal(*o.MapKey) && d.MapValue.Equal(*o.MapValue)
	case KindShape:
		if len(d.ShapeFields) != len(o.ShapeFields) {
			return false
		}
		for i := range d.ShapeFields {
			a, b := d.ShapeFields[i], o.ShapeFields[i]
			if a.Key != b.Key || a.Optional != b.Optional || !a.Type.Equal(b.Type) {
				return false
			}
		}
		return true
	case KindNamed:
		return d.FQN.Equal(o.FQN)
	case KindGeneric:
		if !d.GenericBase.Equal(*o.GenericBase) || len(d.GenericArgs) != len(o.GenericArgs) {
			return false
		}
		for i := range d.GenericArgs {
			if !d.GenericArgs[i].Equal(o.GenericArgs[i]) {
				return false
			}
		}
		return true
	case KindClassType:
		return d.FQN.Equal(o.FQN) && d.ClassMember.EqualFold(o.ClassMember)
	case KindTemplate:
		return d.TemplateName == o.TemplateName
	case KindSpecial:
		if d.Special != o.Special {
			return false
		}
		if d.Special == SpecialClassString {
			if d.ClassStrF == nil || o.ClassStrF == nil {
				return d.ClassStrF == o.ClassStrF
			}
			return d.ClassStrF.Equal(*o.ClassStrF)
		}
		return true
	default:
		return true
	}
}

// sortKey produces a total order used to canonicalize UnionType's
// backing slice, so two unions built in different orders compare and
// print identically (spec §8: merge commutativity / determinism).
func (d DiscreteType) sortKey() string {
	return fmt.Sprintf("%02d:%s", d.Kind, d.String())
}

func (d DiscreteType) String() string {
	switch d.Kind {
	case KindNull:
		return "null"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindResource:
		return "resource"
	case KindMixed:
		return "mixed"
	case KindIterable:
		return "iterable"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindCallable:
		return "callable"
	case KindUnknown:
		return "*unknown*"
	case KindTypedCallable:
		parts := make([]string, len(d.CallableParams))
		for i, p := range d.CallableParams {
			parts[i] = p.String()
		}
		ret := "void"
		if d.CallableReturn != nil {
			ret = d.CallableReturn.String()
		}
		return fmt.Sprintf("callable(%s):%s", strings.Join(parts, ", "), ret)
	case KindVector:
		return fmt.Sprintf("array<%s>", d.VectorElem.String())
	case KindHashMap:
		return fmt.Sprintf("array<%s,%s>", d.MapKey.String(), d.MapValue.String())
	case KindShape:
		parts := make([]string, len(d.ShapeFields))
		for i, f := range d.ShapeFields {
			opt := ""
			if f.Optional {
				opt = "?"
			}
			parts[i] = fmt.Sprintf("%s%s:%s", f.Key, opt, f.Type.String())
		}
		return "array{" + strings.Join(parts, ",") + "}"
	case KindNamed:
		return d.FQN.String()
	case KindGeneric:
		parts := make([]string, len(d.GenericArgs))
		for i, a := range d.GenericArgs {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", d.GenericBase.String(), strings.Join(parts, ", "))
	case KindClassType:
		return fmt.Sprintf("%s::%s", d.FQN.String(), d.ClassMember)
	case KindTemplate:
		return string(d.TemplateName)
	case KindSpecial:
		switch d.Special {
		case SpecialSelf:
			return "self"
		case SpecialStatic:
			return "static"
		case SpecialParent:
			return "parent"
		case SpecialClassString:
			if d.ClassStrF != nil {
				return fmt.Sprintf("class-string<%s>", d.ClassStrF.String())
			}
			return "class-string"
		}
	}
	return "?"
}

// CanEvaluateToTrue/CanEvaluateToFalse mirror
// orig:src/types/discrete.rs's can_evaluate_to_true/false, used by
// truthiness narrowing (§4.5).
func (d DiscreteType) CanEvaluateToTrue() bool {
	switch d.Kind {
	case KindNull, KindVoid, KindFalse:
		return false
	default:
		return true
	}
}

func (d DiscreteType) CanEvaluateToFalse() bool {
	switch d.Kind {
	case KindResource, KindTrue, KindObject, KindCallable, KindTypedCallable,
		KindNamed, KindClassType, KindSpecial:
		return false
	default:
		return true
	}
}

// IsNullable mirrors TypeTraits::is_nullable.
func (d DiscreteType) IsNullable() bool {
	switch d.Kind {
	case KindNull:
		return true
	case KindGeneric:
		return d.GenericBase.IsNullable()
	default:
		return false
	}
}

// ContainsTemplate reports whether this type (or a generic argument)
// still has an unsubstituted Template, used before "ensure_valid"-style
// checks to decide whether EmptyTemplate should be suppressed.
func (d DiscreteType) ContainsTemplate() bool {
	switch d.Kind {
	case KindTemplate:
		return true
	case KindGeneric:
		for _, a := range d.GenericArgs {
			if a.ContainsTemplate() {
				return true
			}
		}
		return d.GenericBase.ContainsTemplate()
	}
	return false
}

// ConcretizeTemplates substitutes Template(name) with a concrete
// UnionType using the supplied mapping, applied lazily at a call site
// rather than mutating the canonical ClassType (spec §9).
func (d DiscreteType) ConcretizeTemplates(concrete map[symbols.Name]UnionType) UnionType {
	switch d.Kind {
	case KindTemplate:
		if u, ok := concrete[d.TemplateName]; ok {
			return u
		}
		return UnionOf(d)
	case KindGeneric:
		args := make([]UnionType, len(d.GenericArgs))
		for i, a := range d.GenericArgs {
			args[i] = a.substituteUnion(concrete)
		}
		return UnionOf(Generic(*d.GenericBase, args))
	default:
		return UnionOf(d)
	}
}

func (u UnionType) substituteUnion(concrete map[symbols.Name]UnionType) UnionType {
	var out UnionType
	for _, d := range u.types {
		out = out.Merge(d.ConcretizeTemplates(concrete))
	}
	return out
}
