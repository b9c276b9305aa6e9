package analysis

import (
	"strings"

	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// ResolveTypeExpression rewrites every unresolved Named/ClassType/
// generic-base component of an intersection parsed by
// phptype.ParseTypeExpression against the current file's use_map and
// namespace, and promotes any component matching an in-scope
// @template parameter to a Template type (spec §4.8: type-expression
// parsing is namespace-agnostic; resolution is a separate step done
// by the pass that owns use_map/namespace/ActiveTemplates).
func (s *AnalysisState) ResolveTypeExpression(it phptype.IntersectionType) phptype.IntersectionType {
	members := make([]phptype.UnionType, 0, it.Len())
	for _, u := range it.Members() {
		members = append(members, s.resolveUnion(u))
	}
	return phptype.IntersectionOf(members...)
}

func (s *AnalysisState) resolveUnion(u phptype.UnionType) phptype.UnionType {
	var out phptype.UnionType
	for _, d := range u.Types() {
		out = out.Merge(phptype.UnionOf(s.resolveDiscrete(d)))
	}
	return out
}

func (s *AnalysisState) resolveDiscrete(d phptype.DiscreteType) phptype.DiscreteType {
	switch d.Kind {
	case phptype.KindTemplate:
		return d
	case phptype.KindNamed:
		if s.ActiveTemplates[d.Local] {
			return phptype.Template(d.Local)
		}
		return phptype.Named(d.Local, s.resolveName(d.Local))
	case phptype.KindClassType:
		if s.ActiveTemplates[d.FQN.Name()] {
			return d
		}
		return phptype.ClassType(s.resolveName(d.FQN.Name()), d.ClassMember)
	case phptype.KindGeneric:
		base := s.resolveDiscrete(*d.GenericBase)
		args := make([]phptype.UnionType, 0, len(d.GenericArgs))
		for _, a := range d.GenericArgs {
			args = append(args, s.resolveUnion(a))
		}
		return phptype.Generic(base, args)
	case phptype.KindVector:
		elem := s.resolveUnion(*d.VectorElem)
		return phptype.Vector(elem)
	case phptype.KindHashMap:
		key := s.resolveUnion(*d.MapKey)
		val := s.resolveUnion(*d.MapValue)
		return phptype.HashMap(key, val)
	case phptype.KindTypedCallable:
		params := make([]phptype.UnionType, 0, len(d.CallableParams))
		for _, p := range d.CallableParams {
			params = append(params, s.resolveUnion(p))
		}
		var ret phptype.UnionType
		if d.CallableReturn != nil {
			ret = s.resolveUnion(*d.CallableReturn)
		}
		return phptype.TypedCallable(params, ret)
	case phptype.KindShape:
		fields := make([]phptype.ShapeField, 0, len(d.ShapeFields))
		for _, f := range d.ShapeFields {
			fields = append(fields, phptype.ShapeField{
				Key:      f.Key,
				Type:     s.resolveUnion(f.Type),
				Optional: f.Optional,
			})
		}
		return phptype.Shape(fields)
	default:
		return d
	}
}

// resolveName is the reference-site lookup: use_map, then current
// namespace, then global (spec §4.6). `self`/`static`/`parent` never
// flow through here — they stay as SpecialKind and are resolved
// dynamically against AnalysisState.InClass at the use site instead.
func (s *AnalysisState) resolveName(local symbols.Name) symbols.FullyQualifiedName {
	lower := strings.ToLower(string(local))
	switch lower {
	case "self", "static", "parent":
		return symbols.FQNOf(local)
	}
	return s.GetFQSymbolNameFromLocalName(local)
}
