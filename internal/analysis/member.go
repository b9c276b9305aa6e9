package analysis

import (
	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// classFQNsOf collects the FQNs of every class-shaped discrete in a
// union (Named, ClassType, or the dynamic self/static/parent specials
// resolved against the current class), used by member-access
// evaluation to fan out over a possibly-multi-typed receiver.
func (s *AnalysisState) classFQNsOf(u phptype.UnionType) ([]symbols.FullyQualifiedName, bool /*sawNonClass*/) {
	var out []symbols.FullyQualifiedName
	sawNonClass := false
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNamed, phptype.KindClassType:
			out = append(out, d.FQN)
		case phptype.KindSpecial:
			if s.InClass == nil {
				sawNonClass = true
				continue
			}
			switch d.Special {
			case phptype.SpecialSelf, phptype.SpecialStatic:
				out = append(out, s.InClass.Name.FQN)
			case phptype.SpecialParent:
				if cd, ok := s.Symbols.GetClass(s.InClass.Name.FQN); ok {
					if parent, ok := cd.GetParent(); ok {
						out = append(out, parent)
					}
				}
			default:
				sawNonClass = true
			}
		default:
			sawNonClass = true
		}
	}
	return out, sawNonClass
}

func identifierName(n ast.Vertex) (string, bool) {
	switch v := n.(type) {
	case *ast.Identifier:
		return string(v.Value), true
	}
	return "", false
}

func (s *AnalysisState) evalPropertyFetch(e *ast.ExprPropertyFetch, emit issue.Emitter) EvalResult {
	return s.evalPropertyFetchImpl(e.Var, e.Prop, emit, issue.PropertyAccessOnUnknownType)
}

func (s *AnalysisState) evalNullsafePropertyFetch(e *ast.ExprNullsafePropertyFetch, emit issue.Emitter) EvalResult {
	r := s.evalPropertyFetchImpl(e.Var, e.Prop, emit, issue.PropertyAccessOnNullableType)
	return typeResult(r.Type.Merge(phptype.NullUnion()))
}

func (s *AnalysisState) evalPropertyFetchImpl(varNode, propNode ast.Vertex, emit issue.Emitter, onUnknownKind issue.Kind) EvalResult {
	propName, ok := identifierName(propNode)
	if !ok {
		return unknownResult()
	}
	recv := s.EvalExpr(varNode, emit)
	if recv.Type.IsNullable() {
		s.Emit(emit, issue.PropertyAccessOnNullableType, "property access on possibly-null value: " + propName)
	}
	fqns, sawNonClass := s.classFQNsOf(recv.Type)
	if len(fqns) == 0 {
		if sawNonClass {
			s.Emit(emit, onUnknownKind, "property access on non-object type: "+propName)
		}
		return unknownResult()
	}
	var out phptype.UnionType
	for _, fqn := range fqns {
		if _, ok := s.Symbols.GetInterface(fqn); ok {
			s.Emit(emit, issue.PropertyAccessOnInterfaceType, "property access on interface type: " + propName)
			continue
		}
		prop, ok := LookupProperty(s.Symbols, fqn, symbols.Name(propName))
		if !ok {
			s.Emit(emit, issue.UnknownProperty, "unknown property " + propName + " on " + fqn.String())
			continue
		}
		out = out.Merge(prop.GetType())
	}
	if out.Empty() {
		return unknownResult()
	}
	return typeResult(out)
}

// methodReceiver is one class-shaped discrete a method call's receiver
// may resolve to, carrying the template->concrete mapping a Generic
// receiver implies (empty for a plain Named/ClassType/self/static/
// parent receiver).
type methodReceiver struct {
	fqn       symbols.FullyQualifiedName
	templates map[symbols.Name]phptype.UnionType
}

// methodReceiversOf is classFQNsOf plus KindGeneric handling: a
// receiver typed Foo<Bar> resolves against Foo's declared Templates
// zipped with Bar, so the returned templates map can substitute into
// the looked-up method's return type via DiscreteType.ConcretizeTemplates.
func (s *AnalysisState) methodReceiversOf(u phptype.UnionType) ([]methodReceiver, bool) {
	var out []methodReceiver
	sawNonClass := false
	for _, d := range u.Types() {
		switch d.Kind {
		case phptype.KindNamed, phptype.KindClassType:
			out = append(out, methodReceiver{fqn: d.FQN})
		case phptype.KindGeneric:
			base := d.GenericBase
			if base == nil || (base.Kind != phptype.KindNamed && base.Kind != phptype.KindClassType) {
				sawNonClass = true
				continue
			}
			templates := map[symbols.Name]phptype.UnionType{}
			if cd, ok := s.Symbols.GetClass(base.FQN); ok {
				for i, tn := range cd.Templates {
					if i < len(d.GenericArgs) {
						templates[tn] = d.GenericArgs[i]
					}
				}
			}
			out = append(out, methodReceiver{fqn: base.FQN, templates: templates})
		case phptype.KindSpecial:
			if s.InClass == nil {
				sawNonClass = true
				continue
			}
			switch d.Special {
			case phptype.SpecialSelf, phptype.SpecialStatic:
				out = append(out, methodReceiver{fqn: s.InClass.Name.FQN})
			case phptype.SpecialParent:
				if cd, ok := s.Symbols.GetClass(s.InClass.Name.FQN); ok {
					if parent, ok := cd.GetParent(); ok {
						out = append(out, methodReceiver{fqn: parent})
					}
				}
			default:
				sawNonClass = true
			}
		default:
			sawNonClass = true
		}
	}
	return out, sawNonClass
}

func (s *AnalysisState) evalMethodCall(e *ast.ExprMethodCall, emit issue.Emitter) EvalResult {
	methodName, ok := identifierName(e.Method)
	if !ok {
		return unknownResult()
	}
	recv := s.EvalExpr(e.Var, emit)
	if recv.Type.IsNullable() {
		s.Emit(emit, issue.MethodCallOnNullableType, "method call on possibly-null value: " + methodName)
	}
	receivers, sawNonClass := s.methodReceiversOf(recv.Type)
	for _, a := range e.Args {
		if arg, ok := a.(*ast.Argument); ok {
			s.EvalExpr(arg.Expr, emit)
		}
	}
	if len(receivers) == 0 {
		if sawNonClass {
			s.Emit(emit, issue.MethodCallOnUnknownType, "method call on non-object type: " + methodName)
		}
		return unknownResult()
	}
	var out phptype.UnionType
	for _, r := range receivers {
		m, ok := LookupMethod(s.Symbols, r.fqn, symbols.Name(methodName))
		if !ok {
			s.Emit(emit, issue.UnknownMethod, "unknown method " + methodName + " on " + r.fqn.String())
			continue
		}
		ret := m.GetReturnType()
		if len(r.templates) > 0 {
			var concretized phptype.UnionType
			for _, d := range ret.Types() {
				concretized = concretized.Merge(d.ConcretizeTemplates(r.templates))
			}
			ret = concretized
		}
		out = out.Merge(ret)
	}
	if out.Empty() {
		return unknownResult()
	}
	return typeResult(out)
}

func (s *AnalysisState) evalStaticCall(e *ast.ExprStaticCall, emit issue.Emitter) EvalResult {
	methodName, ok := identifierName(e.Call)
	if !ok {
		return unknownResult()
	}
	for _, a := range e.Args {
		if arg, ok := a.(*ast.Argument); ok {
			s.EvalExpr(arg.Expr, emit)
		}
	}
	fqn, ok := s.resolveClassRefNode(e.Class)
	if !ok {
		return unknownResult()
	}
	m, ok := LookupMethod(s.Symbols, fqn, symbols.Name(methodName))
	if !ok {
		s.Emit(emit, issue.UnknownMethod, "unknown static method " + methodName + " on " + fqn.String())
		return unknownResult()
	}
	return typeResult(m.GetReturnType())
}

func (s *AnalysisState) evalStaticPropertyFetch(e *ast.ExprStaticPropertyFetch, emit issue.Emitter) EvalResult {
	propName, ok := identifierName(e.Prop)
	if !ok {
		if v, ok := e.Prop.(*ast.ExprVariable); ok {
			propName = variableName(v)
		} else {
			return unknownResult()
		}
	}
	fqn, ok := s.resolveClassRefNode(e.Class)
	if !ok {
		return unknownResult()
	}
	prop, ok := LookupProperty(s.Symbols, fqn, symbols.Name(propName))
	if !ok {
		s.Emit(emit, issue.UnknownProperty, "unknown static property " + propName + " on " + fqn.String())
		return unknownResult()
	}
	return typeResult(prop.GetType())
}

func (s *AnalysisState) evalClassConstFetch(e *ast.ExprClassConstFetch, emit issue.Emitter) EvalResult {
	constName, ok := identifierName(e.Const)
	if !ok {
		return unknownResult()
	}
	fqn, ok := s.resolveClassRefNode(e.Class)
	if !ok {
		return unknownResult()
	}
	if constName == "class" {
		return valueResult(phptype.StringValue(fqn.String()))
	}
	cd, ok := LookupClassConstant(s.Symbols, fqn, symbols.Name(constName))
	if !ok {
		s.Emit(emit, issue.UnknownClassConstant, "unknown class constant " + fqn.String() + "::" + constName)
		return unknownResult()
	}
	if cd.HasValue {
		return valueResult(cd.Value)
	}
	return typeResult(cd.Type)
}

func (s *AnalysisState) evalNew(e *ast.ExprNew, emit issue.Emitter) EvalResult {
	for _, a := range e.Args {
		if arg, ok := a.(*ast.Argument); ok {
			s.EvalExpr(arg.Expr, emit)
		}
	}
	fqn, ok := s.resolveClassRefNode(e.Class)
	if !ok {
		return unknownResult()
	}
	if cd, ok := s.Symbols.GetClass(fqn); ok && cd.IsAbstract {
		s.Emit(emit, issue.AbstractInstantiation, "cannot instantiate abstract class " + fqn.String())
	}
	return valueResult(phptype.ObjectInstanceValue(phptype.Named(fqn.Name(), fqn)))
}

func (s *AnalysisState) evalFunctionCall(e *ast.ExprFunctionCall, emit issue.Emitter) EvalResult {
	for _, a := range e.Args {
		if arg, ok := a.(*ast.Argument); ok {
			s.EvalExpr(arg.Expr, emit)
		}
	}
	name := nameString(e.Function)
	if name == "" {
		return unknownResult()
	}
	fqn := s.GetFQSymbolNameFromLocalName(symbols.Name(name))
	fd, ok := s.Symbols.GetFunction(fqn)
	if !ok {
		s.Emit(emit, issue.UnknownFunction, "unknown function " + name)
		return unknownResult()
	}
	return typeResult(fd.GetReturnType())
}

// resolveClassRefNode resolves the `Class` side of a static
// reference (static call, class-const fetch, `new`) which is either a
// Name/NameFullyQualified AST node or an arbitrary expression (e.g.
// `new ($factory())()` or `$obj::method()`).
func (s *AnalysisState) resolveClassRefNode(n ast.Vertex) (symbols.FullyQualifiedName, bool) {
	switch v := n.(type) {
	case *ast.Name, *ast.NameFullyQualified, *ast.NameRelative:
		local := nameString(v)
		return s.ResolveClassFQN(symbols.Name(local))
	default:
		r := s.EvalExpr(n, issue.VoidEmitter{})
		fqns, _ := s.classFQNsOf(r.Type)
		if len(fqns) == 1 {
			return fqns[0], true
		}
		return symbols.FullyQualifiedName{}, false
	}
}

// maybeWriteConstructorProperty applies spec §4.6's "assignment to
// $this->prop inside __construct with no declared type narrows the
// property's declared type" rule.
func (s *AnalysisState) maybeWriteConstructorProperty(lhs *ast.ExprPropertyFetch, rhs EvalResult, emit issue.Emitter) {
	v, ok := lhs.Var.(*ast.ExprVariable)
	if !ok || variableName(v) != "this" || s.InClass == nil {
		return
	}
	propName, ok := identifierName(lhs.Prop)
	if !ok {
		return
	}
	prop, ok := LookupProperty(s.Symbols, s.InClass.Name.FQN, symbols.Name(propName))
	if !ok {
		s.Emit(emit, issue.UnknownProperty, "unknown property " + propName + " on " + s.InClass.Name.FQN.String())
		return
	}
	WriteConstructorPropertyType(prop, rhs.Type)
}
