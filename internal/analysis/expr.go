package analysis

import (
	"strconv"
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// EvalResult is the pair pass 3 threads through every expression
// visit: the statically inferred UnionType plus, when the expression
// constant-folds, the PHPValue it folds to (spec §4.5's "get_utype /
// get_php_value" pair, kept together here since almost every call site
// wants both).
type EvalResult struct {
	Type     phptype.UnionType
	Value    phptype.PHPValue
	HasValue bool
}

func unknownResult() EvalResult {
	return EvalResult{Type: phptype.UnknownUnion()}
}

func valueResult(v phptype.PHPValue) EvalResult {
	return EvalResult{Type: phptype.UnionOf(v.DiscreteType()), Value: v, HasValue: true}
}

func typeResult(t phptype.UnionType) EvalResult {
	return EvalResult{Type: t}
}

// EvalExpr is the recursive evaluator for an expression node (spec
// §4.5). Its only state changes are assignment side effects: variable
// writes through WriteVariable, and a property's type for a
// `$this->prop` write inside `__construct`. Issues detectable from the
// expression itself (unknown members or functions, bad index types,
// illegal ++/--, calls on nullable receivers) are reported through
// emit as it evaluates.
func (s *AnalysisState) EvalExpr(n ast.Vertex, emit issue.Emitter) EvalResult {
	if n == nil {
		return unknownResult()
	}
	switch e := n.(type) {
	case *ast.ScalarLnumber:
		if i, err := strconv.ParseInt(string(e.Value), 0, 64); err == nil {
			return valueResult(phptype.IntValue(i))
		}
		return typeResult(phptype.UnionOf(phptype.Int()))
	case *ast.ScalarDnumber:
		if f, err := strconv.ParseFloat(string(e.Value), 64); err == nil {
			return valueResult(phptype.FloatValue(f))
		}
		return typeResult(phptype.UnionOf(phptype.Float()))
	case *ast.ScalarString:
		return valueResult(phptype.StringValue(unquotePHPString(string(e.Value))))
	case *ast.ExprConstFetch:
		return s.evalConstFetch(e)
	case *ast.ExprVariable:
		return s.evalVariable(e)
	case *ast.ExprAssign:
		return s.evalAssign(e, emit)
	case *ast.ExprAssignPlus, *ast.ExprAssignMinus, *ast.ExprAssignMul, *ast.ExprAssignDiv,
		*ast.ExprAssignConcat, *ast.ExprAssignMod:
		return s.evalAugmentedAssign(n, emit)
	case *ast.ExprBinaryPlus:
		return s.evalArith(s.EvalExpr(e.Left, emit), s.EvalExpr(e.Right, emit), '+')
	case *ast.ExprBinaryMinus:
		return s.evalArith(s.EvalExpr(e.Left, emit), s.EvalExpr(e.Right, emit), '-')
	case *ast.ExprBinaryMul:
		return s.evalArith(s.EvalExpr(e.Left, emit), s.EvalExpr(e.Right, emit), '*')
	case *ast.ExprBinaryDiv:
		return s.evalArith(s.EvalExpr(e.Left, emit), s.EvalExpr(e.Right, emit), '/')
	case *ast.ExprBinaryMod:
		return typeResult(phptype.UnionOf(phptype.Int()))
	case *ast.ExprBinaryConcat:
		left := s.EvalExpr(e.Left, emit)
		right := s.EvalExpr(e.Right, emit)
		if left.HasValue && right.HasValue {
			return valueResult(phptype.StringValue(left.Value.String() + right.Value.String()))
		}
		return typeResult(phptype.UnionOf(phptype.String()))
	case *ast.ExprBinaryEqual, *ast.ExprBinaryNotEqual, *ast.ExprBinaryIdentical,
		*ast.ExprBinaryNotIdentical, *ast.ExprBinarySmaller, *ast.ExprBinarySmallerOrEqual,
		*ast.ExprBinaryGreater, *ast.ExprBinaryGreaterOrEqual, *ast.ExprBinaryBooleanAnd,
		*ast.ExprBinaryBooleanOr, *ast.ExprBinaryLogicalAnd, *ast.ExprBinaryLogicalOr:
		return typeResult(phptype.BoolUnion())
	case *ast.ExprBinaryCoalesce:
		left := s.EvalExpr(e.Left, emit)
		right := s.EvalExpr(e.Right, emit)
		return typeResult(left.Type.WithoutNull().Merge(right.Type))
	case *ast.ExprBooleanNot:
		return typeResult(phptype.BoolUnion())
	case *ast.ExprTernary:
		return s.evalTernary(e, emit)
	case *ast.ExprArrayDimFetch:
		return s.evalArrayDimFetch(e, emit)
	case *ast.ExprArray:
		return s.evalArrayLiteral(e, emit)
	case *ast.ExprPropertyFetch:
		return s.evalPropertyFetch(e, emit)
	case *ast.ExprNullsafePropertyFetch:
		return s.evalNullsafePropertyFetch(e, emit)
	case *ast.ExprMethodCall:
		return s.evalMethodCall(e, emit)
	case *ast.ExprStaticCall:
		return s.evalStaticCall(e, emit)
	case *ast.ExprStaticPropertyFetch:
		return s.evalStaticPropertyFetch(e, emit)
	case *ast.ExprClassConstFetch:
		return s.evalClassConstFetch(e, emit)
	case *ast.ExprNew:
		return s.evalNew(e, emit)
	case *ast.ExprInstanceOf:
		return typeResult(phptype.BoolUnion())
	case *ast.ExprCastInt:
		return typeResult(phptype.UnionOf(phptype.Int()))
	case *ast.ExprCastFloat:
		return typeResult(phptype.UnionOf(phptype.Float()))
	case *ast.ExprCastString:
		return typeResult(phptype.UnionOf(phptype.String()))
	case *ast.ExprCastBool:
		return typeResult(phptype.BoolUnion())
	case *ast.ExprCastArray:
		return typeResult(phptype.UnionOf(phptype.Array()))
	case *ast.ExprCastObject:
		return typeResult(phptype.UnionOf(phptype.Object()))
	case *ast.ExprPreInc:
		return s.evalIncDec(e.Var, emit, true)
	case *ast.ExprPreDec:
		return s.evalIncDec(e.Var, emit, false)
	case *ast.ExprPostInc:
		return s.evalIncDec(e.Var, emit, true)
	case *ast.ExprPostDec:
		return s.evalIncDec(e.Var, emit, false)
	case *ast.ExprFunctionCall:
		return s.evalFunctionCall(e, emit)
	case *ast.ExprClosure, *ast.ExprArrowFunction:
		return typeResult(phptype.UnionOf(phptype.Callable()))
	default:
		return unknownResult()
	}
}

func unquotePHPString(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 && (raw[0] == '\'' || raw[0] == '"') {
		return raw[1 : len(raw)-1]
	}
	return raw
}

func (s *AnalysisState) evalConstFetch(e *ast.ExprConstFetch) EvalResult {
	name := nameString(e.Const)
	switch strings.ToLower(name) {
	case "true":
		return valueResult(phptype.BoolValue(true))
	case "false":
		return valueResult(phptype.BoolValue(false))
	case "null":
		return valueResult(phptype.NullValue())
	}
	fq := s.GetFQSymbolNameFromLocalName(symbols.Name(name))
	if cd, ok := s.Global.GetConstant(fq); ok {
		if v, ok := cd.GetValue(); ok {
			return valueResult(v)
		}
		return typeResult(cd.GetType())
	}
	if cd, ok := s.Symbols.GetConstant(fq); ok {
		return typeResult(cd.Type)
	}
	return unknownResult()
}

func (s *AnalysisState) evalVariable(e *ast.ExprVariable) EvalResult {
	name := variableName(e)
	if name == "this" && s.InClass != nil {
		return typeResult(phptype.UnionOf(phptype.SpecialStaticType()))
	}
	t, _ := s.ReadVariable(name)
	return typeResult(t)
}

func variableName(e *ast.ExprVariable) string {
	if ident, ok := e.Name.(*ast.Identifier); ok {
		return string(ident.Value)
	}
	return ""
}

func nameString(n ast.Vertex) string {
	switch v := n.(type) {
	case *ast.Name:
		return joinNameParts(v.Parts)
	case *ast.NameFullyQualified:
		return joinNameParts(v.Parts)
	case *ast.NameRelative:
		return joinNameParts(v.Parts)
	case *ast.Identifier:
		return string(v.Value)
	}
	return ""
}

func joinNameParts(parts []ast.Vertex) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if np, ok := p.(*ast.NamePart); ok {
			out = append(out, string(np.Value))
		}
	}
	return strings.Join(out, `\`)
}

func (s *AnalysisState) evalAssign(e *ast.ExprAssign, emit issue.Emitter) EvalResult {
	rhs := s.EvalExpr(e.Expr, emit)
	switch lhs := e.Var.(type) {
	case *ast.ExprVariable:
		s.WriteVariable(variableName(lhs), rhs.Type, rhs.Value, rhs.HasValue)
	case *ast.ExprPropertyFetch:
		if s.InConstructor() {
			s.maybeWriteConstructorProperty(lhs, rhs, emit)
		}
	}
	return rhs
}

// evalAugmentedAssign dispatches each `$x op= $y` form to the same
// evaluation `$x = $x op $y` would use: arithmetic forms go through
// evalArith with the operator the concrete node actually is, `.=`
// mirrors ExprBinaryConcat's string-folding, and `%=` mirrors
// ExprBinaryMod's always-Int result, rather than folding every form as
// addition.
func (s *AnalysisState) evalAugmentedAssign(n ast.Vertex, emit issue.Emitter) EvalResult {
	var varNode, exprNode ast.Vertex
	var op byte
	isConcat := false
	isMod := false
	switch e := n.(type) {
	case *ast.ExprAssignPlus:
		varNode, exprNode, op = e.Var, e.Expr, '+'
	case *ast.ExprAssignMinus:
		varNode, exprNode, op = e.Var, e.Expr, '-'
	case *ast.ExprAssignMul:
		varNode, exprNode, op = e.Var, e.Expr, '*'
	case *ast.ExprAssignDiv:
		varNode, exprNode, op = e.Var, e.Expr, '/'
	case *ast.ExprAssignConcat:
		varNode, exprNode, isConcat = e.Var, e.Expr, true
	case *ast.ExprAssignMod:
		varNode, exprNode, isMod = e.Var, e.Expr, true
	default:
		return unknownResult()
	}
	left := s.EvalExpr(varNode, emit)
	right := s.EvalExpr(exprNode, emit)

	var result EvalResult
	switch {
	case isConcat:
		if left.HasValue && right.HasValue {
			result = valueResult(phptype.StringValue(left.Value.String() + right.Value.String()))
		} else {
			result = typeResult(phptype.UnionOf(phptype.String()))
		}
	case isMod:
		result = typeResult(phptype.UnionOf(phptype.Int()))
	default:
		result = s.evalArith(left, right, op)
	}
	if v, ok := varNode.(*ast.ExprVariable); ok {
		s.WriteVariable(variableName(v), result.Type, result.Value, result.HasValue)
	}
	return result
}

func (s *AnalysisState) evalArith(left, right EvalResult, op byte) EvalResult {
	if left.HasValue && right.HasValue && op != '/' {
		lv, lok := numericValue(left.Value)
		rv, rok := numericValue(right.Value)
		if lok && rok {
			isFloat := left.Value.Kind == phptype.ValueFloat || right.Value.Kind == phptype.ValueFloat
			switch op {
			case '+':
				if isFloat {
					return valueResult(phptype.FloatValue(lv + rv))
				}
				return valueResult(phptype.IntValue(int64(lv + rv)))
			case '-':
				if isFloat {
					return valueResult(phptype.FloatValue(lv - rv))
				}
				return valueResult(phptype.IntValue(int64(lv - rv)))
			case '*':
				if isFloat {
					return valueResult(phptype.FloatValue(lv * rv))
				}
				return valueResult(phptype.IntValue(int64(lv * rv)))
			}
		}
	}
	// Numeric widening: int op int -> int, anything involving a float
	// or unknown operand widens to int|float (spec §4.5).
	if left.Type.ContainsKind(phptype.KindFloat) || right.Type.ContainsKind(phptype.KindFloat) {
		return typeResult(phptype.UnionOf(phptype.Int(), phptype.Float()))
	}
	if left.Type.IsUnknown() || right.Type.IsUnknown() {
		return typeResult(phptype.UnionOf(phptype.Int(), phptype.Float()))
	}
	return typeResult(phptype.UnionOf(phptype.Int()))
}

func numericValue(v phptype.PHPValue) (float64, bool) {
	switch v.Kind {
	case phptype.ValueInt:
		return float64(v.I), true
	case phptype.ValueFloat:
		return v.F, true
	}
	return 0, false
}

func (s *AnalysisState) evalTernary(e *ast.ExprTernary, emit issue.Emitter) EvalResult {
	cond := s.EvalExpr(e.Cond, emit)
	if e.If == nil {
		// `$a ?: $b` shorthand: the condition value itself is the
		// true-branch result.
		falseBranch := s.EvalExpr(e.Else, emit)
		return typeResult(NarrowTruthy(cond.Type).Merge(falseBranch.Type))
	}
	trueBranch := s.EvalExpr(e.If, emit)
	falseBranch := s.EvalExpr(e.Else, emit)
	if cond.HasValue {
		if cond.Value.Truthy() {
			return trueBranch
		}
		return falseBranch
	}
	return typeResult(trueBranch.Type.Merge(falseBranch.Type))
}

// evalArrayLiteral folds an `[...]` literal's value types, and widens to
// HashMap(keyUnion, elem) rather than Vector(elem) as soon as any item
// carries an explicit key that isn't the next sequential int index, per
// the mixed-key resolution documented for array literals.
func (s *AnalysisState) evalArrayLiteral(e *ast.ExprArray, emit issue.Emitter) EvalResult {
	var elem phptype.UnionType
	var keyUnion phptype.UnionType
	hasKeys := false
	sequential := true
	nextIndex := int64(0)
	for _, item := range e.Items {
		ai, ok := item.(*ast.ExprArrayItem)
		if !ok {
			continue
		}
		v := s.EvalExpr(ai.Val, emit)
		elem = elem.Merge(v.Type)
		if ai.Key != nil {
			hasKeys = true
			k := s.EvalExpr(ai.Key, emit)
			keyUnion = keyUnion.Merge(k.Type)
			if k.HasValue && k.Value.Kind == phptype.ValueInt && k.Value.I == nextIndex {
				nextIndex++
			} else {
				sequential = false
			}
		} else {
			keyUnion = keyUnion.Merge(phptype.UnionOf(phptype.Int()))
			nextIndex++
		}
	}
	if elem.Empty() {
		return typeResult(phptype.UnionOf(phptype.Vector(phptype.MixedUnion())))
	}
	if hasKeys && !sequential {
		return typeResult(phptype.UnionOf(phptype.HashMap(keyUnion, elem)))
	}
	return typeResult(phptype.UnionOf(phptype.Vector(elem)))
}

func unionKindOverlaps(a, b phptype.UnionType) bool {
	for _, ad := range a.Types() {
		if b.ContainsKind(ad.Kind) {
			return true
		}
	}
	return false
}

// evalArrayDimFetch evaluates `$base[$dim]` against every discrete type
// base.Type carries: a Vector/HashMap access always admits Null (the
// index may be missing or out of range), a Shape access with a known
// literal string key narrows to that field's own type, and a String
// base indexed by an int yields String (PHP's string-offset access).
// When the dimension's type can't plausibly index a given base type,
// UnknownIndexType is raised instead of silently matching it.
func (s *AnalysisState) evalArrayDimFetch(e *ast.ExprArrayDimFetch, emit issue.Emitter) EvalResult {
	base := s.EvalExpr(e.Var, emit)
	dim := unknownResult()
	if e.Dim != nil {
		dim = s.EvalExpr(e.Dim, emit)
	}

	var out phptype.UnionType
	matched := false
	for _, d := range base.Type.Types() {
		switch d.Kind {
		case phptype.KindVector:
			if dim.Type.IsUnknown() || dim.Type.Empty() || dim.Type.ContainsKind(phptype.KindInt) {
				matched = true
				out = out.Merge(*d.VectorElem).Add(phptype.Null())
			} else {
				s.Emit(emit, issue.UnknownIndexType, "array index of type "+dim.Type.String()+" cannot index "+d.String())
			}
		case phptype.KindHashMap:
			if dim.Type.IsUnknown() || dim.Type.Empty() || d.MapKey.IsUnknown() || unionKindOverlaps(dim.Type, *d.MapKey) {
				matched = true
				out = out.Merge(*d.MapValue).Add(phptype.Null())
			} else {
				s.Emit(emit, issue.UnknownIndexType, "array index of type "+dim.Type.String()+" cannot index "+d.String())
			}
		case phptype.KindShape:
			if dim.HasValue && dim.Value.Kind == phptype.ValueString {
				found := false
				for _, f := range d.ShapeFields {
					if f.Key == dim.Value.S {
						found = true
						ft := f.Type
						if f.Optional {
							ft = ft.Add(phptype.Null())
						}
						out = out.Merge(ft)
						break
					}
				}
				if found {
					matched = true
				} else {
					s.Emit(emit, issue.UnknownIndexType, "shape "+d.String()+" has no field "+dim.Value.S)
				}
			} else {
				matched = true
				for _, f := range d.ShapeFields {
					out = out.Merge(f.Type)
				}
				out = out.Add(phptype.Null())
			}
		case phptype.KindString:
			if dim.Type.IsUnknown() || dim.Type.Empty() || dim.Type.ContainsKind(phptype.KindInt) {
				matched = true
				out = out.Merge(phptype.UnionOf(phptype.String()))
			} else {
				s.Emit(emit, issue.UnknownIndexType, "array index of type "+dim.Type.String()+" cannot index "+d.String())
			}
		}
	}
	if !matched {
		return unknownResult()
	}
	return typeResult(out)
}

func (s *AnalysisState) evalIncDec(varNode ast.Vertex, emit issue.Emitter, inc bool) EvalResult {
	cur := s.EvalExpr(varNode, emit)
	illegalKind := issue.IncrementIsIllegalOnType
	verb := "increment"
	if !inc {
		illegalKind = issue.DecrementIsIllegalOnType
		verb = "decrement"
	}
	var out phptype.UnionType
	for _, d := range cur.Type.Types() {
		switch d.Kind {
		case phptype.KindInt, phptype.KindFloat, phptype.KindNull, phptype.KindString, phptype.KindUnknown, phptype.KindMixed:
			out = out.Add(d)
		case phptype.KindArray, phptype.KindBool, phptype.KindTrue, phptype.KindFalse, phptype.KindObject, phptype.KindNamed, phptype.KindClassType:
			s.Emit(emit, illegalKind, "cannot "+verb+" a value of type "+d.String())
		default:
			out = out.Add(d)
		}
	}
	if out.Empty() {
		out = phptype.UnknownUnion()
	}
	if v, ok := varNode.(*ast.ExprVariable); ok {
		s.WriteVariable(variableName(v), out, phptype.PHPValue{}, false)
	}
	return typeResult(out)
}
