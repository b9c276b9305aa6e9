package analysis

import (
	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
)

// nodeRefVisitor records, for a target byte offset, the chain of every
// node whose Position range contains it, narrowest last. Grounded on
// whit3rabbit-phpmixer's NodeCollectorVisitor idiom (visitor.Null embed
// plus one override per node kind of interest, relying on the
// traverser's own recursion into a node's children regardless of
// whether that node's method was overridden): that test showed an
// ExprVariable nested inside an unoverridden ScalarEncapsed was still
// reached, confirming overriding a subset of kinds does not take over
// or short-circuit the traverser's descent into the rest of the tree.
//
// Only the node kinds this package already carries resolved field
// names for (every *ast.* type referenced elsewhere in pass1.go/
// pass2.go/pass3.go/expr.go/member.go/state.go/position.go) are
// covered; a handful of structural wrapper kinds used purely for type
// hints and argument lists (ast.Argument, ast.Nullable, ast.Union,
// ast.Intersection, ast.NamePart) carry no containment value here and
// are left out deliberately rather than guessed at.
//
// Ancestor-path reconstruction does not rely on an Enter/Leave visitor
// pair (this package found no such pair anywhere in the retrieved
// pack); since php-parser visits a node before its children and every
// node's byte range nests inside its parent's, a stack popped down to
// the last entry whose range still contains the node being considered
// reconstructs the same ancestor chain an Enter/Leave visitor would
// have produced.
type nodeRefVisitor struct {
	visitor.Null

	offset int
	stack  []nodeRefFrame
	path   []ast.Vertex
}

type nodeRefFrame struct {
	node       ast.Vertex
	start, end int
}

func (v *nodeRefVisitor) consider(n ast.Vertex, start, end int) {
	if end < start || v.offset < start || v.offset > end {
		return
	}
	for len(v.stack) > 0 {
		top := v.stack[len(v.stack)-1]
		if top.start <= start && end <= top.end {
			break
		}
		v.stack = v.stack[:len(v.stack)-1]
	}
	v.stack = append(v.stack, nodeRefFrame{node: n, start: start, end: end})

	path := make([]ast.Vertex, len(v.stack))
	for i, frame := range v.stack {
		path[i] = frame.node
	}
	v.path = path
}

func (v *nodeRefVisitor) ExprArray(n *ast.ExprArray) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprArrayDimFetch(n *ast.ExprArrayDimFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprArrayItem(n *ast.ExprArrayItem) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprArrowFunction(n *ast.ExprArrowFunction) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssign(n *ast.ExprAssign) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignConcat(n *ast.ExprAssignConcat) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignDiv(n *ast.ExprAssignDiv) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignMinus(n *ast.ExprAssignMinus) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignMod(n *ast.ExprAssignMod) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignMul(n *ast.ExprAssignMul) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprAssignPlus(n *ast.ExprAssignPlus) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryBooleanAnd(n *ast.ExprBinaryBooleanAnd) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryBooleanOr(n *ast.ExprBinaryBooleanOr) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryCoalesce(n *ast.ExprBinaryCoalesce) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryConcat(n *ast.ExprBinaryConcat) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryDiv(n *ast.ExprBinaryDiv) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryEqual(n *ast.ExprBinaryEqual) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryGreater(n *ast.ExprBinaryGreater) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryGreaterOrEqual(n *ast.ExprBinaryGreaterOrEqual) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryIdentical(n *ast.ExprBinaryIdentical) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryLogicalAnd(n *ast.ExprBinaryLogicalAnd) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryLogicalOr(n *ast.ExprBinaryLogicalOr) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryMinus(n *ast.ExprBinaryMinus) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryMod(n *ast.ExprBinaryMod) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryMul(n *ast.ExprBinaryMul) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryNotEqual(n *ast.ExprBinaryNotEqual) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryNotIdentical(n *ast.ExprBinaryNotIdentical) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinaryPlus(n *ast.ExprBinaryPlus) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinarySmaller(n *ast.ExprBinarySmaller) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBinarySmallerOrEqual(n *ast.ExprBinarySmallerOrEqual) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprBooleanNot(n *ast.ExprBooleanNot) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastArray(n *ast.ExprCastArray) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastBool(n *ast.ExprCastBool) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastFloat(n *ast.ExprCastFloat) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastInt(n *ast.ExprCastInt) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastObject(n *ast.ExprCastObject) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprCastString(n *ast.ExprCastString) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprClassConstFetch(n *ast.ExprClassConstFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprClosure(n *ast.ExprClosure) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprConstFetch(n *ast.ExprConstFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprFunctionCall(n *ast.ExprFunctionCall) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprInstanceOf(n *ast.ExprInstanceOf) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprMethodCall(n *ast.ExprMethodCall) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprNew(n *ast.ExprNew) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprNullsafePropertyFetch(n *ast.ExprNullsafePropertyFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprPostDec(n *ast.ExprPostDec) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprPostInc(n *ast.ExprPostInc) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprPreDec(n *ast.ExprPreDec) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprPreInc(n *ast.ExprPreInc) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprPropertyFetch(n *ast.ExprPropertyFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprStaticCall(n *ast.ExprStaticCall) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprStaticPropertyFetch(n *ast.ExprStaticPropertyFetch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprTernary(n *ast.ExprTernary) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ExprVariable(n *ast.ExprVariable) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) Identifier(n *ast.Identifier) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) Name(n *ast.Name) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) NameFullyQualified(n *ast.NameFullyQualified) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) NameRelative(n *ast.NameRelative) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) Parameter(n *ast.Parameter) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ScalarDnumber(n *ast.ScalarDnumber) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ScalarLnumber(n *ast.ScalarLnumber) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) ScalarString(n *ast.ScalarString) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtCase(n *ast.StmtCase) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtCatch(n *ast.StmtCatch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtClass(n *ast.StmtClass) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtClassConstList(n *ast.StmtClassConstList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtClassMethod(n *ast.StmtClassMethod) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtConstList(n *ast.StmtConstList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtConstant(n *ast.StmtConstant) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtDefault(n *ast.StmtDefault) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtDo(n *ast.StmtDo) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtElse(n *ast.StmtElse) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtElseIf(n *ast.StmtElseIf) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtExpression(n *ast.StmtExpression) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtFinally(n *ast.StmtFinally) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtFor(n *ast.StmtFor) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtForeach(n *ast.StmtForeach) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtFunction(n *ast.StmtFunction) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtIf(n *ast.StmtIf) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtInterface(n *ast.StmtInterface) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtNamespace(n *ast.StmtNamespace) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtProperty(n *ast.StmtProperty) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtPropertyList(n *ast.StmtPropertyList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtReturn(n *ast.StmtReturn) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtStmtList(n *ast.StmtStmtList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtSwitch(n *ast.StmtSwitch) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtTrait(n *ast.StmtTrait) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtTraitUse(n *ast.StmtTraitUse) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtTry(n *ast.StmtTry) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtUse(n *ast.StmtUse) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtUseList(n *ast.StmtUseList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}

func (v *nodeRefVisitor) StmtWhile(n *ast.StmtWhile) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}


func (v *nodeRefVisitor) StmtCaseList(n *ast.StmtCaseList) {
	if n.Position != nil {
		v.consider(n, n.Position.StartPos, n.Position.EndPos)
	}
}
