package analysis

import (
	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phpdoc"
	"github.com/doITmagic/php-analyzer/internal/phptype"
	"github.com/doITmagic/php-analyzer/internal/scope"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// pass3Visitor implements expression/statement inference (spec §4.5):
// it pushes a FunctionState per function/method body, walks every
// statement evaluating expressions through AnalysisState.EvalExpr,
// accumulates `return` observations into the enclosing FunctionState,
// and forks/merges the current Scope around every conditional or loop
// construct so a variable's inferred type reflects every control-flow
// path that can reach a given point.
type pass3Visitor struct {
	visitor.Null

	state  *AnalysisState
	store  *symboldata.Store
	global *GlobalState
	cfg    *config.PHPAnalyzeConfig
	emit   issue.Emitter

	currentClass *symboldata.ClassData
	currentIface *symboldata.InterfaceData
	currentTrait *symboldata.TraitData
}

func newPass3Visitor(filename string, store *symboldata.Store, global *GlobalState, cfg *config.PHPAnalyzeConfig, emit issue.Emitter) *pass3Visitor {
	st := NewAnalysisState(store, global)
	st.Filename = filename
	st.Pass = 3
	return &pass3Visitor{state: st, store: store, global: global, cfg: cfg, emit: emit}
}

func (v *pass3Visitor) StmtNamespace(n *ast.StmtNamespace) { applyNamespaceStmt(v.state, n) }

func (v *pass3Visitor) StmtUseList(n *ast.StmtUseList) { applyUseListStmt(v.state, n) }

// walkBody descends into a single-statement-or-block body (the `Stmt`
// field every loop/conditional/function node carries): a braced block
// parses as *ast.StmtStmtList, an unbraced single statement is the
// statement itself.
func walkBody(n ast.Vertex, v ast.Visitor) {
	if n == nil {
		return
	}
	if block, ok := n.(*ast.StmtStmtList); ok {
		for _, stmt := range block.Stmts {
			walkWithVisitor(stmt, v)
		}
		return
	}
	walkWithVisitor(n, v)
}

func walkStmts(stmts []ast.Vertex, v ast.Visitor) {
	for _, stmt := range stmts {
		walkWithVisitor(stmt, v)
	}
}

func (v *pass3Visitor) currentMethod(name symbols.Name) *symboldata.MethodData {
	switch {
	case v.currentClass != nil:
		m, _ := v.currentClass.GetMethod(name)
		return m
	case v.currentTrait != nil:
		m, _ := v.currentTrait.GetMethod(name)
		return m
	}
	return nil
}

func (v *pass3Visitor) StmtClass(n *ast.StmtClass) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	data, ok := v.store.GetClass(fq)
	if !ok {
		return
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	prevInClass := v.state.InClass
	prevTemplates := v.state.ActiveTemplates
	v.currentClass, v.currentIface, v.currentTrait = data, nil, nil
	v.state.InClass = &ClassState{Kind: ClassKindClass, Name: data.Name}
	v.state.ActiveTemplates = templateSet(data.Templates)

	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}

	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
	v.state.InClass = prevInClass
	v.state.ActiveTemplates = prevTemplates
}

func (v *pass3Visitor) StmtInterface(n *ast.StmtInterface) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	data, ok := v.store.GetInterface(fq)
	if !ok {
		return
	}
	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	prevInClass := v.state.InClass
	v.currentClass, v.currentIface, v.currentTrait = nil, data, nil
	v.state.InClass = &ClassState{Kind: ClassKindInterface, Name: data.Name}
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
	v.state.InClass = prevInClass
}

func (v *pass3Visitor) StmtTrait(n *ast.StmtTrait) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	data, ok := v.store.GetTrait(fq)
	if !ok {
		return
	}
	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	prevInClass := v.state.InClass
	v.currentClass, v.currentIface, v.currentTrait = nil, nil, data
	v.state.InClass = &ClassState{Kind: ClassKindTrait, Name: data.Name}
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
	v.state.InClass = prevInClass
}

func (v *pass3Visitor) StmtClassMethod(n *ast.StmtClassMethod) {
	name, ok := identifierName(n.Name)
	if !ok || n.Stmt == nil {
		return
	}
	md := v.currentMethod(symbols.Name(name))
	if md == nil {
		return
	}
	prevTemplates := v.widenTemplates(md.Doc)

	fs := NewFunctionState(symbols.Name(name), true)
	v.state.PushFunction(fs)
	for _, p := range md.Params {
		v.state.DeclareParameter(string(p.Name), p.Type, p.TypeDeclared, phptype.UnionType{}, false, p.ByRef)
	}
	walkBody(n.Stmt, v)
	fs = v.state.PopFunction()
	md.MergeInferredReturnType(fs.InferredReturnType())

	v.state.ActiveTemplates = prevTemplates
}

func (v *pass3Visitor) StmtFunction(n *ast.StmtFunction) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	fd, ok := v.store.GetFunction(fq)
	if !ok {
		return
	}
	prevTemplates := v.widenTemplates(fd.Doc)

	fs := NewFunctionState(symbols.Name(name), false)
	v.state.PushFunction(fs)
	for _, p := range fd.Params {
		v.state.DeclareParameter(string(p.Name), p.Type, p.TypeDeclared, phptype.UnionType{}, false, p.ByRef)
	}
	walkBody(n.Stmt, v)
	fs = v.state.PopFunction()
	fd.MergeInferredReturnType(fs.InferredReturnType())

	v.state.ActiveTemplates = prevTemplates
}

func (v *pass3Visitor) StmtExpression(n *ast.StmtExpression) {
	setPos(v.state, n)
	v.state.EvalExpr(n.Expr, v.emit)
}

func (v *pass3Visitor) StmtReturn(n *ast.StmtReturn) {
	setPos(v.state, n)
	fs, ok := v.state.CurrentFunction()
	if !ok {
		return
	}
	if n.Expr == nil {
		fs.AddReturn(phptype.VoidUnion(), true, phptype.PHPValue{}, false)
		return
	}
	r := v.state.EvalExpr(n.Expr, v.emit)
	fs.AddReturn(r.Type, true, r.Value, r.HasValue)
}

// StmtIf implements spec §4.5/§4.6's branch-forking merge: the true
// branch (and every elseif/else branch) is analyzed against its own
// cloned scope, narrowed by the condition that guards it, and the
// results are unioned back into the scope that follows the statement.
func (v *pass3Visitor) StmtIf(n *ast.StmtIf) {
	setPos(v.state, n)
	v.state.EvalExpr(n.Cond, v.emit)

	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()

	trueScope := base.Fork()
	applyNarrowing(v.state, v.store, n.Cond, trueScope, true)
	stack.SetTop(trueScope)
	walkBody(n.Stmt, v)
	stack.SetTop(base)

	branches := []*scope.Scope{trueScope}

	remainder := base.Fork()
	applyNarrowing(v.state, v.store, n.Cond, remainder, false)

	for _, ei := range n.ElseIf {
		elseIf, ok := ei.(*ast.StmtElseIf)
		if !ok {
			continue
		}
		stack.SetTop(remainder)
		v.state.EvalExpr(elseIf.Cond, v.emit)
		eiTrue := remainder.Fork()
		applyNarrowing(v.state, v.store, elseIf.Cond, eiTrue, true)
		stack.SetTop(eiTrue)
		walkBody(elseIf.Stmt, v)
		stack.SetTop(base)
		branches = append(branches, eiTrue)
		applyNarrowing(v.state, v.store, elseIf.Cond, remainder, false)
	}

	if n.Else != nil {
		if elseStmt, ok := n.Else.(*ast.StmtElse); ok {
			stack.SetTop(remainder)
			walkBody(elseStmt.Stmt, v)
			stack.SetTop(base)
		}
	}
	branches = append(branches, remainder)

	base.Merge(branches...)
	stack.SetTop(base)
}

func (v *pass3Visitor) loopIterations() int {
	if v.cfg != nil && v.cfg.Analysis.LoopMergeIterations > 0 {
		return v.cfg.Analysis.LoopMergeIterations
	}
	return 3
}

// runLoop re-analyzes body against the same forked scope up to the
// configured bound, letting writes from one iteration feed the next so
// the scope reaches a fixed point before it is merged back (spec
// §4.5: "Loops... merged back until a fixed point (bounded to at most
// three iterations)").
func (v *pass3Visitor) runLoop(cond ast.Vertex, body ast.Vertex) {
	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()
	loopScope := base.Fork()
	for i := 0; i < v.loopIterations(); i++ {
		stack.SetTop(loopScope)
		if cond != nil {
			v.state.EvalExpr(cond, v.emit)
		}
		walkBody(body, v)
		stack.SetTop(base)
	}
	base.Merge(loopScope)
	stack.SetTop(base)
}

func (v *pass3Visitor) StmtWhile(n *ast.StmtWhile) {
	setPos(v.state, n)
	v.runLoop(n.Cond, n.Stmt)
}

func (v *pass3Visitor) StmtDo(n *ast.StmtDo) {
	setPos(v.state, n)
	v.runLoop(n.Cond, n.Stmt)
}

func (v *pass3Visitor) StmtFor(n *ast.StmtFor) {
	setPos(v.state, n)
	for _, e := range n.Init {
		v.state.EvalExpr(e, v.emit)
	}
	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()
	loopScope := base.Fork()
	for i := 0; i < v.loopIterations(); i++ {
		stack.SetTop(loopScope)
		for _, c := range n.Cond {
			v.state.EvalExpr(c, v.emit)
		}
		walkBody(n.Stmt, v)
		for _, l := range n.Loop {
			v.state.EvalExpr(l, v.emit)
		}
		stack.SetTop(base)
	}
	base.Merge(loopScope)
	stack.SetTop(base)
}

func (v *pass3Visitor) StmtForeach(n *ast.StmtForeach) {
	setPos(v.state, n)
	iterable := v.state.EvalExpr(n.Expr, v.emit)

	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()
	loopScope := base.Fork()

	var elemType phptype.UnionType
	for _, d := range iterable.Type.Types() {
		switch d.Kind {
		case phptype.KindVector:
			elemType = elemType.Merge(*d.VectorElem)
		case phptype.KindHashMap:
			elemType = elemType.Merge(*d.MapValue)
		}
	}
	if elemType.Empty() {
		elemType = phptype.UnknownUnion()
	}

	for i := 0; i < v.loopIterations(); i++ {
		stack.SetTop(loopScope)
		if keyVar, ok := n.Key.(*ast.ExprVariable); ok {
			v.state.WriteVariable(variableName(keyVar), phptype.UnionOf(phptype.Int(), phptype.String()), phptype.PHPValue{}, false)
		}
		if valVar, ok := n.Var.(*ast.ExprVariable); ok {
			v.state.WriteVariable(variableName(valVar), elemType, phptype.PHPValue{}, false)
		}
		walkBody(n.Stmt, v)
		stack.SetTop(base)
	}
	base.Merge(loopScope)
	stack.SetTop(base)
}

// StmtSwitch forks one branch per case (and the implicit no-match
// path) the same way StmtIf forks per condition, since a switch without
// a `default` can fall through to nothing and a `case` can fall
// through to the next (no `break` inserted automatically), both
// possibilities are folded into the merge by simply analyzing every
// case body against its own scope fork.
func (v *pass3Visitor) StmtSwitch(n *ast.StmtSwitch) {
	setPos(v.state, n)
	v.state.EvalExpr(n.Cond, v.emit)

	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()
	var branches []*scope.Scope

	cases := switchCases(n.CaseList)
	for _, cs := range cases {
		branchScope := base.Fork()
		stack.SetTop(branchScope)
		switch c := cs.(type) {
		case *ast.StmtCase:
			if c.Cond != nil {
				v.state.EvalExpr(c.Cond, v.emit)
			}
			walkStmts(c.Stmts, v)
		case *ast.StmtDefault:
			walkStmts(c.Stmts, v)
		}
		stack.SetTop(base)
		branches = append(branches, branchScope)
	}
	branches = append(branches, base.Fork())
	base.Merge(branches...)
	stack.SetTop(base)
}

func switchCases(caseList ast.Vertex) []ast.Vertex {
	if cl, ok := caseList.(*ast.StmtCaseList); ok {
		return cl.Cases
	}
	return nil
}

func (v *pass3Visitor) StmtTry(n *ast.StmtTry) {
	setPos(v.state, n)
	base := v.state.CurrentScope()
	stack := v.state.CurrentScopeStack()

	tryScope := base.Fork()
	stack.SetTop(tryScope)
	walkStmts(n.Stmts, v)
	stack.SetTop(base)

	branches := []*scope.Scope{tryScope}
	for _, cVertex := range n.Catches {
		c, ok := cVertex.(*ast.StmtCatch)
		if !ok {
			continue
		}
		catchScope := base.Fork()
		stack.SetTop(catchScope)
		if catchVar, ok := c.Var.(*ast.ExprVariable); ok {
			var caught phptype.UnionType
			for _, t := range c.Types {
				local := symbols.Name(nameString(t))
				fq := v.state.GetFQSymbolNameFromLocalName(local)
				caught = caught.Merge(phptype.UnionOf(phptype.Named(local, fq)))
			}
			if caught.Empty() {
				caught = phptype.UnionOf(phptype.Object())
			}
			v.state.WriteVariable(variableName(catchVar), caught, phptype.PHPValue{}, false)
		}
		walkStmts(c.Stmts, v)
		stack.SetTop(base)
		branches = append(branches, catchScope)
	}
	base.Merge(branches...)
	stack.SetTop(base)

	if n.Finally != nil {
		if f, ok := n.Finally.(*ast.StmtFinally); ok {
			walkStmts(f.Stmts, v)
		}
	}
}

// widenTemplates mirrors pass2's method/function-level @template
// widening so Template resolution stays consistent across passes,
// returning the previous ActiveTemplates set so the caller can restore
// it once the body has been walked.
func (v *pass3Visitor) widenTemplates(doc *phpdoc.Doc) map[symbols.Name]bool {
	prev := v.state.ActiveTemplates
	if doc == nil {
		return prev
	}
	names := templateNamesOf(doc)
	if len(names) == 0 {
		return prev
	}
	merged := make(map[symbols.Name]bool, len(prev)+len(names))
	for k := range prev {
		merged[k] = true
	}
	for _, nm := range names {
		merged[nm] = true
	}
	v.state.ActiveTemplates = merged
	return prev
}

// applyNarrowing mutates target's variable entries to reflect what
// must be true of them given that cond evaluated to truthy (or, when
// truthy is false, falsy) — spec §4.5/§4.6's condition-guided branch
// narrowing, covering the shapes that actually occur in conditions:
// a bare variable, a negation, an `instanceof` check, and an assignment
// whose left-hand variable's truthiness the condition itself tests.
func applyNarrowing(state *AnalysisState, store *symboldata.Store, cond ast.Vertex, target *scope.Scope, truthy bool) {
	switch c := cond.(type) {
	case *ast.ExprVariable:
		narrowVariableTruthiness(target, variableName(c), truthy)
	case *ast.ExprBooleanNot:
		applyNarrowing(state, store, c.Expr, target, !truthy)
	case *ast.ExprInstanceOf:
		variable, ok := c.Expr.(*ast.ExprVariable)
		if !ok {
			return
		}
		name := variableName(variable)
		vd, ok := target.Get(name)
		if !ok {
			return
		}
		local := symbols.Name(nameString(c.Class))
		fqn := state.GetFQSymbolNameFromLocalName(local)
		if truthy {
			vd.InferredType = NarrowInstanceOfTrue(store, vd.EffectiveType(), local, fqn)
		} else {
			vd.InferredType = NarrowInstanceOfFalse(store, vd.EffectiveType(), fqn)
		}
		target.Set(name, vd)
	case *ast.ExprAssign:
		if variable, ok := c.Var.(*ast.ExprVariable); ok {
			narrowVariableTruthiness(target, variableName(variable), truthy)
		}
	}
}

func narrowVariableTruthiness(target *scope.Scope, name string, truthy bool) {
	vd, ok := target.Get(name)
	if !ok {
		return
	}
	if truthy {
		vd.InferredType = NarrowTruthy(vd.EffectiveType())
	} else {
		vd.InferredType = NarrowFalsy(vd.EffectiveType())
	}
	target.Set(name, vd)
}
