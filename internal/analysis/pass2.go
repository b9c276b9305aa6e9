package analysis

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/phpdoc"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
	"github.com/doITmagic/php-analyzer/internal/symbols"
)

// pass2Visitor implements symbol cross-linking (spec §4.4): it
// re-walks the declarations pass 1 already installed in store,
// resolving extends/implements/trait-use against what actually got
// declared, validating parameter/return/property type hints refer to
// a declared class, and folding class/global constant initializers
// down to a PHPValue when they constant-fold.
type pass2Visitor struct {
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

func newPass2Visitor(filename string, store *symboldata.Store, global *GlobalState, cfg *config.PHPAnalyzeConfig, emit issue.Emitter) *pass2Visitor {
	st := NewAnalysisState(store, global)
	st.Filename = filename
	st.Pass = 2
	return &pass2Visitor{state: st, store: store, global: global, cfg: cfg, emit: emit}
}

func (v *pass2Visitor) StmtNamespace(n *ast.StmtNamespace) { applyNamespaceStmt(v.state, n) }

func (v *pass2Visitor) StmtUseList(n *ast.StmtUseList) { applyUseListStmt(v.state, n) }

func (v *pass2Visitor) StmtClass(n *ast.StmtClass) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	data, ok := v.store.GetClass(fq)
	if !ok {
		return
	}

	if n.Extends != nil {
		parentFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(n.Extends)))
		if !v.store.IsDeclared(parentFQ) {
			setPos(v.state, n.Extends)
			v.state.Emit(v.emit, issue.UnknownClass, "unknown parent class "+parentFQ.String())
		}
	}
	for _, iface := range n.Implements {
		ifaceFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(iface)))
		if !v.store.IsDeclared(ifaceFQ) {
			setPos(v.state, iface)
			v.state.Emit(v.emit, issue.UnknownInterface, "unknown interface "+ifaceFQ.String())
		}
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	prevTemplates := v.state.ActiveTemplates
	v.currentClass, v.currentIface, v.currentTrait = data, nil, nil
	v.state.ActiveTemplates = templateSet(data.Templates)

	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}

	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
	v.state.ActiveTemplates = prevTemplates
}

func (v *pass2Visitor) StmtInterface(n *ast.StmtInterface) {
	name, ok := identifierName(n.Name)
	if !ok {
		return
	}
	fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
	data, ok := v.store.GetInterface(fq)
	if !ok {
		return
	}
	for _, ext := range n.Extends {
		extFQ := v.state.GetFQSymbolNameFromLocalName(symbols.Name(nameString(ext)))
		if !v.store.IsDeclared(extFQ) {
			setPos(v.state, ext)
			v.state.Emit(v.emit, issue.UnknownInterface, "unknown interface "+extFQ.String())
		}
	}

	prevClass, prevIface, prevTrait := v.currentClass, v.currentIface, v.currentTrait
	v.currentClass, v.currentIface, v.currentTrait = nil, data, nil
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
}

func (v *pass2Visitor) StmtTrait(n *ast.StmtTrait) {
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
	v.currentClass, v.currentIface, v.currentTrait = nil, nil, data
	for _, stmt := range n.Stmts {
		walkWithVisitor(stmt, v)
	}
	v.currentClass, v.currentIface, v.currentTrait = prevClass, prevIface, prevTrait
}

func (v *pass2Visitor) StmtTraitUse(n *ast.StmtTraitUse) {
	if v.currentClass == nil {
		return
	}
	for _, t := range n.Traits {
		local := nameString(t)
		fq := v.state.GetFQSymbolNameFromLocalName(symbols.Name(local))
		if !v.store.IsDeclared(fq) {
			setPos(v.state, t)
			v.state.Emit(v.emit, issue.UnknownTrait, "unknown trait "+fq.String())
		}
	}
}

// StmtClassMethod validates the method's declared parameter and return
// type hints (spec §4.8: "pass 2 additionally validates they refer to
// a declared class"), widening ActiveTemplates with any @template the
// method's own doc comment introduces for the duration.
func (v *pass2Visitor) StmtClassMethod(n *ast.StmtClassMethod) {
	if _, ok := identifierName(n.Name); !ok {
		return
	}
	prevTemplates := v.withMethodTemplates(methodDocOf(n.Modifiers, n.FunctionTkn))
	for _, pVertex := range n.Params {
		if p, ok := pVertex.(*ast.Parameter); ok {
			v.checkTypeHintDeclared(p.Type)
		}
	}
	v.checkTypeHintDeclared(n.ReturnType)
	v.state.ActiveTemplates = prevTemplates
}

func (v *pass2Visitor) StmtFunction(n *ast.StmtFunction) {
	if _, ok := identifierName(n.Name); !ok {
		return
	}
	prevTemplates := v.withMethodTemplates(funcDocOf(n.FunctionTkn))
	for _, pVertex := range n.Params {
		if p, ok := pVertex.(*ast.Parameter); ok {
			v.checkTypeHintDeclared(p.Type)
		}
	}
	v.checkTypeHintDeclared(n.ReturnType)
	v.state.ActiveTemplates = prevTemplates
}

func (v *pass2Visitor) StmtPropertyList(n *ast.StmtPropertyList) {
	if v.currentClass == nil {
		return
	}
	v.checkTypeHintDeclared(n.Type)
}

// StmtClassConstList evaluates each class constant's initializer to a
// PHPValue when it constant-folds, storing the result on the
// ConstantData pass 1 already allocated (spec §4.4: "evaluate the
// right-hand side expression to a PHPValue when possible... If
// unresolvable, store None and emit only an internal informational
// note").
func (v *pass2Visitor) StmtClassConstList(n *ast.StmtClassConstList) {
	if v.currentClass == nil {
		return
	}
	for _, cVertex := range n.Consts {
		c, ok := cVertex.(*ast.StmtConstant)
		if !ok {
			continue
		}
		name, ok := identifierName(c.Name)
		if !ok {
			continue
		}
		cd, ok := v.currentClass.GetConstant(symbols.Name(name))
		if !ok {
			continue
		}
		result := v.state.EvalExpr(c.Expr, v.emit)
		cd.Type = result.Type
		cd.Value = result.Value
		cd.HasValue = result.HasValue
		if !result.HasValue {
			v.state.Emit(v.emit, issue.ParseAnomaly, "class constant "+name+" has no statically known value")
		}
	}
}

func (v *pass2Visitor) StmtConstList(n *ast.StmtConstList) {
	for _, cVertex := range n.Consts {
		c, ok := cVertex.(*ast.StmtConstant)
		if !ok {
			continue
		}
		name, ok := identifierName(c.Name)
		if !ok {
			continue
		}
		fq := v.state.GetFQSymbolNameWithoutAliasing(symbols.Name(name))
		cd, ok := v.store.GetConstant(fq)
		if !ok {
			continue
		}
		result := v.state.EvalExpr(c.Expr, v.emit)
		cd.Type = result.Type
		cd.Value = result.Value
		cd.HasValue = result.HasValue
	}
}

// withMethodTemplates widens the active @template set with any
// templates introduced by a method/function's own doc comment, and
// returns the previous set so the caller can restore it afterwards.
func (v *pass2Visitor) withMethodTemplates(doc *phpdoc.Doc) map[symbols.Name]bool {
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

// checkTypeHintDeclared walks a parsed type-hint node (Nullable/
// Union/Intersection wrappers included) and emits UnknownClass for
// every class-like name it references that the symbol table has no
// record of ever declaring, skipping scalar keywords, self/static/
// parent, and in-scope @template parameters.
func (v *pass2Visitor) checkTypeHintDeclared(n ast.Vertex) {
	switch t := n.(type) {
	case nil:
		return
	case *ast.Nullable:
		v.checkTypeHintDeclared(t.Expr)
	case *ast.Union:
		for _, part := range t.Types {
			v.checkTypeHintDeclared(part)
		}
	case *ast.Intersection:
		for _, part := range t.Types {
			v.checkTypeHintDeclared(part)
		}
	case *ast.Identifier:
		v.checkClassLikeName(string(t.Value), t)
	case *ast.Name, *ast.NameFullyQualified, *ast.NameRelative:
		v.checkClassLikeName(nameString(t), t)
	}
}

func (v *pass2Visitor) checkClassLikeName(raw string, pos ast.Vertex) {
	switch strings.ToLower(raw) {
	case "int", "integer", "float", "double", "string", "bool", "boolean",
		"array", "object", "callable", "iterable", "mixed", "void", "null",
		"never", "self", "static", "parent", "false", "true":
		return
	}
	if v.state.ActiveTemplates[symbols.Name(raw)] {
		return
	}
	fq := v.state.GetFQSymbolNameFromLocalName(symbols.Name(raw))
	if !v.store.IsDeclared(fq) {
		setPos(v.state, pos)
		v.state.Emit(v.emit, issue.UnknownClass, "unknown class "+fq.String())
	}
}
